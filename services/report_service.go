package services

import (
	"log"
	"sort"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService struct {
	db  *gorm.DB
	Now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, Now: time.Now}
}

// SummaryReport totals activity within a date range.
type SummaryReport struct {
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
	Invoiced       float64          `json:"invoiced"`
	Collected      float64          `json:"collected"`
	Outstanding    float64          `json:"outstanding"`
	Overdue        float64          `json:"overdue"`
	Expenses       float64          `json:"expenses"`
	NetProfit      float64          `json:"netProfit"`
	StatusCounts   map[string]int64 `json:"statusCounts"`
	InvoiceCount   int64            `json:"invoiceCount"`
	AvgInvoiceSize float64          `json:"avgInvoiceSize"`
}

// MonthBucket is one month of a yearly revenue report.
type MonthBucket struct {
	Month     int     `json:"month"`
	Label     string  `json:"label"`
	Invoiced  float64 `json:"invoiced"`
	Collected float64 `json:"collected"`
	Expenses  float64 `json:"expenses"`
	Net       float64 `json:"net"`
}

// AgingBucket groups outstanding invoices by days past due.
type AgingBucket struct {
	Label    string         `json:"label"`
	MinDays  int            `json:"minDays"`
	MaxDays  int            `json:"maxDays"` // -1 means open ended
	Count    int            `json:"count"`
	Total    float64        `json:"total"`
	Invoices []AgingInvoice `json:"invoices"`
}

type AgingInvoice struct {
	ID            uuid.UUID `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerName  string    `json:"customerName"`
	DueDate       time.Time `json:"dueDate"`
	DaysPastDue   int       `json:"daysPastDue"`
	Total         float64   `json:"total"`
}

type AgingReport struct {
	AsOf    time.Time     `json:"asOf"`
	Buckets []AgingBucket `json:"buckets"`
	Total   float64       `json:"total"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

type ProfitLossReport struct {
	From     time.Time     `json:"from"`
	To       time.Time     `json:"to"`
	Revenue  float64       `json:"revenue"`
	Expenses float64       `json:"expenses"`
	Net      float64       `json:"net"`
	Months   []MonthBucket `json:"months"`
}

type CustomerSummary struct {
	CustomerID uuid.UUID `json:"customerId"`
	Name       string    `json:"name"`
	Invoices   int       `json:"invoices"`
	Billed     float64   `json:"billed"`
}

// AnalyticsSummary compares revenue against the previous period.
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64 `json:"currentMonthRevenue"`
	MonthGrowth           float64 `json:"monthGrowth"`
	CurrentQuarterRevenue float64 `json:"currentQuarterRevenue"`
	QuarterGrowth         float64 `json:"quarterGrowth"`
	CurrentYearRevenue    float64 `json:"currentYearRevenue"`
	YearGrowth            float64 `json:"yearGrowth"`
}

// agingBuckets are in days past due; "Current" holds invoices not yet due.
var agingBuckets = []AgingBucket{
	{Label: "Current", MinDays: -1 << 31, MaxDays: 0},
	{Label: "1-30", MinDays: 1, MaxDays: 30},
	{Label: "31-60", MinDays: 31, MaxDays: 60},
	{Label: "61-90", MinDays: 61, MaxDays: 90},
	{Label: "90+", MinDays: 91, MaxDays: -1},
}

func (s *ReportService) sum(model interface{}, column, where string, args ...interface{}) (float64, error) {
	var total float64
	err := s.db.Model(model).
		Where(where, args...).
		Select("COALESCE(SUM(" + column + "), 0)").
		Scan(&total).Error
	return total, err
}

// invoiced sums non-draft invoices by invoice date.
func (s *ReportService) invoiced(from, to time.Time) (float64, error) {
	return s.sum(&models.Invoice{}, "total", "status <> ? AND invoice_date BETWEEN ? AND ?", models.StatusDraft, from, to)
}

// collected sums paid invoices by payment date.
func (s *ReportService) collected(from, to time.Time) (float64, error) {
	return s.sum(&models.Invoice{}, "total", "status = ? AND payment_date BETWEEN ? AND ?", models.StatusPaid, from, to)
}

func (s *ReportService) expenses(from, to time.Time) (float64, error) {
	return s.sum(&models.Expense{}, "amount", "date BETWEEN ? AND ?", from, to)
}

// Summary totals invoicing, collections and expenses between from and to.
func (s *ReportService) Summary(from, to time.Time) (*SummaryReport, error) {
	r := &SummaryReport{From: from, To: to, StatusCounts: map[string]int64{}}
	var err error
	if r.Invoiced, err = s.invoiced(from, to); err != nil {
		return nil, err
	}
	if r.Collected, err = s.collected(from, to); err != nil {
		return nil, err
	}
	if r.Expenses, err = s.expenses(from, to); err != nil {
		return nil, err
	}
	if r.Outstanding, err = s.sum(&models.Invoice{}, "total", "status IN ? AND invoice_date BETWEEN ? AND ?",
		[]string{models.StatusUnpaid, models.StatusOverdue}, from, to); err != nil {
		return nil, err
	}
	if r.Overdue, err = s.sum(&models.Invoice{}, "total", "status = ? AND invoice_date BETWEEN ? AND ?",
		models.StatusOverdue, from, to); err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.Invoice{}).
		Select("status, COUNT(*) as count").
		Where("invoice_date BETWEEN ? AND ?", from, to).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, st := range []string{models.StatusDraft, models.StatusUnpaid, models.StatusPaid, models.StatusOverdue} {
		r.StatusCounts[st] = 0
	}
	for _, row := range rows {
		r.StatusCounts[row.Status] = row.Count
		if row.Status != models.StatusDraft {
			r.InvoiceCount += row.Count
		}
	}
	if r.InvoiceCount > 0 {
		r.AvgInvoiceSize = SumAmounts(r.Invoiced / float64(r.InvoiceCount))
	}
	r.NetProfit = SumAmounts(r.Collected, -r.Expenses)
	return r, nil
}

// monthly buckets invoices and expenses between from and to by calendar month.
func (s *ReportService) monthly(from, to time.Time) ([]MonthBucket, error) {
	type key struct {
		year  int
		month time.Month
	}
	var order []key
	buckets := map[key]*MonthBucket{}
	for m := utils.BeginningOfMonth(from); !m.After(to); m = m.AddDate(0, 1, 0) {
		k := key{m.Year(), m.Month()}
		order = append(order, k)
		buckets[k] = &MonthBucket{Month: int(m.Month()), Label: m.Format("Jan 2006")}
	}
	at := func(t time.Time) *MonthBucket {
		return buckets[key{t.Year(), t.Month()}]
	}

	var invoices []models.Invoice
	if err := s.db.Select("status, invoice_date, payment_date, total").
		Where("status <> ? AND ((invoice_date BETWEEN ? AND ?) OR (payment_date BETWEEN ? AND ?))",
			models.StatusDraft, from, to, from, to).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if !inv.InvoiceDate.Before(from) && !inv.InvoiceDate.After(to) {
			if b := at(inv.InvoiceDate); b != nil {
				b.Invoiced = SumAmounts(b.Invoiced, inv.Total)
			}
		}
		if inv.Status == models.StatusPaid && inv.PaymentDate != nil &&
			!inv.PaymentDate.Before(from) && !inv.PaymentDate.After(to) {
			if b := at(*inv.PaymentDate); b != nil {
				b.Collected = SumAmounts(b.Collected, inv.Total)
			}
		}
	}

	var expenses []models.Expense
	if err := s.db.Select("date, amount").Where("date BETWEEN ? AND ?", from, to).Find(&expenses).Error; err != nil {
		return nil, err
	}
	for _, e := range expenses {
		if b := at(e.Date); b != nil {
			b.Expenses = SumAmounts(b.Expenses, e.Amount)
		}
	}

	out := make([]MonthBucket, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		b.Net = SumAmounts(b.Collected, -b.Expenses)
		out = append(out, *b)
	}
	return out, nil
}

// MonthlyRevenue returns twelve buckets for year.
func (s *ReportService) MonthlyRevenue(year int) ([]MonthBucket, error) {
	loc := s.Now().Location()
	from := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	to := utils.EndOfDay(time.Date(year, 12, 31, 0, 0, 0, 0, loc))
	return s.monthly(from, to)
}

// ProfitLoss is collected revenue minus expenses, overall and per month.
func (s *ReportService) ProfitLoss(from, to time.Time) (*ProfitLossReport, error) {
	months, err := s.monthly(from, to)
	if err != nil {
		return nil, err
	}
	r := &ProfitLossReport{From: from, To: to, Months: months}
	for _, m := range months {
		r.Revenue = SumAmounts(r.Revenue, m.Collected)
		r.Expenses = SumAmounts(r.Expenses, m.Expenses)
	}
	r.Net = SumAmounts(r.Revenue, -r.Expenses)
	return r, nil
}

// Aging groups unpaid and overdue invoices by how far past due they are on asOf.
func (s *ReportService) Aging(asOf time.Time) (*AgingReport, error) {
	var invoices []models.Invoice
	if err := s.db.Preload("Customer").
		Where("status IN ?", []string{models.StatusUnpaid, models.StatusOverdue}).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	r := &AgingReport{AsOf: asOf, Buckets: make([]AgingBucket, len(agingBuckets))}
	copy(r.Buckets, agingBuckets)
	for i := range r.Buckets {
		r.Buckets[i].Invoices = []AgingInvoice{}
	}
	r.Buckets[0].MinDays = 0

	for _, inv := range invoices {
		days := utils.DaysBetween(inv.DueDate, asOf)
		idx := agingIndex(days)
		name := ""
		if inv.Customer != nil {
			name = inv.Customer.Name
		}
		b := &r.Buckets[idx]
		b.Invoices = append(b.Invoices, AgingInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerName:  name,
			DueDate:       inv.DueDate,
			DaysPastDue:   max(days, 0),
			Total:         inv.Total,
		})
		b.Count++
		b.Total = SumAmounts(b.Total, inv.Total)
		r.Total = SumAmounts(r.Total, inv.Total)
	}
	return r, nil
}

func agingIndex(daysPastDue int) int {
	switch {
	case daysPastDue <= 0:
		return 0
	case daysPastDue <= 30:
		return 1
	case daysPastDue <= 60:
		return 2
	case daysPastDue <= 90:
		return 3
	}
	return 4
}

// ExpensesByCategory totals expenses per category, largest first.
func (s *ReportService) ExpensesByCategory(from, to time.Time) ([]CategoryTotal, error) {
	var rows []CategoryTotal
	err := s.db.Model(&models.Expense{}).
		Select("category, COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Where("date BETWEEN ? AND ?", from, to).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows, nil
}

// TopCustomers ranks customers by billed amount in the range.
func (s *ReportService) TopCustomers(from, to time.Time, limit int) ([]CustomerSummary, error) {
	var customers []CustomerSummary
	err := s.db.Table("invoices").
		Select("customers.id as customer_id, customers.name, COUNT(invoices.id) as invoices, SUM(invoices.total) as billed").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.status <> ? AND invoices.invoice_date BETWEEN ? AND ?", models.StatusDraft, from, to).
		Group("customers.id, customers.name").
		Order("billed DESC").
		Limit(limit).
		Scan(&customers).Error
	return customers, err
}

// Analytics reports month, quarter and year revenue with growth against the previous period.
func (s *ReportService) Analytics() (*AnalyticsSummary, error) {
	now := s.Now()
	firstOfMonth := utils.BeginningOfMonth(now)
	endOfMonth := firstOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)
	quarterStart := utils.QuarterStart(now)
	quarterEnd := quarterStart.AddDate(0, 3, 0).Add(-time.Nanosecond)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond)

	periods := []struct{ from, to time.Time }{
		{firstOfMonth, endOfMonth},
		{firstOfMonth.AddDate(0, -1, 0), firstOfMonth.Add(-time.Nanosecond)},
		{quarterStart, quarterEnd},
		{quarterStart.AddDate(0, -3, 0), quarterStart.Add(-time.Nanosecond)},
		{yearStart, yearEnd},
		{yearStart.AddDate(-1, 0, 0), yearStart.Add(-time.Nanosecond)},
	}
	values := make([]float64, len(periods))
	for i, p := range periods {
		v, err := s.invoiced(p.from, p.to)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return &AnalyticsSummary{
		CurrentMonthRevenue:   values[0],
		MonthGrowth:           GrowthPercentage(values[0], values[1]),
		CurrentQuarterRevenue: values[2],
		QuarterGrowth:         GrowthPercentage(values[2], values[3]),
		CurrentYearRevenue:    values[4],
		YearGrowth:            GrowthPercentage(values[4], values[5]),
	}, nil
}

// GrowthPercentage compares current with previous; growth from zero counts as 100%.
func GrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

// DashboardOverview is the landing page summary.
type DashboardOverview struct {
	TotalCustomers    int64               `json:"totalCustomers"`
	TotalInvoices     int64               `json:"totalInvoices"`
	OutstandingAmount float64             `json:"outstandingAmount"`
	OverdueCount      int64               `json:"overdueCount"`
	OverdueAmount     float64             `json:"overdueAmount"`
	MonthlyRevenue    float64             `json:"monthlyRevenue"`
	MonthlyExpenses   float64             `json:"monthlyExpenses"`
	RecentInvoices    []models.Invoice    `json:"recentInvoices"`
	UpcomingRecurring []UpcomingRecurring `json:"upcomingRecurring"`
	StatusCounts      map[string]int64    `json:"statusCounts"`
	Errors            []string            `json:"errors,omitempty"`
}

type UpcomingRecurring struct {
	TemplateID   uuid.UUID `json:"templateId"`
	Name         string    `json:"name"`
	CustomerName string    `json:"customerName"`
	NextRunDate  time.Time `json:"nextRunDate"`
	Amount       float64   `json:"amount"`
}

// Dashboard gathers the dashboard widgets. A failing widget is logged and
// reported in Errors; the others are still returned.
func (s *ReportService) Dashboard() *DashboardOverview {
	now := s.Now()
	firstOfMonth := utils.BeginningOfMonth(now)
	endOfMonth := firstOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)
	d := &DashboardOverview{
		RecentInvoices:    []models.Invoice{},
		UpcomingRecurring: []UpcomingRecurring{},
		StatusCounts:      map[string]int64{},
	}

	widget := func(name string, fn func() error) {
		if err := fn(); err != nil {
			log.Printf("[DASHBOARD] %s: %v", name, err)
			d.Errors = append(d.Errors, name)
		}
	}

	widget("totals", func() error {
		if err := s.db.Model(&models.Customer{}).Count(&d.TotalCustomers).Error; err != nil {
			return err
		}
		return s.db.Model(&models.Invoice{}).Count(&d.TotalInvoices).Error
	})
	widget("outstanding", func() error {
		var err error
		if d.OutstandingAmount, err = s.sum(&models.Invoice{}, "total", "status IN ?",
			[]string{models.StatusUnpaid, models.StatusOverdue}); err != nil {
			return err
		}
		if d.OverdueAmount, err = s.sum(&models.Invoice{}, "total", "status = ?", models.StatusOverdue); err != nil {
			return err
		}
		return s.db.Model(&models.Invoice{}).Where("status = ?", models.StatusOverdue).Count(&d.OverdueCount).Error
	})
	widget("month", func() error {
		var err error
		if d.MonthlyRevenue, err = s.collected(firstOfMonth, endOfMonth); err != nil {
			return err
		}
		d.MonthlyExpenses, err = s.expenses(firstOfMonth, endOfMonth)
		return err
	})
	widget("statusCounts", func() error {
		var rows []struct {
			Status string
			Count  int64
		}
		if err := s.db.Model(&models.Invoice{}).Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			d.StatusCounts[r.Status] = r.Count
		}
		return nil
	})
	widget("recentInvoices", func() error {
		return s.db.Preload("Customer").Order("created_at DESC").Limit(5).Find(&d.RecentInvoices).Error
	})
	widget("upcomingRecurring", func() error {
		var templates []models.RecurringTemplate
		if err := s.db.Preload("Customer").
			Where("is_active = ?", true).
			Order("next_run_date ASC").
			Limit(5).
			Find(&templates).Error; err != nil {
			return err
		}
		for _, t := range templates {
			up := UpcomingRecurring{TemplateID: t.ID, Name: t.Name, NextRunDate: t.NextRunDate}
			if t.Customer != nil {
				up.CustomerName = t.Customer.Name
			}
			if items, err := t.Items(); err == nil {
				lines := make([]models.InvoiceLineItem, len(items))
				for i, it := range items {
					lines[i] = models.InvoiceLineItem{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
				}
				up.Amount = CalculateTotals(lines, t.TaxRate).Total
			}
			d.UpcomingRecurring = append(d.UpcomingRecurring, up)
		}
		return nil
	})
	return d
}
