package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/utils"
)

// Entity names in import order.
const (
	EntityCustomers          = "customers"
	EntityProperties         = "properties"
	EntityInvoices           = "invoices"
	EntityExpenses           = "expenses"
	EntityRecurringTemplates = "recurring_templates"
	entityLineItems          = "invoice_line_items"
)

var Entities = []string{
	EntityCustomers, EntityProperties, EntityInvoices, EntityExpenses, EntityRecurringTemplates,
}

func ValidEntity(e string) bool {
	for _, name := range Entities {
		if name == e {
			return true
		}
	}
	return false
}

// Records reference each other by natural key, never by database id, so an
// export can be imported into another database.

type CustomerRecord struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	CompanyName  string `json:"companyName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

type PropertyRecord struct {
	CustomerEmail string   `json:"customerEmail"`
	CustomerName  string   `json:"customerName"`
	Name          string   `json:"name"`
	AddressLine1  string   `json:"addressLine1"`
	AddressLine2  string   `json:"addressLine2"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PostalCode    string   `json:"postalCode"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	PropertyType  string   `json:"propertyType"`
	YearBuilt     *int     `json:"yearBuilt"`
	SquareFeet    *int     `json:"squareFeet"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *float64 `json:"bathrooms"`
	LotSize       string   `json:"lotSize"`
	GateCode      string   `json:"gateCode"`
	KeyLocation   string   `json:"keyLocation"`
	AccessNotes   string   `json:"accessNotes"`
}

type LineItemRecord struct {
	InvoiceNumber string  `json:"invoiceNumber,omitempty"`
	Position      int     `json:"position"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	LineTotal     float64 `json:"lineTotal"`
}

type InvoiceRecord struct {
	InvoiceNumber   string           `json:"invoiceNumber"`
	CustomerEmail   string           `json:"customerEmail"`
	CustomerName    string           `json:"customerName"`
	PropertyAddress string           `json:"propertyAddress"`
	InvoiceDate     time.Time        `json:"invoiceDate"`
	DueDate         time.Time        `json:"dueDate"`
	PaymentDate     *time.Time       `json:"paymentDate"`
	Status          string           `json:"status"`
	TaxRate         float64          `json:"taxRate"`
	Subtotal        float64          `json:"subtotal"`
	TaxAmount       float64          `json:"taxAmount"`
	Total           float64          `json:"total"`
	PaymentMethod   string           `json:"paymentMethod"`
	Notes           string           `json:"notes"`
	Terms           string           `json:"terms"`
	LineItems       []LineItemRecord `json:"lineItems"`
}

type ExpenseRecord struct {
	Vendor          string    `json:"vendor"`
	Amount          float64   `json:"amount"`
	Date            time.Time `json:"date"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	PaymentMethod   string    `json:"paymentMethod"`
	InvoiceNumber   string    `json:"invoiceNumber"`
	PropertyAddress string    `json:"propertyAddress"`
}

type RecurringTemplateRecord struct {
	CustomerEmail        string                    `json:"customerEmail"`
	CustomerName         string                    `json:"customerName"`
	PropertyAddress      string                    `json:"propertyAddress"`
	Name                 string                    `json:"name"`
	Frequency            string                    `json:"frequency"`
	StartDate            time.Time                 `json:"startDate"`
	EndDate              *time.Time                `json:"endDate"`
	NextRunDate          time.Time                 `json:"nextRunDate"`
	IsActive             bool                      `json:"isActive"`
	TaxRate              float64                   `json:"taxRate"`
	PaymentTermsDays     int                       `json:"paymentTermsDays"`
	LineItems            []models.TemplateLineItem `json:"lineItems"`
	Notes                string                    `json:"notes"`
	CreateAsDraft        bool                      `json:"createAsDraft"`
	AutoSend             bool                      `json:"autoSend"`
	MaxOccurrences       *int                      `json:"maxOccurrences"`
	OccurrencesGenerated int                       `json:"occurrencesGenerated"`
}

// Bundle is a full data set, as exported or as read back for import.
type Bundle struct {
	Customers          []CustomerRecord          `json:"customers"`
	Properties         []PropertyRecord          `json:"properties"`
	Invoices           []InvoiceRecord           `json:"invoices"`
	Expenses           []ExpenseRecord           `json:"expenses"`
	RecurringTemplates []RecurringTemplateRecord `json:"recurring_templates"`
}

func customerRecord(c models.Customer) CustomerRecord {
	return CustomerRecord{
		Name: c.Name, Email: c.Email, Phone: c.Phone, CompanyName: c.CompanyName,
		AddressLine1: c.AddressLine1, AddressLine2: c.AddressLine2, City: c.City,
		State: c.State, PostalCode: c.PostalCode, Country: c.Country, Notes: c.Notes,
	}
}

func (r CustomerRecord) model() models.Customer {
	return models.Customer{
		Name: r.Name, Email: strings.TrimSpace(r.Email), Phone: r.Phone, CompanyName: r.CompanyName,
		AddressLine1: r.AddressLine1, AddressLine2: r.AddressLine2, City: r.City,
		State: r.State, PostalCode: r.PostalCode, Country: r.Country, Notes: r.Notes,
	}
}

func propertyRecord(p models.Property) PropertyRecord {
	r := PropertyRecord{
		Name: p.Name, AddressLine1: p.AddressLine1, AddressLine2: p.AddressLine2,
		City: p.City, State: p.State, PostalCode: p.PostalCode,
		Latitude: p.Latitude, Longitude: p.Longitude, PropertyType: p.PropertyType,
		YearBuilt: p.YearBuilt, SquareFeet: p.SquareFeet, Bedrooms: p.Bedrooms,
		Bathrooms: p.Bathrooms, LotSize: p.LotSize, GateCode: p.GateCode,
		KeyLocation: p.KeyLocation, AccessNotes: p.AccessNotes,
	}
	if p.Customer != nil {
		r.CustomerEmail, r.CustomerName = p.Customer.Email, p.Customer.Name
	}
	return r
}

func (r PropertyRecord) model() models.Property {
	pt := r.PropertyType
	if !models.ValidPropertyType(pt) {
		pt = models.PropertyResidential
	}
	return models.Property{
		Name: r.Name, AddressLine1: r.AddressLine1, AddressLine2: r.AddressLine2,
		City: r.City, State: r.State, PostalCode: r.PostalCode,
		Latitude: r.Latitude, Longitude: r.Longitude, PropertyType: pt,
		YearBuilt: r.YearBuilt, SquareFeet: r.SquareFeet, Bedrooms: r.Bedrooms,
		Bathrooms: r.Bathrooms, LotSize: r.LotSize, GateCode: r.GateCode,
		KeyLocation: r.KeyLocation, AccessNotes: r.AccessNotes,
	}
}

func invoiceRecord(inv models.Invoice) InvoiceRecord {
	r := InvoiceRecord{
		InvoiceNumber: inv.InvoiceNumber, InvoiceDate: inv.InvoiceDate, DueDate: inv.DueDate,
		PaymentDate: inv.PaymentDate, Status: inv.Status, TaxRate: inv.TaxRate,
		Subtotal: inv.Subtotal, TaxAmount: inv.TaxAmount, Total: inv.Total,
		PaymentMethod: inv.PaymentMethod, Notes: inv.Notes, Terms: inv.Terms,
		LineItems: []LineItemRecord{},
	}
	if inv.Customer != nil {
		r.CustomerEmail, r.CustomerName = inv.Customer.Email, inv.Customer.Name
	}
	if inv.Property != nil {
		r.PropertyAddress = inv.Property.AddressLine1
	}
	for _, li := range inv.LineItems {
		r.LineItems = append(r.LineItems, LineItemRecord{
			Position: li.Position, Description: li.Description,
			Quantity: li.Quantity, UnitPrice: li.UnitPrice, LineTotal: li.LineTotal,
		})
	}
	return r
}

func expenseRecord(e models.Expense) ExpenseRecord {
	r := ExpenseRecord{
		Vendor: e.Vendor, Amount: e.Amount, Date: e.Date, Category: e.Category,
		Description: e.Description, PaymentMethod: e.PaymentMethod,
	}
	if e.Invoice != nil {
		r.InvoiceNumber = e.Invoice.InvoiceNumber
	}
	if e.Property != nil {
		r.PropertyAddress = e.Property.AddressLine1
	}
	return r
}

func templateRecord(t models.RecurringTemplate, propertyAddress string) RecurringTemplateRecord {
	items, _ := t.Items()
	r := RecurringTemplateRecord{
		PropertyAddress: propertyAddress,
		Name:            t.Name, Frequency: t.Frequency, StartDate: t.StartDate, EndDate: t.EndDate,
		NextRunDate: t.NextRunDate, IsActive: t.IsActive, TaxRate: t.TaxRate,
		PaymentTermsDays: t.PaymentTermsDays, LineItems: items, Notes: t.Notes,
		CreateAsDraft: t.CreateAsDraft, AutoSend: t.AutoSend, MaxOccurrences: t.MaxOccurrences,
		OccurrencesGenerated: t.OccurrencesGenerated,
	}
	if t.Customer != nil {
		r.CustomerEmail, r.CustomerName = t.Customer.Email, t.Customer.Name
	}
	return r
}

// CSV layout. Each entity has a fixed header; rows are read back by column name.

var csvHeaders = map[string][]string{
	EntityCustomers: {"name", "email", "phone", "company_name", "address_line1", "address_line2",
		"city", "state", "postal_code", "country", "notes"},
	EntityProperties: {"customer_email", "customer_name", "name", "address_line1", "address_line2",
		"city", "state", "postal_code", "latitude", "longitude", "property_type", "year_built",
		"square_feet", "bedrooms", "bathrooms", "lot_size", "gate_code", "key_location", "access_notes"},
	EntityInvoices: {"invoice_number", "customer_email", "customer_name", "property_address",
		"invoice_date", "due_date", "payment_date", "status", "tax_rate", "subtotal", "tax_amount",
		"total", "payment_method", "notes", "terms"},
	entityLineItems: {"invoice_number", "position", "description", "quantity", "unit_price", "line_total"},
	EntityExpenses: {"vendor", "amount", "date", "category", "description", "payment_method",
		"invoice_number", "property_address"},
	EntityRecurringTemplates: {"customer_email", "customer_name", "property_address", "name",
		"frequency", "start_date", "end_date", "next_run_date", "is_active", "tax_rate",
		"payment_terms_days", "line_items", "notes", "create_as_draft", "auto_send",
		"max_occurrences", "occurrences_generated"},
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func fmtOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmtFloat(*v)
}

func fmtOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fmtDate(t time.Time) string { return t.Format(utils.DateLayout) }

func fmtOptDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtDate(*t)
}

func (r CustomerRecord) csvRow() []string {
	return []string{r.Name, r.Email, r.Phone, r.CompanyName, r.AddressLine1, r.AddressLine2,
		r.City, r.State, r.PostalCode, r.Country, r.Notes}
}

func (r PropertyRecord) csvRow() []string {
	return []string{r.CustomerEmail, r.CustomerName, r.Name, r.AddressLine1, r.AddressLine2,
		r.City, r.State, r.PostalCode, fmtOptFloat(r.Latitude), fmtOptFloat(r.Longitude),
		r.PropertyType, fmtOptInt(r.YearBuilt), fmtOptInt(r.SquareFeet), fmtOptInt(r.Bedrooms),
		fmtOptFloat(r.Bathrooms), r.LotSize, r.GateCode, r.KeyLocation, r.AccessNotes}
}

func (r InvoiceRecord) csvRow() []string {
	return []string{r.InvoiceNumber, r.CustomerEmail, r.CustomerName, r.PropertyAddress,
		fmtDate(r.InvoiceDate), fmtDate(r.DueDate), fmtOptDate(r.PaymentDate), r.Status,
		fmtFloat(r.TaxRate), fmtFloat(r.Subtotal), fmtFloat(r.TaxAmount), fmtFloat(r.Total),
		r.PaymentMethod, r.Notes, r.Terms}
}

func (r LineItemRecord) csvRow() []string {
	return []string{r.InvoiceNumber, strconv.Itoa(r.Position), r.Description,
		fmtFloat(r.Quantity), fmtFloat(r.UnitPrice), fmtFloat(r.LineTotal)}
}

func (r ExpenseRecord) csvRow() []string {
	return []string{r.Vendor, fmtFloat(r.Amount), fmtDate(r.Date), r.Category, r.Description,
		r.PaymentMethod, r.InvoiceNumber, r.PropertyAddress}
}

func (r RecurringTemplateRecord) csvRow() ([]string, error) {
	items, err := json.Marshal(r.LineItems)
	if err != nil {
		return nil, err
	}
	return []string{r.CustomerEmail, r.CustomerName, r.PropertyAddress, r.Name, r.Frequency,
		fmtDate(r.StartDate), fmtOptDate(r.EndDate), fmtDate(r.NextRunDate),
		strconv.FormatBool(r.IsActive), fmtFloat(r.TaxRate), strconv.Itoa(r.PaymentTermsDays),
		string(items), r.Notes, strconv.FormatBool(r.CreateAsDraft), strconv.FormatBool(r.AutoSend),
		fmtOptInt(r.MaxOccurrences), strconv.Itoa(r.OccurrencesGenerated)}, nil
}

// csvRow gives named access to one CSV line and collects the first parse error.
type csvRow struct {
	line   int
	cols   map[string]int
	values []string
	err    error
}

func (r *csvRow) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r *csvRow) fail(name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("line %d, column %s: %w", r.line, name, err)
	}
}

func (r *csvRow) float(name string) float64 {
	s := r.str(name)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *csvRow) optFloat(name string) *float64 {
	if r.str(name) == "" {
		return nil
	}
	v := r.float(name)
	return &v
}

func (r *csvRow) int(name string) int {
	s := r.str(name)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *csvRow) optInt(name string) *int {
	if r.str(name) == "" {
		return nil
	}
	v := r.int(name)
	return &v
}

func (r *csvRow) bool(name string) bool {
	s := r.str(name)
	if s == "" {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		r.fail(name, err)
	}
	return v
}

func (r *csvRow) date(name string) time.Time {
	s := r.str(name)
	if s == "" {
		return time.Time{}
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		r.fail(name, err)
	}
	return t
}

func (r *csvRow) optDate(name string) *time.Time {
	if r.str(name) == "" {
		return nil
	}
	t := r.date(name)
	return &t
}

func (r *csvRow) customer() CustomerRecord {
	return CustomerRecord{
		Name: r.str("name"), Email: r.str("email"), Phone: r.str("phone"),
		CompanyName: r.str("company_name"), AddressLine1: r.str("address_line1"),
		AddressLine2: r.str("address_line2"), City: r.str("city"), State: r.str("state"),
		PostalCode: r.str("postal_code"), Country: r.str("country"), Notes: r.str("notes"),
	}
}

func (r *csvRow) property() PropertyRecord {
	return PropertyRecord{
		CustomerEmail: r.str("customer_email"), CustomerName: r.str("customer_name"),
		Name: r.str("name"), AddressLine1: r.str("address_line1"), AddressLine2: r.str("address_line2"),
		City: r.str("city"), State: r.str("state"), PostalCode: r.str("postal_code"),
		Latitude: r.optFloat("latitude"), Longitude: r.optFloat("longitude"),
		PropertyType: r.str("property_type"), YearBuilt: r.optInt("year_built"),
		SquareFeet: r.optInt("square_feet"), Bedrooms: r.optInt("bedrooms"),
		Bathrooms: r.optFloat("bathrooms"), LotSize: r.str("lot_size"), GateCode: r.str("gate_code"),
		KeyLocation: r.str("key_location"), AccessNotes: r.str("access_notes"),
	}
}

func (r *csvRow) invoice() InvoiceRecord {
	return InvoiceRecord{
		InvoiceNumber: r.str("invoice_number"), CustomerEmail: r.str("customer_email"),
		CustomerName: r.str("customer_name"), PropertyAddress: r.str("property_address"),
		InvoiceDate: r.date("invoice_date"), DueDate: r.date("due_date"),
		PaymentDate: r.optDate("payment_date"), Status: r.str("status"),
		TaxRate: r.float("tax_rate"), Subtotal: r.float("subtotal"), TaxAmount: r.float("tax_amount"),
		Total: r.float("total"), PaymentMethod: r.str("payment_method"), Notes: r.str("notes"),
		Terms: r.str("terms"),
	}
}

func (r *csvRow) lineItem() LineItemRecord {
	return LineItemRecord{
		InvoiceNumber: r.str("invoice_number"), Position: r.int("position"),
		Description: r.str("description"), Quantity: r.float("quantity"),
		UnitPrice: r.float("unit_price"), LineTotal: r.float("line_total"),
	}
}

func (r *csvRow) expense() ExpenseRecord {
	return ExpenseRecord{
		Vendor: r.str("vendor"), Amount: r.float("amount"), Date: r.date("date"),
		Category: r.str("category"), Description: r.str("description"),
		PaymentMethod: r.str("payment_method"), InvoiceNumber: r.str("invoice_number"),
		PropertyAddress: r.str("property_address"),
	}
}

func (r *csvRow) template() RecurringTemplateRecord {
	rec := RecurringTemplateRecord{
		CustomerEmail: r.str("customer_email"), CustomerName: r.str("customer_name"),
		PropertyAddress: r.str("property_address"), Name: r.str("name"),
		Frequency: r.str("frequency"), StartDate: r.date("start_date"), EndDate: r.optDate("end_date"),
		NextRunDate: r.date("next_run_date"), IsActive: r.bool("is_active"),
		TaxRate: r.float("tax_rate"), PaymentTermsDays: r.int("payment_terms_days"),
		Notes: r.str("notes"), CreateAsDraft: r.bool("create_as_draft"), AutoSend: r.bool("auto_send"),
		MaxOccurrences: r.optInt("max_occurrences"), OccurrencesGenerated: r.int("occurrences_generated"),
	}
	if raw := r.str("line_items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.LineItems); err != nil {
			r.fail("line_items", err)
		}
	}
	if _, ok := r.cols["is_active"]; !ok {
		rec.IsActive = true
	}
	return rec
}
