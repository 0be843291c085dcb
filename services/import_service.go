package services

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strings"

	"invoicepro-backend/models"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

// EntityCount is the outcome of importing one entity type.
type EntityCount struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type ImportResult map[string]*EntityCount

type ImportService struct {
	db       *gorm.DB
	invoices *InvoiceService
	recur    *RecurringService
}

func NewImportService(db *gorm.DB, invoices *InvoiceService, recur *RecurringService) *ImportService {
	return &ImportService{db: db, invoices: invoices, recur: recur}
}

// ImportFile reads a .zip, .json or .csv upload. entity is required for .csv
// and for a .json file holding a single entity array.
func (s *ImportService) ImportFile(name string, data []byte, entity string) (ImportResult, error) {
	var (
		b   *Bundle
		err error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".zip":
		b, err = ReadArchive(data)
	case ".json":
		b, err = ReadJSON(bytes.NewReader(data), entity)
	case ".csv":
		b = &Bundle{}
		err = ReadCSV(bytes.NewReader(data), entity, b)
	default:
		return nil, fmt.Errorf("import file %q: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return s.Import(b)
}

// ReadArchive parses an export zip. Either per-entity JSON or CSV files are accepted.
func ReadArchive(data []byte) (*Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read zip: %w", err)
	}
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[path.Base(f.Name)] = f
	}

	b := &Bundle{}
	for _, entity := range Entities {
		if f, ok := files[entity+".json"]; ok {
			if err := readZipEntry(f, func(r io.Reader) error { return decodeEntityJSON(stripBOM(r), entity, b) }); err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			continue
		}
		if f, ok := files[entity+".csv"]; ok {
			if err := readZipEntry(f, func(r io.Reader) error { return ReadCSV(r, entity, b) }); err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
		}
	}
	// Line items refer to invoices by number, so they are read last.
	if f, ok := files[entityLineItems+".csv"]; ok {
		if err := readZipEntry(f, func(r io.Reader) error { return ReadCSV(r, entityLineItems, b) }); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return b, nil
}

func readZipEntry(f *zip.File, fn func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return fn(rc)
}

// ReadJSON accepts a whole Bundle object or, when entity is set, a bare array.
func ReadJSON(r io.Reader, entity string) (*Bundle, error) {
	b := &Bundle{}
	r = stripBOM(r)
	if entity != "" {
		if !ValidEntity(entity) {
			return nil, fmt.Errorf("entity %q: %w", entity, ErrUnsupportedFormat)
		}
		return b, decodeEntityJSON(r, entity, b)
	}
	if err := json.NewDecoder(r).Decode(b); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return b, nil
}

func decodeEntityJSON(r io.Reader, entity string, b *Bundle) error {
	dec := json.NewDecoder(r)
	var err error
	switch entity {
	case EntityCustomers:
		err = dec.Decode(&b.Customers)
	case EntityProperties:
		err = dec.Decode(&b.Properties)
	case EntityInvoices:
		err = dec.Decode(&b.Invoices)
	case EntityExpenses:
		err = dec.Decode(&b.Expenses)
	case EntityRecurringTemplates:
		err = dec.Decode(&b.RecurringTemplates)
	default:
		return fmt.Errorf("entity %q: %w", entity, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", entity, err)
	}
	return nil
}

// stripBOM drops a leading UTF-8 byte order mark, as written by spreadsheet tools.
func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadCSV appends the rows of one entity's CSV file to b. Invoice line items
// are attached to invoices already in b or read later by invoice number.
func ReadCSV(r io.Reader, entity string, b *Bundle) error {
	if _, ok := csvHeaders[entity]; !ok {
		return fmt.Errorf("entity %q: %w", entity, ErrUnsupportedFormat)
	}
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var pending []LineItemRecord
	for i, values := range records[1:] {
		row := &csvRow{line: i + 2, cols: cols, values: values}
		switch entity {
		case EntityCustomers:
			b.Customers = append(b.Customers, row.customer())
		case EntityProperties:
			b.Properties = append(b.Properties, row.property())
		case EntityInvoices:
			b.Invoices = append(b.Invoices, row.invoice())
		case entityLineItems:
			pending = append(pending, row.lineItem())
		case EntityExpenses:
			b.Expenses = append(b.Expenses, row.expense())
		case EntityRecurringTemplates:
			b.RecurringTemplates = append(b.RecurringTemplates, row.template())
		}
		if row.err != nil {
			return row.err
		}
	}
	if len(pending) > 0 {
		return b.attachLineItems(pending)
	}
	return nil
}

// attachLineItems assigns flattened line items to their invoices by number.
func (b *Bundle) attachLineItems(items []LineItemRecord) error {
	idx := map[string]int{}
	for i, inv := range b.Invoices {
		idx[inv.InvoiceNumber] = i
	}
	for _, li := range items {
		i, ok := idx[li.InvoiceNumber]
		if !ok {
			return fmt.Errorf("line item for unknown invoice %q: %w", li.InvoiceNumber, ErrInvalidImport)
		}
		b.Invoices[i].LineItems = append(b.Invoices[i].LineItems, li)
	}
	return nil
}

// Import writes a bundle entity by entity, in dependency order. Each entity
// type commits in its own transaction; the first failure rolls that entity
// back and stops the import.
func (s *ImportService) Import(b *Bundle) (ImportResult, error) {
	result := ImportResult{}
	steps := []struct {
		entity string
		n      int
		fn     func(tx *gorm.DB, c *EntityCount) error
	}{
		{EntityCustomers, len(b.Customers), func(tx *gorm.DB, c *EntityCount) error { return s.importCustomers(tx, b.Customers, c) }},
		{EntityProperties, len(b.Properties), func(tx *gorm.DB, c *EntityCount) error { return s.importProperties(tx, b.Properties, c) }},
		{EntityInvoices, len(b.Invoices), func(tx *gorm.DB, c *EntityCount) error { return s.importInvoices(tx, b.Invoices, c) }},
		{EntityExpenses, len(b.Expenses), func(tx *gorm.DB, c *EntityCount) error { return s.importExpenses(tx, b.Expenses, c) }},
		{EntityRecurringTemplates, len(b.RecurringTemplates), func(tx *gorm.DB, c *EntityCount) error {
			return s.importTemplates(tx, b.RecurringTemplates, c)
		}},
	}

	for _, step := range steps {
		if step.n == 0 {
			continue
		}
		count := &EntityCount{}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			return step.fn(tx, count)
		})
		if err != nil {
			log.Printf("[IMPORT] %s failed, rolled back: %v", step.entity, err)
			// A dangling reference in the file is bad input, not a missing resource.
			if errors.Is(err, ErrNotFound) {
				return result, fmt.Errorf("%w: import %s: %v", ErrInvalidImport, step.entity, err)
			}
			return result, fmt.Errorf("import %s: %w", step.entity, err)
		}
		result[step.entity] = count
		log.Printf("[IMPORT] %s: %d imported, %d skipped", step.entity, count.Imported, count.Skipped)
	}
	return result, nil
}

// findCustomer matches by email (case-insensitive), or by name when no email is given.
func findCustomer(tx *gorm.DB, email, name string) (*models.Customer, error) {
	var c models.Customer
	var err error
	if email = strings.TrimSpace(email); email != "" {
		err = tx.Where("LOWER(email) = ?", strings.ToLower(email)).First(&c).Error
	} else {
		err = tx.Where("name = ? AND (email IS NULL OR email = '')", strings.TrimSpace(name)).First(&c).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func requireCustomer(tx *gorm.DB, email, name string) (*models.Customer, error) {
	c, err := findCustomer(tx, email, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		who := email
		if who == "" {
			who = name
		}
		return nil, fmt.Errorf("customer %q does not exist: %w", who, ErrInvalidImport)
	}
	return c, nil
}

func findProperty(tx *gorm.DB, customerID uuid.UUID, addressLine1 string) (*models.Property, error) {
	var p models.Property
	err := tx.Where("customer_id = ? AND LOWER(address_line1) = ?", customerID, strings.ToLower(strings.TrimSpace(addressLine1))).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ImportService) importCustomers(tx *gorm.DB, records []CustomerRecord, count *EntityCount) error {
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("record %d: name is required: %w", i+1, ErrInvalidImport)
		}
		existing, err := findCustomer(tx, r.Email, r.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			count.Skipped++
			continue
		}
		c := r.model()
		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		count.Imported++
	}
	return nil
}

func (s *ImportService) importProperties(tx *gorm.DB, records []PropertyRecord, count *EntityCount) error {
	for i, r := range records {
		if strings.TrimSpace(r.AddressLine1) == "" {
			return fmt.Errorf("record %d: address line 1 is required: %w", i+1, ErrInvalidImport)
		}
		c, err := requireCustomer(tx, r.CustomerEmail, r.CustomerName)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		existing, err := findProperty(tx, c.ID, r.AddressLine1)
		if err != nil {
			return err
		}
		if existing != nil {
			count.Skipped++
			continue
		}
		p := r.model()
		p.CustomerID = c.ID
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		count.Imported++
	}
	return nil
}

func (s *ImportService) importInvoices(tx *gorm.DB, records []InvoiceRecord, count *EntityCount) error {
	for i, r := range records {
		if r.InvoiceNumber != "" {
			var n int64
			if err := tx.Model(&models.Invoice{}).Where("invoice_number = ?", r.InvoiceNumber).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				count.Skipped++
				continue
			}
		}
		c, err := requireCustomer(tx, r.CustomerEmail, r.CustomerName)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}

		status := r.Status
		if status == models.StatusOverdue {
			status = models.StatusUnpaid
		}
		if !models.ValidStatus(status) {
			status = models.StatusUnpaid
		}
		inv := &models.Invoice{
			InvoiceNumber: r.InvoiceNumber,
			CustomerID:    c.ID,
			InvoiceDate:   r.InvoiceDate,
			DueDate:       r.DueDate,
			PaymentDate:   r.PaymentDate,
			TaxRate:       r.TaxRate,
			Status:        status,
			PaymentMethod: r.PaymentMethod,
			Notes:         r.Notes,
			Terms:         r.Terms,
		}
		if r.PropertyAddress != "" {
			p, err := findProperty(tx, c.ID, r.PropertyAddress)
			if err != nil {
				return err
			}
			if p != nil {
				inv.PropertyID = &p.ID
			}
		}
		items := make([]LineItemRecord, len(r.LineItems))
		copy(items, r.LineItems)
		sort.SliceStable(items, func(a, b int) bool { return items[a].Position < items[b].Position })
		for _, li := range items {
			inv.LineItems = append(inv.LineItems, models.InvoiceLineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				UnitPrice:   li.UnitPrice,
			})
		}
		if len(inv.LineItems) == 0 && r.Subtotal > 0 {
			// A bare invoices.csv carries no lines; keep the amount as one line.
			inv.LineItems = []models.InvoiceLineItem{{Description: "Imported invoice", Quantity: 1, UnitPrice: r.Subtotal}}
		}
		// create recomputes totals from the line items and derives overdue.
		if err := s.invoices.create(tx, inv); err != nil {
			return fmt.Errorf("invoice %q: %w", r.InvoiceNumber, err)
		}
		count.Imported++
	}
	return nil
}

func (s *ImportService) importExpenses(tx *gorm.DB, records []ExpenseRecord, count *EntityCount) error {
	for i, r := range records {
		if strings.TrimSpace(r.Vendor) == "" || r.Date.IsZero() {
			return fmt.Errorf("record %d: vendor and date are required: %w", i+1, ErrInvalidImport)
		}
		var n int64
		if err := tx.Model(&models.Expense{}).
			Where("vendor = ? AND date = ? AND amount = ?", r.Vendor, r.Date, r.Amount).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			count.Skipped++
			continue
		}

		category := r.Category
		if !models.ValidExpenseCategory(category) {
			category = "other"
		}
		e := models.Expense{
			Vendor:        r.Vendor,
			Amount:        SumAmounts(r.Amount),
			Date:          r.Date,
			Category:      category,
			Description:   r.Description,
			PaymentMethod: r.PaymentMethod,
		}
		if r.InvoiceNumber != "" {
			var inv models.Invoice
			if err := tx.Select("id, property_id").Where("invoice_number = ?", r.InvoiceNumber).First(&inv).Error; err == nil {
				e.InvoiceID = &inv.ID
				if r.PropertyAddress == "" {
					e.PropertyID = inv.PropertyID
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if r.PropertyAddress != "" && e.PropertyID == nil {
			var p models.Property
			if err := tx.Where("LOWER(address_line1) = ?", strings.ToLower(r.PropertyAddress)).First(&p).Error; err == nil {
				e.PropertyID = &p.ID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if err := tx.Create(&e).Error; err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		count.Imported++
	}
	return nil
}

func (s *ImportService) importTemplates(tx *gorm.DB, records []RecurringTemplateRecord, count *EntityCount) error {
	for i, r := range records {
		c, err := requireCustomer(tx, r.CustomerEmail, r.CustomerName)
		if err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		var n int64
		if err := tx.Model(&models.RecurringTemplate{}).
			Where("customer_id = ? AND name = ?", c.ID, r.Name).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			count.Skipped++
			continue
		}

		t := models.RecurringTemplate{
			CustomerID:           c.ID,
			Name:                 r.Name,
			Frequency:            r.Frequency,
			StartDate:            r.StartDate,
			EndDate:              r.EndDate,
			NextRunDate:          r.NextRunDate,
			IsActive:             r.IsActive,
			TaxRate:              r.TaxRate,
			PaymentTermsDays:     r.PaymentTermsDays,
			Notes:                r.Notes,
			CreateAsDraft:        r.CreateAsDraft,
			AutoSend:             r.AutoSend,
			MaxOccurrences:       r.MaxOccurrences,
			OccurrencesGenerated: r.OccurrencesGenerated,
		}
		if r.PropertyAddress != "" {
			p, err := findProperty(tx, c.ID, r.PropertyAddress)
			if err != nil {
				return err
			}
			if p != nil {
				t.PropertyID = &p.ID
			}
		}
		if err := t.SetItems(r.LineItems); err != nil {
			return err
		}
		if err := s.recur.Prepare(&t); err != nil {
			return fmt.Errorf("template %q: %w", r.Name, err)
		}
		// is_active has a column default, so false must be written explicitly.
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
		if !r.IsActive {
			if err := tx.Model(&t).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		count.Imported++
	}
	return nil
}
