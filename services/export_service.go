package services

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"invoicepro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	manifestName  = "manifest.json"
	exportVersion = 1
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Manifest describes the contents of an export archive.
type Manifest struct {
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	Format    string         `json:"format"`
	Entities  []string       `json:"entities"`
	Counts    map[string]int `json:"counts"`
}

// ArchiveFile is an export or backup file on disk.
type ArchiveFile struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type ExportService struct {
	db  *gorm.DB
	Dir string
	Now func() time.Time
}

func NewExportService(db *gorm.DB, dir string) *ExportService {
	return &ExportService{db: db, Dir: dir, Now: time.Now}
}

// Collect loads the requested entities (all when empty) as records.
func (s *ExportService) Collect(entities []string) (*Bundle, error) {
	want := map[string]bool{}
	for _, e := range entities {
		want[e] = true
	}
	all := len(want) == 0
	b := &Bundle{}

	if all || want[EntityCustomers] {
		var customers []models.Customer
		if err := s.db.Order("name ASC").Find(&customers).Error; err != nil {
			return nil, err
		}
		for _, c := range customers {
			b.Customers = append(b.Customers, customerRecord(c))
		}
	}

	addresses := map[uuid.UUID]string{}
	if all || want[EntityProperties] || want[EntityRecurringTemplates] {
		var properties []models.Property
		if err := s.db.Preload("Customer").Order("created_at ASC").Find(&properties).Error; err != nil {
			return nil, err
		}
		for _, p := range properties {
			addresses[p.ID] = p.AddressLine1
			if all || want[EntityProperties] {
				b.Properties = append(b.Properties, propertyRecord(p))
			}
		}
	}

	if all || want[EntityInvoices] {
		var invoices []models.Invoice
		if err := s.db.
			Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Preload("Customer").
			Preload("Property").
			Order("invoice_date ASC, invoice_number ASC").
			Find(&invoices).Error; err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			b.Invoices = append(b.Invoices, invoiceRecord(inv))
		}
	}

	if all || want[EntityExpenses] {
		var expenses []models.Expense
		if err := s.db.Preload("Invoice").Preload("Property").Order("date ASC").Find(&expenses).Error; err != nil {
			return nil, err
		}
		for _, e := range expenses {
			b.Expenses = append(b.Expenses, expenseRecord(e))
		}
	}

	if all || want[EntityRecurringTemplates] {
		var templates []models.RecurringTemplate
		if err := s.db.Preload("Customer").Order("name ASC").Find(&templates).Error; err != nil {
			return nil, err
		}
		for _, t := range templates {
			addr := ""
			if t.PropertyID != nil {
				addr = addresses[*t.PropertyID]
			}
			b.RecurringTemplates = append(b.RecurringTemplates, templateRecord(t, addr))
		}
	}
	return b, nil
}

// Export writes export-<timestamp>.zip into Dir and returns its listing entry.
func (s *ExportService) Export(format string, entities []string) (*ArchiveFile, error) {
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		return nil, fmt.Errorf("export format %q: %w", format, ErrUnsupportedFormat)
	}
	for _, e := range entities {
		if !ValidEntity(e) {
			return nil, fmt.Errorf("entity %q: %w", e, ErrUnsupportedFormat)
		}
	}
	if len(entities) == 0 {
		entities = Entities
	}

	b, err := s.Collect(entities)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}

	now := s.Now()
	name := "export-" + now.Format("20060102-150405") + ".zip"
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	if err := writeArchive(f, b, format, entities, now); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[EXPORT] wrote %s (%s, %d bytes)", name, format, info.Size())
	return &ArchiveFile{Name: name, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

func writeArchive(w io.Writer, b *Bundle, format string, entities []string, now time.Time) error {
	zw := zip.NewWriter(w)
	manifest := Manifest{
		Version:   exportVersion,
		CreatedAt: now,
		Format:    format,
		Entities:  entities,
		Counts:    map[string]int{},
	}

	for _, e := range entities {
		var err error
		if format == FormatCSV {
			err = writeCSVEntity(zw, b, e)
		} else {
			err = writeJSONEntity(zw, b, e)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", e, err)
		}
		manifest.Counts[e] = b.count(e)
	}

	mw, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return err
	}
	return zw.Close()
}

func (b *Bundle) count(entity string) int {
	switch entity {
	case EntityCustomers:
		return len(b.Customers)
	case EntityProperties:
		return len(b.Properties)
	case EntityInvoices:
		return len(b.Invoices)
	case EntityExpenses:
		return len(b.Expenses)
	case EntityRecurringTemplates:
		return len(b.RecurringTemplates)
	}
	return 0
}

func (b *Bundle) entity(entity string) interface{} {
	switch entity {
	case EntityCustomers:
		return nonNil(b.Customers)
	case EntityProperties:
		return nonNil(b.Properties)
	case EntityInvoices:
		return nonNil(b.Invoices)
	case EntityExpenses:
		return nonNil(b.Expenses)
	case EntityRecurringTemplates:
		return nonNil(b.RecurringTemplates)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSONEntity(zw *zip.Writer, b *Bundle, entity string) error {
	w, err := zw.Create(entity + ".json")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b.entity(entity))
}

func writeCSVEntity(zw *zip.Writer, b *Bundle, entity string) error {
	var rows [][]string
	switch entity {
	case EntityCustomers:
		for _, r := range b.Customers {
			rows = append(rows, r.csvRow())
		}
	case EntityProperties:
		for _, r := range b.Properties {
			rows = append(rows, r.csvRow())
		}
	case EntityInvoices:
		var items [][]string
		for _, r := range b.Invoices {
			rows = append(rows, r.csvRow())
			for _, li := range r.LineItems {
				li.InvoiceNumber = r.InvoiceNumber
				items = append(items, li.csvRow())
			}
		}
		if err := writeCSVFile(zw, entityLineItems, items); err != nil {
			return err
		}
	case EntityExpenses:
		for _, r := range b.Expenses {
			rows = append(rows, r.csvRow())
		}
	case EntityRecurringTemplates:
		for _, r := range b.RecurringTemplates {
			row, err := r.csvRow()
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
	}
	return writeCSVFile(zw, entity, rows)
}

func writeCSVFile(zw *zip.Writer, entity string, rows [][]string) error {
	w, err := zw.Create(entity + ".csv")
	if err != nil {
		return err
	}
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders[entity]); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// List returns export archives, newest first.
func (s *ExportService) List() ([]ArchiveFile, error) {
	return listArchives(s.Dir, "export-", ".zip")
}

// Path resolves an export name to its file, rejecting anything outside Dir.
func (s *ExportService) Path(name string) (string, error) {
	return archivePath(s.Dir, name, "export-", ".zip", ErrExportNotFound)
}

func (s *ExportService) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func listArchives(dir, prefix, suffix string) ([]ArchiveFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ArchiveFile{}, nil
		}
		return nil, err
	}
	files := []ArchiveFile{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, ArchiveFile{Name: e.Name(), Size: info.Size(), CreatedAt: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].Name > files[j].Name
		}
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

func archivePath(dir, name, prefix, suffix string, notFound error) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) ||
		!strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidFileName)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%q: %w", name, notFound)
		}
		return "", err
	}
	return path, nil
}
