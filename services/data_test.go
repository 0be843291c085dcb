package services

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"invoicepro-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedExportData(t *testing.T, db *gorm.DB) models.Invoice {
	t.Helper()
	invoices := NewInvoiceService(db, 30)
	invoices.Now = fixedClock(2024, time.March, 15)

	customer := createCustomer(t, db, "Riverside Dental", "office@riverside.example.com")
	property := createProperty(t, db, customer, "12 River Rd")

	inv := models.Invoice{
		InvoiceNumber: "INV-1001",
		CustomerID:    customer.ID,
		PropertyID:    &property.ID,
		InvoiceDate:   day(2024, time.March, 10),
		DueDate:       day(2024, time.April, 9),
		TaxRate:       8.25,
		LineItems:     lines(2, 45.5, 1, 120),
	}
	require.NoError(t, invoices.Create(&inv))

	expense := models.Expense{
		InvoiceID:  &inv.ID,
		PropertyID: &property.ID,
		Vendor:     "Lowe's",
		Amount:     89.99,
		Date:       day(2024, time.March, 11),
		Category:   "materials",
	}
	require.NoError(t, db.Create(&expense).Error)

	tmpl := models.RecurringTemplate{
		CustomerID:       customer.ID,
		PropertyID:       &property.ID,
		Name:             "Quarterly HVAC service",
		Frequency:        models.FrequencyQuarterly,
		StartDate:        day(2024, time.January, 1),
		NextRunDate:      day(2024, time.April, 1),
		IsActive:         true,
		PaymentTermsDays: 30,
	}
	require.NoError(t, tmpl.SetItems([]models.TemplateLineItem{{Description: "Filter change", Quantity: 1, UnitPrice: 150}}))
	require.NoError(t, db.Create(&tmpl).Error)
	return inv
}

func newTestImportService(db *gorm.DB) *ImportService {
	invoices := NewInvoiceService(db, 30)
	invoices.Now = fixedClock(2024, time.March, 15)
	return NewImportService(db, invoices, NewRecurringService(db, invoices))
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatCSV} {
		t.Run(format, func(t *testing.T) {
			src := openTestDB(t, t.Name()+"_src")
			original := seedExportData(t, src)

			exports := NewExportService(src, t.TempDir())
			exports.Now = fixedClock(2024, time.March, 15)
			file, err := exports.Export(format, nil)
			require.NoError(t, err)
			assert.Equal(t, "export-20240315-120000.zip", file.Name)

			path, err := exports.Path(file.Name)
			require.NoError(t, err)
			data, err := os.ReadFile(path)
			require.NoError(t, err)

			dst := openTestDB(t, t.Name()+"_dst")
			imports := newTestImportService(dst)
			result, err := imports.ImportFile(file.Name, data, "")
			require.NoError(t, err)
			for _, entity := range Entities {
				require.Contains(t, result, entity)
				assert.Equal(t, 1, result[entity].Imported, entity)
			}

			var inv models.Invoice
			require.NoError(t, dst.Preload("LineItems").First(&inv, "invoice_number = ?", "INV-1001").Error)
			assert.Len(t, inv.LineItems, 2)
			assert.Equal(t, original.Total, inv.Total)
			assert.Equal(t, models.StatusUnpaid, inv.Status)
			assert.NotNil(t, inv.PropertyID)

			var expense models.Expense
			require.NoError(t, dst.First(&expense).Error)
			require.NotNil(t, expense.InvoiceID)
			assert.Equal(t, inv.ID, *expense.InvoiceID)

			var tmpl models.RecurringTemplate
			require.NoError(t, dst.First(&tmpl).Error)
			items, err := tmpl.Items()
			require.NoError(t, err)
			assert.Equal(t, "Filter change", items[0].Description)

			// A second import finds every record by its natural key.
			result, err = imports.ImportFile(file.Name, data, "")
			require.NoError(t, err)
			for _, entity := range Entities {
				assert.Equal(t, 0, result[entity].Imported, entity)
				assert.Equal(t, 1, result[entity].Skipped, entity)
			}
		})
	}
}

func TestCSVExportHasBOM(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)
	exports := NewExportService(db, t.TempDir())

	file, err := exports.Export(FormatCSV, []string{EntityCustomers, EntityInvoices})
	require.NoError(t, err)
	path, err := exports.Path(file.Name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		names[f.Name] = body
	}
	assert.Contains(t, names, manifestName)
	assert.Contains(t, names, entityLineItems+".csv")
	assert.NotContains(t, names, "expenses.csv")
	assert.True(t, bytes.HasPrefix(names["customers.csv"], utf8BOM))
}

func TestImportSingleEntityCSV(t *testing.T) {
	db := setupTestDB(t)
	imports := newTestImportService(db)

	data := append([]byte{}, utf8BOM...)
	data = append(data, []byte("Name,Email,Phone\nJane Cooper,jane@example.com,555-0101\nNo Email Co,,\n")...)
	result, err := imports.ImportFile("customers.csv", data, EntityCustomers)
	require.NoError(t, err)
	assert.Equal(t, 2, result[EntityCustomers].Imported)

	var c models.Customer
	require.NoError(t, db.First(&c, "email = ?", "jane@example.com").Error)
	assert.Equal(t, "Jane Cooper", c.Name)

	result, err = imports.ImportFile("customers.csv", data, EntityCustomers)
	require.NoError(t, err)
	assert.Equal(t, 2, result[EntityCustomers].Skipped)
}

func TestImportRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	imports := newTestImportService(db)

	_, err := imports.ImportFile("data.txt", []byte("hello"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = imports.ImportFile("data.json", []byte("{not json"), "")
	assert.ErrorIs(t, err, ErrInvalidImport)

	_, err = imports.ImportFile("data.zip", []byte("not a zip"), "")
	assert.ErrorIs(t, err, ErrInvalidImport)

	_, err = imports.ImportFile("customers.json", []byte(`[{"email":"x@example.com"}]`), EntityCustomers)
	assert.ErrorIs(t, err, ErrInvalidImport)

	// Properties for a customer that does not exist roll back.
	_, err = imports.ImportFile("properties.json", []byte(`[{"customerEmail":"ghost@example.com","addressLine1":"1 Main St"}]`), EntityProperties)
	assert.ErrorIs(t, err, ErrInvalidImport)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = imports.ImportFile("properties.csv",
		[]byte("customer_email,address_line1\nnobody@example.com,9 Elm St\n"), EntityProperties)
	assert.ErrorIs(t, err, ErrInvalidImport)
	var count int64
	require.NoError(t, db.Model(&models.Property{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExportFiles(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	exports := NewExportService(db, dir)

	files, err := exports.List()
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = exports.Export("xml", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = exports.Export(FormatJSON, []string{"users"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	file, err := exports.Export(FormatJSON, nil)
	require.NoError(t, err)
	files, err = exports.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, file.Name, files[0].Name)

	_, err = exports.Path("../" + file.Name)
	assert.ErrorIs(t, err, ErrInvalidFileName)
	_, err = exports.Path("export-19990101-000000.zip")
	assert.ErrorIs(t, err, ErrExportNotFound)

	require.NoError(t, exports.Delete(file.Name))
	_, err = os.Stat(filepath.Join(dir, file.Name))
	assert.True(t, os.IsNotExist(err))
}
