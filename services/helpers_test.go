package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"invoicepro-backend/models"
	"invoicepro-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	utils.BcryptCost = 4
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, t.Name())
}

// openTestDB opens a named in-memory database so one test can hold several.
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// fixedClock returns a Now func pinned to the given day at noon.
func fixedClock(year int, month time.Month, day int) func() time.Time {
	at := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func createCustomer(t *testing.T, db *gorm.DB, name, email string) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, Email: email, Phone: "+15125550100"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func createProperty(t *testing.T, db *gorm.DB, customer models.Customer, address string) models.Property {
	t.Helper()
	p := models.Property{CustomerID: customer.ID, AddressLine1: address, PropertyType: models.PropertyResidential}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func lines(items ...float64) []models.InvoiceLineItem {
	var out []models.InvoiceLineItem
	for i := 0; i+1 < len(items); i += 2 {
		out = append(out, models.InvoiceLineItem{
			Description: fmt.Sprintf("Item %d", i/2+1),
			Quantity:    items[i],
			UnitPrice:   items[i+1],
		})
	}
	return out
}

// assertDay compares instants; times read back from sqlite lose their location.
func assertDay(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}
