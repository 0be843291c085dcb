package models

import (
	"testing"

	"invoicepro-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCustomerEmailUniqueIgnoringCase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:models_email_index?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	// Running it twice must not fail on the existing index.
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&Customer{Name: "Harbor Cafe", Email: "owner@harborcafe.example.com"}).Error)
	err = db.Create(&Customer{Name: "Harbor Cafe LLC", Email: "Owner@HarborCafe.example.com"}).Error
	require.Error(t, err)
	assert.True(t, utils.IsUniqueViolation(err), err.Error())

	// Customers without an email are not constrained.
	require.NoError(t, db.Create(&Customer{Name: "Walk-in A"}).Error)
	require.NoError(t, db.Create(&Customer{Name: "Walk-in B"}).Error)
}
