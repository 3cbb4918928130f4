// Package testdb opens throwaway SQLite databases for package tests.
package testdb

import (
	"fmt"
	"testing"

	"go-backoffice-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))
	return db
}

// Product inserts a product with the given stock and price.
func Product(t *testing.T, db *gorm.DB, sku string, stock int, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:   sku,
		Name:  "Product " + sku,
		Price: decimal.RequireFromString(price),
		Cost:  decimal.RequireFromString(price).Div(decimal.NewFromInt(2)).Round(2),
		Stock: stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Supplier inserts a supplier named name.
func Supplier(t *testing.T, db *gorm.DB, name string) *model.Supplier {
	t.Helper()
	s := &model.Supplier{Name: name, Email: "sales@" + uuid.NewString()[:8] + ".example.com"}
	require.NoError(t, db.Create(s).Error)
	return s
}

// Stock re-reads a product's stock level.
func Stock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Stock
}
