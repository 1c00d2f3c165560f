// Package testkit holds shared fixtures for package tests: an in-memory
// database and helpers for driving HTTP handlers.
package testkit

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/pkg/database"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database (pure Go, no cgo) with
// foreign keys enabled and auto-migrates models into it. The database is
// closed when the test ends.
func NewDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testkit%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
	db, err := database.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("testkit: open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testkit: sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("testkit: migrate: %v", err)
		}
	}
	return db
}
