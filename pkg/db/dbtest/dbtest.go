// Package dbtest opens throwaway sqlite databases carrying the full schema.
package dbtest

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/db/models"
)

// AllModels is every table the API touches.
var AllModels = []any{
	&models.InventoryItem{},
	&models.ShowroomItem{},
	&models.Investor{},
	&models.Buyer{},
	&models.Contract{},
	&models.Installment{},
	&models.TitleTransfer{},
	&models.Setting{},
	&models.User{},
	&models.OutboxEvent{},
	&models.OutboxDLQ{},
}

// Open returns an in-memory database private to t with every table migrated.
// A single connection is used so concurrent callers serialize instead of
// tripping over sqlite table locks.
func Open(t testing.TB, tables ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(tables) == 0 {
		tables = AllModels
	}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}
