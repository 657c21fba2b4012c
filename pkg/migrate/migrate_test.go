package migrate

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

func TestEmbeddedSourceListsMigrations(t *testing.T) {
	fsys, err := Source("", true)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	matches, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected embedded migrations at the source root")
	}
	if _, err := Source(" ", false); err == nil {
		t.Fatal("expected empty dir to be rejected")
	}
}

func TestRunRejectsBadInputBeforeTouchingDB(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	fsys, _ := Source("", true)
	ctx := context.Background()

	cases := []struct {
		cmd, target, want string
	}{
		{"sideways", "", "unknown migration command"},
		{"to", "", "target version is required"},
		{"to", "yesterday", "invalid version"},
		{"to", "-4", "invalid version"},
	}
	for _, tc := range cases {
		err := Run(ctx, logger.Nop(), sqlDB, fsys, tc.cmd, tc.target)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s %q: expected %q, got %v", tc.cmd, tc.target, tc.want, err)
		}
	}

	if err := Run(ctx, logger.Nop(), nil, fsys, "up", ""); err == nil {
		t.Fatal("expected nil db to be rejected")
	}
}
