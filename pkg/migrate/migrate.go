package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

// DefaultDir is the on-disk migrations directory relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

// Embedded ships the migrations inside every binary so deployed services can
// run them without the source tree.
//
//go:embed migrations/*.sql
var Embedded embed.FS

// Commands lists what Run understands. "to" needs a target version.
var Commands = []string{"up", "up-by-one", "down", "redo", "reset", "status", "current", "to"}

// Source picks the migration set: the compiled-in files, or dir on disk.
func Source(dir string, embedded bool) (fs.FS, error) {
	if embedded {
		return fs.Sub(Embedded, "migrations")
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("dir is required")
	}
	return os.DirFS(dir), nil
}

// Run applies command against db using goose's provider API, logging every
// migration it touches. target is only read by "to".
func Run(ctx context.Context, logg *logger.Logger, db *sql.DB, fsys fs.FS, command, target string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if !knownCommand(command) {
		return fmt.Errorf("unknown migration command %q (want one of %s)", command, strings.Join(Commands, ", "))
	}
	var version int64
	if command == "to" {
		v, err := parseVersion(target)
		if err != nil {
			return err
		}
		version = v
	}

	// provider.Close would close db, which the caller still owns
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	var results []*goose.MigrationResult
	switch command {
	case "up":
		results, err = provider.Up(ctx)
	case "up-by-one":
		results, err = single(provider.UpByOne(ctx))
	case "down":
		results, err = single(provider.Down(ctx))
	case "redo":
		results, err = single(provider.Down(ctx))
		if err == nil {
			var again []*goose.MigrationResult
			again, err = single(provider.UpByOne(ctx))
			results = append(results, again...)
		}
	case "reset":
		results, err = provider.DownTo(ctx, 0)
	case "to":
		results, err = moveTo(ctx, provider, version)
	case "status":
		return logStatus(ctx, logg, provider)
	case "current":
		current, verr := provider.GetDBVersion(ctx)
		if verr != nil {
			return fmt.Errorf("get db version: %w", verr)
		}
		logg.Info(logg.WithField(ctx, "version", current), "migrate.current")
		return nil
	}

	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migrate.applied")
	}
	if errors.Is(err, goose.ErrNoNextVersion) {
		logg.Info(ctx, "migrate.nothing_to_do")
		return nil
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func moveTo(ctx context.Context, provider *goose.Provider, target int64) ([]*goose.MigrationResult, error) {
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current == target:
		return nil, nil
	case current < target:
		return provider.UpTo(ctx, target)
	default:
		return provider.DownTo(ctx, target)
	}
}

func logStatus(ctx context.Context, logg *logger.Logger, provider *goose.Provider) error {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("goose status: %w", err)
	}
	for _, st := range statuses {
		fields := map[string]any{"version": st.Source.Version, "state": string(st.State)}
		if !st.AppliedAt.IsZero() {
			fields["applied_at"] = st.AppliedAt
		}
		logg.Info(logg.WithFields(ctx, fields), "migrate.status")
	}
	return nil
}

func single(res *goose.MigrationResult, err error) ([]*goose.MigrationResult, error) {
	if res == nil {
		return nil, err
	}
	return []*goose.MigrationResult{res}, err
}

func knownCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}

func parseVersion(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("target version is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	return v, nil
}
