package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
	"github.com/angelmondragon/dealerdesk-backend/pkg/db"
	"github.com/angelmondragon/dealerdesk-backend/pkg/logger"
)

// MaybeRunDev brings a local database up to date on boot. It only acts in the
// dev environment with DEALER_AUTO_MIGRATE=true; staging and prod migrate
// through cmd/migrate before a deploy.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.DB.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	fsys, err := Source("", true)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded"})
	if err := Run(ctx, logg, sqlDB, fsys, "up", ""); err != nil {
		return fmt.Errorf("dev auto-migrate: %w", err)
	}

	// a migration that forgot a table shows up here instead of as a 500 later
	missing, err := client.MissingTables(ctx)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema incomplete after migrate: missing %v", missing)
	}
	return nil
}
