package migrate

import (
	"context"
	"fmt"

	"github.com/mvalderrama/tillpoint/pkg/config"
	"github.com/mvalderrama/tillpoint/pkg/db"
	"github.com/mvalderrama/tillpoint/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in
// dev mode and the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": Dir})
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Up(ctx, sqlDB); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")

	if cfg.FeatureFlags.SeedSampleData {
		seeded, err := SeedSampleProducts(ctx, client.DB())
		if err != nil {
			return fmt.Errorf("seeding sample products: %w", err)
		}
		if seeded {
			logg.Info(ctx, "sample products seeded")
		}
	}
	return nil
}
