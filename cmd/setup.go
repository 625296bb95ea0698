package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/driverelay/internal/history"
	"github.com/desertthunder/driverelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example configuration and initializes the uploads
// directory and history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("config not written: %v", err)
	} else {
		r.writePlain(fmt.Sprintf("✓ Wrote %s\n", configPath))
	}

	config := r.config
	if loaded, err := shared.LoadConfig(configPath); err == nil {
		loaded.ApplyEnv()
		config = loaded
	}

	if err := os.MkdirAll(config.Uploads.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads dir: %w", err)
	}
	if dir := filepath.Dir(config.Rclone.ConfigPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create rclone config dir: %w", err)
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := history.NewStore(db).Migrate(ctx); err != nil {
		return err
	}

	r.logger.Info("setup complete", "database", config.Database.Path, "uploads", config.Uploads.Dir)
	return r.writePlain("✓ Setup complete\n")
}
