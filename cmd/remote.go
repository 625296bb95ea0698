package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/driverelay/internal/rclone"
	"github.com/desertthunder/driverelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// RemoteStatus reports whether the configured drive remote exists in the
// rclone config file.
func (r *Runner) RemoteStatus(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	client := rclone.NewClient(config.Rclone, shared.WithLogger(r.logger, "component", "rclone"))

	configured := client.RemoteExists(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"remote":     config.Rclone.RemoteName,
			"configured": configured,
		}, true)
	}

	if configured {
		return r.writePlain(fmt.Sprintf("✓ Remote %q is configured\n", config.Rclone.RemoteName))
	}
	return r.writePlain(fmt.Sprintf("✗ Remote %q is not configured, run the auth flow first\n", config.Rclone.RemoteName))
}
