package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/driverelay/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin opens the login endpoint of a running service in the system
// browser. The service itself handles the OAuth exchange and provisions
// the drive remote on callback.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	url := fmt.Sprintf("http://%s:%d/api/auth/login", config.Server.Host, config.Server.Port)
	if config.Server.Host == "0.0.0.0" || config.Server.Host == "" {
		url = fmt.Sprintf("http://localhost:%d/api/auth/login", config.Server.Port)
	}

	if err := shared.OpenBrowser(url); err != nil {
		r.logger.Warnf("could not open browser: %v", err)
		return r.writePlain(fmt.Sprintf("Open %s to log in\n", url))
	}

	return r.writePlain(fmt.Sprintf("Opened %s\n", url))
}
