// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}
}

// serveCommand runs the upload relay HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the upload relay HTTP service",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Serve,
	}
}

// setupCommand initializes config, directories, and the history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write an example config and initialize the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to write the example configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// remoteCommand reports rclone remote status
func remoteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Drive remote operations",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Report whether the drive remote is configured",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RemoteStatus,
			},
		},
	}
}

// authCommand opens the Google login flow in a browser
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Open the Google login flow against a running service",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.AuthLogin,
	}
}
