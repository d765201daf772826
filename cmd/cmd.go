// submodule cmd contains the spotsync command definition
package main

import (
	"github.com/desertthunder/spotsync/internal/services"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// command returns the root command. It takes no arguments and runs the whole sync flow.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "spotsync",
		Usage:   "Copy liked tracks, albums, followed artists and playlists from one Spotify account to another",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (.json or .toml)",
				Value:   "config.json",
			},
			&cli.BoolFlag{
				Name:  "listen",
				Usage: "Receive the authorization redirect on REDIRECT_URI instead of pasting it",
			},
			&cli.BoolFlag{
				Name:  "skip-reauth",
				Usage: "Reuse cached tokens without asking",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be copied without writing to the target account",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a sync report to this file (.md, .csv or .txt)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Maximum write requests per second (0 disables pacing)",
				Value: services.DefaultWriteRate,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: r.Sync,
	}
}
