package main

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsync/internal/formatter"
	"github.com/desertthunder/spotsync/internal/server"
	"github.com/desertthunder/spotsync/internal/services"
	"github.com/desertthunder/spotsync/internal/shared"
	"github.com/desertthunder/spotsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

const dashboardURL = "https://developer.spotify.com/dashboard"

// Sync loads the config, authenticates both accounts and copies the source library into the target.
//
// Missing or unedited config, cancelled authentication and a declined direction prompt print a message and return
// nil. Other errors are returned after printing whatever was completed.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	configPath := cmd.String("config")
	config, err := shared.LoadConfig(configPath, r.env)
	switch {
	case errors.Is(err, shared.ErrConfigCreated):
		r.prompter.Warning("Created %s", configPath)
		r.prompter.Println("📝 Please edit it and add your CLIENT_ID and CLIENT_SECRET")
		r.prompter.Println("🔗 Get them here: %s", dashboardURL)
		return nil
	case errors.Is(err, shared.ErrPlaceholderConfig):
		r.prompter.Warning("Error: CLIENT_ID and CLIENT_SECRET are not configured in %s", configPath)
		r.prompter.Println("📝 Please edit %s and add your credentials", configPath)
		return nil
	case err != nil:
		return err
	}

	var provider services.CodeProvider = r.prompter
	if cmd.Bool("listen") {
		provider = server.NewCallbackProvider(server.CallbackProviderOpts{
			RedirectURI: config.RedirectURI,
			Logger:      r.logger,
			Output:      r.output,
		})
	}

	engine := tasks.NewEngine(r.accounts(config, provider, cmd.Float("rate")), r, r.logger)
	opts := tasks.Options{
		SourceCache: config.SourceCache,
		TargetCache: config.TargetCache,
		OfferReauth: !cmd.Bool("skip-reauth"),
		DryRun:      cmd.Bool("dry-run"),
	}

	r.writePlain("=== SPOTIFY ACCOUNT SYNCHRONIZATION ===\n")

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.printProgress(update)
		}
	}()

	result, err := engine.Run(ctx, opts, progress)
	close(progress)
	<-done

	switch {
	case errors.Is(err, shared.ErrAuthCancelled):
		r.prompter.Failure("Authentication cancelled.")
		return nil
	case errors.Is(err, shared.ErrSyncDeclined):
		r.prompter.Failure("Synchronization cancelled.")
		return nil
	}

	if engine.State() == tasks.Done || engine.State() == tasks.Failed {
		r.writePlainln("")
		formatter.WriteSummary(r.output, result)

		if path := cmd.String("report"); path != "" {
			if rerr := formatter.WriteReport(path, result); rerr != nil {
				r.logger.Error("failed to write report", "path", path, "error", rerr)
			} else {
				r.prompter.Success("Report written to %s", path)
			}
		}
	}
	return err
}

func (r *Runner) printProgress(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.StartCategory:
		r.writePlainln("%s", u.Message)
	case tasks.CopyPlaylist, tasks.SkipPlaylist:
		r.writePlain("  %s\n", u.Message)
	case tasks.Complete:
		r.writePlainHeader(u.Message)
	default:
		r.writePlain("%s\n", u.Message)
	}
}
