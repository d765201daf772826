package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsync/internal/services"
	"github.com/desertthunder/spotsync/internal/shared"
	"github.com/desertthunder/spotsync/internal/tasks"
	"github.com/desertthunder/spotsync/internal/ui"
)

// AccountsFactory builds the account provider for a loaded config.
type AccountsFactory func(config *shared.Config, provider services.CodeProvider, writeRate float64) tasks.Accounts

// Runner holds all dependencies for the sync command. It also answers the engine's prompts.
type Runner struct {
	env      *shared.Environment
	logger   *log.Logger
	output   io.Writer
	prompter *ui.Prompter
	accounts AccountsFactory
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Env      *shared.Environment
	Logger   *log.Logger
	Input    io.Reader
	Output   io.Writer
	Accounts AccountsFactory // defaults to a [services.Authenticator]
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Env == nil {
		opts.Env = &shared.Environment{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Accounts == nil {
		opts.Accounts = authenticatorFactory(opts.Logger)
	}

	return &Runner{
		env:      opts.Env,
		logger:   opts.Logger,
		output:   opts.Output,
		prompter: ui.NewPrompter(opts.Input, opts.Output),
		accounts: opts.Accounts,
	}
}

func authenticatorFactory(logger *log.Logger) AccountsFactory {
	return func(config *shared.Config, provider services.CodeProvider, writeRate float64) tasks.Accounts {
		return services.NewAuthenticator(services.AuthenticatorOpts{
			Config:    config,
			Provider:  provider,
			Logger:    logger,
			WriteRate: writeRate,
		})
	}
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("\n=== %s ===\n", title)
}
