package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotsync/internal/formatter"
	"github.com/desertthunder/spotsync/internal/shared"
	"github.com/desertthunder/spotsync/internal/tasks"
)

// Confirm asks the operator the engine's yes/no questions on the terminal.
func (r *Runner) Confirm(ctx context.Context, p tasks.Prompt) (bool, error) {
	switch p.Kind {
	case tasks.ReauthPrompt:
		if p.LookupErr != nil {
			r.prompter.Warning("Could not read %s account info: %v", p.Label, p.LookupErr)
		} else if p.Account != nil {
			r.prompter.Println("\n%s account currently authenticated as:", strings.ToUpper(p.Label))
			r.prompter.Println("  Name: %s", orUnknown(p.Account.DisplayName))
			r.prompter.Println("  User ID: %s", orUnknown(p.Account.ID))
			r.prompter.Println("  Email: %s", orUnknown(p.Account.Email))
		}
		return r.prompter.Confirm(ctx, fmt.Sprintf("\nDo you want to re-authenticate the %s account?", p.Label))

	case tasks.DirectionPrompt:
		r.prompter.Success("Source logged in as: %s", formatter.AccountLine(p.Source))
		r.prompter.Success("Target logged in as: %s", formatter.AccountLine(p.Target))
		r.prompter.Header("SYNCHRONIZATION DIRECTION:")
		r.prompter.Println("  FROM: %s", formatter.AccountDetails(p.Source))
		r.prompter.Println("  TO:   %s", formatter.AccountDetails(p.Target))
		if p.Source != nil && p.Target != nil && p.Source.ID == p.Target.ID {
			r.prompter.Warning("Source and target are the same account (%s)", p.Source.ID)
		}
		return r.prompter.Confirm(ctx, "\nProceed with synchronization?")
	}

	return false, fmt.Errorf("%w: unknown prompt kind %d", shared.ErrInvalidArgument, p.Kind)
}

func orUnknown(s string) string {
	if s == "" {
		return formatter.Unknown
	}
	return s
}

var _ tasks.Confirmer = (*Runner)(nil)
