// Package ui implements the line-based terminal prompts used during a sync run.
//
// A [Prompter] reads answers from any [io.Reader] and writes questions to any [io.Writer], so the whole interactive
// flow can be driven from tests. It covers three kinds of input:
//  1. [Prompter.RedirectURL] : shows the authorization URL and collects the pasted redirect URL
//  2. [Prompter.Confirm] : yes/no questions (re-authentication, sync direction)
//  3. [Prompter.Ask] : a single free-form line
//
// Output is styled with the [lipgloss] [Palette]; lipgloss drops colors automatically when the writer is not a terminal.
package ui
