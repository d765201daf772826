package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/spotsync/internal/shared"
)

const rule = "══════════════════════════════════════════════════════════════════════"

// Prompter asks questions on out and reads one line per answer from in.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	palette *Palette
}

// NewPrompter creates a [Prompter]. Nil readers and writers behave as empty input and discarded output.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &Prompter{in: bufio.NewReader(in), out: out, palette: Styles()}
}

// Ask writes question and returns the trimmed answer.
//
// A final line without a trailing newline is still returned; reaching end of input with nothing read returns [io.EOF].
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return p.readLine(ctx)
}

// Confirm asks a yes/no question. Only "yes" and "y" (any case) confirm; end of input counts as no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (yes/no): ")
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// RedirectURL shows the authorization URL for the labelled account and reads the URL the browser was redirected to.
//
// Blank lines are ignored. End of input is treated as cancellation.
func (p *Prompter) RedirectURL(ctx context.Context, label, authURL string) (string, error) {
	p.Header("AUTHENTICATION - " + strings.ToUpper(label) + " ACCOUNT")
	p.Println("1. Copy this link and open it in your browser:")
	p.Println("")
	p.Println("%s", authURL)
	p.Println("")
	p.Println("2. Log in to the %s Spotify account", label)
	p.Println("3. After authorization, you'll be redirected to the configured redirect URI")
	p.Println("4. Copy the FULL URL from the browser's address bar")
	p.Println("   %s", p.palette.Help("(it will look like: http://127.0.0.1:8888/callback?code=...)"))
	p.Println("%s", rule)
	p.Println("")

	for {
		answer, err := p.Ask(ctx, "Paste the copied URL here (or 'cancel' to abort): ")
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: no redirect URL entered for %s account", shared.ErrAuthCancelled, label)
		}
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// Header writes title between two horizontal rules.
func (p *Prompter) Header(title string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", rule, p.palette.Title(title), rule)
}

func (p *Prompter) Println(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Prompter) Success(format string, args ...any) {
	fmt.Fprintln(p.out, p.palette.OK("✓ "+fmt.Sprintf(format, args...)))
}

func (p *Prompter) Warning(format string, args ...any) {
	fmt.Fprintln(p.out, p.palette.Warn("⚠️  "+fmt.Sprintf(format, args...)))
}

func (p *Prompter) Failure(format string, args ...any) {
	fmt.Fprintln(p.out, p.palette.Err("❌ "+fmt.Sprintf(format, args...)))
}

// readLine reads one line, giving up when ctx is done.
//
// The pending read is abandoned on cancellation; the prompter should not be reused afterwards.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && (!errors.Is(r.err, io.EOF) || r.line == "") {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// IsYes reports whether answer is an affirmative "yes" or "y".
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true
	}
	return false
}
