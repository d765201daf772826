package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/spotsync/internal/shared"
)

func TestPrompter(t *testing.T) {
	ctx := context.Background()

	t.Run("Ask", func(t *testing.T) {
		t.Run("returns trimmed answer", func(t *testing.T) {
			out := &bytes.Buffer{}
			p := NewPrompter(strings.NewReader("  hello world  \n"), out)

			got, err := p.Ask(ctx, "Say something: ")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "hello world" {
				t.Errorf("expected 'hello world', got %q", got)
			}
			if !strings.Contains(out.String(), "Say something: ") {
				t.Errorf("expected question in output, got %q", out.String())
			}
		})

		t.Run("accepts final line without newline", func(t *testing.T) {
			p := NewPrompter(strings.NewReader("last"), nil)

			got, err := p.Ask(ctx, "? ")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "last" {
				t.Errorf("expected 'last', got %q", got)
			}
		})

		t.Run("end of input", func(t *testing.T) {
			p := NewPrompter(strings.NewReader(""), nil)

			if _, err := p.Ask(ctx, "? "); !errors.Is(err, io.EOF) {
				t.Errorf("expected io.EOF, got %v", err)
			}
		})

		t.Run("cancelled context", func(t *testing.T) {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			p := NewPrompter(strings.NewReader("ignored\n"), nil)

			if _, err := p.Ask(cancelled, "? "); !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("reads successive lines", func(t *testing.T) {
			p := NewPrompter(strings.NewReader("one\ntwo\n"), nil)

			first, _ := p.Ask(ctx, "")
			second, _ := p.Ask(ctx, "")
			if first != "one" || second != "two" {
				t.Errorf("expected one/two, got %q/%q", first, second)
			}
		})
	})

	t.Run("Confirm", func(t *testing.T) {
		for _, tc := range []struct {
			input string
			want  bool
		}{
			{"yes\n", true},
			{"Y\n", true},
			{"  YES  \n", true},
			{"no\n", false},
			{"yep\n", false},
			{"\n", false},
			{"", false},
		} {
			out := &bytes.Buffer{}
			p := NewPrompter(strings.NewReader(tc.input), out)

			got, err := p.Confirm(ctx, "Proceed with synchronization?")
			if err != nil {
				t.Fatalf("%q: expected no error, got %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("%q: expected %v, got %v", tc.input, tc.want, got)
			}
			if !strings.Contains(out.String(), "Proceed with synchronization? (yes/no): ") {
				t.Errorf("expected yes/no suffix in output, got %q", out.String())
			}
		}
	})

	t.Run("RedirectURL", func(t *testing.T) {
		t.Run("shows instructions and returns pasted URL", func(t *testing.T) {
			out := &bytes.Buffer{}
			p := NewPrompter(strings.NewReader("http://127.0.0.1:8888/callback?code=abc\n"), out)

			got, err := p.RedirectURL(ctx, "source", "https://accounts.example/authorize?x=1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "http://127.0.0.1:8888/callback?code=abc" {
				t.Errorf("unexpected URL %q", got)
			}

			text := out.String()
			for _, want := range []string{
				"AUTHENTICATION - SOURCE ACCOUNT",
				"https://accounts.example/authorize?x=1",
				"'cancel' to abort",
			} {
				if !strings.Contains(text, want) {
					t.Errorf("expected output to contain %q, got %q", want, text)
				}
			}
		})

		t.Run("skips blank lines", func(t *testing.T) {
			p := NewPrompter(strings.NewReader("\n\ncancel\n"), nil)

			got, err := p.RedirectURL(ctx, "target", "https://auth")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "cancel" {
				t.Errorf("expected 'cancel' to be passed through, got %q", got)
			}
		})

		t.Run("end of input cancels", func(t *testing.T) {
			p := NewPrompter(strings.NewReader(""), nil)

			_, err := p.RedirectURL(ctx, "target", "https://auth")
			if !errors.Is(err, shared.ErrAuthCancelled) {
				t.Errorf("expected ErrAuthCancelled, got %v", err)
			}
		})
	})

	t.Run("Messages", func(t *testing.T) {
		out := &bytes.Buffer{}
		p := NewPrompter(nil, out)

		p.Header("SYNCHRONIZATION DIRECTION")
		p.Success("Logged in as %s", "Alice")
		p.Warning("Could not read %s account info", "source")
		p.Failure("Synchronization cancelled.")

		text := out.String()
		for _, want := range []string{
			"SYNCHRONIZATION DIRECTION",
			"Logged in as Alice",
			"Could not read source account info",
			"Synchronization cancelled.",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("expected output to contain %q, got %q", want, text)
			}
		}
	})
}

func TestIsYes(t *testing.T) {
	for input, want := range map[string]bool{
		"yes": true, "y": true, "Yes": true, " y ": true,
		"no": false, "n": false, "": false, "yess": false,
	} {
		if got := IsYes(input); got != want {
			t.Errorf("IsYes(%q) = %v, want %v", input, got, want)
		}
	}
}
