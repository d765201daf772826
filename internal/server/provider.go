package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsync/internal/shared"
)

// DefaultCallbackTimeout bounds how long [CallbackProvider] waits for the browser redirect.
const DefaultCallbackTimeout = 2 * time.Minute

// CallbackProvider obtains the authorization redirect by listening on the redirect URI instead of asking the operator
// to paste it.
type CallbackProvider struct {
	redirectURI string
	logger      *log.Logger
	out         io.Writer
	open        func(string) error
	timeout     time.Duration
}

// CallbackProviderOpts configures a [CallbackProvider].
type CallbackProviderOpts struct {
	RedirectURI string // must be an http URL with an explicit host:port reachable locally
	Logger      *log.Logger
	Output      io.Writer
	Open        func(string) error // defaults to [shared.OpenBrowser]
	Timeout     time.Duration      // defaults to [DefaultCallbackTimeout]
}

func NewCallbackProvider(opts CallbackProviderOpts) *CallbackProvider {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCallbackTimeout
	}

	return &CallbackProvider{
		redirectURI: opts.RedirectURI,
		logger:      opts.Logger,
		out:         opts.Output,
		open:        opts.Open,
		timeout:     opts.Timeout,
	}
}

// RedirectURL serves the redirect URI's path, opens authURL in the browser and returns the first redirect received.
//
// Returns [shared.ErrTimeout] when no redirect arrives in time and ctx's error when ctx is done first.
func (p *CallbackProvider) RedirectURL(ctx context.Context, label, authURL string) (string, error) {
	u, err := url.Parse(p.redirectURI)
	if err != nil || u.Scheme != "http" || u.Port() == "" {
		return "", fmt.Errorf("%w: REDIRECT_URI %q cannot be served locally (need http://host:port/path)", shared.ErrInvalidConfig, p.redirectURI)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", u.Host, err)
	}

	callback := NewCallbackHandler(u.Path)
	router := NewBasicRouter()
	router.Use(RequestLogger(p.logger))
	router.Handler(callback)

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		p.logger.Info("waiting for authorization callback", "account", label, "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	fmt.Fprintf(p.out, "→ Opening browser to authorize the %s account...\n", label)
	fmt.Fprintf(p.out, "  Log in with the account you want to use as %s.\n", label)
	if err := p.open(authURL); err != nil {
		p.logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(p.out, "⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}
	fmt.Fprintf(p.out, "→ Waiting for authorization (%s timeout)...\n", p.timeout)

	timeout := time.NewTimer(p.timeout)
	defer timeout.Stop()

	select {
	case redirect := <-callback.Result():
		return redirect, nil
	case err := <-serverErrors:
		return "", fmt.Errorf("callback server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization for %s account timed out after %s", shared.ErrTimeout, label, p.timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
