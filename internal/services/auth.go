package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsync/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// CancelSentinel is the input an operator enters instead of a redirect URL to abort authentication.
const CancelSentinel = "cancel"

// Scopes covers reading and modifying saved tracks, albums, follows and playlists, plus the profile lookup.
var Scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserFollowRead,
	spotifyauth.ScopeUserFollowModify,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
}

// CodeProvider obtains the redirect URL the authorization server sent the operator to after approving access.
//
// Implementations may prompt a human to paste it, listen for the callback locally, or return a canned value in tests.
// Returning [CancelSentinel] (or an error wrapping [shared.ErrAuthCancelled]) aborts authentication.
type CodeProvider interface {
	RedirectURL(ctx context.Context, label, authURL string) (string, error)
}

// Authenticator produces authorized sessions from token caches or the authorization code flow.
type Authenticator struct {
	config    *oauth2.Config
	provider  CodeProvider
	logger    *log.Logger
	limiter   *rate.Limiter
	apiURL    string
	nextState func() string
}

// AuthenticatorOpts configures an [Authenticator].
type AuthenticatorOpts struct {
	Config    *shared.Config
	Provider  CodeProvider
	Logger    *log.Logger
	WriteRate float64         // write calls per second; 0 disables pacing
	Endpoint  oauth2.Endpoint // defaults to the Spotify accounts service
	APIURL    string          // defaults to the Spotify Web API; must end with "/"
	State     func() string   // defaults to [shared.GenerateState]
}

// NewAuthenticator creates an [Authenticator] for the configured client credentials.
func NewAuthenticator(opts AuthenticatorOpts) *Authenticator {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Endpoint.AuthURL == "" {
		opts.Endpoint = oauth2.Endpoint{
			AuthURL:   spotifyauth.AuthURL,
			TokenURL:  spotifyauth.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		}
	}
	if opts.State == nil {
		opts.State = shared.GenerateState
	}

	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     opts.Config.ClientID,
			ClientSecret: opts.Config.ClientSecret,
			RedirectURL:  opts.Config.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     opts.Endpoint,
		},
		provider:  opts.Provider,
		logger:    opts.Logger,
		limiter:   NewWriteLimiter(opts.WriteRate),
		apiURL:    opts.APIURL,
		nextState: opts.State,
	}
}

// AuthURL returns the authorization URL for state.
//
// The consent dialog is always shown so the operator can pick which account to log in with.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Authenticate returns a session for the account cached at cachePath.
//
// When force is set the cache is deleted first. Without a usable cache the authorization code flow runs through the
// [CodeProvider] and the resulting token is written to cachePath. Cancellation returns [shared.ErrAuthCancelled].
func (a *Authenticator) Authenticate(ctx context.Context, cachePath, label string, force bool) (Library, error) {
	logger := shared.WithLogger(a.logger, "account", label)

	if force && HasCachedToken(cachePath) {
		if err := RemoveToken(cachePath); err != nil {
			return nil, err
		}
		logger.Info("cleared cached token", "path", cachePath)
	}

	token, err := LoadToken(cachePath)
	if err == nil {
		logger.Info("using cached token", "path", cachePath)
		return a.session(ctx, cachePath, label, token), nil
	}
	if !errors.Is(err, shared.ErrNoCachedToken) {
		return nil, err
	}

	if a.provider == nil {
		return nil, fmt.Errorf("%w: no authorization code provider for %s account", shared.ErrAuthFailed, label)
	}

	state := a.nextState()
	raw, err := a.provider.RedirectURL(ctx, label, a.AuthURL(state))
	if err != nil {
		return nil, err
	}
	if IsCancel(raw) {
		return nil, fmt.Errorf("%w: %s account", shared.ErrAuthCancelled, label)
	}

	code, err := ParseRedirect(raw, state)
	if err != nil {
		return nil, err
	}

	token, err = a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange for %s account: %v", shared.ErrAuthFailed, label, err)
	}

	if err := SaveToken(cachePath, token); err != nil {
		return nil, err
	}

	logger.Info("authentication successful", "path", cachePath)
	return a.session(ctx, cachePath, label, token), nil
}

// Cached returns a session built from the token cache alone, never prompting.
//
// Returns [shared.ErrNoCachedToken] when no usable token is cached.
func (a *Authenticator) Cached(ctx context.Context, cachePath, label string) (Library, error) {
	token, err := LoadToken(cachePath)
	if err != nil {
		return nil, err
	}
	return a.session(ctx, cachePath, label, token), nil
}

func (a *Authenticator) session(ctx context.Context, cachePath, label string, token *oauth2.Token) *Session {
	logger := shared.WithLogger(a.logger, "account", label)

	source := &refreshableTokenSource{
		source: a.config.TokenSource(ctx, token),
		last:   token.AccessToken,
		callback: func(t *oauth2.Token) {
			if err := SaveToken(cachePath, t); err != nil {
				logger.Warn("failed to persist refreshed token", "error", err)
				return
			}
			logger.Debug("persisted refreshed token", "path", cachePath)
		},
	}

	var opts []spotify.ClientOption
	if a.apiURL != "" {
		opts = append(opts, spotify.WithBaseURL(a.apiURL))
	}

	client := spotify.New(oauth2.NewClient(ctx, source), opts...)
	return NewSession(client, SessionOpts{Label: label, Limiter: a.limiter, Logger: a.logger})
}

// IsCancel reports whether input is the cancel sentinel.
func IsCancel(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), CancelSentinel)
}

// ParseRedirect extracts the authorization code from the URL the operator was redirected to.
//
// An error parameter, a missing code, or a state that differs from wantState is rejected. A redirect without a state
// parameter is accepted. Input without any URL syntax is taken as the code itself, and a URL pasted without its
// scheme is read as http.
func ParseRedirect(raw, wantState string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.ContainsAny(raw, "?/:") {
		return raw, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadRedirect, err)
	}

	q := u.Query()
	if reason := q.Get("error"); reason != "" {
		return "", fmt.Errorf("%w: authorization denied: %s", shared.ErrAuthFailed, reason)
	}
	if state := q.Get("state"); state != "" && wantState != "" && state != wantState {
		return "", shared.ErrStateMismatch
	}

	code := q.Get("code")
	if code == "" {
		return "", shared.ErrMissingCode
	}
	return code, nil
}

// ErrBadRedirect wraps [shared.ErrAuthFailed] for input that does not parse as a URL.
var ErrBadRedirect = fmt.Errorf("%w: redirect URL is malformed", shared.ErrAuthFailed)
