package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/desertthunder/spotsync/internal/shared"
	"golang.org/x/oauth2"
)

// LoadToken reads a cached token from path.
//
// Returns [shared.ErrNoCachedToken] when the file is missing, unreadable as a token, or holds an expired token that cannot be refreshed.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, shared.ErrNoCachedToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache %s: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: %s is not a token: %v", shared.ErrNoCachedToken, path, err)
	}

	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s holds an expired token without refresh token", shared.ErrNoCachedToken, path)
	}
	return &token, nil
}

// SaveToken writes token to path, readable only by the current user.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token cache directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache %s: %w", path, err)
	}
	return nil
}

// RemoveToken deletes the token cache at path. A missing file is not an error.
func RemoveToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token cache %s: %w", path, err)
	}
	return nil
}

// HasCachedToken reports whether a token cache file exists at path.
func HasCachedToken(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every new access token to callback,
// so refreshed tokens reach the cache file.
type refreshableTokenSource struct {
	mu       sync.Mutex
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if token.AccessToken != r.last {
		r.last = token.AccessToken
		if r.callback != nil {
			r.callback(token)
		}
	}
	return token, nil
}
