// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/spotsync/internal/services"
	"github.com/desertthunder/spotsync/internal/shared"
)

// MockPlaylist is a playlist held by [MockLibrary].
type MockPlaylist struct {
	services.Playlist
	Tracks []string
}

// MockLibrary is an in-memory [services.Library]. Writes mutate its state, so a second sync sees the first one's
// effects.
type MockLibrary struct {
	mu sync.Mutex

	Name      string
	Profile   services.Account
	Tracks    []string
	Albums    []string
	Artists   []string
	Lists     []*MockPlaylist
	Errs      map[string]error // method name -> error returned by that method
	Calls     []string         // method names in call order
	WriteIDs  map[string][][]string
	createSeq int
}

// NewMockLibrary creates an empty library for the given account ID.
func NewMockLibrary(label, id string) *MockLibrary {
	return &MockLibrary{
		Name:     label,
		Profile:  services.Account{ID: id, DisplayName: "User " + id, Email: id + "@example.com"},
		Errs:     map[string]error{},
		WriteIDs: map[string][][]string{},
	}
}

// AddPlaylist appends a playlist to the library and returns it.
func (m *MockLibrary) AddPlaylist(id, name string, public bool, tracks ...string) *MockPlaylist {
	p := &MockPlaylist{
		Playlist: services.Playlist{ID: id, Name: name, Description: name + " description", Public: public, OwnerID: m.Profile.ID},
		Tracks:   tracks,
	}
	m.Lists = append(m.Lists, p)
	return p
}

// Playlist finds a playlist by name.
func (m *MockLibrary) Playlist(name string) *MockPlaylist {
	for _, p := range m.Lists {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Count returns how many times method was called.
func (m *MockLibrary) Count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// Writes counts calls to write methods.
func (m *MockLibrary) Writes() int {
	return m.Count("SaveTracks") + m.Count("SaveAlbums") + m.Count("FollowArtists") + m.Count("CreatePlaylist")
}

func (m *MockLibrary) call(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, method)
	return m.Errs[method]
}

func (m *MockLibrary) Label() string { return m.Name }

func (m *MockLibrary) Account(ctx context.Context) (*services.Account, error) {
	if err := m.call("Account"); err != nil {
		return nil, err
	}
	account := m.Profile
	return &account, nil
}

func (m *MockLibrary) SavedTracks(ctx context.Context) ([]string, error) {
	if err := m.call("SavedTracks"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Tracks), nil
}

func (m *MockLibrary) SavedAlbums(ctx context.Context) ([]string, error) {
	if err := m.call("SavedAlbums"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Albums), nil
}

func (m *MockLibrary) FollowedArtists(ctx context.Context) ([]string, error) {
	if err := m.call("FollowedArtists"); err != nil {
		return nil, err
	}
	return slices.Clone(m.Artists), nil
}

func (m *MockLibrary) Playlists(ctx context.Context) ([]services.Playlist, error) {
	if err := m.call("Playlists"); err != nil {
		return nil, err
	}
	out := make([]services.Playlist, len(m.Lists))
	for i, p := range m.Lists {
		out[i] = p.Playlist
	}
	return out, nil
}

func (m *MockLibrary) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	if err := m.call("PlaylistTracks"); err != nil {
		return nil, err
	}
	for _, p := range m.Lists {
		if p.ID == playlistID {
			return slices.Clone(p.Tracks), nil
		}
	}
	return nil, fmt.Errorf("%w: playlist %s not found", shared.ErrAPIRequest, playlistID)
}

func (m *MockLibrary) SaveTracks(ctx context.Context, ids []string) error {
	return m.write("SaveTracks", &m.Tracks, ids)
}

func (m *MockLibrary) SaveAlbums(ctx context.Context, ids []string) error {
	return m.write("SaveAlbums", &m.Albums, ids)
}

func (m *MockLibrary) FollowArtists(ctx context.Context, ids []string) error {
	return m.write("FollowArtists", &m.Artists, ids)
}

func (m *MockLibrary) CreatePlaylist(ctx context.Context, name, description string, public bool, trackIDs []string) (string, error) {
	if err := m.call("CreatePlaylist"); err != nil {
		return "", err
	}
	m.createSeq++
	id := fmt.Sprintf("%s-created-%d", m.Name, m.createSeq)
	created := &MockPlaylist{
		Playlist: services.Playlist{ID: id, Name: name, Description: description, Public: public, OwnerID: m.Profile.ID},
	}
	m.Lists = append(m.Lists, created)

	// The playlist exists even when adding its items fails, as with the real API.
	if err := m.call("AddTracksToPlaylist"); err != nil {
		return id, err
	}
	created.Tracks = slices.Clone(trackIDs)
	return id, nil
}

func (m *MockLibrary) write(method string, dst *[]string, ids []string) error {
	if err := m.call(method); err != nil {
		return err
	}
	m.WriteIDs[method] = append(m.WriteIDs[method], slices.Clone(ids))
	*dst = append(*dst, ids...)
	return nil
}

var _ services.Library = (*MockLibrary)(nil)

// MockAccounts hands out [MockLibrary] values by cache path, standing in for [services.Authenticator].
type MockAccounts struct {
	Libraries map[string]*MockLibrary // cache path -> library
	Cancel    map[string]bool         // cache path -> operator cancels authentication
	AuthErr   map[string]error
	CachedErr map[string]error // cache path -> error returned by Cached
	Forced    map[string]bool // cache path -> force flag of the last Authenticate call
	AuthCalls []string        // cache paths in Authenticate call order
}

// NewMockAccounts creates accounts with one library per cache path. Each library counts as cached.
func NewMockAccounts(libraries map[string]*MockLibrary) *MockAccounts {
	return &MockAccounts{
		Libraries: libraries,
		Cancel:    map[string]bool{},
		AuthErr:   map[string]error{},
		CachedErr: map[string]error{},
		Forced:    map[string]bool{},
	}
}

func (m *MockAccounts) Authenticate(ctx context.Context, cachePath, label string, force bool) (services.Library, error) {
	m.AuthCalls = append(m.AuthCalls, cachePath)
	m.Forced[cachePath] = force

	if m.Cancel[cachePath] {
		return nil, fmt.Errorf("%w: %s account", shared.ErrAuthCancelled, label)
	}
	if err := m.AuthErr[cachePath]; err != nil {
		return nil, err
	}
	lib, ok := m.Libraries[cachePath]
	if !ok {
		return nil, fmt.Errorf("%w: no library for %s", shared.ErrAuthFailed, cachePath)
	}
	return lib, nil
}

func (m *MockAccounts) Cached(ctx context.Context, cachePath, label string) (services.Library, error) {
	if err := m.CachedErr[cachePath]; err != nil {
		return nil, err
	}
	lib, ok := m.Libraries[cachePath]
	if !ok {
		return nil, shared.ErrNoCachedToken
	}
	return lib, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
