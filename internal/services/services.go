// package services defines the library interfaces used by the sync engine and implements them for the Spotify Web API
package services

import (
	"context"
)

// Maximum page sizes accepted by the Web API for library reads.
const (
	PageSize             = 50
	PlaylistItemPageSize = 100
)

// Maximum identifiers accepted per write call.
const (
	SaveBatchSize        = 50
	FollowBatchSize      = 50
	PlaylistAddBatchSize = 100
)

// DefaultWriteRate is the default pace of write calls per second.
const DefaultWriteRate = 10.0

// Reader fetches complete, de-paginated collections for one account.
type Reader interface {
	// SavedTracks returns the IDs of every liked track.
	SavedTracks(ctx context.Context) ([]string, error)

	// SavedAlbums returns the IDs of every saved album.
	SavedAlbums(ctx context.Context) ([]string, error)

	// FollowedArtists returns the IDs of every followed artist.
	FollowedArtists(ctx context.Context) ([]string, error)

	// Playlists returns every playlist in the account's library, in listing order.
	Playlists(ctx context.Context) ([]Playlist, error)

	// PlaylistTracks returns the track IDs of a playlist in order, skipping unavailable entries.
	PlaylistTracks(ctx context.Context, playlistID string) ([]string, error)
}

// Writer applies additions to one account in batches sized for each endpoint.
type Writer interface {
	SaveTracks(ctx context.Context, ids []string) error
	SaveAlbums(ctx context.Context, ids []string) error
	FollowArtists(ctx context.Context, ids []string) error

	// CreatePlaylist creates an empty playlist for the current user, adds trackIDs and returns the new playlist ID.
	CreatePlaylist(ctx context.Context, name, description string, public bool, trackIDs []string) (string, error)
}

// Library is an authorized handle to one account.
type Library interface {
	Reader
	Writer

	// Account looks up the profile of the authorized user. Results are not cached.
	Account(ctx context.Context) (*Account, error)

	// Label names the role of the account in this run (source or target).
	Label() string
}

// Account identifies the user behind a session.
type Account struct {
	ID          string
	DisplayName string
	Email       string
}

// Playlist describes a playlist without its tracks.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Public      bool
	OwnerID     string
}

// Batch splits items into consecutive chunks of at most size elements, preserving order.
func Batch[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
