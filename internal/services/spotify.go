// Spotify Web API implementation of [Library]
//
// Collections are read with [spotify.Client] paging and written in batches no larger than the API accepts.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsync/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

// Session implements [Library] for a single Spotify account.
type Session struct {
	client  *spotify.Client
	label   string
	limiter *rate.Limiter
	logger  *log.Logger
}

// SessionOpts configures a [Session].
type SessionOpts struct {
	Label   string
	Limiter *rate.Limiter // paces write calls; nil disables pacing
	Logger  *log.Logger
}

// NewSession wraps an authorized [spotify.Client].
func NewSession(client *spotify.Client, opts SessionOpts) *Session {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Session{
		client:  client,
		label:   opts.Label,
		limiter: opts.Limiter,
		logger:  shared.WithLogger(opts.Logger, "account", opts.Label),
	}
}

// NewWriteLimiter returns a limiter allowing perSecond write calls, or nil when perSecond is not positive.
func NewWriteLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Label names the account this session acts for ("source" or "target").
func (s *Session) Label() string {
	return s.label
}

// Account retrieves the current user's profile.
func (s *Session) Account(ctx context.Context) (*Account, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: current user: %v", shared.ErrAPIRequest, err)
	}

	return &Account{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, nil
}

// SavedTracks retrieves all liked tracks.
func (s *Session) SavedTracks(ctx context.Context) ([]string, error) {
	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(PageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: saved tracks: %v", shared.ErrAPIRequest, err)
	}

	var ids []string
	for {
		for _, item := range page.Tracks {
			ids = append(ids, string(item.ID))
		}

		if done, err := s.next(ctx, page, "saved tracks"); err != nil {
			return nil, err
		} else if done {
			break
		}
	}

	s.logger.Debug("read saved tracks", "count", len(ids))
	return ids, nil
}

// SavedAlbums retrieves all saved albums.
func (s *Session) SavedAlbums(ctx context.Context) ([]string, error) {
	page, err := s.client.CurrentUsersAlbums(ctx, spotify.Limit(PageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: saved albums: %v", shared.ErrAPIRequest, err)
	}

	var ids []string
	for {
		for _, item := range page.Albums {
			ids = append(ids, string(item.ID))
		}

		if done, err := s.next(ctx, page, "saved albums"); err != nil {
			return nil, err
		} else if done {
			break
		}
	}

	s.logger.Debug("read saved albums", "count", len(ids))
	return ids, nil
}

// FollowedArtists retrieves all followed artists.
//
// This endpoint pages with an "after" cursor rather than offsets.
func (s *Session) FollowedArtists(ctx context.Context) ([]string, error) {
	var ids []string
	after := ""

	for {
		opts := []spotify.RequestOption{spotify.Limit(PageSize)}
		if after != "" {
			opts = append(opts, spotify.After(after))
		}

		page, err := s.client.CurrentUsersFollowedArtists(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: followed artists: %v", shared.ErrAPIRequest, err)
		}

		for _, artist := range page.Artists {
			ids = append(ids, string(artist.ID))
		}

		if page.Next == "" || page.Cursor.After == "" || page.Cursor.After == after {
			break
		}
		after = page.Cursor.After
	}

	s.logger.Debug("read followed artists", "count", len(ids))
	return ids, nil
}

// Playlists retrieves every playlist in the user's library.
func (s *Session) Playlists(ctx context.Context) ([]Playlist, error) {
	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(PageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: playlists: %v", shared.ErrAPIRequest, err)
	}

	var playlists []Playlist
	for {
		for _, sp := range page.Playlists {
			playlists = append(playlists, Playlist{
				ID:          string(sp.ID),
				Name:        sp.Name,
				Description: sp.Description,
				Public:      sp.IsPublic,
				OwnerID:     sp.Owner.ID,
			})
		}

		if done, err := s.next(ctx, page, "playlists"); err != nil {
			return nil, err
		} else if done {
			break
		}
	}

	s.logger.Debug("read playlists", "count", len(playlists))
	return playlists, nil
}

// PlaylistTracks retrieves the track IDs of a playlist.
//
// Items without a track (removed from the catalog, local files without an ID, or podcast episodes) are skipped.
func (s *Session) PlaylistTracks(ctx context.Context, playlistID string) ([]string, error) {
	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(PlaylistItemPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: playlist %s items: %v", shared.ErrAPIRequest, playlistID, err)
	}

	var ids []string
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			ids = append(ids, string(item.Track.Track.ID))
		}

		if done, err := s.next(ctx, page, "playlist items"); err != nil {
			return nil, err
		} else if done {
			break
		}
	}

	return ids, nil
}

// SaveTracks adds tracks to the user's library.
func (s *Session) SaveTracks(ctx context.Context, ids []string) error {
	return s.writeBatches(ctx, "save tracks", ids, SaveBatchSize, func(ctx context.Context, batch []spotify.ID) error {
		return s.client.AddTracksToLibrary(ctx, batch...)
	})
}

// SaveAlbums adds albums to the user's library.
func (s *Session) SaveAlbums(ctx context.Context, ids []string) error {
	return s.writeBatches(ctx, "save albums", ids, SaveBatchSize, func(ctx context.Context, batch []spotify.ID) error {
		return s.client.AddAlbumsToLibrary(ctx, batch...)
	})
}

// FollowArtists follows artists on behalf of the user.
func (s *Session) FollowArtists(ctx context.Context, ids []string) error {
	return s.writeBatches(ctx, "follow artists", ids, FollowBatchSize, func(ctx context.Context, batch []spotify.ID) error {
		return s.client.FollowArtist(ctx, batch...)
	})
}

// CreatePlaylist creates a playlist owned by the current user and fills it with trackIDs.
func (s *Session) CreatePlaylist(ctx context.Context, name, description string, public bool, trackIDs []string) (string, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: current user: %v", shared.ErrAPIRequest, err)
	}

	if err := s.wait(ctx); err != nil {
		return "", err
	}

	playlist, err := s.client.CreatePlaylistForUser(ctx, user.ID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("%w: create playlist %q: %v", shared.ErrAPIRequest, name, err)
	}

	id := playlist.ID
	err = s.writeBatches(ctx, "add playlist items", trackIDs, PlaylistAddBatchSize, func(ctx context.Context, batch []spotify.ID) error {
		_, err := s.client.AddTracksToPlaylist(ctx, id, batch...)
		return err
	})
	if err != nil {
		return string(id), err
	}

	s.logger.Debug("created playlist", "name", name, "id", id, "tracks", len(trackIDs))
	return string(id), nil
}

// next advances page in place; it reports done once the API returns no further cursor.
func (s *Session) next(ctx context.Context, page any, what string) (bool, error) {
	var err error
	switch p := page.(type) {
	case *spotify.SavedTrackPage:
		err = s.client.NextPage(ctx, p)
	case *spotify.SavedAlbumPage:
		err = s.client.NextPage(ctx, p)
	case *spotify.SimplePlaylistPage:
		err = s.client.NextPage(ctx, p)
	case *spotify.PlaylistItemPage:
		err = s.client.NextPage(ctx, p)
	default:
		return false, fmt.Errorf("%w: cannot page %T", shared.ErrNotImplemented, page)
	}

	if errors.Is(err, spotify.ErrNoMorePages) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s next page: %v", shared.ErrAPIRequest, what, err)
	}
	return false, nil
}

// writeBatches issues one write per batch in input order and stops at the first failure.
func (s *Session) writeBatches(ctx context.Context, op string, ids []string, size int, write func(context.Context, []spotify.ID) error) error {
	batches := Batch(ids, size)
	for i, batch := range batches {
		if err := s.wait(ctx); err != nil {
			return err
		}

		spotifyIDs := make([]spotify.ID, len(batch))
		for j, id := range batch {
			spotifyIDs[j] = spotify.ID(id)
		}

		if err := write(ctx, spotifyIDs); err != nil {
			return fmt.Errorf("%w: %s batch %d/%d: %v", shared.ErrAPIRequest, op, i+1, len(batches), err)
		}
		s.logger.Debug("wrote batch", "op", op, "batch", i+1, "of", len(batches), "size", len(batch))
	}
	return nil
}

func (s *Session) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}
