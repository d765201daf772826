package tasks

// State is the position of an [Engine] run in the sync flow.
//
//	Idle → SourceAuthPending → TargetAuthPending → ConfirmPending → Syncing* → Done
//
// Aborted is reachable from every pending state; Failed from any syncing state.
type State int

const (
	Idle State = iota
	SourceAuthPending
	TargetAuthPending
	ConfirmPending
	SyncingTracks
	SyncingAlbums
	SyncingArtists
	SyncingPlaylists
	Done
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SourceAuthPending:
		return "source_auth_pending"
	case TargetAuthPending:
		return "target_auth_pending"
	case ConfirmPending:
		return "confirm_pending"
	case SyncingTracks:
		return "syncing_tracks"
	case SyncingAlbums:
		return "syncing_albums"
	case SyncingArtists:
		return "syncing_artists"
	case SyncingPlaylists:
		return "syncing_playlists"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == Done || s == Aborted || s == Failed
}

// Category is one kind of library content, synchronized in declaration order.
type Category int

const (
	Tracks Category = iota
	Albums
	Artists
	Playlists
)

// Categories lists every category in sync order.
var Categories = []Category{Tracks, Albums, Artists, Playlists}

func (c Category) String() string {
	switch c {
	case Tracks:
		return "tracks"
	case Albums:
		return "albums"
	case Artists:
		return "artists"
	case Playlists:
		return "playlists"
	default:
		return ""
	}
}

// Title is the heading used in progress output and reports.
func (c Category) Title() string {
	switch c {
	case Tracks:
		return "Liked Tracks"
	case Albums:
		return "Albums"
	case Artists:
		return "Artists"
	case Playlists:
		return "Playlists"
	default:
		return ""
	}
}

func (c Category) Noun() string {
	return c.String()
}

// Verb is the past-tense action applied to the target, capitalized.
func (c Category) Verb() string {
	switch c {
	case Artists:
		return "Followed"
	case Playlists:
		return "Created"
	default:
		return "Saved"
	}
}

func (c Category) Participle() string {
	switch c {
	case Artists:
		return "followed"
	case Playlists:
		return "created"
	default:
		return "saved"
	}
}

func (c Category) state() State {
	switch c {
	case Tracks:
		return SyncingTracks
	case Albums:
		return SyncingAlbums
	case Artists:
		return SyncingArtists
	default:
		return SyncingPlaylists
	}
}
