package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Category Category // Category being synchronized
	Phase    Phase    // Operation phase
	Step     int      // Current category number (1-based)
	Total    int      // Number of categories in the run
	Message  string   // Human-readable message for display
	Data     any      // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	StartCategory Phase = iota
	ReadSource
	ReadTarget
	Compare
	WriteTarget
	CopyPlaylist
	SkipPlaylist
	Complete
)

func (p Phase) String() string {
	switch p {
	case StartCategory:
		return "start_category"
	case ReadSource:
		return "read_source"
	case ReadTarget:
		return "read_target"
	case Compare:
		return "compare"
	case WriteTarget:
		return "write_target"
	case CopyPlaylist:
		return "copy_playlist"
	case SkipPlaylist:
		return "skip_playlist"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func startCategoryUpdate(step, total int, c Category) ProgressUpdate {
	return ProgressUpdate{
		Category: c,
		Phase:    StartCategory,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("--- Synchronizing %s ---", c.Title()),
	}
}

func readUpdate(step, total int, c Category, phase Phase, count int) ProgressUpdate {
	side := "source"
	if phase == ReadTarget {
		side = "target"
	}
	return ProgressUpdate{
		Category: c,
		Phase:    phase,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("Found %d %s in %s account", count, c.Noun(), side),
		Data:     count,
	}
}

func compareUpdate(step, total int, c Category, missing int) ProgressUpdate {
	msg := fmt.Sprintf("%d new %s to sync", missing, c.Noun())
	if missing == 0 {
		msg = fmt.Sprintf("No new %s to sync", c.Noun())
	}
	return ProgressUpdate{
		Category: c,
		Phase:    Compare,
		Step:     step,
		Total:    total,
		Message:  msg,
		Data:     missing,
	}
}

func writeUpdate(step, total int, c Category, written int, dryRun bool) ProgressUpdate {
	msg := fmt.Sprintf("%s %d %s", c.Verb(), written, c.Noun())
	if dryRun {
		msg = fmt.Sprintf("Would have %s %d %s (dry run)", c.Participle(), written, c.Noun())
	}
	return ProgressUpdate{
		Category: c,
		Phase:    WriteTarget,
		Step:     step,
		Total:    total,
		Message:  msg,
		Data:     written,
	}
}

func copyPlaylistUpdate(step, total int, cp PlaylistCopy, dryRun bool) ProgressUpdate {
	msg := fmt.Sprintf("Created playlist %q with %d tracks", cp.Name, cp.Tracks)
	if dryRun {
		msg = fmt.Sprintf("Would create playlist %q with %d tracks (dry run)", cp.Name, cp.Tracks)
	}
	return ProgressUpdate{
		Category: Playlists,
		Phase:    CopyPlaylist,
		Step:     step,
		Total:    total,
		Message:  msg,
		Data:     cp,
	}
}

func skipPlaylistUpdate(step, total int, name, reason string) ProgressUpdate {
	return ProgressUpdate{
		Category: Playlists,
		Phase:    SkipPlaylist,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("Skipping playlist %q: %s", name, reason),
	}
}

func completeUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    total,
		Total:   total,
		Message: "Synchronization complete",
	}
}
