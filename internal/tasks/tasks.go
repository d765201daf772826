// package tasks implements the one-way library sync between two accounts.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotsync/internal/services"
	"github.com/desertthunder/spotsync/internal/shared"
)

// Labels of the two accounts, also used as prompt and log labels.
const (
	SourceLabel = "source"
	TargetLabel = "target"
)

// Accounts produces authorized libraries from token caches.
//
// [services.Authenticator] is the production implementation.
type Accounts interface {
	// Authenticate returns a library for the account cached at cachePath, running the authorization flow when no usable
	// token is cached or force is set. Operator cancellation is reported as [shared.ErrAuthCancelled].
	Authenticate(ctx context.Context, cachePath, label string, force bool) (services.Library, error)

	// Cached returns a library from the cache alone, or [shared.ErrNoCachedToken].
	Cached(ctx context.Context, cachePath, label string) (services.Library, error)
}

// PromptKind distinguishes the questions an [Engine] asks.
type PromptKind int

const (
	// ReauthPrompt asks whether to discard the cached token of an account.
	ReauthPrompt PromptKind = iota
	// DirectionPrompt asks to confirm the source and target accounts before any read.
	DirectionPrompt
)

// Prompt carries what the operator needs to answer a yes/no question.
type Prompt struct {
	Kind PromptKind

	// ReauthPrompt: the account in question and its current identity, or the error looking it up.
	Label     string
	Account   *services.Account
	LookupErr error

	// DirectionPrompt
	Source *services.Account
	Target *services.Account
}

// Confirmer answers the engine's yes/no questions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// Options configures a single [Engine.Run].
type Options struct {
	SourceCache string
	TargetCache string
	OfferReauth bool // ask before reusing each existing token cache
	DryRun      bool // compute differences without writing
}

// CategoryResult summarizes one flat category.
type CategoryResult struct {
	Category    Category
	SourceCount int
	TargetCount int
	Added       []string // IDs written to target (or that would be, in a dry run)
}

// PlaylistCopy describes a source playlist recreated in target.
type PlaylistCopy struct {
	Name     string
	SourceID string
	TargetID string // empty in a dry run
	Tracks   int
	Partial  bool // created in target, but adding its tracks failed
}

// PlaylistResult summarizes the playlist category.
type PlaylistResult struct {
	SourceCount int
	TargetCount int
	Created     []PlaylistCopy
	Existing    []string // source names already present in target
	Empty       []string // source playlists without tracks
}

// Result contains everything a run did. A failed run returns the categories completed so far.
type Result struct {
	Source     *services.Account
	Target     *services.Account
	DryRun     bool
	Categories []CategoryResult
	Playlists  *PlaylistResult
	Started    time.Time
	Finished   time.Time
}

// Added returns the number of items written for c.
func (r *Result) Added(c Category) int {
	if c == Playlists {
		if r.Playlists == nil {
			return 0
		}
		return len(r.Playlists.Created)
	}
	for _, cr := range r.Categories {
		if cr.Category == c {
			return len(cr.Added)
		}
	}
	return 0
}

// flatCategory binds a category to its reader and writer.
type flatCategory struct {
	category Category
	read     func(services.Library, context.Context) ([]string, error)
	write    func(services.Library, context.Context, []string) error
}

var flatCategories = []flatCategory{
	{Tracks, services.Library.SavedTracks, services.Library.SaveTracks},
	{Albums, services.Library.SavedAlbums, services.Library.SaveAlbums},
	{Artists, services.Library.FollowedArtists, services.Library.FollowArtists},
}

// Engine runs the sync flow: optional re-authentication offers, source and target authentication, direction
// confirmation, then tracks, albums, artists and playlists in that order.
//
// The first read or write error stops the run; writes already made stay in place.
type Engine struct {
	accounts Accounts
	confirm  Confirmer
	logger   *log.Logger

	mu    sync.Mutex
	state State
}

// NewEngine creates an [Engine].
func NewEngine(accounts Accounts, confirm Confirmer, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{accounts: accounts, confirm: confirm, logger: logger, state: Idle}
}

// State returns the current position in the flow. Safe to call while [Engine.Run] is in progress.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger.Debug("state", "from", e.state, "to", s)
	e.state = s
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes one sync. progress may be nil; the engine never closes it.
//
// Cancellation during authentication returns [shared.ErrAuthCancelled] and a declined direction prompt returns
// [shared.ErrSyncDeclined]; neither reads nor writes any library data.
func (e *Engine) Run(ctx context.Context, opts Options, progress chan<- ProgressUpdate) (*Result, error) {
	result := &Result{DryRun: opts.DryRun, Started: time.Now()}

	forceSource, forceTarget := false, false
	if opts.OfferReauth {
		var err error
		if forceSource, err = e.offerReauth(ctx, opts.SourceCache, SourceLabel); err != nil {
			return e.abort(result, err)
		}
		if forceTarget, err = e.offerReauth(ctx, opts.TargetCache, TargetLabel); err != nil {
			return e.abort(result, err)
		}
	}

	e.setState(SourceAuthPending)
	source, account, err := e.authenticate(ctx, opts.SourceCache, SourceLabel, forceSource)
	if err != nil {
		return e.abort(result, err)
	}
	result.Source = account

	e.setState(TargetAuthPending)
	target, account, err := e.authenticate(ctx, opts.TargetCache, TargetLabel, forceTarget)
	if err != nil {
		return e.abort(result, err)
	}
	result.Target = account

	e.setState(ConfirmPending)
	ok, err := e.confirm.Confirm(ctx, Prompt{Kind: DirectionPrompt, Source: result.Source, Target: result.Target})
	if err != nil {
		return e.abort(result, err)
	}
	if !ok {
		return e.abort(result, shared.ErrSyncDeclined)
	}

	total := len(Categories)
	for i, fc := range flatCategories {
		e.setState(fc.category.state())
		cr, err := e.syncFlat(ctx, source, target, fc, i+1, total, opts.DryRun, progress)
		if err != nil {
			return e.fail(result, fmt.Errorf("sync %s: %w", fc.category, err))
		}
		result.Categories = append(result.Categories, *cr)
	}

	e.setState(SyncingPlaylists)
	pr, err := e.syncPlaylists(ctx, source, target, total, total, opts.DryRun, progress)
	result.Playlists = pr
	if err != nil {
		return e.fail(result, fmt.Errorf("sync %s: %w", Playlists, err))
	}

	result.Finished = time.Now()
	e.setState(Done)
	e.sendProgress(progress, completeUpdate(total))
	return result, nil
}

// offerReauth shows the identity behind an existing cache and asks whether to discard it.
//
// A cache without a usable token needs no question. Failing to look up the identity is shown to the operator
// instead of aborting.
func (e *Engine) offerReauth(ctx context.Context, cachePath, label string) (bool, error) {
	lib, err := e.accounts.Cached(ctx, cachePath, label)
	if errors.Is(err, shared.ErrNoCachedToken) {
		return false, nil
	}

	prompt := Prompt{Kind: ReauthPrompt, Label: label}
	if err != nil {
		prompt.LookupErr = err
	} else if prompt.Account, err = lib.Account(ctx); err != nil {
		prompt.LookupErr = err
	}

	if prompt.LookupErr != nil {
		e.logger.Warn("could not read account info", "account", label, "error", prompt.LookupErr)
	}
	return e.confirm.Confirm(ctx, prompt)
}

func (e *Engine) authenticate(ctx context.Context, cachePath, label string, force bool) (services.Library, *services.Account, error) {
	lib, err := e.accounts.Authenticate(ctx, cachePath, label, force)
	if err != nil {
		return nil, nil, err
	}

	account, err := lib.Account(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s account info: %w", label, err)
	}

	e.logger.Info("logged in", "account", lib.Label(), "name", account.DisplayName, "id", account.ID)
	return lib, account, nil
}

func (e *Engine) syncFlat(
	ctx context.Context, source, target services.Library, fc flatCategory, step, total int, dryRun bool, progress chan<- ProgressUpdate,
) (*CategoryResult, error) {
	c := fc.category
	e.sendProgress(progress, startCategoryUpdate(step, total, c))

	sourceIDs, err := fc.read(source, ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	e.sendProgress(progress, readUpdate(step, total, c, ReadSource, len(sourceIDs)))

	targetIDs, err := fc.read(target, ctx)
	if err != nil {
		return nil, fmt.Errorf("read target: %w", err)
	}
	e.sendProgress(progress, readUpdate(step, total, c, ReadTarget, len(targetIDs)))

	missing := Difference(sourceIDs, targetIDs)
	e.sendProgress(progress, compareUpdate(step, total, c, len(missing)))

	cr := &CategoryResult{Category: c, SourceCount: len(sourceIDs), TargetCount: len(targetIDs), Added: missing}
	if len(missing) == 0 {
		return cr, nil
	}

	if !dryRun {
		if err := fc.write(target, ctx, missing); err != nil {
			return nil, fmt.Errorf("write target: %w", err)
		}
	}

	e.logger.Info("synchronized", "category", c, "added", len(missing), "dry_run", dryRun)
	e.sendProgress(progress, writeUpdate(step, total, c, len(missing), dryRun))
	return cr, nil
}

// syncPlaylists recreates every source playlist whose name is absent from target.
//
// Target names are read once, so two source playlists sharing a new name are both copied.
func (e *Engine) syncPlaylists(
	ctx context.Context, source, target services.Library, step, total int, dryRun bool, progress chan<- ProgressUpdate,
) (*PlaylistResult, error) {
	e.sendProgress(progress, startCategoryUpdate(step, total, Playlists))

	sourceLists, err := source.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	e.sendProgress(progress, readUpdate(step, total, Playlists, ReadSource, len(sourceLists)))

	targetLists, err := target.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("read target: %w", err)
	}
	e.sendProgress(progress, readUpdate(step, total, Playlists, ReadTarget, len(targetLists)))

	existing := make(map[string]struct{}, len(targetLists))
	for _, p := range targetLists {
		existing[p.Name] = struct{}{}
	}

	pr := &PlaylistResult{SourceCount: len(sourceLists), TargetCount: len(targetLists)}
	for _, p := range sourceLists {
		if _, ok := existing[p.Name]; ok {
			pr.Existing = append(pr.Existing, p.Name)
			continue
		}

		tracks, err := source.PlaylistTracks(ctx, p.ID)
		if err != nil {
			return pr, fmt.Errorf("read playlist %q: %w", p.Name, err)
		}
		if len(tracks) == 0 {
			pr.Empty = append(pr.Empty, p.Name)
			e.sendProgress(progress, skipPlaylistUpdate(step, total, p.Name, "no tracks"))
			continue
		}

		cp := PlaylistCopy{Name: p.Name, SourceID: p.ID, Tracks: len(tracks)}
		if !dryRun {
			if cp.TargetID, err = target.CreatePlaylist(ctx, p.Name, p.Description, p.Public, tracks); err != nil {
				if cp.TargetID != "" {
					cp.Partial = true
					pr.Created = append(pr.Created, cp)
				}
				return pr, fmt.Errorf("copy playlist %q: %w", p.Name, err)
			}
		}

		pr.Created = append(pr.Created, cp)
		e.logger.Info("copied playlist", "name", p.Name, "tracks", len(tracks), "dry_run", dryRun)
		e.sendProgress(progress, copyPlaylistUpdate(step, total, cp, dryRun))
	}

	if len(pr.Created) == 0 {
		e.sendProgress(progress, compareUpdate(step, total, Playlists, 0))
	}
	return pr, nil
}

func (e *Engine) abort(result *Result, err error) (*Result, error) {
	result.Finished = time.Now()
	e.setState(Aborted)
	return result, err
}

func (e *Engine) fail(result *Result, err error) (*Result, error) {
	result.Finished = time.Now()
	e.setState(Failed)
	return result, err
}
