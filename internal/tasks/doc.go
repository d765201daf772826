// Package tasks copies one account's library into another with real-time progress reporting.
//
// # Flow
//
// [Engine.Run] walks a fixed sequence of states:
//
//  1. Optional re-authentication offers for each cached account
//  2. Source, then target authentication through [Accounts]
//  3. A direction prompt naming both accounts, answered by a [Confirmer]
//  4. Liked tracks, saved albums, followed artists, then playlists
//
// Cancelling authentication or declining the direction prompt ends the run before any library data is read.
//
// # Sync Semantics
//
// Flat categories write exactly [Difference] of the source and target ID sets, so running twice adds nothing the
// second time. Playlists are matched by name: each source playlist whose name is absent from the target is recreated
// with its name, description, visibility and track order. Empty playlists are skipped.
//
// Nothing is ever removed from the target.
//
// # Progress Reporting
//
// [ProgressUpdate] values are sent with select/default so a slow reader never stalls the sync.
// The caller owns the channel and closes it after [Engine.Run] returns.
package tasks
