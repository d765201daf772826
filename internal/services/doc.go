// Package services defines the [Library] abstraction the sync engine works against and implements it for the
// Spotify Web API.
//
// # Sessions
//
// A [Session] wraps an authorized [spotify.Client]. Reads de-paginate every collection before returning, so callers
// always see the complete set. Followed artists page with an "after" cursor, everything else pages by offset.
//
// Writes are split with [Batch] into chunks no larger than the endpoint accepts:
//   - saved tracks and albums: [SaveBatchSize]
//   - followed artists: [FollowBatchSize]
//   - playlist items: [PlaylistAddBatchSize]
//
// Batches are sent in input order and the first failure stops the remaining batches. An optional [rate.Limiter]
// paces write calls.
//
// # Authentication
//
// [Authenticator] runs the OAuth2 authorization code flow. A [CodeProvider] supplies the redirect URL the operator
// lands on after approving access, either pasted at a prompt or captured by a local callback server. Tokens are
// cached as JSON per account and refreshed tokens are written back through refreshableTokenSource.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : a Web API call failed
//   - [shared.ErrAuthCancelled] : the operator entered the cancel sentinel
//   - [shared.ErrAuthFailed] : the authorization server denied access or the code exchange failed
//   - [shared.ErrStateMismatch] : the redirect carried a different state than requested
//   - [shared.ErrMissingCode] : the redirect carried no code
//   - [shared.ErrNoCachedToken] : no usable token is cached
package services
