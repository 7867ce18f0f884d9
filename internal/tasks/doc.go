// Package tasks builds playlists out of songs whose titles match contacts' first names.
//
// # Building
//
// [PlaylistBuilder.Build] runs in four steps:
//
//  1. Load contacts from the [ContactSource], optionally only the saved selection
//  2. Sample as many searchable contacts as songs are wanted
//  3. Search in rounds until enough contacts have songs, the search budget is spent,
//     too many searches have failed, or no contacts are left
//  4. Interleave each contact's songs round-robin with [AssemblePlaylist]
//
// Each round runs on a [Fetcher]: searches run concurrently, paced by an optional rate
// limit, and the round ends after a timeout. Contacts whose search did not finish in time
// are dropped for this build.
//
// # Budgets
//
// [MaxSongSearches] bounds the searches a build may resolve and [ErrorThreshold] the
// failures it tolerates. [SearchCountFor] sizes each request so that small contact pools
// still fill long playlists.
//
// # Progress Reporting
//
// Operations accept an optional send-only channel of [ProgressUpdate]. Sends never block:
// an update is dropped when the channel is full.
//
// # Publishing
//
// [PlaylistBuilder.Publish] saves a finished playlist through a services.PlaylistPublisher
// and records the resulting location in the [PlaylistHistory].
package tasks
