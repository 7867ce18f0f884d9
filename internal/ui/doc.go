// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI starts building a playlist immediately and moves through these views:
//  1. [BuildingView] : spinner with live progress from the search rounds
//  2. [ResultView] : the playlist, one entry per song with the contact it was found for
//  3. [PublishingView] : saving the playlist to Spotify (s in the result view)
//  4. [ErrorView] : the failure with a suggested fix
//
// Progress updates flow through a channel from the [tasks.PlaylistBuilder] and are delivered
// to Update one at a time, so the build never blocks on rendering. r rebuilds and q quits.
package ui
