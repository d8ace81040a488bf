// Package ui implements an interactive terminal song browser using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [LoadingView] : Import progress while the catalog is fetched from its source
//  2. [SongListView] : Filtered, sorted song list with a header of the active criteria and catalog stats
//  3. [SongView] : Scrollable song sheet that can be transposed and shown with or without chords
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the Importer, providing non-blocking status reporting during loads.
//
// Filter and display preferences live in a settings snapshot; toggles produce a new snapshot and the list query is re-run.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
