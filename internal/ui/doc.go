// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for exploring recommendations:
//  1. [QueryView] : Type a track or artist query
//  2. [SearchView] : Watch pipeline progress while providers are called
//  3. [ResultsView] : Browse ranked tracks and react to them
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the recommendation engine,
// providing non-blocking status reporting during searches.
//
// In the results view, favoriting (f), liking (l), and disliking (d) persist
// the reaction and immediately re-rank the visible list against the updated
// preferences. Keyboard navigation uses vim-style bindings (j/k, enter, esc, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
