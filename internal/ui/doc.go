// Package ui implements the interactive terminal player using bubbletea's Elm architecture.
//
// The screen is split between a section body and a persistent player bar.
// The body is chosen by exactly one [Section]:
//  1. [Home] : featured track and the latest arrivals
//  2. [Discover] : the full catalog
//  3. [Genres] : distinct genres, then the tracks in the chosen one
//  4. [Library] : the personal collection
//  5. [Manifesto], [Research], [Resources], [Contact] : static pages
//  6. [Admin] : the ingestion form and catalog maintenance
//
// Long-running work (ingestion, seeding, deletes, track loads) runs in a [tea.Cmd]
// and reports back through the Msg union. Ingestion progress flows through a
// channel fed by the ingestion pipeline, the same way it is reported on the CLI.
//
// Keyboard navigation uses number keys and tab for sections, vim-style list
// movement, and contextual help rendered with charmbracelet/bubbles/help.
package ui
