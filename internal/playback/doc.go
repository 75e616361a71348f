// Package playback drives a single playing track.
//
// [Transport] is the state machine behind the player bar: select, toggle,
// next and previous over the catalog order, seek, and volume. It delegates
// audio to a [Backend]; [BeepBackend] decodes with beep and plays on the
// system speaker, and [MockBackend] stands in for it in tests.
package playback
