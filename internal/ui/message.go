package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStarted MsgKind = iota
	MsgPlayback
	MsgAction
	MsgProgressUpdate
	MsgIngestComplete
	MsgTick
)

// startedMsg is the constructor for [MsgStarted]
func startedMsg(err error) Msg {
	return Msg{kind: MsgStarted, data: err}
}

// playbackMsg is the constructor for [MsgPlayback]
func playbackMsg(err error) Msg {
	return Msg{kind: MsgPlayback, data: err}
}

type actionResult struct {
	status string
	err    error
}

// actionMsg is the constructor for [MsgAction]
func actionMsg(status string, err error) Msg {
	return Msg{kind: MsgAction, data: actionResult{status, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

type ingestResult struct {
	track *models.Track
	err   error
}

// ingestCompleteMsg is the constructor for [MsgIngestComplete]
func ingestCompleteMsg(track *models.Track, err error) Msg {
	return Msg{kind: MsgIngestComplete, data: ingestResult{track, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

func errOf(data any) error {
	err, _ := data.(error)
	return err
}
