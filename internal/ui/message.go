package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgProgressUpdate MsgKind = iota
	MsgBuildComplete
	MsgPublishComplete
)

type buildResult struct {
	playlist *models.Playlist
	err      error
}

type publishResult struct {
	location string
	err      error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// buildCompleteMsg is the constructor for [MsgBuildComplete]
func buildCompleteMsg(playlist *models.Playlist, err error) Msg {
	return Msg{kind: MsgBuildComplete, data: buildResult{playlist, err}}
}

// publishCompleteMsg is the constructor for [MsgPublishComplete]
func publishCompleteMsg(location string, err error) Msg {
	return Msg{kind: MsgPublishComplete, data: publishResult{location, err}}
}
