package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songbook/internal/tasks"
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
	MsgProgressUpdate MsgKind = iota
	MsgCatalogLoaded
)

type catalogLoaded struct {
	result *tasks.ImportResult
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// catalogLoadedMsg is the constructor for [MsgCatalogLoaded]
func catalogLoadedMsg(result *tasks.ImportResult, err error) Msg {
	return Msg{kind: MsgCatalogLoaded, data: catalogLoaded{result, err}}
}
