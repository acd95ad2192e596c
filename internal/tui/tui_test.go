package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/feedmusic/internal/catalog"
	"github.com/handiism/feedmusic/internal/config"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_ToggleOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings())
	m.textInput.Blur()

	m = update(t, m, key("x"))
	m = update(t, m, key("p"))
	m = update(t, m, key("v"))

	if m.extract {
		t.Error("x should turn extraction off")
	}
	if !m.playlist {
		t.Error("p should turn playlists on")
	}
	if !m.verbose {
		t.Error("v should turn verbose on")
	}
	if !strings.Contains(m.View(), "[x] Write playlists (p)") {
		t.Errorf("view does not reflect options:\n%s", m.View())
	}
}

func TestModel_EnterWithoutURL(t *testing.T) {
	m := NewModel(nil)
	m.textInput.SetValue("not-a-url")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "no http(s) feed URL") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestModel_ProgressFiltering(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, ProgressMsg{Event: catalog.ProgressEvent{Message: "hidden", Level: catalog.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: catalog.ProgressEvent{Message: "Found album: A - B (2 tracks)", Level: catalog.LevelInfo}})

	if len(m.logs) != 1 || m.logs[0].Message != "Found album: A - B (2 tracks)" {
		t.Errorf("logs = %#v", m.logs)
	}

	for i := 0; i < 20; i++ {
		m = update(t, m, ProgressMsg{Event: catalog.ProgressEvent{Message: "x", Level: catalog.LevelError}})
	}
	if len(m.logs) != maxLogs {
		t.Errorf("kept %d logs, want %d", len(m.logs), maxLogs)
	}
}

func TestModel_ProcessDone(t *testing.T) {
	m := NewModel(nil)
	m.state = StateProcessing
	m.albums = []string{"The Lanterns - Night Drive (2 tracks)"}

	m = update(t, m, ProcessDoneMsg{Tracks: 7})

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "Extracted tracks: 7") || !strings.Contains(view, "Night Drive") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestModel_BuildDoneEmpty(t *testing.T) {
	m := NewModel(nil)
	m.state = StateBuilding

	m = update(t, m, BuildDoneMsg{})

	if m.state != StateError || m.err == nil {
		t.Errorf("state = %v, err = %v; want error state", m.state, m.err)
	}
}
