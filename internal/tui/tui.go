// Package tui provides a Bubble Tea terminal user interface for feedmusic.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/feedmusic/internal/audio"
	"github.com/handiism/feedmusic/internal/catalog"
	"github.com/handiism/feedmusic/internal/config"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateBuilding
	StateProcessing
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   catalog.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	opts      []catalog.Option
	logs      []LogEntry
	albums    []string
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *catalog.Manager
	events  chan catalog.ProgressEvent

	doneFeeds  int32
	totalFeeds int32

	tracks    int
	playlists []string

	// Options
	extract  bool
	playlist bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. opts are passed to every Manager the
// model creates.
func NewModel(settings *config.Settings, opts ...catalog.Option) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://example.com/album/feed.xml"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		opts:      opts,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan catalog.ProgressEvent, 64),
		extract:   true,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

// Message types
type (
	// ProgressMsg carries one catalog progress event.
	ProgressMsg struct {
		Event catalog.ProgressEvent
	}

	// BuildDoneMsg is sent when the catalog build completes.
	BuildDoneMsg struct {
		Albums []string
		Err    error
	}

	// ProcessDoneMsg is sent when extraction and export complete.
	ProcessDoneMsg struct {
		Tracks    int
		Playlists []string
		Err       error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateBuilding || m.state == StateProcessing {
				m.cancel()
				m.state = StateError
				m.err = errors.New("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				urls := catalog.ParseInputURLs(m.textInput.Value())
				if len(urls) == 0 {
					m.state = StateError
					m.err = errors.New("no http(s) feed URL in input")
					return m, nil
				}
				manager, err := catalog.NewManager(m.settings, progressSink(m.events), m.opts...)
				if err != nil {
					m.state = StateError
					m.err = err
					return m, nil
				}
				m.manager = manager
				m.state = StateBuilding
				return m, tea.Batch(m.buildCatalog(strings.Join(urls, "\n")), m.spinner.Tick, m.tickProgress())
			}

		case "x":
			if m.state == StateInput {
				m.extract = !m.extract
			}

		case "p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.albums = nil
				m.err = nil
				m.doneFeeds = 0
				m.totalFeeds = 0
				m.tracks = 0
				m.playlists = nil
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == catalog.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case BuildDoneMsg:
		switch {
		case m.state != StateBuilding:
			// Cancelled while building.
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case len(msg.Albums) == 0:
			m.state = StateError
			m.err = errors.New("no feed could be read")
		default:
			m.albums = msg.Albums
			m.doneFeeds, m.totalFeeds = m.manager.GetProgress()
			m.state = StateProcessing
			cmds = append(cmds, m.process())
		}

	case ProcessDoneMsg:
		if m.state != StateProcessing {
			break
		}
		m.tracks = msg.Tracks
		m.playlists = msg.Playlists
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateBuilding {
			m.doneFeeds, m.totalFeeds = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) percent() float64 {
	if m.totalFeeds == 0 {
		return 0
	}
	return float64(m.doneFeeds) / float64(m.totalFeeds)
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func waitForEvent(events <-chan catalog.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ feedmusic"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Build a music catalog from podcast feeds"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateBuilding:
		b.WriteString(m.viewBuilding())
	case StateProcessing:
		b.WriteString(m.viewProcessing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter feed URLs (space separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Extract tracks from episodes (x)\n", checkbox(m.extract)))
	b.WriteString(fmt.Sprintf("  %s Write playlists (p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output path: %s (%s)", m.settings.OutputPath, m.settings.PlaylistFormat)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewBuilding() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading feeds..."))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Feeds: %d/%d", m.doneFeeds, m.totalFeeds)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewProcessing() string {
	var b strings.Builder

	b.WriteString(m.renderAlbums())
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Extracting tracks..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(m.renderAlbums())

	summary := fmt.Sprintf("Catalog complete\n\nAlbums: %d\nFeeds read: %d/%d", len(m.albums), m.doneFeeds, m.totalFeeds)
	if m.extract {
		summary += fmt.Sprintf("\nExtracted tracks: %d", m.tracks)
	}
	if len(m.playlists) > 0 {
		summary += fmt.Sprintf("\nPlaylists: %d in %s", len(m.playlists), m.settings.OutputPath)
	}
	b.WriteString(boxStyle.Render(summary))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderAlbums() string {
	if len(m.albums) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d album(s):", len(m.albums))))
	b.WriteString("\n")
	for _, album := range m.albums {
		b.WriteString(albumStyle.Render(fmt.Sprintf("  ♪ %s", album)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case catalog.LevelError:
			style = errorStyle
			prefix = "✗"
		case catalog.LevelWarning:
			style = warningStyle
			prefix = "!"
		case catalog.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case catalog.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • x: extract • p: playlists • v: verbose • esc: quit"
	case StateBuilding, StateProcessing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new catalog • q: quit"
	}
	return ""
}

// progressSink forwards events to the UI without blocking the workers.
// Events are dropped while the buffer is full.
func progressSink(events chan<- catalog.ProgressEvent) func(catalog.ProgressEvent) {
	return func(event catalog.ProgressEvent) {
		select {
		case events <- event:
		default:
		}
	}
}

// buildCatalog runs Initialize over input.
func (m Model) buildCatalog(input string) tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		if err := manager.Initialize(ctx, input); err != nil {
			return BuildDoneMsg{Err: err}
		}
		return BuildDoneMsg{Albums: manager.GetAlbumNames()}
	}
}

// process extracts tracks and writes playlists, as toggled.
func (m Model) process() tea.Cmd {
	ctx, manager, settings := m.ctx, m.manager, m.settings
	extract, playlist := m.extract, m.playlist
	return func() tea.Msg {
		var done ProcessDoneMsg
		creator := audio.NewPlaylistCreator(audio.ParseFormat(settings.PlaylistFormat), settings.M3UExtended)

		if playlist {
			for _, album := range manager.Albums() {
				entries := audio.EntriesFromAlbum(album)
				if len(entries) == 0 {
					continue
				}
				path, err := creator.WritePlaylist(ctx, settings.OutputPath, album.Artist+" - "+album.Title, entries)
				if err != nil {
					done.Err = err
					return done
				}
				done.Playlists = append(done.Playlists, path)
			}
		}

		if extract {
			tracks, err := manager.ExtractTracks(ctx)
			done.Tracks = len(tracks)
			if err != nil {
				done.Err = err
				return done
			}
			if entries := audio.EntriesFromTracks(tracks); playlist && len(entries) > 0 {
				path, err := creator.WritePlaylist(ctx, settings.OutputPath, "Extracted tracks", entries)
				if err != nil {
					done.Err = err
					return done
				}
				done.Playlists = append(done.Playlists, path)
			}
		}

		return done
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, opts ...catalog.Option) error {
	p := tea.NewProgram(NewModel(settings, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
