// Package tui provides a Bubble Tea terminal user interface for discdl.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/discdl/discdl/internal/config"
	"github.com/discdl/discdl/internal/download"
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

	discStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many recent log lines stay on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	discBar   progress.Model
	fileBar   progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan tea.Msg

	current  string
	transfer *download.Transfer
	stats    download.Stats

	// Options
	spotify       bool
	verbose       bool
	keepPlaylists bool
	folderCover   bool

	width  int
	height int
}

// NewModel creates a new TUI model starting from settings.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "links.txt"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	if settings.InputFile != "" {
		ti.SetValue(settings.InputFile)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	discBar := progress.New(progress.WithDefaultGradient())
	discBar.Width = 50
	fileBar := progress.New(progress.WithSolidFill("#4ECDC4"))
	fileBar.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:         StateInput,
		textInput:     ti,
		spinner:       sp,
		discBar:       discBar,
		fileBar:       fileBar,
		settings:      settings,
		ctx:           ctx,
		cancel:        cancel,
		spotify:       settings.Source == config.SourceSpotify,
		verbose:       settings.Verbose,
		keepPlaylists: !settings.DeletePlaylists,
		folderCover:   settings.WriteFolderCover,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one manager event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the batch finishes.
	RunDoneMsg struct {
		Stats download.Stats
		Err   error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := min(max(msg.Width-20, 20), 80)
		m.discBar.Width = width
		m.fileBar.Width = width
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
			if m.state == StateRunning {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput {
				m.state = StateRunning
				cmd := m.startRun()
				return m, tea.Batch(cmd, m.spinner.Tick)
			}

		case "tab":
			if m.state == StateInput {
				m.spotify = !m.spotify
				return m, nil
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "ctrl+k":
			if m.state == StateInput {
				m.keepPlaylists = !m.keepPlaylists
				return m, nil
			}

		case "ctrl+f":
			if m.state == StateInput {
				m.folderCover = !m.folderCover
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.current = ""
				m.transfer = nil
				m.stats = download.Stats{}
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.applyEvent(msg.Event)
		cmds = append(cmds, m.waitForEvent())

	case RunDoneMsg:
		m.stats = msg.Stats
		m.transfer = nil
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case progress.FrameMsg:
		discModel, cmd := m.discBar.Update(msg)
		m.discBar = discModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) applyEvent(event download.ProgressEvent) {
	if m.manager != nil {
		m.stats = m.manager.Stats()
	}
	if event.URL != "" {
		m.current = event.URL
	}
	if event.Transfer != nil {
		m.transfer = event.Transfer
		if event.Transfer.Finished {
			m.transfer = nil
		}
	}

	if event.Message == "" || (event.Level == download.LevelVerbose && !m.verbose) {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// runSettings copies the base settings and applies the toggles.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.Source = config.SourceYouTube
	if m.spotify {
		s.Source = config.SourceSpotify
	}
	s.InputFile = strings.TrimSpace(m.textInput.Value())
	s.Verbose = m.verbose
	s.DeletePlaylists = !m.keepPlaylists
	s.WriteFolderCover = m.folderCover
	return &s
}

// startRun creates the manager and runs the batch in the background. Events
// flow back through m.events.
func (m *Model) startRun() tea.Cmd {
	settings := m.runSettings()
	events := make(chan tea.Msg, 64)
	ctx := m.ctx

	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	m.events = events
	m.manager = download.NewManager(settings, func(event download.ProgressEvent) {
		send(ProgressMsg{Event: event})
	})
	manager := m.manager

	go func() {
		stats, err := manager.RunFile(ctx, settings.ResolveInputFile())
		// Always delivered, even after cancel.
		events <- RunDoneMsg{Stats: stats, Err: err}
	}()

	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-events
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("💿 discdl"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download Spotify and YouTube discs"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	source := "YouTube (yt-dlp)"
	if m.spotify {
		source = "Spotify (spotdl)"
	}

	b.WriteString(subtitleStyle.Render("URL list file:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Source: ") + discStyle.Render(source))
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+v)\n", check(m.verbose))
	fmt.Fprintf(&b, "  %s Keep playlists (ctrl+k)\n", check(m.keepPlaylists))
	fmt.Fprintf(&b, "  %s Write folder cover (ctrl+f)\n", check(m.folderCover))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Input: %s", m.runSettings().ResolveInputFile())))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	done := m.stats.Succeeded + m.stats.Failed
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Disc %d of %d", min(done+1, max(m.stats.Total, 1)), m.stats.Total)))
	b.WriteString("\n")
	if m.current != "" {
		b.WriteString(discStyle.Render("  ♪ " + m.current))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var percent float64
	if m.stats.Total > 0 {
		percent = float64(done) / float64(m.stats.Total)
	}
	b.WriteString(m.discBar.ViewAs(percent))
	b.WriteString("\n")

	if t := m.transfer; t != nil {
		var filePercent float64
		if t.Total > 0 {
			filePercent = float64(t.Downloaded) / float64(t.Total)
		}
		b.WriteString(m.fileBar.ViewAs(filePercent))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"%s | %.2f MB | %.0f KB/s | ETA %s",
			filepath.Base(t.File),
			float64(t.Downloaded)/1024/1024,
			t.Speed/1024,
			t.ETA,
		)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Batch complete!\n\n"+
			"Discs: %d\n"+
			"Succeeded: %d\n"+
			"Failed: %d\n"+
			"Warnings: %d",
		m.stats.Total,
		m.stats.Succeeded,
		m.stats.Failed,
		m.stats.Warnings,
	))
	b.WriteString(box)
	b.WriteString("\n")

	for _, folder := range m.stats.Folders {
		b.WriteString(discStyle.Render("  ♪ " + folder))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n\n", m.err.Error())
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
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
		return "enter: start • tab: switch source • ctrl+v/k/f: options • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new batch • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
