// Package tui provides the Bubble Tea interface of bandcamp-tui: paste a
// URL or type a search, pick a result, watch it download.
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

	"github.com/handiism/bandcamp-fetch/internal/client"
	"github.com/handiism/bandcamp-fetch/internal/config"
	"github.com/handiism/bandcamp-fetch/internal/download"
	"github.com/handiism/bandcamp-fetch/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#629AA9")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	albumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8B500"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

const maxLogs = 10

// State is the screen currently shown.
type State int

const (
	StateInput State = iota
	StateSearching
	StateResults
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

var errCancelled = errors.New("cancelled by user")

// LogEntry is a progress line shown under the progress bar.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	settings *config.Settings
	client   *client.Client
	fan      string

	logs    []LogEntry
	events  chan download.ProgressEvent
	albums  []string
	results []model.SearchResult
	cursor  int
	err     error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager

	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64

	discography bool
	playlist    bool
	verbose     bool

	width int
}

// NewModel creates the model. fan is the logged-in fan's name, if any.
func NewModel(settings *config.Settings, c *client.Client, fan string) Model {
	ti := textinput.New()
	ti.Placeholder = "https://artist.bandcamp.com/album/name or a search"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#629AA9"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateInput,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		client:      c,
		fan:         fan,
		events:      make(chan download.ProgressEvent, 64),
		ctx:         ctx,
		cancel:      cancel,
		discography: settings.DownloadArtistDiscography,
		playlist:    settings.CreatePlaylist,
	}
}

// Init starts the cursor blink, the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

type (
	// ProgressMsg carries one manager event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// SearchDoneMsg carries search results.
	SearchDoneMsg struct {
		Results []model.SearchResult
		Err     error
	}

	// InitDoneMsg is sent when the manager has resolved its inputs.
	InitDoneMsg struct {
		Albums  []string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Received int64
		Total    int64
		Files    int32
		TotalF   int32
		Err      error
	}

	// TickMsg polls download progress.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(80, max(20, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case SearchDoneMsg:
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case len(msg.Results) == 0:
			m.state = StateError
			m.err = fmt.Errorf("no results for %q", m.textInput.Value())
		default:
			m.state = StateResults
			m.results = msg.Results
			m.cursor = bestIndex(msg.Results, m.textInput.Value())
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.albums = msg.Albums
		m.manager = msg.Manager
		m.state = StateDownloading
		cmds = append(cmds, m.startDownload(), m.tickProgress())

	case DownloadDoneMsg:
		m.receivedBytes = msg.Received
		m.totalBytes = msg.Total
		m.downloadedFiles = msg.Files
		m.totalFiles = msg.TotalF
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.receivedBytes, m.totalBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()
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

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit, true

	case "esc":
		switch m.state {
		case StateInput:
			return m, tea.Quit, true
		case StateResults:
			m.state = StateInput
			return m, nil, true
		case StateSearching, StateInitializing, StateDownloading:
			m.cancel()
			m.state = StateError
			m.err = errCancelled
			return m, nil, true
		}

	case "enter":
		switch m.state {
		case StateInput:
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil, true
			}
			if isURL(input) {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(input), m.spinner.Tick), true
			}
			m.state = StateSearching
			return m, tea.Batch(m.search(input), m.spinner.Tick), true
		case StateResults:
			m.state = StateInitializing
			return m, tea.Batch(m.initializeDownload(m.results[m.cursor].URL), m.spinner.Tick), true
		}

	case "up", "k":
		if m.state == StateResults && m.cursor > 0 {
			m.cursor--
			return m, nil, true
		}

	case "down", "j":
		if m.state == StateResults && m.cursor < len(m.results)-1 {
			m.cursor++
			return m, nil, true
		}

	case "ctrl+d":
		if m.state == StateInput {
			m.discography = !m.discography
			return m, nil, true
		}

	case "ctrl+p":
		if m.state == StateInput {
			m.playlist = !m.playlist
			return m, nil, true
		}

	case "ctrl+v":
		if m.state == StateInput {
			m.verbose = !m.verbose
			return m, nil, true
		}

	case "q":
		if m.state == StateComplete || m.state == StateError {
			return m, tea.Quit, true
		}

	case "r":
		if m.state == StateComplete || m.state == StateError {
			return m.reset(), nil, true
		}
	}
	return m, nil, false
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.albums = nil
	m.results = nil
	m.cursor = 0
	m.err = nil
	m.downloadedFiles, m.totalFiles = 0, 0
	m.receivedBytes, m.totalBytes = 0, 0
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

func (m Model) percent() float64 {
	if m.totalFiles == 0 {
		return 0
	}
	return float64(m.downloadedFiles) / float64(m.totalFiles)
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ bandcamp-fetch"))
	b.WriteString("\n")
	if m.fan != "" {
		b.WriteString(dimStyle.Render("Logged in as " + m.fan))
	} else {
		b.WriteString(dimStyle.Render("Anonymous session"))
	}
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateSearching:
		b.WriteString(m.spinner.View() + " " + subtitleStyle.Render("Searching..."))
		b.WriteString("\n")
	case StateResults:
		b.WriteString(m.viewResults())
	case StateInitializing:
		b.WriteString(m.spinner.View() + " " + subtitleStyle.Render("Resolving release info..."))
		b.WriteString("\n\n")
		b.WriteString(m.renderLogs())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(errorStyle.Render("Error:"))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString("  " + m.err.Error())
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
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
	b.WriteString(subtitleStyle.Render("Bandcamp URL or search:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Download discography (ctrl+d)\n", checkbox(m.discography))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+v)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download path: " + m.settings.DownloadsPath))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d result(s):", len(m.results))))
	b.WriteString("\n")
	for i, r := range m.results {
		line := fmt.Sprintf("%-6s %s", r.Type, r.Name)
		if r.Artist != "" {
			line += " by " + r.Artist
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder
	if len(m.albums) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d release(s):", len(m.albums))))
		b.WriteString("\n")
		for _, album := range m.albums {
			b.WriteString(albumStyle.Render("  ♪ " + album))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.downloadedFiles, m.totalFiles, float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())
	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"Download complete\n\nReleases: %d\nFiles: %d\nSize: %.2f MB",
		len(m.albums), m.downloadedFiles, float64(m.receivedBytes)/1024/1024,
	))
}

func (m Model) renderLogs() string {
	var b strings.Builder
	for _, log := range m.logs {
		style, prefix := dimStyle, "•"
		switch log.Level {
		case download.LevelError:
			style, prefix = errorStyle, "✗"
		case download.LevelWarning:
			style, prefix = warningStyle, "!"
		case download.LevelSuccess:
			style, prefix = successStyle, "✓"
		case download.LevelInfo:
			style, prefix = infoStyle, "›"
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+d: discography • ctrl+p: playlist • ctrl+v: verbose • esc: quit"
	case StateResults:
		return "↑/↓: choose • enter: download • esc: back"
	case StateSearching, StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: start over • q: quit"
	}
	return ""
}

func (m Model) search(query string) tea.Cmd {
	ctx, c := m.ctx, m.client
	return func() tea.Msg {
		list, err := c.Search(ctx, query, client.SearchOptions{})
		if err != nil {
			return SearchDoneMsg{Err: err}
		}
		return SearchDoneMsg{Results: downloadable(list.Items)}
	}
}

// downloadable keeps the result kinds the manager can act on.
func downloadable(results []model.SearchResult) []model.SearchResult {
	var out []model.SearchResult
	for _, r := range results {
		switch r.Type {
		case model.TypeAlbum, model.TypeTrack, model.TypeArtist, model.TypeLabel:
			out = append(out, r)
		}
	}
	return out
}

func bestIndex(results []model.SearchResult, query string) int {
	best, ok := client.BestMatch(results, query)
	if !ok {
		return 0
	}
	for i, r := range results {
		if r.URL == best.URL {
			return i
		}
	}
	return 0
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (m Model) initializeDownload(input string) tea.Cmd {
	settings := *m.settings
	settings.DownloadArtistDiscography = m.discography
	settings.CreatePlaylist = m.playlist
	ctx, c, events := m.ctx, m.client, m.events

	return func() tea.Msg {
		manager := download.NewManager(&settings, c, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		})
		if err := manager.Initialize(ctx, input); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Albums: manager.GetAlbumNames(), Manager: manager}
	}
}

func (m Model) startDownload() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		err := manager.StartDownloads(ctx)
		received, total, files, totalFiles := manager.GetProgress()
		return DownloadDoneMsg{Received: received, Total: total, Files: files, TotalF: totalFiles, Err: err}
	}
}

// Run starts the TUI.
func Run(settings *config.Settings, c *client.Client, fan string) error {
	p := tea.NewProgram(NewModel(settings, c, fan), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
