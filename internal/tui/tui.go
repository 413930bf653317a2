// Package tui provides a Bubble Tea progress view for album downloads.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/valaam-downloader/internal/download"
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

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

// ErrCancelled is reported when the user stops the download from the view.
var ErrCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateDownloading State = iota
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Message types
type (
	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// DoneMsg is sent when the download finishes.
	DoneMsg struct {
		Result *download.Result
		Err    error
	}
)

// Model is the Bubble Tea model of the progress view.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model

	album   string
	verbose bool
	logs    []LogEntry

	current int
	total   int

	result    *download.Result
	err       error
	cancelled bool
	cancel    context.CancelFunc

	width int
}

// NewModel creates a progress view for album. cancel is called when the
// user presses ctrl+c or esc; it may be nil.
func NewModel(album string, verbose bool, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:    StateDownloading,
		spinner:  sp,
		progress: prog,
		album:    album,
		verbose:  verbose,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Cancelled reports whether the user stopped the download.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.state == StateDownloading {
				m.cancelled = true
				m.state = StateError
				m.err = ErrCancelled
				if m.cancel != nil {
					m.cancel()
				}
			}
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Total > 0 {
			m.total = msg.Event.Total
			m.current = msg.Event.Current
			cmds = append(cmds, m.progress.SetPercent(m.percent()))
		}

		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case DoneMsg:
		if m.state != StateDownloading {
			return m, tea.Quit
		}
		m.result = msg.Result
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}
		return m, tea.Quit

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.current) / float64(m.total)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Valaam Chants Downloader"))
	b.WriteString("\n")
	b.WriteString(albumStyle.Render("♪ " + m.album))
	b.WriteString("\n\n")

	switch m.state {
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	if m.state == StateDownloading {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("ctrl+c: cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Songs: %d/%d", m.current, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	downloaded, failed, folder := 0, 0, ""
	if m.result != nil {
		downloaded = len(m.result.Downloaded)
		failed = len(m.result.Failed)
		folder = m.result.Folder
	}

	summary := fmt.Sprintf("Download Complete!\n\nSongs: %d\nFailed: %d", downloaded, failed)
	if folder != "" {
		summary += "\nFolder: " + filepath.Clean(folder)
	}
	b.WriteString(boxStyle.Render(summary))
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n\n")
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

// Progress runs the progress view around a download.
type Progress struct {
	program *tea.Program
	cancel  context.CancelFunc
	ctx     context.Context
}

// NewProgress creates the view for album. The context passed to Run is
// cancelled when the user quits the view.
func NewProgress(ctx context.Context, album string, verbose bool, opts ...tea.ProgramOption) *Progress {
	ctx, cancel := context.WithCancel(ctx)
	return &Progress{
		program: tea.NewProgram(NewModel(album, verbose, cancel), opts...),
		cancel:  cancel,
		ctx:     ctx,
	}
}

// Send forwards a progress event to the view. It can be used as the
// progress callback of a download.Manager while Run is active.
func (p *Progress) Send(event download.ProgressEvent) {
	p.program.Send(ProgressMsg{Event: event})
}

// Run starts execute in the background and shows the view until it
// returns. If the user quits early, Run waits for execute to observe the
// cancellation and returns ErrCancelled.
func (p *Progress) Run(execute func(ctx context.Context) (*download.Result, error)) (*download.Result, error) {
	defer p.cancel()

	type outcome struct {
		result *download.Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := execute(p.ctx)
		done <- outcome{result: result, err: err}
		p.program.Send(DoneMsg{Result: result, Err: err})
	}()

	final, runErr := p.program.Run()
	if runErr != nil {
		p.cancel()
	}

	out := <-done
	if model, ok := final.(Model); ok && model.Cancelled() {
		return out.result, ErrCancelled
	}
	if runErr != nil && out.err == nil {
		return out.result, runErr
	}
	return out.result, out.err
}
