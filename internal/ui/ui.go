package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunename/internal/models"
	"github.com/desertthunder/tunename/internal/services"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BuildingView ViewState = iota
	ResultView
	PublishingView
	ErrorView
)

// Builder is the part of [tasks.PlaylistBuilder] the TUI drives.
type Builder interface {
	Build(ctx context.Context, prefs models.PlaylistPreferences, progress chan<- tasks.ProgressUpdate) (*models.Playlist, error)
	Publish(ctx context.Context, playlist *models.Playlist, publisher services.PlaylistPublisher, progress chan<- tasks.ProgressUpdate) error
}

// buildRun connects a running build to the update loop.
type buildRun struct {
	progress chan tasks.ProgressUpdate
	done     chan buildResult
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	builder   Builder
	publisher services.PlaylistPublisher
	prefs     models.PlaylistPreferences
	width     int
	height    int
	spinner   spinner.Model
	entries   list.Model
	run       *buildRun
	progress  tasks.ProgressUpdate
	playlist  *models.Playlist
	location  string
	notice    string
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a model that builds a playlist with prefs as soon as it starts.
//
// publisher may be nil, in which case saving is not offered.
func NewModel(ctx context.Context, builder Builder, publisher services.PlaylistPublisher, prefs models.PlaylistPreferences) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	return &Model{
		ctx:       ctx,
		view:      BuildingView,
		builder:   builder,
		publisher: publisher,
		prefs:     prefs,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the first build.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startBuild())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlist != nil {
			m.sizeList()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != BuildingView && m.view != PublishingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgBuildComplete:
		result := msg.data.(buildResult)
		m.run = nil
		if result.err != nil {
			m.err = result.err
			m.view = ErrorView
			return m, nil
		}
		m.playlist = result.playlist
		m.entries = list.New(entryItems(result.playlist), list.NewDefaultDelegate(), 0, 0)
		m.entries.Title = fmt.Sprintf("%s (%d of %d songs)", result.playlist.Name, result.playlist.Len(), m.prefs.NumberOfSongs)
		m.entries.SetShowHelp(false)
		m.sizeList()
		m.view = ResultView
		return m, nil

	case MsgPublishComplete:
		result := msg.data.(publishResult)
		m.view = ResultView
		if result.err != nil {
			m.notice = styles.err.Render(fmt.Sprintf("Save failed: %v", result.err))
			return m, nil
		}
		m.location = result.location
		m.notice = styles.ok.Render("Saved: " + result.location)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch m.view {
	case ResultView:
		switch {
		case key.Matches(msg, m.keys.rebuild):
			return m, m.rebuild()
		case key.Matches(msg, m.keys.save) && m.canSave():
			m.view = PublishingView
			return m, tea.Batch(m.spinner.Tick, m.publish())
		}
		var cmd tea.Cmd
		m.entries, cmd = m.entries.Update(msg)
		return m, cmd

	case ErrorView:
		if key.Matches(msg, m.keys.rebuild) {
			return m, m.rebuild()
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != ResultView {
		return m, nil
	}
	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

// sizeList fits the entry list to the window, assuming 80x24 until the first resize.
func (m *Model) sizeList() {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = 80, 24
	}
	m.entries.SetSize(width-4, height-8)
}

func (m *Model) canSave() bool {
	return m.publisher != nil && m.playlist != nil && m.location == ""
}

func (m *Model) rebuild() tea.Cmd {
	m.view = BuildingView
	m.playlist = nil
	m.location = ""
	m.notice = ""
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
	return tea.Batch(m.spinner.Tick, m.startBuild())
}

func (m *Model) startBuild() tea.Cmd {
	run := &buildRun{
		progress: make(chan tasks.ProgressUpdate, 50),
		done:     make(chan buildResult, 1),
	}
	m.run = run

	go func() {
		playlist, err := m.builder.Build(m.ctx, m.prefs, run.progress)
		run.done <- buildResult{playlist, err}
	}()

	return m.waitForProgress()
}

// waitForProgress delivers the next progress update, or the result once the build returns.
func (m *Model) waitForProgress() tea.Cmd {
	run := m.run
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-run.progress:
			return progressUpdateMsg(update)
		case result := <-run.done:
			return buildCompleteMsg(result.playlist, result.err)
		}
	}
}

func (m *Model) publish() tea.Cmd {
	playlist := m.playlist
	return func() tea.Msg {
		err := m.builder.Publish(m.ctx, playlist, m.publisher, nil)
		return publishCompleteMsg(playlist.Location, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case BuildingView:
		return m.renderBuilding()
	case ResultView:
		return m.renderResult()
	case PublishingView:
		return fmt.Sprintf("%s\n\n%s Saving %s...", styles.title.Render("Saving Playlist"), m.spinner.View(), m.playlist.Name)
	case ErrorView:
		return m.renderError()
	default:
		return ""
	}
}

func (m *Model) renderBuilding() string {
	title := styles.title.Render("Building Playlist")

	message := m.progress.Message
	if message == "" {
		message = "Starting..."
	}

	var detail string
	if summary, ok := m.progress.Data.(tasks.RoundSummary); ok {
		detail = styles.muted.Render(fmt.Sprintf(
			"\n%d contacts with songs, %d failed searches, %d still pending",
			summary.Found, summary.Failed, summary.Pending,
		))
	}

	return fmt.Sprintf("%s\n\n%s %s%s\n\n%s", title, m.spinner.View(), message, detail, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderResult() string {
	var b strings.Builder
	b.WriteString(m.entries.View())
	if m.notice != "" {
		b.WriteString("\n" + m.notice)
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.rebuild, m.keys.quit}
	if m.canSave() {
		helpKeys = []key.Binding{m.keys.up, m.keys.down, m.keys.save, m.keys.rebuild, m.keys.quit}
	}
	b.WriteString("\n\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderError() string {
	title := styles.err.Render("Could not build a playlist")
	hint := styles.warn.Render(Hint(m.err))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.rebuild, m.keys.quit})
	return fmt.Sprintf("%s\n\n%v\n\n%s\n\n%s", title, m.err, hint, helpView)
}

// Hint suggests what to do about a build error.
func Hint(err error) string {
	switch {
	case errors.Is(err, shared.ErrNoContacts):
		return "None of your contacts has a first name. Import some with `tunename contacts import --file contacts.csv`."
	case errors.Is(err, shared.ErrContactsUnavailable):
		return "Your contacts could not be read. Check the database path in your config."
	case errors.Is(err, shared.ErrNotEnoughSongs):
		return "Too few songs matched. Try fewer songs, more contacts or broader preferences."
	case errors.Is(err, shared.ErrPlaylistGeneral):
		return "The song search service kept failing. Try again in a moment."
	case errors.Is(err, shared.ErrInvalidInput):
		return "Check your playlist preferences with `tunename prefs show`."
	default:
		return "Press r to try again."
	}
}
