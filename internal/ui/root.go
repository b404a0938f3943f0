package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/ectrack/internal/app"
	"github.com/dori/ectrack/internal/source"
	"github.com/dori/ectrack/internal/ui/theme"
	"github.com/dori/ectrack/internal/ui/views"
)

// RootModel is the main application model that manages views
type RootModel struct {
	ctx     context.Context
	app     *app.App
	watcher *source.Watcher
	keys    KeyMap
	help    help.Model
	width   int
	height  int

	currentView  View
	listView     views.ListView
	progressView views.ProgressView
	helpVisible  bool

	loading bool
	loadErr error
	// A source change arrived during a load; reload once it finishes
	reloadPending bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(ctx context.Context, application *app.App) RootModel {
	h := help.New()
	h.ShowAll = true

	views.SetDebugLogger(application.Logger)

	if t, ok := theme.ByName(application.Config.Theme); ok {
		theme.SetTheme(t)
	}

	m := RootModel{
		ctx:          ctx,
		app:          application,
		keys:         DefaultKeyMap(),
		help:         h,
		currentView:  ViewList,
		listView:     views.NewListView(application.Store),
		progressView: views.NewProgressView(application.Store),
		loading:      true,
	}

	w, err := application.WatchSource(ctx)
	if err != nil {
		application.Logger.Printf("source watch disabled: %v", err)
	}
	m.watcher = w

	return m
}

// Init starts loading the checklist and watching the source
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.watch())
}

// load fetches the source and applies persisted state off the UI goroutine
func (m RootModel) load() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return LoadedMsg{Err: a.Load(ctx)}
	}
}

// watch waits for the next settled change to the source file
func (m RootModel) watch() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-w.Events():
			if !ok {
				return nil
			}
			return SourceChangedMsg{}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (3 lines)
		contentHeight := m.height - 4
		m.listView = m.listView.SetSize(m.width, contentHeight)
		m.progressView = m.progressView.SetSize(m.width, contentHeight)
		return m, nil

	case LoadedMsg:
		if m.reloadPending {
			m.reloadPending = false
			return m, m.load()
		}
		m.loading = false
		m.loadErr = msg.Err
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		done, total := m.app.Store.Progress()
		m.statusMsg = fmt.Sprintf("Loaded %d items (%d done)", total, done)
		return m, m.broadcast(views.ItemsReloadedMsg{})

	case SourceChangedMsg:
		if m.loading {
			m.reloadPending = true
			return m, m.watch()
		}
		m.app.Logger.Printf("source changed, reloading")
		m.loading = true
		m.statusMsg = "Source changed, reloading..."
		return m, tea.Batch(m.load(), m.watch())

	case watchErrMsg:
		m.app.Logger.Printf("watch: %v", msg.err)
		return m, m.watch()

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.currentView == ViewList && m.listView.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil
		}

		if isInputMode {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			return m, nil

		case m.helpVisible:
			if msg.String() == "esc" {
				m.helpVisible = false
			}
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.statusMsg = "Reloading..."
			return m, m.load()

		case key.Matches(msg, m.keys.ListView):
			m.currentView = ViewList
			return m, m.listView.Init()

		case key.Matches(msg, m.keys.ProgressView):
			m.currentView = ViewProgress
			return m, m.progressView.Init()
		}

		// Nothing to act on until a checklist is loaded
		if m.loading || m.loadErr != nil {
			return m, nil
		}
	}

	// Delegate to current view
	switch m.currentView {
	case ViewList:
		newListView, cmd := m.listView.Update(msg)
		m.listView = newListView.(views.ListView)
		cmds = append(cmds, cmd)
	case ViewProgress:
		newProgressView, cmd := m.progressView.Update(msg)
		m.progressView = newProgressView.(views.ProgressView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// broadcast sends msg to every view, not just the visible one
func (m *RootModel) broadcast(msg tea.Msg) tea.Cmd {
	newListView, listCmd := m.listView.Update(msg)
	m.listView = newListView.(views.ListView)
	newProgressView, progressCmd := m.progressView.Update(msg)
	m.progressView = newProgressView.(views.ProgressView)
	return tea.Batch(listCmd, progressCmd)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	styles := theme.Current.Styles
	t := theme.Current.Theme
	var sections []string

	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	switch {
	case m.helpVisible:
		content = m.renderHelp()
	case m.loading:
		content = lipgloss.NewStyle().Foreground(t.Subtle).Italic(true).Padding(1, 1).Render("Loading checklist...")
	case m.loadErr != nil:
		content = styles.Panel.Render(
			lipgloss.NewStyle().Foreground(t.Error).Bold(true).Render("Could not load the checklist") + "\n\n" +
				m.loadErr.Error() + "\n\n" +
				styles.Label.Render("ctrl+r to retry • q to quit"),
		)
	default:
		switch m.currentView {
		case ViewList:
			content = m.listView.View()
		case ViewProgress:
			content = m.progressView.View()
		default:
			content = styles.Panel.Render("View not implemented")
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("ectrack")

	subtle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := subtle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	left := []string{title, viewIndicator}
	if !m.loading && m.loadErr == nil {
		done, total := m.app.Store.Progress()
		left = append(left, styles.StatusValue.Padding(0, 1).Render(fmt.Sprintf("%d/%d done", done, total)))
		if m.app.Store.IsModified() {
			left = append(left, styles.Modified.Padding(0, 1).Render("modified"))
		}
	}

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, left...)
	rightSide := subtle.Render(fmt.Sprintf("theme: %s", t.Name))

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	hint := func(b key.Binding) string {
		h := b.Help()
		return styles.HelpKey.Render(h.Key) + styles.HelpDesc.Render(" "+h.Desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string
	switch {
	case m.currentView == ViewList && m.listView.IsInputMode():
		switch m.listView.Mode() {
		case views.ListModeConfirmDelete, views.ListModeConfirmReset:
			line1 = styles.HelpKey.Render("y") + styles.HelpDesc.Render(" confirm") + sep +
				styles.HelpKey.Render("n/esc") + styles.HelpDesc.Render(" cancel")
		default:
			line1 = styles.HelpKey.Render("enter") + styles.HelpDesc.Render(" save") + sep +
				styles.HelpKey.Render("esc") + styles.HelpDesc.Render(" cancel")
		}

	case m.currentView == ViewList:
		line1 = hint(m.keys.Toggle) + sep +
			hint(m.keys.EditTask) + sep +
			hint(m.keys.EditTree) + sep +
			hint(m.keys.MoveDown) + sep +
			hint(m.keys.MoveUp) + sep +
			hint(m.keys.CopyTree)
		line2 = hint(m.keys.Delete) + sep +
			hint(m.keys.Reset) + sep +
			hint(m.keys.Cascade) + sep +
			hint(m.keys.ProgressView) + sep +
			hint(m.keys.Help) + sep +
			hint(m.keys.Quit)

	case m.currentView == ViewProgress:
		line1 = styles.HelpKey.Render("r") + styles.HelpDesc.Render(" refresh") + sep +
			hint(m.keys.ListView) + sep +
			hint(m.keys.ThemeCycle)
		line2 = hint(m.keys.Help) + sep + hint(m.keys.Quit)
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("ectrack Help"))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Checking an ECgxL item also checks lower levels of group g."))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("With check all previous on, every item above it is checked too."))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}

// cycleTheme cycles through available themes
func (m *RootModel) cycleTheme() {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
}

// Close releases the source watcher
func (m RootModel) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
