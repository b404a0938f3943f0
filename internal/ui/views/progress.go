package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/ectrack/internal/model"
	"github.com/dori/ectrack/internal/store"
	"github.com/dori/ectrack/internal/ui/theme"
)

type progressLoadedMsg struct {
	groups   []model.GroupProgress
	untagged model.GroupProgress
	done     int
	total    int
	cascade  bool
	modified bool
}

// ProgressView summarizes completion per EC group
type ProgressView struct {
	store  *store.Store
	width  int
	height int

	groups   []model.GroupProgress
	untagged model.GroupProgress
	done     int
	total    int
	cascade  bool
	modified bool
}

// NewProgressView creates a new progress view
func NewProgressView(s *store.Store) ProgressView {
	return ProgressView{store: s}
}

// Init loads the summary from the store
func (v ProgressView) Init() tea.Cmd {
	return v.loadProgress()
}

// SetSize sets the view dimensions
func (v ProgressView) SetSize(width, height int) ProgressView {
	v.width = width
	v.height = height
	return v
}

func (v ProgressView) loadProgress() tea.Cmd {
	s := v.store
	return func() tea.Msg {
		items := s.Items()
		groups, untagged := model.GroupsWithUntagged(items)
		done, total := s.Progress()
		return progressLoadedMsg{
			groups:   groups,
			untagged: untagged,
			done:     done,
			total:    total,
			cascade:  s.Settings().CascadeAllPreviousEnabled,
			modified: s.IsModified(),
		}
	}
}

// Update handles messages
func (v ProgressView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		v.groups = msg.groups
		v.untagged = msg.untagged
		v.done = msg.done
		v.total = msg.total
		v.cascade = msg.cascade
		v.modified = msg.modified
		return v, nil

	case ItemsReloadedMsg:
		return v, v.loadProgress()

	case tea.KeyMsg:
		if msg.String() == "r" {
			return v, v.loadProgress()
		}
	}

	return v, nil
}

// CompleteGroups returns how many EC groups are fully done
func (v ProgressView) CompleteGroups() int {
	n := 0
	for _, g := range v.groups {
		if g.Complete() {
			n++
		}
	}
	return n
}

// View renders the progress view
func (v ProgressView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	sections = append(sections, titleStyle.Render("Progress"))
	sections = append(sections, "")

	cardStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2).
		Width(18)

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	card := func(value, label string) string {
		return cardStyle.Render(valueStyle.Render(value) + "\n" + labelStyle.Render(label))
	}

	cascade := "off"
	if v.cascade {
		cascade = "on"
	}

	cardRow := lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%d/%d", v.done, v.total), "Done"),
		card(fmt.Sprintf("%d", v.total-v.done), "Remaining"),
		card(fmt.Sprintf("%d/%d", v.CompleteGroups(), len(v.groups)), "Groups Complete"),
		card(cascade, "Check Previous"),
	)
	sections = append(sections, cardRow)
	sections = append(sections, "")

	sections = append(sections, v.renderGroups())

	if v.modified {
		sections = append(sections, "")
		sections = append(sections, theme.Current.Styles.Modified.Render("Order or text differs from the source (R in the list to reset)"))
	}

	sections = append(sections, "")
	sections = append(sections, lipgloss.NewStyle().Foreground(t.Subtle).Render("r: refresh"))

	return strings.Join(sections, "\n")
}

// renderGroups renders one bar per EC group plus untagged and overall rows
func (v ProgressView) renderGroups() string {
	t := theme.Current.Theme

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)

	var lines []string
	lines = append(lines, headerStyle.Render("By Group"))

	barMaxWidth := 30
	if v.width > 0 && v.width-30 < barMaxWidth {
		barMaxWidth = max(10, v.width-30)
	}

	row := func(label string, done, total int) string {
		return fmt.Sprintf("%-8s %s %d/%d", label, progressBar(done, total, barMaxWidth), done, total)
	}

	if len(v.groups) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).Italic(true).Render("No EC tagged items"))
	}
	for _, g := range v.groups {
		label := fmt.Sprintf("EC%d", g.Group)
		line := row(label, g.Done, g.Total)
		if g.Complete() {
			line += " " + lipgloss.NewStyle().Foreground(t.Success).Render("✓")
		}
		lines = append(lines, line)
	}
	if v.untagged.Total > 0 {
		lines = append(lines, row("Other", v.untagged.Done, v.untagged.Total))
	}

	lines = append(lines, "")
	lines = append(lines, row("All", v.done, v.total))

	return strings.Join(lines, "\n")
}

// progressBar renders a filled/empty bar of the given width
func progressBar(done, total, width int) string {
	styles := theme.Current.Styles
	if total <= 0 || width <= 0 {
		return styles.BarEmpty.Render(strings.Repeat("░", max(width, 0)))
	}
	filled := done * width / total
	if filled == 0 && done > 0 {
		filled = 1
	}
	return styles.BarFilled.Render(strings.Repeat("█", filled)) +
		styles.BarEmpty.Render(strings.Repeat("░", width-filled))
}

// IsInputMode returns whether the view is in input mode
func (v ProgressView) IsInputMode() bool {
	return false
}
