package views

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/ectrack/internal/model"
	"github.com/dori/ectrack/internal/store"
	"github.com/dori/ectrack/internal/ui/theme"
)

// Debug logging, routed to the application log by SetDebugLogger
var debugLog = log.New(io.Discard, "", 0)

// SetDebugLogger sets the logger used for view tracing
func SetDebugLogger(l *log.Logger) {
	if l != nil {
		debugLog = l
	}
}

func debugf(format string, args ...interface{}) {
	debugLog.Printf(format, args...)
}

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeEditTask
	ListModeEditTree
	ListModeConfirmDelete
	ListModeConfirmReset
)

const resetPrompt = "Are you sure? This will reset order, text, and deleted items to default. (y/n)"

const usageHint = "tab: check • J/K: reorder • enter: edit task • e: edit tree • c: copy tree • a: check all previous • H: hide this hint"

// ItemsReloadedMsg tells views the store has been (re)loaded from the source
type ItemsReloadedMsg struct{}

// ListView displays the checklist in working order
type ListView struct {
	store  *store.Store
	copy   func(string) error
	width  int
	height int

	items        []model.Item
	cursor       int
	scrollOffset int

	mode      ListMode
	input     textinput.Model
	editingID string
	// editShown is what the input held when editing started
	editShown string
	deleteID  string

	statusMsg string
	statusErr bool

	// IDs checked by the most recent cascade, highlighted until the next key
	cascaded map[string]bool
}

// NewListView creates a new list view
func NewListView(s *store.Store) ListView {
	ti := textinput.New()
	ti.CharLimit = 0

	return ListView{
		store:    s,
		copy:     clipboard.WriteAll,
		input:    ti,
		cascaded: make(map[string]bool),
	}
}

// WithClipboard replaces the clipboard writer
func (v ListView) WithClipboard(fn func(string) error) ListView {
	v.copy = fn
	return v
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return nil
}

// IsInputMode returns true when the view is capturing text input or a confirmation
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// Mode returns the current input mode
func (v ListView) Mode() ListMode {
	return v.mode
}

// Cursor returns the cursor position
func (v ListView) Cursor() int {
	return v.cursor
}

// StatusMessage returns the current status line of the view
func (v ListView) StatusMessage() string {
	return v.statusMsg
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 6
	return v
}

// visibleItemCount returns how many items can fit in the viewport
func (v ListView) visibleItemCount() int {
	// Reserve lines for the hint, status and scroll indicators
	available := v.height - 6
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleItemCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
	maxOffset := len(v.items) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
}

// refresh re-reads the working list, keeping the cursor on the same item if it survives
func (v *ListView) refresh() {
	var currentID string
	if v.cursor >= 0 && v.cursor < len(v.items) {
		currentID = v.items[v.cursor].ID
	}

	v.items = v.store.Items()

	if currentID != "" {
		for i, it := range v.items {
			if it.ID == currentID {
				v.cursor = i
				v.ensureCursorVisible()
				return
			}
		}
	}
	v.clampCursor()
}

func (v *ListView) clampCursor() {
	if v.cursor >= len(v.items) {
		v.cursor = len(v.items) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	v.ensureCursorVisible()
}

func (v ListView) current() (model.Item, bool) {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		return model.Item{}, false
	}
	return v.items[v.cursor], true
}

func (v *ListView) setStatus(msg string) {
	v.statusMsg = msg
	v.statusErr = false
}

func (v *ListView) setError(err error) {
	debugf("list view error: %v", err)
	v.statusMsg = err.Error()
	v.statusErr = true
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsReloadedMsg:
		v.items = v.store.Items()
		v.cursor = v.store.LastDoneIndex()
		v.mode = ListModeNormal
		v.input.Blur()
		v.clampCursor()
		debugf("list view reloaded: %d items, cursor=%d", len(v.items), v.cursor)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case ListModeEditTask, ListModeEditTree:
			return v.handleEditMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		case ListModeConfirmReset:
			return v.handleResetConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == ListModeEditTask || v.mode == ListModeEditTree {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	return v, nil
}

// handleNormalMode handles keypresses in normal mode
func (v ListView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""
	v.statusErr = false
	v.cascaded = make(map[string]bool)

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
		v.ensureCursorVisible()

	case "down", "j":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
		v.ensureCursorVisible()

	case "g", "home":
		v.cursor = 0
		v.ensureCursorVisible()

	case "G", "end":
		v.cursor = len(v.items) - 1
		v.clampCursor()

	case "tab", " ":
		v.toggleCurrent()

	case "enter":
		if it, ok := v.current(); ok {
			v.startEdit(ListModeEditTask, it.ID, it.Task, "Task")
			return v, textinput.Blink
		}

	case "e":
		if it, ok := v.current(); ok {
			v.startEdit(ListModeEditTree, it.ID, it.Tree, "Tree")
			return v, textinput.Blink
		}

	case "K", "shift+up":
		v.moveCurrent(-1)

	case "J", "shift+down":
		v.moveCurrent(1)

	case "d", "delete":
		if it, ok := v.current(); ok {
			v.deleteID = it.ID
			v.mode = ListModeConfirmDelete
		}

	case "c":
		v.copyCurrentTree()

	case "R":
		if v.store.IsModified() {
			v.mode = ListModeConfirmReset
		} else {
			v.setStatus("Nothing to reset")
		}

	case "a":
		enabled := !v.store.Settings().CascadeAllPreviousEnabled
		if err := v.store.SetCascadeAllPrevious(enabled); err != nil {
			v.setError(err)
			break
		}
		if enabled {
			v.setStatus("Check all previous: on")
		} else {
			v.setStatus("Check all previous: off")
		}

	case "H":
		if !v.store.HintDismissed() {
			if err := v.store.DismissHint(); err != nil {
				v.setError(err)
			}
		}
	}

	return v, nil
}

func (v *ListView) toggleCurrent() {
	it, ok := v.current()
	if !ok {
		return
	}

	done, cascaded, err := v.store.Toggle(it.ID)
	if err != nil {
		v.setError(err)
		return
	}
	v.refresh()

	for _, id := range cascaded {
		v.cascaded[id] = true
	}
	switch {
	case len(cascaded) == 1:
		v.setStatus("Also checked 1 more item")
	case len(cascaded) > 1:
		v.setStatus(fmt.Sprintf("Also checked %d more items", len(cascaded)))
	case done:
		v.setStatus("Checked")
	default:
		v.setStatus("Unchecked")
	}
}

func (v *ListView) moveCurrent(delta int) {
	it, ok := v.current()
	if !ok {
		return
	}

	pos, err := v.store.Move(it.ID, delta)
	if err != nil {
		v.setError(err)
		return
	}
	v.items = v.store.Items()
	v.cursor = pos
	v.clampCursor()
}

func (v *ListView) copyCurrentTree() {
	it, ok := v.current()
	if !ok {
		return
	}
	tree := strings.TrimSpace(it.Tree)
	if tree == "" {
		v.setStatus("No tree to copy")
		return
	}
	if err := v.copy(tree); err != nil {
		debugf("clipboard: %v", err)
		v.statusMsg = "Manual copy needed"
		v.statusErr = true
		return
	}
	v.setStatus("Copied: " + tree)
}

func (v *ListView) startEdit(mode ListMode, id, value, prompt string) {
	v.mode = mode
	v.editingID = id
	v.input.Prompt = prompt + ": "
	v.input.SetValue(value)
	v.input.CursorEnd()
	v.input.Focus()
	v.editShown = v.input.Value()
}

func (v *ListView) stopEdit() {
	v.mode = ListModeNormal
	v.input.Blur()
	v.editingID = ""
	v.editShown = ""
}

// handleEditMode handles keypresses while editing the task or tree
func (v ListView) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// The input flattens newlines, so an untouched value must not be saved back
		if v.input.Value() == v.editShown {
			v.stopEdit()
			return v, nil
		}

		value := strings.TrimSpace(v.input.Value())
		if v.mode == ListModeEditTask && value == "" {
			v.setStatus("Task cannot be empty")
			return v, nil
		}

		var changed bool
		var err error
		if v.mode == ListModeEditTask {
			changed, err = v.store.SetTask(v.editingID, value)
		} else {
			changed, err = v.store.SetTree(v.editingID, value)
		}

		v.stopEdit()
		if err != nil {
			v.setError(err)
			return v, nil
		}
		if changed {
			v.refresh()
			v.setStatus("Saved")
		}
		return v, nil

	case "esc":
		v.stopEdit()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleDeleteConfirm handles keypresses in delete confirmation
func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = ListModeNormal
		id := v.deleteID
		v.deleteID = ""
		if err := v.store.Remove(id); err != nil {
			v.setError(err)
			return v, nil
		}
		v.items = v.store.Items()
		v.clampCursor()
		v.setStatus("Deleted")
	case "n", "N", "esc":
		v.mode = ListModeNormal
		v.deleteID = ""
	}
	return v, nil
}

// handleResetConfirm handles keypresses in reset confirmation
func (v ListView) handleResetConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = ListModeNormal
		if err := v.store.Reset(); err != nil {
			v.setError(err)
			return v, nil
		}
		v.items = v.store.Items()
		v.cursor = 0
		v.scrollOffset = 0
		v.setStatus("Checklist reset")
	case "n", "N", "esc":
		v.mode = ListModeNormal
	}
	return v, nil
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	if !v.store.HintDismissed() {
		b.WriteString(styles.Hint.Render(usageHint))
		b.WriteString("\n")
	}

	// Input field
	if v.mode == ListModeEditTask || v.mode == ListModeEditTree {
		b.WriteString(styles.InputFocused.Render(v.input.View()))
		b.WriteString("\n")
	}

	confirmStyle := lipgloss.NewStyle().
		Foreground(t.Warning).
		Bold(true)
	switch v.mode {
	case ListModeConfirmDelete:
		label := v.deleteID
		if it, ok := v.store.Item(v.deleteID); ok {
			label = it.Task
		}
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete \"%s\"? (y/n)", label)))
		b.WriteString("\n")
	case ListModeConfirmReset:
		b.WriteString(confirmStyle.Render(resetPrompt))
		b.WriteString("\n")
	}

	// Status message
	if v.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(t.Info).
			Italic(true)
		if v.statusErr {
			statusStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
		}
		b.WriteString(statusStyle.Render(v.statusMsg))
		b.WriteString("\n")
	}

	if len(v.items) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(1, 0)
		if v.store.IsModified() {
			b.WriteString(emptyStyle.Render("Every item was deleted. Press R to reset."))
		} else {
			b.WriteString(emptyStyle.Render("The source has no items."))
		}
		return b.String()
	}

	visible := v.visibleItemCount()
	endIdx := v.scrollOffset + visible
	if endIdx > len(v.items) {
		endIdx = len(v.items)
	}

	scrollStyle := lipgloss.NewStyle().Foreground(t.Subtle)
	if v.scrollOffset > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	for i := v.scrollOffset; i < endIdx; i++ {
		b.WriteString(v.renderItem(v.items[i], i == v.cursor))
		b.WriteString("\n")
	}

	if remaining := len(v.items) - endIdx; remaining > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderItem renders a single checklist row
func (v ListView) renderItem(it model.Item, isCursor bool) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	checkbox := styles.CheckPending.Render("[ ]")
	if it.Done {
		checkbox = styles.CheckDone.Render("[x]")
	}
	if v.cascaded[it.ID] {
		checkbox = lipgloss.NewStyle().Foreground(t.Cascaded).Bold(true).Render("[x]")
	}

	// Split the EC prefix off so it can be colored on its own
	prefix, task := model.SplitTag(it.Task)
	var tagStr string
	if prefix != "" {
		tagStr = styles.Tag.Render(prefix)
	}

	titleStyle := lipgloss.NewStyle().Foreground(t.Foreground)
	if it.Done {
		titleStyle = styles.ItemDone
	}
	line := checkbox + " " + tagStr + titleStyle.Render(task)

	if it.HasTree() {
		line += "  " + styles.Tree.Render("🌳 "+it.Tree)
	}

	if v.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(v.width - 2).Render(line)
	}

	if isCursor {
		return styles.ItemSelected.Render(line)
	}
	return styles.ItemNormal.Render(line)
}
