// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/styles"
)

// Mark is the state of a queued file in the latest run.
type Mark int

const (
	// MarkQueued means the file has not been converted yet.
	MarkQueued Mark = iota
	// MarkConverted means the file was converted.
	MarkConverted
	// MarkFailed means the file could not be converted.
	MarkFailed
)

// QueueList displays the queued files in a navigable list.
type QueueList struct {
	items    []string
	marks    map[string]Mark
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewQueueList creates an empty queue list.
func NewQueueList(s *styles.Styles) *QueueList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &QueueList{
		marks:  make(map[string]Mark),
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the queue list.
func (q *QueueList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (q *QueueList) Update(msg tea.Msg) (*QueueList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			q.MoveUp()
		case "down", "j":
			q.MoveDown()
		}
	}
	return q, nil
}

// View renders the queue.
func (q *QueueList) View() string {
	header := q.styles.Subtitle.Render(fmt.Sprintf("Queue (%d)", len(q.items)))
	if len(q.items) == 0 {
		return header + "\n\n" + q.styles.Muted.Render("No files queued. Press a to add a file or folder.")
	}

	lines := make([]string, 0, len(q.items)+2)
	lines = append(lines, header, "")

	visible := max(1, q.height-2)
	start := 0
	if q.selected >= visible {
		start = q.selected - visible + 1
	}
	end := min(len(q.items), start+visible)

	for i := start; i < end; i++ {
		lines = append(lines, q.renderItem(i))
	}
	return strings.Join(lines, "\n")
}

func (q *QueueList) renderItem(index int) string {
	path := q.items[index]

	indicator := "  "
	if index == q.selected {
		indicator = "> "
	}

	var glyph string
	switch q.marks[path] {
	case MarkConverted:
		glyph = q.styles.Success.Render("✓")
	case MarkFailed:
		glyph = q.styles.Error.Render("✗")
	default:
		glyph = q.styles.Muted.Render("·")
	}

	name := filepath.Base(path)
	dir := filepath.Dir(path)
	maxDir := max(10, q.width-len(name)-10)
	if len(dir) > maxDir {
		dir = "..." + dir[len(dir)-maxDir+3:]
	}

	if index == q.selected {
		return indicator + glyph + " " + q.styles.Selected.Render(name) + "  " + q.styles.Muted.Render(dir)
	}
	return indicator + glyph + " " + q.styles.Normal.Render(name) + "  " + q.styles.Muted.Render(dir)
}

// SetItems replaces the listed files. Marks of files still listed are kept
// and the selection stays in range.
func (q *QueueList) SetItems(items []string) {
	q.items = items
	kept := make(map[string]Mark, len(items))
	for _, p := range items {
		if m, ok := q.marks[p]; ok {
			kept[p] = m
		}
	}
	q.marks = kept
	q.selected = max(0, min(q.selected, len(items)-1))
}

// Items returns the listed files.
func (q *QueueList) Items() []string {
	return q.items
}

// SetMark records the state of path.
func (q *QueueList) SetMark(path string, mark Mark) {
	q.marks[path] = mark
}

// Mark returns the state of path.
func (q *QueueList) Mark(path string) Mark {
	return q.marks[path]
}

// ClearMarks resets every file to MarkQueued.
func (q *QueueList) ClearMarks() {
	q.marks = make(map[string]Mark)
}

// Selected returns the index of the selected file.
func (q *QueueList) Selected() int {
	return q.selected
}

// SelectedItem returns the selected file, if any.
func (q *QueueList) SelectedItem() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	return q.items[q.selected], true
}

// MoveUp moves selection up.
func (q *QueueList) MoveUp() {
	if q.selected > 0 {
		q.selected--
	}
}

// MoveDown moves selection down.
func (q *QueueList) MoveDown() {
	if q.selected < len(q.items)-1 {
		q.selected++
	}
}

// SetDimensions sets the component dimensions.
func (q *QueueList) SetDimensions(width, height int) {
	q.width = width
	q.height = height
}

// Count returns the number of listed files.
func (q *QueueList) Count() int {
	return len(q.items)
}

// IsEmpty returns whether the list is empty.
func (q *QueueList) IsEmpty() bool {
	return len(q.items) == 0
}
