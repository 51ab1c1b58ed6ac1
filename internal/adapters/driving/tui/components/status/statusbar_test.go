package status

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.Queued())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilArguments(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		queued  int
		want    []string
	}{
		{name: "ready empty", state: StateReady, want: []string{"Ready", "a: add", "q: quit"}},
		{name: "ready queued", state: StateReady, queued: 3, want: []string{"3 file(s) queued"}},
		{name: "converting", state: StateConverting, message: "2/5", want: []string{"Converting: 2/5", "esc: cancel"}},
		{name: "cancelling", state: StateCancelling, want: []string{"Cancelling"}},
		{name: "done", state: StateDone, message: "converted 4 of 5", want: []string{"Done: converted 4 of 5"}},
		{name: "error", state: StateError, message: "no output directory", want: []string{"Error: no output directory"}},
		{name: "input", state: StateInput, want: []string{"enter: confirm", "esc: back"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetQueued(tt.queued)

			view := bar.View()

			for _, w := range tt.want {
				assert.Contains(t, view, w)
			}
		})
	}
}

func TestStatusBar_View_FitsOnOneLine(t *testing.T) {
	tests := []struct {
		state    State
		lastHint string
	}{
		{StateReady, "q: quit"},
		{StateInput, "esc: back"},
		{StateConverting, "q: quit"},
		{StateDone, "q: quit"},
	}

	for _, width := range []int{60, 80, 120} {
		for _, tt := range tests {
			bar := NewBar(nil, nil)
			bar.SetWidth(width)
			bar.SetState(tt.state)

			view := bar.View()

			assert.NotContains(t, view, "\n", "state %s at width %d", tt.state, width)
			assert.Equal(t, width, lipgloss.Width(view), "state %s at width %d", tt.state, width)
			assert.True(t, strings.HasSuffix(strings.TrimSpace(view), tt.lastHint),
				"state %s at width %d", tt.state, width)
		}
	}
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetQueued(2)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 2, bar.Queued())
}
