// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tiffheif/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady      State = "ready"
	StateInput      State = "input"
	StateConverting State = "converting"
	StateCancelling State = "cancelling"
	StateDone       State = "done"
	StateError      State = "error"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	queued  int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	// The bar's own padding counts towards its width.
	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	padding := max(1, inner-lipgloss.Width(left)-lipgloss.Width(right))

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state and message.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateConverting:
		return s.styles.Normal.Render(s.withMessage("Converting"))
	case StateCancelling:
		return s.styles.Warning.Render("Cancelling, finishing files in progress...")
	case StateDone:
		return s.styles.Success.Render(s.withMessage("Done"))
	case StateError:
		return s.styles.Error.Render(s.withMessage("Error"))
	case StateInput:
		return s.styles.Normal.Render(s.withMessage("Input"))
	case StateReady:
		if s.queued > 0 {
			return s.styles.Normal.Render(fmt.Sprintf("%d file(s) queued", s.queued))
		}
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) withMessage(prefix string) string {
	if s.message == "" {
		return prefix
	}
	return prefix + ": " + s.message
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateConverting, StateCancelling:
		bindings = s.keymap.ConvertingHelp()
	case StateInput:
		bindings = s.keymap.InputHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the message shown beside the state.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetQueued sets the number of queued files shown while ready.
func (s *Bar) SetQueued(count int) {
	s.queued = count
}

// Queued returns the number of queued files.
func (s *Bar) Queued() int {
	return s.queued
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
