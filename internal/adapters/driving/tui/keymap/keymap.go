// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the help view.
	Help key.Binding

	// Back leaves an input or the help view.
	Back key.Binding

	// Up navigates up in the queue.
	Up key.Binding

	// Down navigates down in the queue.
	Down key.Binding

	// Add prompts for a file or folder to queue.
	Add key.Binding

	// Remove drops the selected file from the queue.
	Remove key.Binding

	// Clear empties the queue.
	Clear key.Binding

	// Convert starts converting the queue.
	Convert key.Binding

	// Cancel stops a running conversion after the files in progress.
	Cancel key.Binding

	// QualityUp raises the lossy quality.
	QualityUp key.Binding

	// QualityDown lowers the lossy quality.
	QualityDown key.Binding

	// Lossless toggles lossless HEIF output.
	Lossless key.Binding

	// Output prompts for the output directory.
	Output key.Binding

	// Submit confirms an input.
	Submit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Clear: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear"),
		),
		Convert: key.NewBinding(
			key.WithKeys("enter", "c"),
			key.WithHelp("enter", "convert"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		QualityUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "quality up"),
		),
		QualityDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "quality down"),
		),
		Lossless: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "lossless"),
		),
		Output: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "output dir"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
	}
}

// ShortHelp returns the hints shown while idle.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Convert, k.Help, k.Quit}
}

// ConvertingHelp returns the hints shown while a conversion runs.
func (k *KeyMap) ConvertingHelp() []key.Binding {
	return []key.Binding{k.Cancel, k.Quit}
}

// InputHelp returns the hints shown while an input is focused.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Remove, k.Clear},
		{k.Convert, k.Cancel},
		{k.QualityUp, k.QualityDown, k.Lossless, k.Output},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
