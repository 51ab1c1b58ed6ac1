package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{name: "quit", binding: km.Quit, keys: []string{"q", "ctrl+c"}},
		{name: "help", binding: km.Help, keys: []string{"?"}},
		{name: "back", binding: km.Back, keys: []string{"esc"}},
		{name: "up", binding: km.Up, keys: []string{"up", "k"}},
		{name: "down", binding: km.Down, keys: []string{"down", "j"}},
		{name: "add", binding: km.Add, keys: []string{"a"}},
		{name: "remove", binding: km.Remove, keys: []string{"d", "delete"}},
		{name: "clear", binding: km.Clear, keys: []string{"X"}},
		{name: "convert", binding: km.Convert, keys: []string{"enter", "c"}},
		{name: "cancel", binding: km.Cancel, keys: []string{"esc"}},
		{name: "quality up", binding: km.QualityUp, keys: []string{"+", "="}},
		{name: "quality down", binding: km.QualityDown, keys: []string{"-", "_"}},
		{name: "lossless", binding: km.Lossless, keys: []string{"l"}},
		{name: "output", binding: km.Output, keys: []string{"o"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "add", help[0].Help().Desc)
	assert.Equal(t, "quit", help[3].Help().Desc)
}

func TestKeyMap_ConvertingHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ConvertingHelp()

	require.Len(t, help, 2)
	assert.Equal(t, "cancel", help[0].Help().Desc)
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	require.Len(t, groups, 4)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		keyStr  string
		binding key.Binding
		want    bool
	}{
		{name: "quit q", keyStr: "q", binding: km.Quit, want: true},
		{name: "quit ctrl+c", keyStr: "ctrl+c", binding: km.Quit, want: true},
		{name: "convert c", keyStr: "c", binding: km.Convert, want: true},
		{name: "plus raises quality", keyStr: "+", binding: km.QualityUp, want: true},
		{name: "lossless does not convert", keyStr: "l", binding: km.Convert, want: false},
		{name: "empty", keyStr: "", binding: km.Add, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.keyStr, tt.binding))
		})
	}
}
