package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		want bool
		bind func(*KeyMap) bool
	}{
		{"q quits", true, func(k *KeyMap) bool { return Matches("q", k.Quit) }},
		{"ctrl+c quits", true, func(k *KeyMap) bool { return Matches("ctrl+c", k.Quit) }},
		{"enter submits", true, func(k *KeyMap) bool { return Matches("enter", k.Submit) }},
		{"r refreshes", true, func(k *KeyMap) bool { return Matches("r", k.Refresh) }},
		{"slash starts a query", true, func(k *KeyMap) bool { return Matches("/", k.NewQuery) }},
		{"x does nothing", false, func(k *KeyMap) bool { return Matches("x", k.Quit) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bind(km))
		})
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Len(t, km.ResultsHelp(), 5)
	assert.Len(t, km.FullHelp(), 3)
}
