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

func TestDefaultKeyMap_QuitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Quit.Keys()
	assert.Contains(t, keys, "q")
	assert.Contains(t, keys, "ctrl+c")
}

func TestDefaultKeyMap_ToggleIsSpace(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches(" ", km.Toggle))
	assert.Equal(t, "space", km.Toggle.Help().Key)
}

func TestDefaultKeyMap_RotateBindingsDiffer(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("r", km.RotateCW))
	assert.True(t, Matches("R", km.RotateCCW))
	assert.False(t, Matches("R", km.RotateCW))
}

func TestDefaultKeyMap_Presets(t *testing.T) {
	km := DefaultKeyMap()

	for s, b := range map[string]key.Binding{"1": km.First10, "2": km.Last10, "3": km.FirstHalf, "4": km.All} {
		assert.True(t, Matches(s, b), s)
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	assert.NotEmpty(t, bindings)
	for _, b := range bindings {
		assert.NotEmpty(t, b.Help().Desc)
	}
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	assert.Len(t, groups, 4)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestMatches(t *testing.T) {
	binding := key.NewBinding(key.WithKeys("a", "b"))

	assert.True(t, Matches("a", binding))
	assert.True(t, Matches("b", binding))
	assert.False(t, Matches("c", binding))
}
