package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		name string
		arg  string
	}{
		{"/new", "/new", ""},
		{"/new  Trip planning ", "/new", "Trip planning"},
		{"/SWITCH 2", "/switch", "2"},
		{"/exit", "/quit", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, arg, err := parseCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestParseCommand_Unknown(t *testing.T) {
	_, _, err := parseCommand("/frobnicate now")
	assert.ErrorIs(t, err, errUnknownCommand)
	assert.Contains(t, err.Error(), "/frobnicate")

	_, _, err = parseCommand("hello")
	assert.ErrorIs(t, err, errUnknownCommand)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand("/help"))
	assert.True(t, isCommand("  /help"))
	assert.False(t, isCommand("//etc/hosts is a file"))
	assert.False(t, isCommand("hello /help"))
}

func TestPaletteItemsMirrorCommands(t *testing.T) {
	items := paletteItems()
	require.Len(t, items, len(commands))
	for i, c := range commands {
		assert.Equal(t, c.Name, items[i].Name)
		assert.Equal(t, c.Args == "<n|id>" || c.Args == "<name>", items[i].NeedsArg(), c.Name)
	}
	assert.Contains(t, commandNames(), "/export")
}
