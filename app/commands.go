package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hivespace/hivechat/model"
)

// command is one slash command. Args follows the usage convention of
// <required> and [optional].
type command struct {
	Name        string
	Args        string
	Description string
}

var commands = []command{
	{Name: "/new", Args: "[title]", Description: "Start a new chat"},
	{Name: "/sessions", Description: "Browse chats in the sidebar"},
	{Name: "/switch", Args: "<n|id>", Description: "Open a chat by list number or ID"},
	{Name: "/refresh", Description: "Reload the chat list"},
	{Name: "/clear", Description: "Clear the current chat"},
	{Name: "/export", Description: "Save the current chat as a text file"},
	{Name: "/copy", Description: "Copy the last reply"},
	{Name: "/zoom", Args: "[n]", Description: "Show image n, or the newest"},
	{Name: "/theme", Args: "<name>", Description: "Switch color theme"},
	{Name: "/help", Description: "Show keys and commands"},
	{Name: "/quit", Description: "Exit"},
}

var errUnknownCommand = errors.New("unknown command")

// parseCommand splits "/name arg..." into the command and its trimmed
// argument. Input that does not start with "/" is not a command.
func parseCommand(text string) (command, string, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return command{}, "", errUnknownCommand
	}
	name, arg, _ := strings.Cut(text, " ")
	name = strings.ToLower(name)
	if name == "/exit" {
		name = "/quit"
	}
	for _, c := range commands {
		if c.Name == name {
			return c, strings.TrimSpace(arg), nil
		}
	}
	return command{}, "", fmt.Errorf("%w %s", errUnknownCommand, name)
}

// isCommand reports whether text should be run as a command rather than
// sent. A leading "//" escapes a message that starts with a slash.
func isCommand(text string) bool {
	text = strings.TrimSpace(text)
	return strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "//")
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	return names
}

func paletteItems() []model.PaletteItem {
	items := make([]model.PaletteItem, len(commands))
	for i, c := range commands {
		items[i] = model.PaletteItem{Name: c.Name, Args: c.Args, Description: c.Description}
	}
	return items
}
