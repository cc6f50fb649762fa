package ui

import (
	"strings"
)

type CommandType int

const (
	CommandUnknown CommandType = iota
	CommandQuit
	CommandSources
	CommandView
	CommandSearch
	CommandLogin
	CommandLogout
	CommandVerify
	CommandSubmit
	CommandReload
	CommandLogs
	CommandHelp
)

type Command struct {
	Type CommandType
	Args []string
}

func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)

	if !strings.HasPrefix(input, ":") {
		return Command{Type: CommandUnknown}
	}

	input = strings.TrimPrefix(input, ":")
	parts := strings.Fields(input)

	if len(parts) == 0 {
		return Command{Type: CommandUnknown}
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "q", "quit":
		return Command{Type: CommandQuit, Args: args}
	case "s", "sources":
		return Command{Type: CommandSources, Args: args}
	case "v", "view":
		return Command{Type: CommandView, Args: args}
	case "f", "find", "search":
		return Command{Type: CommandSearch, Args: args}
	case "login":
		return Command{Type: CommandLogin, Args: args}
	case "logout":
		return Command{Type: CommandLogout, Args: args}
	case "verify":
		return Command{Type: CommandVerify, Args: args}
	case "submit":
		return Command{Type: CommandSubmit, Args: args}
	case "r", "reload":
		return Command{Type: CommandReload, Args: args}
	case "logs":
		return Command{Type: CommandLogs, Args: args}
	case "h", "help":
		return Command{Type: CommandHelp, Args: args}
	default:
		return Command{Type: CommandUnknown, Args: args}
	}
}

// commandHelp lines for the help overlay, in display order.
var commandHelp = []struct {
	Usage       string
	Description string
}{
	{":view <official|community|top|source>", "Switch the registry tab"},
	{":search <text>", "Filter every collection by name or description"},
	{":sources", "Manage external corks.json sources"},
	{":reload", "Fetch the manifest and every enabled source again"},
	{":login", "Connect GitHub with a device code"},
	{":verify", "Prove you run ci5 on real hardware"},
	{":logout", "Disconnect and forget the hardware session"},
	{":submit", "Propose a new cork"},
	{":logs", "Show the session log"},
	{":quit", "Exit"},
}
