package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dreamswag/ci5dev/internal/logger"
)

type KeyHandler func(m Model) (Model, tea.Cmd)

type CommandHandler func(m Model, args []string) (Model, tea.Cmd)

// KeyBinding maps keys to a handler in the listed states. Bindings with
// no Description are active but left out of the top bar.
type KeyBinding struct {
	Keys        []string
	Description string
	AvailableIn []ViewState
	handler     KeyHandler
}

func (b *KeyBinding) availableIn(state ViewState) bool {
	for _, s := range b.AvailableIn {
		if s == state {
			return true
		}
	}
	return false
}

type CommandRegistry struct {
	keyBindings []*KeyBinding
	commands    map[CommandType]CommandHandler
}

var allStates = []ViewState{ViewRegistry, ViewDetail, ViewSources}

func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{commands: make(map[CommandType]CommandHandler)}
	r.registerKeys()
	r.registerCommands()
	return r
}

func (r *CommandRegistry) bind(keys []string, desc string, states []ViewState, h KeyHandler) {
	r.keyBindings = append(r.keyBindings, &KeyBinding{
		Keys:        keys,
		Description: desc,
		AvailableIn: states,
		handler:     h,
	})
}

func (r *CommandRegistry) registerKeys() {
	r.bind([]string{"ctrl+c"}, "", allStates, handleForceQuitKey)
	r.bind([]string{":"}, "command", allStates, handleCommandBarKey)
	r.bind([]string{"?"}, "help", allStates, handleHelpKey)
	r.bind([]string{"q"}, "back/quit", allStates, handleQuitKey)
	r.bind([]string{"esc"}, "", allStates, handleEscKey)

	registry := []ViewState{ViewRegistry}
	r.bind([]string{"enter"}, "details", registry, handleOpenDetailKey)
	r.bind([]string{"tab"}, "next view", registry, handleNextViewKey)
	r.bind([]string{"shift+tab"}, "", registry, handlePrevViewKey)
	r.bind([]string{"/"}, "search", registry, handleSearchKey)
	r.bind([]string{"s"}, "sources", registry, handleSourcesKey)
	r.bind([]string{"r"}, "reload", []ViewState{ViewRegistry, ViewSources}, handleReloadKey)

	detail := []ViewState{ViewDetail}
	r.bind([]string{"v"}, "vote", detail, handleVoteKey)
	r.bind([]string{"t"}, "signals", detail, handleSignalsKey)
	r.bind([]string{"c"}, "copy install", detail, handleCopyInstallKey)
	r.bind([]string{"o"}, "open source", detail, handleOpenSourceKey)

	r.bind([]string{"S"}, "submit cork", []ViewState{ViewRegistry, ViewDetail}, handleSubmitKey)

	sources := []ViewState{ViewSources}
	r.bind([]string{"enter", " "}, "toggle", sources, handleToggleSourceKey)
	r.bind([]string{"a"}, "add source", sources, handleAddSourceKey)
	r.bind([]string{"d"}, "remove source", sources, handleRemoveSourceKey)

	r.bind([]string{"L"}, "logs", allStates, handleLogsKey)
}

func (r *CommandRegistry) registerCommands() {
	r.commands[CommandQuit] = func(m Model, _ []string) (Model, tea.Cmd) { return m, tea.Quit }
	r.commands[CommandSources] = func(m Model, _ []string) (Model, tea.Cmd) { return handleSourcesKey(m) }
	r.commands[CommandView] = commandView
	r.commands[CommandSearch] = commandSearch
	r.commands[CommandLogin] = func(m Model, _ []string) (Model, tea.Cmd) { return m.startLogin() }
	r.commands[CommandLogout] = func(m Model, _ []string) (Model, tea.Cmd) { return m.confirmLogout() }
	r.commands[CommandVerify] = func(m Model, _ []string) (Model, tea.Cmd) { return m.startVerify() }
	r.commands[CommandSubmit] = func(m Model, _ []string) (Model, tea.Cmd) { return handleSubmitKey(m) }
	r.commands[CommandReload] = func(m Model, _ []string) (Model, tea.Cmd) { return handleReloadKey(m) }
	r.commands[CommandLogs] = func(m Model, _ []string) (Model, tea.Cmd) { return handleLogsKey(m) }
	r.commands[CommandHelp] = func(m Model, _ []string) (Model, tea.Cmd) { return handleHelpKey(m) }
}

// HandleKey runs the first binding for key that applies to the current
// state.
func (r *CommandRegistry) HandleKey(m Model, key string) (Model, tea.Cmd, bool) {
	for _, b := range r.keyBindings {
		if !b.availableIn(m.state) {
			continue
		}
		for _, k := range b.Keys {
			if k == key {
				next, cmd := b.handler(m)
				return next, cmd, true
			}
		}
	}
	return m, nil, false
}

func (r *CommandRegistry) ExecuteCommand(m Model, name string, args []string) (Model, tea.Cmd) {
	cmd := ParseCommand(":" + strings.Join(append([]string{name}, args...), " "))
	handler, ok := r.commands[cmd.Type]
	if !ok {
		logger.Log("UI: Unknown command %q", name)
		m.statusBar.SetMessage(fmt.Sprintf("Unknown command: %s (try :help)", name), true)
		return m, nil
	}
	return handler(m, cmd.Args)
}

// GetContextualShortcuts lists "<key> description" for the bindings shown
// in state.
func (r *CommandRegistry) GetContextualShortcuts(state ViewState) []string {
	var out []string
	for _, b := range r.keyBindings {
		if b.Description == "" || !b.availableIn(state) {
			continue
		}
		key := b.Keys[0]
		if key == " " {
			key = "space"
		}
		out = append(out, fmt.Sprintf("<%s> %s", key, b.Description))
	}
	return out
}

func handleForceQuitKey(m Model) (Model, tea.Cmd) {
	return m, tea.Quit
}

func handleCommandBarKey(m Model) (Model, tea.Cmd) {
	m.commandBar.Activate()
	return m, nil
}

func handleHelpKey(m Model) (Model, tea.Cmd) {
	m.showHelp = true
	return m, nil
}

func handleQuitKey(m Model) (Model, tea.Cmd) {
	if m.state == ViewRegistry {
		return m, tea.Quit
	}
	return m.navigateBack()
}

func handleEscKey(m Model) (Model, tea.Cmd) {
	if m.state == ViewRegistry {
		if m.corkList.SearchQuery() != "" {
			m.corkList.ClearSearch()
			m.refreshTopBar()
		}
		return m, nil
	}
	return m.navigateBack()
}

func handleOpenDetailKey(m Model) (Model, tea.Cmd) {
	row := m.corkList.GetSelectedRow()
	if row == nil {
		return m, nil
	}
	return m.openDetail(*row)
}

func handleNextViewKey(m Model) (Model, tea.Cmd) {
	m.corkList.NextView()
	m.refreshTopBar()
	return m, nil
}

func handlePrevViewKey(m Model) (Model, tea.Cmd) {
	m.corkList.PrevView()
	m.refreshTopBar()
	return m, nil
}

func handleSearchKey(m Model) (Model, tea.Cmd) {
	m.corkList.ActivateSearch()
	return m, nil
}

func handleSourcesKey(m Model) (Model, tea.Cmd) {
	m.state = ViewSources
	m.refreshSources()
	m.refreshTopBar()
	return m, nil
}

func handleReloadKey(m Model) (Model, tea.Cmd) {
	m.statusBar.SetMessage("Reloading registry...", false)
	return m, m.reload()
}

func handleVoteKey(m Model) (Model, tea.Cmd) {
	d := m.corkDetail.GetDetail()
	if d == nil {
		return m, nil
	}
	if !m.app.Auth.LoggedIn() {
		return m.startLogin()
	}
	m.voteView.Activate(d.Key)
	return m, nil
}

func handleSignalsKey(m Model) (Model, tea.Cmd) {
	s := m.corkDetail.GetSignals()
	if s == nil {
		m.statusBar.SetMessage("Signals are still loading", false)
		return m, nil
	}
	m.signalsView.Activate(*s)
	return m, nil
}

func handleCopyInstallKey(m Model) (Model, tea.Cmd) {
	d := m.corkDetail.GetDetail()
	if d == nil {
		return m, nil
	}
	return m.copy(d.InstallCommand, "Copied: "+d.InstallCommand)
}

func handleOpenSourceKey(m Model) (Model, tea.Cmd) {
	d := m.corkDetail.GetDetail()
	if d == nil || d.SourceURL == "" {
		return m, nil
	}
	return m, m.open(d.SourceURL)
}

func handleSubmitKey(m Model) (Model, tea.Cmd) {
	if m.state == ViewSources {
		return m, nil
	}
	m.submitView.Activate()
	return m, nil
}

func handleToggleSourceKey(m Model) (Model, tea.Cmd) {
	src := m.sourcesView.GetSelectedSource()
	if src == nil {
		return m, nil
	}
	enabled, err := m.app.Sources.Toggle(src.ID)
	if err != nil {
		m.statusBar.SetMessage(err.Error(), true)
		return m, nil
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	m.statusBar.SetMessage(fmt.Sprintf("Source %s; reloading...", state), false)
	m.refreshSources()
	return m, m.reload()
}

func handleAddSourceKey(m Model) (Model, tea.Cmd) {
	m.sourcesView.EnterAddMode()
	return m, nil
}

func handleRemoveSourceKey(m Model) (Model, tea.Cmd) {
	src := m.sourcesView.GetSelectedSource()
	if src == nil {
		return m, nil
	}
	m.confirmAction = confirmRemoveSource
	m.confirmTarget = src.ID
	m.confirmView.Activate("Remove source?", src.URL)
	return m, nil
}

func handleLogsKey(m Model) (Model, tea.Cmd) {
	m.logsView.Activate()
	return m, nil
}

func commandView(m Model, args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusBar.SetMessage("Usage: :view <official|community|top|source>", true)
		return m, nil
	}
	id := args[0]
	if src, err := m.app.Sources.Find(id); err == nil {
		id = src.ID
	}
	if !m.corkList.SelectView(id) {
		m.statusBar.SetMessage(fmt.Sprintf("Unknown view: %s", args[0]), true)
		return m, nil
	}
	m.state = ViewRegistry
	m.refreshTopBar()
	return m, nil
}

func commandSearch(m Model, args []string) (Model, tea.Cmd) {
	m.state = ViewRegistry
	m.corkList.Search(strings.Join(args, " "))
	m.refreshTopBar()
	return m, nil
}
