package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/auth"
	"github.com/dreamswag/ci5dev/internal/browser"
	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/gate"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	"github.com/dreamswag/ci5dev/internal/registry"
	"github.com/dreamswag/ci5dev/internal/render"
	"github.com/dreamswag/ci5dev/internal/submission"
	"github.com/dreamswag/ci5dev/internal/ui/components"
	"github.com/dreamswag/ci5dev/internal/ui/views"
	"github.com/dreamswag/ci5dev/internal/verify"
)

type ViewState int

const (
	ViewRegistry ViewState = iota
	ViewDetail
	ViewSources
)

func (s ViewState) String() string {
	switch s {
	case ViewDetail:
		return "detail"
	case ViewSources:
		return "sources"
	default:
		return "registry"
	}
}

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmLogout
	confirmRemoveSource
)

// sink forwards flow events and late action results to the program, in
// order, from a goroutine of its own: listeners also fire inside Update
// (logout, cancel) where a direct Send would block. Messages sent before
// a program is attached are queued.
type sink struct {
	mu     sync.Mutex
	ch     chan tea.Msg
	queued []tea.Msg
}

const sinkBuffer = 64

func (s *sink) attach(ctx context.Context, send func(tea.Msg)) {
	s.mu.Lock()
	ch := make(chan tea.Msg, sinkBuffer)
	queued := s.queued
	s.queued = nil
	s.ch = ch
	s.mu.Unlock()

	go func() {
		for _, msg := range queued {
			send(msg)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				send(msg)
			}
		}
	}()
}

func (s *sink) Send(msg tea.Msg) {
	s.mu.Lock()
	ch := s.ch
	if ch == nil {
		s.queued = append(s.queued, msg)
	}
	s.mu.Unlock()
	if ch != nil {
		ch <- msg
	}
}

func (s *sink) drain() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queued
	s.queued = nil
	return out
}

type Model struct {
	state  ViewState
	width  int
	height int

	topBar     *components.TopBarModel
	statusBar  *components.StatusBarModel
	commandBar *components.CommandBarModel

	corkList    *views.CorkListViewModel
	corkDetail  *views.CorkDetailViewModel
	sourcesView *views.SourcesViewModel
	submitView  *views.SubmitViewModel
	voteView    *views.VoteViewModel
	signalsView *views.SignalsViewModel
	confirmView *views.ConfirmViewModel
	pendingView *views.PendingViewModel
	logsView    *views.LogsViewModel

	showHelp      bool
	confirmAction confirmAction
	confirmTarget string

	app             *app.App
	renderer        *render.Renderer
	ctx             context.Context
	events          *sink
	copyText        func(string) error
	commandRegistry *CommandRegistry
}

func NewModel(ctx context.Context, a *app.App) Model {
	r := a.Renderer()
	return Model{
		state:           ViewRegistry,
		topBar:          components.NewTopBar(),
		statusBar:       components.NewStatusBar(),
		commandBar:      components.NewCommandBar(),
		corkList:        views.NewCorkListView(r),
		corkDetail:      views.NewCorkDetailView(),
		sourcesView:     views.NewSourcesView(),
		submitView:      views.NewSubmitView(),
		voteView:        views.NewVoteView(),
		signalsView:     views.NewSignalsView(),
		confirmView:     views.NewConfirmView(),
		pendingView:     views.NewPendingView(),
		logsView:        views.NewLogsView(),
		app:             a,
		renderer:        r,
		ctx:             ctx,
		events:          &sink{},
		copyText:        browser.Copy,
		commandRegistry: NewCommandRegistry(),
	}
}

func (m Model) Init() tea.Cmd {
	m.statusBar.SetMessage("Loading registry...", false)
	m.refreshTopBar()
	return tea.Batch(m.reload(), m.startup())
}

// Messages.

type RegistryLoadedMsg struct {
	Registry *domain.Registry
	Err      error
}

type StartupDoneMsg struct{}

type AuthEventMsg struct {
	Event auth.Event
}

type VerifyEventMsg struct {
	Event verify.Event
}

type SignalsLoadedMsg struct {
	Summary domain.SignalSummary
}

// GateResultMsg is the immediate answer of the action gate for a vote or
// a submission.
type GateResultMsg struct {
	Action  string
	Outcome gate.Outcome
	Err     error
}

type IssueResultMsg struct {
	Result app.IssueResult
}

type ErrorMsg struct {
	err error
}

type SuccessMsg struct {
	message string
}

func (m Model) isInInputMode() bool {
	return m.commandBar.IsActive() ||
		m.showHelp ||
		m.confirmView.IsActive() ||
		m.pendingView.IsActive() ||
		m.submitView.IsActive() ||
		m.voteView.IsActive() ||
		m.signalsView.IsActive() ||
		m.logsView.IsActive() ||
		(m.state == ViewRegistry && m.corkList.IsSearching()) ||
		(m.state == ViewSources && m.sourcesView.Mode == views.SourcesModeAdd)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.topBar.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.commandBar.SetWidth(msg.Width)

		contentHeight := msg.Height - topBarHeight - 1
		m.corkList.SetSize(msg.Width, contentHeight)
		m.corkDetail.SetSize(msg.Width, contentHeight)
		m.sourcesView.SetSize(msg.Width, contentHeight)
		m.submitView.SetSize(msg.Width, contentHeight)
		m.voteView.SetSize(msg.Width, contentHeight)
		m.signalsView.SetSize(msg.Width, contentHeight)
		m.confirmView.SetSize(msg.Width, contentHeight)
		m.pendingView.SetSize(msg.Width, contentHeight)
		m.logsView.SetSize(msg.Width, contentHeight)
		return m, nil

	case tea.KeyMsg:
		if m.isInInputMode() {
			return m.handleInputKey(msg)
		}

		newModel, cmd, handled := m.commandRegistry.HandleKey(m, msg.String())
		if handled {
			newModel.refreshTopBar()
			return newModel, cmd
		}

	case RegistryLoadedMsg:
		return m.handleRegistryLoaded(msg)

	case StartupDoneMsg:
		m.refreshIdentity()
		return m, nil

	case AuthEventMsg:
		return m.handleAuthEvent(msg.Event)

	case VerifyEventMsg:
		return m.handleVerifyEvent(msg.Event)

	case SignalsLoadedMsg:
		m.corkDetail.SetSignals(msg.Summary)
		return m, nil

	case GateResultMsg:
		return m.handleGateResult(msg)

	case IssueResultMsg:
		return m.handleIssueResult(msg.Result)

	case ErrorMsg:
		m.statusBar.SetMessage(msg.err.Error(), true)
		return m, nil

	case SuccessMsg:
		m.statusBar.Set(msg.message, components.MessageSuccess)
		return m, nil
	}

	if m.pendingView.IsActive() {
		return m, m.pendingView.Update(msg)
	}

	var cmd tea.Cmd
	switch m.state {
	case ViewRegistry:
		cmd = m.corkList.Update(msg)
	case ViewDetail:
		cmd = m.corkDetail.Update(msg)
	case ViewSources:
		cmd = m.sourcesView.Update(msg)
	}
	return m, cmd
}

// handleInputKey routes a key to whichever overlay or input owns the
// keyboard, topmost first.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case m.commandBar.IsActive():
		switch key {
		case "enter":
			return m.handleCommand()
		case "esc":
			m.commandBar.Deactivate()
			return m, nil
		}
		return m, m.commandBar.Update(msg)

	case m.confirmView.IsActive():
		return m.handleConfirmKey(key)

	case m.pendingView.IsActive():
		return m.handlePendingKey(key)

	case m.showHelp:
		if key == "esc" || key == "q" || key == "?" || key == "enter" {
			m.showHelp = false
		}
		return m, nil

	case m.submitView.IsActive():
		switch key {
		case "esc":
			m.submitView.Deactivate()
			return m, nil
		case "ctrl+s":
			return m.submitCork()
		}
		return m, m.submitView.Update(msg)

	case m.voteView.IsActive():
		switch key {
		case "esc":
			m.voteView.Deactivate()
			return m, nil
		case "ctrl+s", "enter":
			return m.submitVote()
		}
		return m, m.voteView.Update(msg)

	case m.signalsView.IsActive():
		switch key {
		case "esc", "q":
			m.signalsView.Deactivate()
			return m, nil
		case "o":
			if s := m.signalsView.Newest(); s != nil && s.URL != "" {
				return m, m.open(s.URL)
			}
			return m, nil
		}
		return m, m.signalsView.Update(msg)

	case m.logsView.IsActive():
		if key == "esc" || key == "q" {
			m.logsView.Deactivate()
			return m, nil
		}
		return m, m.logsView.Update(msg)

	case m.state == ViewRegistry && m.corkList.IsSearching():
		switch key {
		case "enter":
			m.corkList.CloseSearch()
		case "esc":
			m.corkList.ClearSearch()
		default:
			cmd := m.corkList.Update(msg)
			m.refreshTopBar()
			return m, cmd
		}
		m.refreshTopBar()
		return m, nil

	case m.state == ViewSources && m.sourcesView.Mode == views.SourcesModeAdd:
		switch key {
		case "esc":
			m.sourcesView.ExitAddMode()
			return m, nil
		case "enter":
			return m.addSource()
		}
		return m, m.sourcesView.Update(msg)
	}

	return m, nil
}

func (m Model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "right", "h", "l", "tab":
		m.confirmView.Toggle()
		return m, nil
	case "y":
		return m.resolveConfirm(true)
	case "n", "esc":
		return m.resolveConfirm(false)
	case "enter":
		return m.resolveConfirm(m.confirmView.Confirmed())
	}
	return m, nil
}

func (m Model) resolveConfirm(yes bool) (tea.Model, tea.Cmd) {
	action, target := m.confirmAction, m.confirmTarget
	m.confirmView.Deactivate()
	m.confirmAction = confirmNone
	m.confirmTarget = ""
	if !yes {
		return m, nil
	}

	switch action {
	case confirmLogout:
		m.app.Auth.Logout()
		m.refreshIdentity()
		m.statusBar.SetMessage("Disconnected from Ci5", false)
	case confirmRemoveSource:
		if err := m.app.Sources.Remove(target); err != nil {
			m.statusBar.SetMessage(err.Error(), true)
			return m, nil
		}
		m.refreshSources()
		m.statusBar.SetMessage("Source removed; reloading...", false)
		return m, m.reload()
	}
	return m, nil
}

func (m Model) handlePendingKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		switch m.pendingView.Kind() {
		case views.PendingLogin:
			m.app.Auth.Cancel()
		case views.PendingVerify:
			m.app.Verify.Cancel()
		}
		m.pendingView.Close()
		m.statusBar.SetMessage("Cancelled", false)
		return m, nil
	case "c":
		if m.pendingView.Kind() == views.PendingLogin {
			code := m.pendingView.Code().UserCode
			return m.copy(code, "Copied code "+code)
		}
		return m.copy(m.pendingView.Command(), "Copied verify command")
	case "o":
		if m.pendingView.Kind() == views.PendingLogin {
			return m, m.open(m.pendingView.Code().VerificationURI)
		}
	}
	return m, nil
}

func (m Model) handleCommand() (tea.Model, tea.Cmd) {
	input := m.commandBar.Value()
	m.commandBar.Remember(input)
	m.commandBar.Deactivate()

	parts := strings.Fields(strings.TrimPrefix(input, ":"))
	if len(parts) == 0 {
		return m, nil
	}

	logger.Log("UI: Executing command: %s %v", parts[0], parts[1:])
	next, cmd := m.commandRegistry.ExecuteCommand(m, parts[0], parts[1:])
	next.refreshTopBar()
	return next, cmd
}

func (m Model) handleRegistryLoaded(msg RegistryLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, app.ErrReloadSuperseded) {
		return m, nil
	}
	m.renderer = render.NewRenderer(msg.Registry, m.app.Config.GitHubWebURL)
	m.corkList.SetRenderer(m.renderer)
	m.refreshSources()
	m.refreshTopBar()

	switch {
	case errors.Is(msg.Err, registry.ErrOffline):
		m.statusBar.SetMessage("Registry unreachable: "+render.OfflineMode, true)
	case msg.Err != nil:
		m.statusBar.SetMessage(common.ExtractErrorMessage(msg.Err), true)
	default:
		text := fmt.Sprintf("Loaded %d official, %d community corks", msg.Registry.Official.Len(), msg.Registry.Community.Len())
		if failed := m.app.Sources.Failed(); failed > 0 {
			text += fmt.Sprintf(" (%d source(s) unavailable)", failed)
		}
		m.statusBar.SetMessage(text, false)
	}
	return m, nil
}

func (m Model) handleAuthEvent(ev auth.Event) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch ev.Kind {
	case auth.EventCodeIssued:
		if ev.Code != nil {
			cmd = m.pendingView.ShowLogin(*ev.Code)
		}
	case auth.EventLoggedIn:
		if m.pendingView.Kind() == views.PendingLogin {
			m.pendingView.Close()
		}
		if ev.User != nil {
			m.statusBar.Set("Connected as @"+ev.User.Login, components.MessageSuccess)
		}
	case auth.EventLoggedOut:
		m.statusBar.SetMessage("Logged out", false)
	case auth.EventCancelled:
		if m.pendingView.Kind() == views.PendingLogin {
			m.pendingView.Close()
		}
	case auth.EventTimeout:
		m.pendingView.Close()
		m.statusBar.SetMessage("Login timed out", true)
	case auth.EventFailed:
		if m.pendingView.Kind() == views.PendingLogin {
			m.pendingView.Close()
		}
		if ev.Err != nil {
			m.statusBar.SetMessage("Login failed: "+common.ExtractErrorMessage(ev.Err), true)
		}
	}
	m.refreshIdentity()
	return m, cmd
}

func (m Model) handleVerifyEvent(ev verify.Event) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch ev.Kind {
	case verify.EventChallengeIssued:
		cmd = m.pendingView.ShowVerify(ev.Command)
	case verify.EventVerified:
		if m.pendingView.Kind() == views.PendingVerify {
			m.pendingView.Close()
		}
		m.statusBar.Set("Hardware verified", components.MessageSuccess)
	case verify.EventCancelled:
		if m.pendingView.Kind() == views.PendingVerify {
			m.pendingView.Close()
		}
	case verify.EventTimeout:
		m.pendingView.Close()
		m.statusBar.SetMessage("Verification timed out", true)
	case verify.EventFailed:
		if m.pendingView.Kind() == views.PendingVerify {
			m.pendingView.Close()
		}
		if ev.Err != nil {
			m.statusBar.SetMessage("Verification failed: "+common.ExtractErrorMessage(ev.Err), true)
		}
	}
	m.refreshIdentity()
	return m, cmd
}

func (m Model) handleGateResult(msg GateResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, submission.ErrMissingField) || errors.Is(msg.Err, submission.ErrInvalidVote) {
			m.statusBar.SetMessage(msg.Err.Error(), true)
			return m, nil
		}
		m.statusBar.SetMessage(fmt.Sprintf("%s: %s", msg.Action, common.ExtractErrorMessage(msg.Err)), true)
		return m, nil
	}

	switch msg.Outcome {
	case gate.OutcomeLoginRequired:
		m.statusBar.SetMessage("Connect GitHub, then try again", false)
	case gate.OutcomeVerificationPending:
		m.statusBar.SetMessage("Verify your hardware; the "+msg.Action+" continues afterwards", false)
	case gate.OutcomeExecuted:
		m.statusBar.SetMessage("Opening the issue composer...", false)
	}
	return m, nil
}

func (m Model) handleIssueResult(res app.IssueResult) (tea.Model, tea.Cmd) {
	if res.Err != nil {
		text := common.ExtractErrorMessage(res.Err)
		if res.Issue.URL != "" {
			text += " · " + res.Issue.URL
		}
		m.statusBar.SetMessage(text, true)
		return m, nil
	}
	m.statusBar.Set("Issue composer opened: "+res.Issue.Title, components.MessageSuccess)
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.confirmView.IsActive():
		content = m.confirmView.View()
	case m.pendingView.IsActive():
		content = m.pendingView.View()
	case m.showHelp:
		content = m.helpView()
	case m.logsView.IsActive():
		content = m.logsView.View()
	case m.submitView.IsActive():
		content = m.submitView.View()
	case m.voteView.IsActive():
		content = m.voteView.View()
	case m.signalsView.IsActive():
		content = m.signalsView.View()
	default:
		switch m.state {
		case ViewRegistry:
			content = m.corkList.View()
		case ViewDetail:
			content = m.corkDetail.View()
		case ViewSources:
			content = m.sourcesView.View()
		}
	}

	topBar := m.topBar.View()
	if commandBar := m.commandBar.View(); commandBar != "" {
		return topBar + "\n" + content + "\n" + commandBar
	}
	return topBar + "\n" + content + "\n" + m.statusBar.View()
}

// topBarHeight is the title, a blank line, the context rows and padding.
const topBarHeight = 9

func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("ci5dev commands"))
	b.WriteString("\n")
	for _, c := range commandHelp {
		b.WriteString(UsageStyle.Render(fmt.Sprintf("%-42s", c.Usage)))
		b.WriteString(DescriptionStyle.Render(c.Description))
		b.WriteString("\n")
	}
	if !m.app.Auth.LoggedIn() {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("Voting and submitting need a GitHub login and a verified ci5 device."))
	}
	b.WriteString(HelpStyle.Render("Esc: Close"))
	return BorderStyle.Width(maxInt(20, m.width-4)).Render(b.String())
}

func (m Model) openDetail(row render.Row) (Model, tea.Cmd) {
	d := m.renderer.RenderRow(row)
	m.corkDetail.SetDetail(d)
	m.corkDetail.SetIdentity(m.app.Auth.LoggedIn(), m.app.Verify.IsVerified())
	m.state = ViewDetail
	m.refreshTopBar()
	return m, m.loadSignals(d.Key)
}

func (m Model) navigateBack() (Model, tea.Cmd) {
	switch m.state {
	case ViewDetail, ViewSources:
		logger.Log("UI: Navigating back from %s to registry", m.state)
		m.state = ViewRegistry
		m.refreshTopBar()
	}
	return m, nil
}

func (m Model) startLogin() (Model, tea.Cmd) {
	if m.app.Auth.LoggedIn() {
		m.statusBar.SetMessage("Already connected as @"+m.app.Login(), false)
		return m, nil
	}
	m.statusBar.SetMessage("Requesting device code...", false)
	ctx, a := m.ctx, m.app
	return m, func() tea.Msg {
		if err := a.Auth.StartLogin(ctx); err != nil {
			return ErrorMsg{err: fmt.Errorf("login: %s", common.ExtractErrorMessage(err))}
		}
		return nil
	}
}

func (m Model) startVerify() (Model, tea.Cmd) {
	if !m.app.Auth.LoggedIn() {
		return m.startLogin()
	}
	if m.app.Verify.IsVerified() {
		m.statusBar.SetMessage("Hardware already verified", false)
		return m, nil
	}
	ctx, a := m.ctx, m.app
	return m, func() tea.Msg {
		if _, err := a.Verify.RequestVerification(ctx); err != nil {
			return ErrorMsg{err: fmt.Errorf("verify: %s", common.ExtractErrorMessage(err))}
		}
		return nil
	}
}

func (m Model) confirmLogout() (Model, tea.Cmd) {
	if !m.app.Auth.LoggedIn() {
		m.statusBar.SetMessage("Not connected", false)
		return m, nil
	}
	m.confirmAction = confirmLogout
	m.confirmView.Activate("Disconnect from Ci5?", "Your GitHub token and hardware session will be forgotten.")
	return m, nil
}

func (m Model) submitCork() (tea.Model, tea.Cmd) {
	sub := m.submitView.GetSubmission()
	if err := submission.ValidateSubmission(sub); err != nil {
		m.statusBar.SetMessage(err.Error(), true)
		return m, nil
	}
	m.submitView.Deactivate()

	ctx, a, events := m.ctx, m.app, m.events
	return m, func() tea.Msg {
		outcome, err := a.Submit(ctx, sub, func(res app.IssueResult) {
			events.Send(IssueResultMsg{Result: res})
		})
		return GateResultMsg{Action: "submission", Outcome: outcome, Err: err}
	}
}

func (m Model) submitVote() (tea.Model, tea.Cmd) {
	cork, ram, status := m.voteView.Cork(), m.voteView.RAM(), m.voteView.Status()
	if _, err := submission.ValidateVote(cork, ram, status); err != nil {
		m.statusBar.SetMessage(err.Error(), true)
		return m, nil
	}
	m.voteView.Deactivate()

	ctx, a, events := m.ctx, m.app, m.events
	return m, func() tea.Msg {
		outcome, err := a.Vote(ctx, cork, ram, status, func(res app.IssueResult) {
			events.Send(IssueResultMsg{Result: res})
		})
		return GateResultMsg{Action: "vote", Outcome: outcome, Err: err}
	}
}

func (m Model) addSource() (tea.Model, tea.Cmd) {
	url, name := m.sourcesView.GetNewSource()
	src, err := m.app.Sources.Add(url, name)
	if err != nil {
		m.statusBar.SetMessage(err.Error(), true)
		return m, nil
	}
	m.sourcesView.ExitAddMode()
	m.refreshSources()
	m.statusBar.SetMessage("Added "+src.URL+"; reloading...", false)
	return m, m.reload()
}

func (m Model) copy(text, done string) (Model, tea.Cmd) {
	if err := m.copyText(text); err != nil {
		m.statusBar.SetMessage("Clipboard unavailable: "+text, true)
		return m, nil
	}
	m.statusBar.Set(done, components.MessageSuccess)
	return m, nil
}

func (m Model) open(url string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		if err := a.Open(url); err != nil {
			return ErrorMsg{err: fmt.Errorf("could not open %s", url)}
		}
		return nil
	}
}

func (m Model) reload() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		reg, err := a.Reload(ctx)
		return RegistryLoadedMsg{Registry: reg, Err: err}
	}
}

func (m Model) startup() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		a.Startup(ctx)
		return StartupDoneMsg{}
	}
}

func (m Model) loadSignals(cork string) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		return SignalsLoadedMsg{Summary: a.Signals(ctx, cork)}
	}
}

func (m Model) refreshIdentity() {
	loggedIn, verified := m.app.Auth.LoggedIn(), m.app.Verify.IsVerified()
	m.topBar.SetIdentity(m.app.Login(), m.app.Verify.HardwareID(), verified)
	m.corkDetail.SetIdentity(loggedIn, verified)
}

func (m Model) refreshSources() {
	sources := m.app.Sources.List()
	statuses := make(map[string]views.SourceStatus, len(sources))
	for _, src := range sources {
		st := views.SourceStatus{Label: m.app.Sources.Label(src)}
		if res, ok := m.app.Sources.Result(src.ID); ok {
			st.Fetched = true
			st.Err = res.Err
			st.Count = res.Entries.Len()
		}
		statuses[src.ID] = st
	}
	m.sourcesView.SetSources(sources, statuses)
	m.topBar.SetSourceCount(len(sources))
}

func (m Model) refreshTopBar() {
	reg := m.renderer.Registry()
	m.topBar.SetSigner(m.renderer.Signer(), reg.Offline)

	switch m.state {
	case ViewDetail:
		if d := m.corkDetail.GetDetail(); d != nil {
			m.topBar.SetView(d.Title, 1)
		}
	case ViewSources:
		m.topBar.SetView("sources", m.sourcesView.Len())
	default:
		view := m.corkList.CurrentView()
		m.topBar.SetView(m.renderer.ViewTitle(view), len(m.corkList.Listing().Rows))
	}
	m.topBar.SetShortcuts(m.commandRegistry.GetContextualShortcuts(m.state))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
