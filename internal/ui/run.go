package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/auth"
	"github.com/dreamswag/ci5dev/internal/verify"
)

// Run starts the full-screen browser and blocks until the user quits.
func Run(ctx context.Context, a *app.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(ctx, a)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	m.events.attach(ctx, p.Send)
	a.Auth.Subscribe(func(ev auth.Event) { m.events.Send(AuthEventMsg{Event: ev}) })
	a.Verify.Subscribe(func(ev verify.Event) { m.events.Send(VerifyEventMsg{Event: ev}) })

	_, err := p.Run()
	return err
}
