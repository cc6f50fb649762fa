// Package poller owns the background polling tasks of the client. There
// is at most one running task per Kind: starting a task cancels its
// predecessor and waits for it to exit first.
package poller

import (
	"context"
	"sync"

	"github.com/dreamswag/ci5dev/internal/logger"
)

type Kind string

const (
	KindToken        Kind = "token"
	KindVerification Kind = "verification"
)

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Supervisor struct {
	parent context.Context
	mu     sync.Mutex
	tasks  map[Kind]*task
}

func NewSupervisor(parent context.Context) *Supervisor {
	if parent == nil {
		parent = context.Background()
	}
	return &Supervisor{
		parent: parent,
		tasks:  make(map[Kind]*task),
	}
}

// Start runs fn in its own goroutine as the only task of its kind. The
// context passed to fn is cancelled by Stop, StopAll, a later Start of the
// same kind, or the supervisor's parent context.
//
// Start must not be called from inside a task of the same kind.
func (s *Supervisor) Start(kind Kind, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(s.parent)
	t := &task{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	prev := s.tasks[kind]
	s.tasks[kind] = t
	s.mu.Unlock()

	if prev != nil {
		logger.Log("Poller: replacing active %s poll", kind)
		prev.cancel()
		<-prev.done
	}

	go s.run(kind, t, ctx, fn)
}

func (s *Supervisor) run(kind Kind, t *task, ctx context.Context, fn func(ctx context.Context)) {
	defer func() {
		t.cancel()
		s.mu.Lock()
		if s.tasks[kind] == t {
			delete(s.tasks, kind)
		}
		s.mu.Unlock()
		close(t.done)
	}()

	// A concurrent Start may have superseded this task before it got to run.
	if ctx.Err() != nil {
		return
	}
	fn(ctx)
}

// Stop cancels the active task of kind without waiting for it, so a task
// may stop itself.
func (s *Supervisor) Stop(kind Kind) {
	s.mu.Lock()
	t := s.tasks[kind]
	delete(s.tasks, kind)
	s.mu.Unlock()

	if t != nil {
		t.cancel()
	}
}

func (s *Supervisor) StopAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[Kind]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
}

func (s *Supervisor) Active(kind Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[kind]
	return ok
}

// Done returns a channel closed when the current task of kind exits, or
// an already closed channel when none is running.
func (s *Supervisor) Done(kind Kind) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[kind]; ok {
		return t.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}
