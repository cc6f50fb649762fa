package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilCancelled(running *atomic.Int32, peak *atomic.Int32) func(ctx context.Context) {
	return func(ctx context.Context) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-ctx.Done()
		running.Add(-1)
	}
}

func TestStartReplacesPreviousTask(t *testing.T) {
	s := NewSupervisor(context.Background())
	defer s.StopAll()

	var running, peak atomic.Int32
	for i := 0; i < 20; i++ {
		s.Start(KindToken, blockUntilCancelled(&running, &peak))
	}

	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), peak.Load(), "two token polls were active at once")
	assert.True(t, s.Active(KindToken))
}

func TestConcurrentStartsKeepSingleTask(t *testing.T) {
	s := NewSupervisor(context.Background())
	defer s.StopAll()

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Start(KindVerification, blockUntilCancelled(&running, &peak))
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), peak.Load())
}

func TestKindsAreIndependent(t *testing.T) {
	s := NewSupervisor(context.Background())
	defer s.StopAll()

	var running, peak atomic.Int32
	s.Start(KindToken, blockUntilCancelled(&running, &peak))
	s.Start(KindVerification, blockUntilCancelled(&running, &peak))

	require.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, time.Millisecond)

	s.Stop(KindToken)
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, time.Millisecond)
	assert.False(t, s.Active(KindToken))
	assert.True(t, s.Active(KindVerification))
}

func TestFinishedTaskDeregisters(t *testing.T) {
	s := NewSupervisor(context.Background())

	s.Start(KindToken, func(ctx context.Context) {})

	select {
	case <-s.Done(KindToken):
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	require.Eventually(t, func() bool { return !s.Active(KindToken) }, time.Second, time.Millisecond)
}

func TestTaskCanStopItself(t *testing.T) {
	s := NewSupervisor(context.Background())
	finished := make(chan struct{})

	s.Start(KindVerification, func(ctx context.Context) {
		s.Stop(KindVerification)
		<-ctx.Done()
		close(finished)
	})

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("self-stop deadlocked")
	}
}

func TestParentCancellationStopsTasks(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := NewSupervisor(parent)

	var running, peak atomic.Int32
	s.Start(KindToken, blockUntilCancelled(&running, &peak))
	require.Eventually(t, func() bool { return running.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return running.Load() == 0 }, time.Second, time.Millisecond)
}
