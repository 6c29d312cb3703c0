package game

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunSchedulerStopsOnContextCancel(t *testing.T) {
	m := NewManager("test-room", testConfig(), stubNarrator{}, stubCharacters{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunScheduler(ctx, m, zap.NewNop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
