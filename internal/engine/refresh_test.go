// internal/engine/refresh_test.go
package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aiba-2502/denco-notify/internal/types"
)

// flakyLoader returns a scripted snapshot or error per call.
type flakyLoader struct {
	mu       sync.Mutex
	snapshot *types.Snapshot
	err      error
}

func (l *flakyLoader) LoadSnapshot(ctx context.Context) (*types.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return l.snapshot, nil
}

func (l *flakyLoader) set(snapshot *types.Snapshot, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapshot = snapshot
	l.err = err
}

func namedSnapshot(ruleID types.RuleID) *types.Snapshot {
	return &types.Snapshot{
		Rules:     []types.NotificationRule{{ID: ruleID, Enabled: true}},
		Templates: map[types.TemplateID]types.NotificationTemplate{},
	}
}

func TestRefresher_InitialLoadFailure(t *testing.T) {
	loader := &flakyLoader{err: errors.New("store unavailable")}
	if _, err := NewRefresher(context.Background(), loader, time.Minute, quietLogger()); err == nil {
		t.Error("NewRefresher() error = nil, want initial load failure")
	}
}

func TestRefresher_ReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	first := namedSnapshot("rule-v1")
	loader := &flakyLoader{snapshot: first}

	refresher, err := NewRefresher(context.Background(), loader, time.Hour, quietLogger())
	if err != nil {
		t.Fatalf("NewRefresher() error = %v", err)
	}
	defer refresher.Stop()

	if got := refresher.Current(); got != first {
		t.Fatalf("Current() = %p, want initial snapshot %p", got, first)
	}

	// A flaky store must not blank out the active rule set.
	loader.set(nil, errors.New("connection reset"))
	refresher.reload()
	if got := refresher.Current(); got != first {
		t.Errorf("Current() after failed reload = %p, want previous snapshot %p", got, first)
	}

	// Recovery publishes the fresh snapshot.
	second := namedSnapshot("rule-v2")
	loader.set(second, nil)
	refresher.reload()
	if got := refresher.Current(); got != second {
		t.Errorf("Current() after recovery = %p, want new snapshot %p", got, second)
	}
}
