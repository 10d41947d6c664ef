package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aiba-2502/denco-notify/internal/dispatch"
	"github.com/aiba-2502/denco-notify/internal/engine"
	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/sirupsen/logrus"
)

type stubDirectory struct{}

func (stubDirectory) Lookup(ctx context.Context, id types.StaffID) (*types.StaffRecord, error) {
	return nil, types.ErrStaffNotFound
}

type countingSender struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSender) Send(ctx context.Context, channel types.Channel, address, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil
}

func (s *countingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubLoader struct {
	snapshot *types.Snapshot
}

func (l *stubLoader) LoadSnapshot(ctx context.Context) (*types.Snapshot, error) {
	return l.snapshot, nil
}

func testSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Rules: []types.NotificationRule{{
			ID:      "rule-001",
			Name:    "all-calls",
			Enabled: true,
			Conditions: types.RuleConditions{
				EventTypes: []types.EventType{types.EventTypeCall},
				Target: types.TargetCondition{
					Kind:   types.TargetPhone,
					Values: []string{"090-1234-5678"},
				},
			},
			Actions: []types.NotificationAction{{
				Channel: types.ChannelEmail,
				Config: types.ActionConfig{
					Destination: types.Destination{Kind: types.DestinationManual, Value: "ops@example.co.jp"},
					TemplateID:  "tmpl-1",
				},
			}},
		}},
		Templates: map[types.TemplateID]types.NotificationTemplate{
			"tmpl-1": {ID: "tmpl-1", Name: "着信通知", Content: "着信あり"},
		},
	}
}

func TestConsume_RejectsMalformedEventIDs(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	sender := &countingSender{}
	dispatcher, err := dispatch.NewDispatcher(stubDirectory{}, nil, sender, dispatch.RetryPolicy{
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
		AttemptTimeout: time.Second,
	}, log)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	eng, err := engine.New(dispatcher, engine.Config{MaxConcurrentSends: 2, DedupTTL: time.Minute}, log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	refresher, err := engine.NewRefresher(ctx, &stubLoader{snapshot: testSnapshot()}, time.Minute, log)
	if err != nil {
		t.Fatalf("NewRefresher() error = %v", err)
	}
	defer refresher.Stop()

	validID := types.NewEventID()
	input := strings.Join([]string{
		`{"id":"event-bad","type":"call","phone_number":"090-1234-5678"}`,
		`not json at all`,
		fmt.Sprintf(`{"id":%q,"type":"call","phone_number":"090-1234-5678"}`, validID),
	}, "\n")

	var out bytes.Buffer
	if err := consume(ctx, eng, refresher, strings.NewReader(input), &out, log); err != nil {
		t.Fatalf("consume() error = %v, want nil", err)
	}

	// Only the well-formed event reaches the engine.
	if sender.count() != 1 {
		t.Errorf("sender calls = %d, want 1", sender.count())
	}

	var outcomes []types.DeliveryOutcome
	decoder := json.NewDecoder(&out)
	for decoder.More() {
		var outcome types.DeliveryOutcome
		if err := decoder.Decode(&outcome); err != nil {
			t.Fatalf("decoding outcome stream: %v", err)
		}
		outcomes = append(outcomes, outcome)
	}
	if len(outcomes) != 1 {
		t.Fatalf("outcome count = %d, want 1", len(outcomes))
	}
	if outcomes[0].EventID != validID {
		t.Errorf("outcome event id = %q, want %q", outcomes[0].EventID, validID)
	}
	if outcomes[0].Status != types.OutcomeSucceeded {
		t.Errorf("outcome status = %v, want succeeded", outcomes[0].Status)
	}
}
