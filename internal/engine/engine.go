// Package engine orchestrates rule matching and action fanout for inbound
// telephony events.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aiba-2502/denco-notify/internal/dispatch"
	"github.com/aiba-2502/denco-notify/internal/rules"
	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/sirupsen/logrus"
)

/*
 * Rule engine orchestration.
 *
 * Per inbound event: Received -> Matching -> Dispatching -> Completed.
 *
 *   Matching: every enabled rule is evaluated independently in authored
 *   order; no short-circuit across rules because several may match and all
 *   must fire. A rule with malformed data (unknown target kind) is skipped
 *   and reported as one skipped outcome.
 *
 *   Dispatching: each action of each matched rule runs on its own goroutine
 *   gated by an engine-wide semaphore. The semaphore bounds concurrent sends
 *   system-wide, independent of event concurrency, so downstream transports
 *   are never overwhelmed. Outcomes land in a preallocated slice indexed per
 *   action, preserving rule/action order deterministically.
 *
 *   Completed: outcomes aggregate into the dedup cache and return to the
 *   caller, which owns surfacing and logging.
 *
 * Events are independent: concurrent Handle calls share only the semaphore
 * and the mutation-guarded dedup cache. Rule and template sets are read-only
 * snapshots per invocation.
 *
 * Cancellation: once the caller's context ends, in-flight sends complete
 * (each under its own attempt timeout) but no new dispatch starts and no
 * retry is scheduled; Handle returns partial outcomes rather than blocking.
 */

// Config bounds the engine's shared resources.
type Config struct {
	// MaxConcurrentSends caps in-flight dispatches across all events.
	MaxConcurrentSends int
	// DedupTTL is how long completed event outcomes stay cached.
	DedupTTL time.Duration
}

// DefaultConfig returns engine limits suitable for a single instance.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentSends: 8,
		DedupTTL:           5 * time.Minute,
	}
}

// Engine evaluates rules and fans matched actions out to the dispatcher.
type Engine struct {
	dispatcher *dispatch.Dispatcher
	sem        chan struct{}
	dedup      *dedupCache
	log        *logrus.Entry
}

// New creates an engine around a dispatcher.
func New(dispatcher *dispatch.Dispatcher, cfg Config, log *logrus.Logger) (*Engine, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if cfg.MaxConcurrentSends <= 0 {
		return nil, errors.New("max concurrent sends must be positive")
	}
	if cfg.DedupTTL <= 0 {
		return nil, errors.New("dedup TTL must be positive")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{
		dispatcher: dispatcher,
		sem:        make(chan struct{}, cfg.MaxConcurrentSends),
		dedup:      newDedupCache(cfg.DedupTTL),
		log:        log.WithField("component", "engine"),
	}, nil
}

// pendingAction is one matched rule action awaiting dispatch.
type pendingAction struct {
	rule        *types.NotificationRule
	actionIndex int
	outcomeIdx  int
}

// Handle evaluates event against the snapshot's rules and dispatches every
// matched action. Returns one outcome per dispatched or skipped action,
// possibly empty when nothing matches. Calling Handle again with the same
// event id within the dedup TTL returns the cached outcomes without
// re-sending.
func (e *Engine) Handle(ctx context.Context, event *types.InboundEvent, snapshot *types.Snapshot) []types.DeliveryOutcome {
	if cached, ok := e.dedup.get(event.ID); ok {
		e.log.WithField("event_id", event.ID).Debug("duplicate event, returning cached outcomes")
		return cached
	}

	outcomes := make([]types.DeliveryOutcome, 0)
	var pending []pendingAction

	// Matching: every enabled rule, authored order.
	for i := range snapshot.Rules {
		rule := &snapshot.Rules[i]
		if !rule.Enabled {
			continue
		}

		matched, err := rules.Matches(rule, event)
		if err != nil {
			e.log.WithFields(logrus.Fields{
				"event_id": event.ID,
				"rule_id":  rule.ID,
			}).WithError(err).Warn("rule skipped: malformed conditions")
			outcomes = append(outcomes, types.DeliveryOutcome{
				EventID:     event.ID,
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				ActionIndex: -1,
				Status:      types.OutcomeSkipped,
				ErrorKind:   types.ErrorKindMatching,
				Error:       err.Error(),
			})
			continue
		}
		if !matched {
			continue
		}

		for actionIndex := range rule.Actions {
			pending = append(pending, pendingAction{
				rule:        rule,
				actionIndex: actionIndex,
				outcomeIdx:  len(outcomes),
			})
			outcomes = append(outcomes, types.DeliveryOutcome{})
		}
	}

	// Dispatching: bounded fanout, results indexed per action.
	var wg sync.WaitGroup
	for _, p := range pending {
		select {
		case e.sem <- struct{}{}:
		case <-ctx.Done():
			// Abandon actions not yet started; in-flight sends finish below.
			outcomes[p.outcomeIdx] = canceledOutcome(event, p, ctx.Err())
			continue
		}

		wg.Add(1)
		go func(p pendingAction) {
			defer wg.Done()
			defer func() { <-e.sem }()
			outcomes[p.outcomeIdx] = e.dispatcher.Dispatch(ctx, p.rule, p.actionIndex, event, snapshot)
		}(p)
	}
	wg.Wait()

	e.dedup.put(event.ID, outcomes)
	return outcomes
}

// canceledOutcome records an action abandoned before its dispatch started.
func canceledOutcome(event *types.InboundEvent, p pendingAction, err error) types.DeliveryOutcome {
	return types.DeliveryOutcome{
		EventID:     event.ID,
		RuleID:      p.rule.ID,
		RuleName:    p.rule.Name,
		ActionIndex: p.actionIndex,
		Channel:     p.rule.Actions[p.actionIndex].Channel,
		Status:      types.OutcomeSkipped,
		ErrorKind:   types.ErrorKindCanceled,
		Error:       err.Error(),
	}
}
