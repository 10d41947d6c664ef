// internal/engine/refresh.go
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

/*
 * Snapshot refresher.
 *
 * Long-running hosts periodically reload the rule/template snapshot from the
 * store and republish it through an atomic pointer swap. Handle callers read
 * whichever snapshot is current when the event arrives; a snapshot already in
 * use by an evaluation pass stays consistent because it is never mutated,
 * only replaced.
 *
 * Reload failures keep the previous snapshot: a flaky store must not blank
 * out the active rule set.
 */

// SnapshotLoader loads the current rule/template snapshot from a store.
// Implemented by internal/core/db.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*types.Snapshot, error)
}

// Refresher republishes snapshots on a fixed interval.
type Refresher struct {
	loader  SnapshotLoader
	current atomic.Pointer[types.Snapshot]
	cron    *cron.Cron
	log     *logrus.Entry
}

// NewRefresher performs the initial load and schedules periodic reloads.
// Call Stop to halt the schedule.
func NewRefresher(ctx context.Context, loader SnapshotLoader, interval time.Duration, log *logrus.Logger) (*Refresher, error) {
	if loader == nil {
		return nil, errors.New("loader cannot be nil")
	}
	if interval <= 0 {
		return nil, errors.New("refresh interval must be positive")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &Refresher{
		loader: loader,
		cron:   cron.New(),
		log:    log.WithField("component", "snapshot-refresher"),
	}

	snapshot, err := loader.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	r.current.Store(snapshot)

	if _, err := r.cron.AddFunc("@every "+interval.String(), r.reload); err != nil {
		return nil, err
	}
	r.cron.Start()

	return r, nil
}

// Current returns the most recently published snapshot.
func (r *Refresher) Current() *types.Snapshot {
	return r.current.Load()
}

// Stop halts the reload schedule, waiting for a running reload to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// reload loads and publishes a fresh snapshot, keeping the old one on error.
func (r *Refresher) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := r.loader.LoadSnapshot(ctx)
	if err != nil {
		r.log.WithError(err).Warn("snapshot reload failed, keeping previous snapshot")
		return
	}

	r.current.Store(snapshot)
	r.log.WithFields(logrus.Fields{
		"rules":     len(snapshot.Rules),
		"templates": len(snapshot.Templates),
	}).Debug("snapshot refreshed")
}
