package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aiba-2502/denco-notify/internal/rules"
	"github.com/aiba-2502/denco-notify/internal/template"
	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/sirupsen/logrus"
)

/*
 * Snapshot store.
 *
 * Loads the active rule/template set the engine evaluates. Conditions and
 * actions persist as JSON columns: the authoring console owns their shape
 * and this store stays schema-agnostic about rule internals, mirroring how
 * the admin backend writes them.
 *
 * Rules failing resource-limit validation are dropped from the snapshot with
 * a warning instead of failing the whole load; one oversized rule must not
 * blank out the active set. Template variables are derived from content at
 * load time, never read from storage.
 */

// ruleRow mirrors the notification_rules table.
type ruleRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	Conditions string `db:"conditions"`
	Actions    string `db:"actions"`
	Enabled    bool   `db:"enabled"`
}

// templateRow mirrors the notification_templates table.
type templateRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// Store reads rule/template snapshots and staff records.
type Store struct {
	queries *Queries
	log     *logrus.Entry
}

// NewStore creates a snapshot store over loaded queries.
func NewStore(queries *Queries, log *logrus.Logger) (*Store, error) {
	if queries == nil {
		return nil, errors.New("queries cannot be nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		queries: queries,
		log:     log.WithField("component", "snapshot-store"),
	}, nil
}

// LoadSnapshot reads all enabled rules and all templates into an immutable
// snapshot. Implements engine.SnapshotLoader.
func (s *Store) LoadSnapshot(ctx context.Context) (*types.Snapshot, error) {
	var ruleRows []ruleRow
	if err := s.queries.Select(ctx, "list-enabled-rules", &ruleRows); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	snapshot := &types.Snapshot{
		Rules:     make([]types.NotificationRule, 0, len(ruleRows)),
		Templates: make(map[types.TemplateID]types.NotificationTemplate),
	}

	for _, row := range ruleRows {
		rule, err := decodeRule(row)
		if err != nil {
			s.log.WithField("rule_id", row.ID).WithError(err).Warn("rule dropped from snapshot: undecodable")
			continue
		}
		if err := rules.Validate(&rule); err != nil {
			s.log.WithField("rule_id", row.ID).WithError(err).Warn("rule dropped from snapshot: limit exceeded")
			continue
		}
		snapshot.Rules = append(snapshot.Rules, rule)
	}

	var templateRows []templateRow
	if err := s.queries.Select(ctx, "list-templates", &templateRows); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	for _, row := range templateRows {
		tmpl := decodeTemplate(row)
		snapshot.Templates[tmpl.ID] = tmpl
	}

	return snapshot, nil
}

// Lookup fetches one staff record by id. Implements dispatch.StaffDirectory.
func (s *Store) Lookup(ctx context.Context, id types.StaffID) (*types.StaffRecord, error) {
	var record types.StaffRecord
	err := s.queries.Get(ctx, "get-staff", &record, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrStaffNotFound
		}
		return nil, fmt.Errorf("staff lookup failed: %w", err)
	}
	return &record, nil
}

// ListStaff returns every staff record in id order, for diagnostics.
func (s *Store) ListStaff(ctx context.Context) ([]types.StaffRecord, error) {
	var records []types.StaffRecord
	if err := s.queries.Select(ctx, "list-staff", &records); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return records, nil
}

// decodeRule unmarshals the JSON condition/action columns into a domain rule.
func decodeRule(row ruleRow) (types.NotificationRule, error) {
	rule := types.NotificationRule{
		ID:      types.RuleID(row.ID),
		Name:    row.Name,
		Enabled: row.Enabled,
	}
	if err := json.Unmarshal([]byte(row.Conditions), &rule.Conditions); err != nil {
		return rule, fmt.Errorf("invalid conditions column: %w", err)
	}
	if row.Actions != "" {
		if err := json.Unmarshal([]byte(row.Actions), &rule.Actions); err != nil {
			return rule, fmt.Errorf("invalid actions column: %w", err)
		}
	}
	return rule, nil
}

// decodeTemplate builds a domain template, recomputing derived variables.
func decodeTemplate(row templateRow) types.NotificationTemplate {
	return types.NotificationTemplate{
		ID:        types.TemplateID(row.ID),
		Name:      row.Name,
		Content:   row.Content,
		Variables: template.ExtractVariables(row.Content),
		CreatedAt: row.CreatedAt,
	}
}
