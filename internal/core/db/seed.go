package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aiba-2502/denco-notify/internal/types"
)

// Fixed ids keep reseeding idempotent: the inserts no-op on conflict.
const (
	seedRuleID     = "018f0000-0000-7000-8000-000000000001"
	seedTemplateID = "018f0000-0000-7000-8000-000000000002"
	seedStaffID    = "018f0000-0000-7000-8000-000000000003"
)

// Seed inserts a demonstration rule, template and staff member so a fresh
// development database produces deliveries immediately. Safe to run
// repeatedly.
func Seed(ctx context.Context, q *Queries) error {
	if _, err := q.Exec(ctx, "insert-template",
		seedTemplateID, "着信通知", "{caller}様から着信がありました"); err != nil {
		return fmt.Errorf("failed to seed template: %w", err)
	}

	if _, err := q.Exec(ctx, "insert-staff",
		seedStaffID, "佐藤", "sato@example.co.jp", "", "", "090-1111-2222"); err != nil {
		return fmt.Errorf("failed to seed staff: %w", err)
	}

	conditions, err := json.Marshal(types.RuleConditions{
		EventTypes: []types.EventType{types.EventTypeCall},
		Target: types.TargetCondition{
			Kind:   types.TargetPhone,
			Values: []string{"090-1234-5678"},
		},
		Keywords: &types.KeywordCondition{
			Mode: types.KeywordModeList,
			Terms: []types.KeywordTerm{
				{Word: "緊急"},
				{Word: "至急"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode seed conditions: %w", err)
	}

	actions, err := json.Marshal([]types.NotificationAction{{
		Channel: types.ChannelEmail,
		Config: types.ActionConfig{
			Destination: types.Destination{Kind: types.DestinationStaff, StaffID: seedStaffID},
			TemplateID:  seedTemplateID,
		},
	}})
	if err != nil {
		return fmt.Errorf("failed to encode seed actions: %w", err)
	}

	if _, err := q.Exec(ctx, "insert-rule",
		seedRuleID, "urgent-call-demo", string(conditions), string(actions), true, 0); err != nil {
		return fmt.Errorf("failed to seed rule: %w", err)
	}

	return nil
}
