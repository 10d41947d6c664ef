// internal/rules/match.go
package rules

import (
	"github.com/aiba-2502/denco-notify/internal/types"
)

/*
 * Rule applicability matching.
 *
 * Combines three checks into a single boolean, conjunction order chosen by
 * cost so non-matching events short-circuit cheaply:
 *
 *   1. Event type: the event's type must be in the rule's event-type set.
 *   2. Target: phone targets match the originating number exactly; customer
 *      targets match the resolved customer id (unset id never matches).
 *   3. Keywords: absent condition matches everything; otherwise delegates to
 *      keyword.go with the event's recognized text (empty string if absent).
 *
 * Matching is independent per rule: the engine evaluates every enabled rule
 * because several may match and all must fire. Malformed rule data (unknown
 * target kind) surfaces as an error so the engine can skip and report the
 * rule without aborting the event.
 */

// Matches reports whether rule applies to event.
// Returns types.ErrUnknownTargetType for malformed target kinds; the rule is
// then skipped for this event, never a crash.
func Matches(rule *types.NotificationRule, event *types.InboundEvent) (bool, error) {
	if !matchesEventType(rule.Conditions.EventTypes, event.Type) {
		return false, nil
	}

	matched, err := matchesTarget(&rule.Conditions.Target, event)
	if err != nil {
		return false, err
	}
	if !matched {
		return false, nil
	}

	if rule.Conditions.Keywords == nil {
		return true, nil
	}
	return EvaluateKeywords(rule.Conditions.Keywords, event.Text), nil
}

// matchesEventType checks set membership of the event type.
func matchesEventType(set []types.EventType, t types.EventType) bool {
	for _, et := range set {
		if et == t {
			return true
		}
	}
	return false
}

// matchesTarget checks the phone-number or customer-id restriction.
func matchesTarget(target *types.TargetCondition, event *types.InboundEvent) (bool, error) {
	switch target.Kind {
	case types.TargetPhone:
		return containsValue(target.Values, event.PhoneNumber), nil
	case types.TargetCustomer:
		if event.CustomerID == "" {
			return false, nil
		}
		return containsValue(target.Values, event.CustomerID), nil
	default:
		return false, types.ErrUnknownTargetType
	}
}

// containsValue checks exact membership in a target value set.
// Linear scan: target sets are small (MaxTargetValues) and snapshots are
// rebuilt per publication, so no index is maintained.
func containsValue(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Validate enforces resource limits on a rule before it enters a snapshot.
// Enforcing limits at load time moves error detection to authoring time
// rather than evaluation time.
func Validate(rule *types.NotificationRule) error {
	if len(rule.Conditions.Target.Values) > types.MaxTargetValues {
		return types.ErrTooManyTargetValues
	}
	if kw := rule.Conditions.Keywords; kw != nil && len(kw.Terms) > types.MaxKeywordTerms {
		return types.ErrTooManyKeywordTerms
	}
	if len(rule.Actions) > types.MaxActionsPerRule {
		return types.ErrTooManyActions
	}
	return nil
}
