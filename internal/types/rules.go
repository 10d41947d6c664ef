package types

import "time"

/*
 * Domain types for notification rules.
 *
 * Provides NotificationRule, RuleConditions, TargetCondition, KeywordCondition
 * and NotificationAction structures used by internal/rules for matching and
 * internal/dispatch for delivery. These types are storage-format agnostic -
 * the snapshot store decodes its JSON columns into them at load time.
 *
 * Key types:
 *   - NotificationRule: named condition + action bundle with enabled flag
 *   - TargetCondition: phone-number set or customer-id set restricting events
 *   - KeywordCondition: any-of list or left-to-right and/or fold over text
 *   - NotificationAction: one channel + destination + template to fire
 *
 * Dependencies: None (standard library only)
 */

// TargetKind discriminates a TargetCondition. Exactly one kind per rule.
type TargetKind string

const (
	TargetPhone    TargetKind = "phone"
	TargetCustomer TargetKind = "customer"
)

// TargetCondition restricts which events a rule considers.
// Phone values match the event's originating number exactly; customer values
// match the resolved customer id.
type TargetCondition struct {
	Kind   TargetKind `json:"kind"`
	Values []string   `json:"values"`
}

// KeywordMode selects how keyword terms combine.
type KeywordMode string

const (
	// KeywordModeList matches if any term appears in the text.
	KeywordModeList KeywordMode = "list"
	// KeywordModeLogical folds terms strictly left-to-right with and/or.
	KeywordModeLogical KeywordMode = "logical"
)

// KeywordOperator joins a term with the running result to its left.
type KeywordOperator string

const (
	// OperatorNone marks the first term; it has no left operand.
	OperatorNone KeywordOperator = ""
	OperatorAnd  KeywordOperator = "and"
	OperatorOr   KeywordOperator = "or"
)

// KeywordTerm is one word in a keyword expression.
type KeywordTerm struct {
	Word     string          `json:"word"`
	Operator KeywordOperator `json:"operator,omitempty"`
}

// KeywordCondition is a boolean expression over recognized text.
// Invariant: the first term's operator is OperatorNone. In list mode the
// operators are ignored entirely.
type KeywordCondition struct {
	Mode  KeywordMode   `json:"mode"`
	Terms []KeywordTerm `json:"terms"`
}

// RuleConditions gathers the three applicability checks of one rule.
// Keywords is optional: a nil pointer matches all text, which is distinct
// from an empty term list (matches none).
type RuleConditions struct {
	EventTypes []EventType       `json:"event_types"`
	Target     TargetCondition   `json:"target"`
	Keywords   *KeywordCondition `json:"keywords,omitempty"`
}

// DestinationKind discriminates a Destination.
type DestinationKind string

const (
	// DestinationStaff resolves through the staff directory per channel at
	// send time.
	DestinationStaff DestinationKind = "staff"
	// DestinationManual is a literal address entered at authoring time.
	DestinationManual DestinationKind = "manual"
)

// Destination is where one action delivers.
type Destination struct {
	Kind    DestinationKind `json:"kind"`
	StaffID StaffID         `json:"staff_id,omitempty"`
	Value   string          `json:"value,omitempty"`
}

// ActionConfig carries the per-action delivery settings.
type ActionConfig struct {
	Destination Destination `json:"destination"`
	TemplateID  TemplateID  `json:"template_id"`
	// UseSummary asks the summarizer collaborator to condense the event text
	// into the reserved "summary" render variable before rendering.
	UseSummary    bool   `json:"use_summary,omitempty"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// NotificationAction is one configured notification to send once a rule
// matches. Actions of the same rule dispatch independently.
type NotificationAction struct {
	Channel Channel      `json:"channel"`
	Config  ActionConfig `json:"config"`
}

// NotificationRule is a named condition + action bundle.
// Immutable once loaded into an evaluation pass; the authoring system mutates
// rules only between snapshot publications. A rule with no actions is valid
// but inert.
type NotificationRule struct {
	ID         RuleID               `json:"id"`
	Name       string               `json:"name"`
	Conditions RuleConditions       `json:"conditions"`
	Actions    []NotificationAction `json:"actions"`
	Enabled    bool                 `json:"enabled"`
}

// NotificationTemplate is message text with {variable} placeholders.
// Variables is derived from Content at load time, never hand-maintained.
type NotificationTemplate struct {
	ID        TemplateID `json:"id"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	Variables []string   `json:"variables,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
