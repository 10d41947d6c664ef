// Package types provides domain models shared across denco-notify components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so the engine packages stay import-light. ID utilities in
// ids.go import uuid but are isolated for selective inclusion.
//
// Snapshots of rules and templates are immutable once loaded: the authoring
// system publishes a new snapshot atomically between Handle invocations and
// the engine never observes a half-updated rule set.
package types

import "time"

// EventType classifies an inbound telephony event.
type EventType string

const (
	EventTypeCall EventType = "call"
	EventTypeFax  EventType = "fax"
)

// Channel identifies the transport an action sends through.
type Channel string

const (
	ChannelEmail        Channel = "email"
	ChannelChat         Channel = "chat"
	ChannelMessagingApp Channel = "messaging_app"
	ChannelVoice        Channel = "voice"
)

// InboundEvent is one call or fax delivered by the telephony collaborator.
// ID must be unique per event; it keys the engine's redelivery dedup cache.
type InboundEvent struct {
	ID          EventID           `json:"id"`
	Type        EventType         `json:"type"`
	PhoneNumber string            `json:"phone_number"`
	CustomerID  string            `json:"customer_id,omitempty"`
	Text        string            `json:"text,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	ReceivedAt  time.Time         `json:"received_at"`
}

// StaffRecord holds the per-channel contact fields of one staff member.
// Empty fields mean the staff member has no address on that channel.
type StaffRecord struct {
	ID          StaffID `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Email       string  `json:"email" db:"email"`
	ChatID      string  `json:"chat_id" db:"chat_id"`
	MessagingID string  `json:"messaging_id" db:"messaging_id"`
	Phone       string  `json:"phone" db:"phone"`
}

// Snapshot is the read-only rule/template set one Handle call evaluates.
type Snapshot struct {
	Rules     []NotificationRule
	Templates map[TemplateID]NotificationTemplate
}

// Template returns the template for id, or false if the snapshot lacks it.
func (s *Snapshot) Template(id TemplateID) (NotificationTemplate, bool) {
	t, ok := s.Templates[id]
	return t, ok
}

// OutcomeStatus is the terminal state of one dispatched action.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	// OutcomeSkipped marks work that never reached the send step: malformed
	// rules and actions abandoned on caller cancellation.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ErrorKind classifies why an outcome is not a clean success.
type ErrorKind string

const (
	ErrorKindNone                  ErrorKind = ""
	ErrorKindMatching              ErrorKind = "matching"
	ErrorKindTemplateNotFound      ErrorKind = "template_not_found"
	ErrorKindMissingVariable       ErrorKind = "render_missing_variable"
	ErrorKindUnresolvedDestination ErrorKind = "unresolved_destination"
	ErrorKindTransientSend         ErrorKind = "transient_send"
	ErrorKindPermanentSend         ErrorKind = "permanent_send"
	ErrorKindCanceled              ErrorKind = "canceled"
)

// DeliveryOutcome records the result of one action dispatch.
// All failure below the action boundary is captured here as data; nothing
// escapes to the orchestrator as a panic or error return.
type DeliveryOutcome struct {
	EventID     EventID       `json:"event_id"`
	RuleID      RuleID        `json:"rule_id"`
	RuleName    string        `json:"rule_name"`
	ActionIndex int           `json:"action_index"`
	Channel     Channel       `json:"channel,omitempty"`
	Address     string        `json:"address,omitempty"`
	Status      OutcomeStatus `json:"status"`
	ErrorKind   ErrorKind     `json:"error_kind,omitempty"`
	Error       string        `json:"error,omitempty"`
	Attempts    int           `json:"attempts"`
	// MissingVars lists placeholders left verbatim in the rendered message.
	// Populated on success too; a missing variable is a warning, not a failure.
	MissingVars []string `json:"missing_vars,omitempty"`
}

// Resource limits enforced by the engine to keep evaluation bounded.
const (
	// MaxKeywordTerms limits terms per keyword condition. The authoring UI
	// builds expressions one term at a time; 64 is far beyond practical use.
	MaxKeywordTerms = 64

	// MaxTargetValues limits phone numbers or customer ids per target set.
	MaxTargetValues = 1024

	// MaxActionsPerRule bounds fanout per matched rule.
	MaxActionsPerRule = 32

	// MaxTextLength caps the recognized text scanned by keyword evaluation.
	// 64KB covers long call transcripts; larger text is truncated upstream.
	MaxTextLength = 64 * 1024
)
