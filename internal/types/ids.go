package types

import (
	"time"

	"github.com/google/uuid"
)

// EventID represents a UUIDv7 inbound event identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type EventID string

// RuleID represents a UUIDv7 notification rule identifier.
type RuleID string

// TemplateID represents a UUIDv7 notification template identifier.
type TemplateID string

// StaffID represents a UUIDv7 staff directory identifier.
type StaffID string

// NewEventID generates a UUIDv7 event identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewEventID() EventID {
	return EventID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule identifier.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewTemplateID generates a UUIDv7 template identifier.
func NewTemplateID() TemplateID {
	return TemplateID(uuid.Must(uuid.NewV7()).String())
}

// ParseEventID validates and converts a string to EventID.
// Rejects malformed UUIDs so invalid ids never enter the dedup cache.
func ParseEventID(s string) (EventID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return EventID(s), nil
}

// ParseRuleID validates and converts a string to RuleID.
func ParseRuleID(s string) (RuleID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return RuleID(s), nil
}

// EventIDTime extracts the timestamp embedded in a UUIDv7 event id.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func EventIDTime(id EventID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
