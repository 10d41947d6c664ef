// internal/dispatch/resolve_test.go
package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/aiba-2502/denco-notify/internal/types"
)

// stubDirectory is an in-memory StaffDirectory for tests.
type stubDirectory struct {
	records map[types.StaffID]*types.StaffRecord
}

func (d *stubDirectory) Lookup(ctx context.Context, id types.StaffID) (*types.StaffRecord, error) {
	record, ok := d.records[id]
	if !ok {
		return nil, types.ErrStaffNotFound
	}
	return record, nil
}

func testDirectory() *stubDirectory {
	return &stubDirectory{records: map[types.StaffID]*types.StaffRecord{
		"staff-1": {
			ID:          "staff-1",
			Name:        "佐藤",
			Email:       "sato@example.co.jp",
			ChatID:      "1001",
			MessagingID: "line-sato",
			Phone:       "090-1111-2222",
		},
		"staff-2": {
			ID:    "staff-2",
			Name:  "鈴木",
			Email: "suzuki@example.co.jp",
			// No chat, messaging or phone contact configured
		},
	}}
}

func TestResolveDestination_Manual(t *testing.T) {
	dst := types.Destination{Kind: types.DestinationManual, Value: "ops@example.co.jp"}

	address, err := ResolveDestination(context.Background(), dst, types.ChannelEmail, testDirectory())
	if err != nil {
		t.Fatalf("ResolveDestination() error = %v, want nil", err)
	}
	if address != "ops@example.co.jp" {
		t.Errorf("address = %q, want ops@example.co.jp", address)
	}
}

func TestResolveDestination_StaffPerChannel(t *testing.T) {
	tests := []struct {
		name     string
		channel  types.Channel
		expected string
	}{
		{"email channel picks email field", types.ChannelEmail, "sato@example.co.jp"},
		{"chat channel picks chat id", types.ChannelChat, "1001"},
		{"messaging channel picks messaging id", types.ChannelMessagingApp, "line-sato"},
		{"voice channel picks phone number", types.ChannelVoice, "090-1111-2222"},
	}

	dst := types.Destination{Kind: types.DestinationStaff, StaffID: "staff-1"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, err := ResolveDestination(context.Background(), dst, tt.channel, testDirectory())
			if err != nil {
				t.Fatalf("ResolveDestination() error = %v, want nil", err)
			}
			if address != tt.expected {
				t.Errorf("address = %q, want %q", address, tt.expected)
			}
		})
	}
}

func TestResolveDestination_Unresolved(t *testing.T) {
	tests := []struct {
		name    string
		dst     types.Destination
		channel types.Channel
	}{
		{
			name:    "missing staff record",
			dst:     types.Destination{Kind: types.DestinationStaff, StaffID: "staff-404"},
			channel: types.ChannelEmail,
		},
		{
			name:    "empty contact field for channel",
			dst:     types.Destination{Kind: types.DestinationStaff, StaffID: "staff-2"},
			channel: types.ChannelVoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveDestination(context.Background(), tt.dst, tt.channel, testDirectory())
			if !errors.Is(err, types.ErrUnresolvedDestination) {
				t.Errorf("ResolveDestination() error = %v, want ErrUnresolvedDestination", err)
			}
		})
	}
}

func TestResolveDestination_UnknownKind(t *testing.T) {
	dst := types.Destination{Kind: "group"}
	_, err := ResolveDestination(context.Background(), dst, types.ChannelEmail, testDirectory())
	if !errors.Is(err, types.ErrUnknownDestinationType) {
		t.Errorf("ResolveDestination() error = %v, want ErrUnknownDestinationType", err)
	}
}
