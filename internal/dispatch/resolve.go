// internal/dispatch/resolve.go
package dispatch

import (
	"context"
	"fmt"

	"github.com/aiba-2502/denco-notify/internal/types"
)

/*
 * Destination resolution.
 *
 * Converts an action's destination spec into a concrete channel address:
 *
 *   - manual: the authored literal address, returned unchanged. Never fails.
 *   - staff: directory lookup by staff id, then the contact field matching
 *     the action's channel (email -> email, chat -> chat id, messaging_app ->
 *     messaging id, voice -> phone number).
 *
 * A missing staff record or an empty contact field is an
 * ErrUnresolvedDestination. Resolution failure is scoped to the single
 * action: the rule still matched, sibling actions proceed.
 */

// ResolveDestination produces the concrete address for dst on channel.
func ResolveDestination(ctx context.Context, dst types.Destination, channel types.Channel, dir StaffDirectory) (string, error) {
	switch dst.Kind {
	case types.DestinationManual:
		return dst.Value, nil
	case types.DestinationStaff:
		return resolveStaff(ctx, dst.StaffID, channel, dir)
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnknownDestinationType, dst.Kind)
	}
}

// resolveStaff looks up the staff record and picks the channel's field.
func resolveStaff(ctx context.Context, id types.StaffID, channel types.Channel, dir StaffDirectory) (string, error) {
	record, err := dir.Lookup(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: staff %s: %v", types.ErrUnresolvedDestination, id, err)
	}

	address := contactField(record, channel)
	if address == "" {
		return "", fmt.Errorf("%w: staff %s has no %s contact", types.ErrUnresolvedDestination, id, channel)
	}
	return address, nil
}

// contactField maps a channel to the staff record field carrying its address.
func contactField(record *types.StaffRecord, channel types.Channel) string {
	switch channel {
	case types.ChannelEmail:
		return record.Email
	case types.ChannelChat:
		return record.ChatID
	case types.ChannelMessagingApp:
		return record.MessagingID
	case types.ChannelVoice:
		return record.Phone
	default:
		return ""
	}
}
