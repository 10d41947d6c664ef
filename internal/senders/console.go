package senders

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aiba-2502/denco-notify/internal/types"
)

// ConsoleSender prints messages instead of delivering them.
// Development stand-in for channels without a configured transport
// (messaging_app and voice gateways live outside this repository).
// Writes to stderr; stdout carries the outcome stream.
type ConsoleSender struct {
	mu      sync.Mutex
	channel types.Channel
	out     io.Writer
}

// NewConsoleSender creates a print-only sender for channel.
func NewConsoleSender(channel types.Channel) *ConsoleSender {
	return &ConsoleSender{channel: channel, out: os.Stderr}
}

// Channel implements ChannelSender.
func (s *ConsoleSender) Channel() types.Channel { return s.channel }

// Send prints the message. Never fails except on caller cancellation.
func (s *ConsoleSender) Send(ctx context.Context, address, message string) error {
	if err := ctx.Err(); err != nil {
		return types.TransientSend(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "[%s -> %s]\n%s\n", s.channel, address, message)
	if err != nil {
		return types.PermanentSend(err)
	}
	return nil
}
