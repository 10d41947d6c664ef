// Package senders ships reference transport adapters behind the dispatch
// Sender interface, one per notification channel.
package senders

import (
	"context"
	"fmt"
	"sync"

	"github.com/aiba-2502/denco-notify/internal/types"
)

// ChannelSender delivers messages on a single channel.
type ChannelSender interface {
	// Send delivers one message. Failures must be classified with
	// types.TransientSend or types.PermanentSend so the retry policy can
	// decide; unclassified errors are treated as permanent.
	Send(ctx context.Context, address, message string) error

	// Channel returns the channel this sender handles.
	Channel() types.Channel
}

// Registry routes sends to the adapter registered for each channel.
// Implements dispatch.Sender.
type Registry struct {
	mu      sync.RWMutex
	senders map[types.Channel]ChannelSender
}

// NewRegistry creates an empty sender registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[types.Channel]ChannelSender),
	}
}

// Register adds a sender for its channel.
// Registering a channel twice is a configuration error.
func (r *Registry) Register(sender ChannelSender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := sender.Channel()
	if _, exists := r.senders[ch]; exists {
		return fmt.Errorf("sender already registered for channel: %s", ch)
	}
	r.senders[ch] = sender
	return nil
}

// SupportedChannels returns the channels with a registered sender.
func (r *Registry) SupportedChannels() []types.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]types.Channel, 0, len(r.senders))
	for ch := range r.senders {
		channels = append(channels, ch)
	}
	return channels
}

// Send delivers through the adapter registered for channel.
// A missing adapter is permanent: retrying cannot make a channel appear.
func (r *Registry) Send(ctx context.Context, channel types.Channel, address, message string) error {
	r.mu.RLock()
	sender, ok := r.senders[channel]
	r.mu.RUnlock()

	if !ok {
		return types.PermanentSend(fmt.Errorf("no sender registered for channel: %s", channel))
	}
	return sender.Send(ctx, address, message)
}
