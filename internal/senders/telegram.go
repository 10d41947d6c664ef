package senders

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aiba-2502/denco-notify/internal/types"
	"gopkg.in/telebot.v3"
)

// TelegramSender delivers chat channel messages through the Telegram Bot API.
// The chat_id staff directory field holds the numeric Telegram chat id.
type TelegramSender struct {
	bot *telebot.Bot
}

// NewTelegramSender connects a bot with the given token.
func NewTelegramSender(token string) (*TelegramSender, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token required")
	}
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		// The sender never polls; the poller setting only satisfies telebot's
		// settings validation.
		Synchronous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

// Channel implements ChannelSender.
func (t *TelegramSender) Channel() types.Channel { return types.ChannelChat }

// Send delivers one message to the chat id in address.
// Classification: flood control and network failures are transient; a
// malformed chat id, blocked bot or unknown chat is permanent.
func (t *TelegramSender) Send(ctx context.Context, address, message string) error {
	if err := ctx.Err(); err != nil {
		return types.TransientSend(err)
	}

	chatID, err := strconv.ParseInt(address, 10, 64)
	if err != nil {
		return types.PermanentSend(fmt.Errorf("invalid telegram chat id %q: %w", address, err))
	}

	if _, err := t.bot.Send(&telebot.User{ID: chatID}, message); err != nil {
		return classifyTelegramError(err)
	}
	return nil
}

// classifyTelegramError maps telebot failures onto the taxonomy.
func classifyTelegramError(err error) error {
	var flood *telebot.FloodError
	if errors.As(err, &flood) {
		return types.TransientSend(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return types.TransientSend(err)
	}
	return types.PermanentSend(err)
}
