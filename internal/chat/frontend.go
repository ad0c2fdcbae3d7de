// Package chat provides a unified interface for chat frontends (OneBot, Telegram, WhatsApp).
package chat

import (
	"context"
	"errors"
	"time"
)

// ErrFrontendDisabled is returned by frontends that are not enabled in the configuration.
var ErrFrontendDisabled = errors.New("frontend is disabled")

// Message represents a normalized chat message from any frontend
type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Text       string
	IsGroup    bool
	Raw        any // underlying library message struct
}

// Frontend defines the unified interface for all chat integrations
type Frontend interface {
	// Name identifies the frontend in logs and metrics
	Name() string

	// Start initializes the chat frontend and begins listening for updates
	Start(ctx context.Context) error

	// Listen starts listening for messages and calls the handler for each message
	Listen(ctx context.Context, handler func(*Message)) error

	// SendText sends a text message to the specified chat, optionally as a reply
	SendText(ctx context.Context, chatID string, replyToID string, text string) (string, error)

	// SendMusicCard sends a playable song reference, falling back to its text form
	// where the platform has no native music message
	SendMusicCard(ctx context.Context, chatID string, replyToID string, card MusicCard) (string, error)

	// SendImage sends a PNG image with an optional caption
	SendImage(ctx context.Context, chatID string, replyToID string, png []byte, caption string) (string, error)

	// AwaitReply waits for the next message from origin's sender in origin's chat.
	// ok is false when nothing arrived before the timeout or ctx ended.
	AwaitReply(ctx context.Context, origin *Message, timeout time.Duration) (text string, ok bool, err error)
}
