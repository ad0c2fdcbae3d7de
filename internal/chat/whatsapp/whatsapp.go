// Package whatsapp provides WhatsApp client integration using whatsmeow library.
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	// SQLite driver for whatsmeow session storage
	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"musicbot/internal/chat"
)

const (
	frontendName = "whatsapp"
	// quotedSenders bounds how many message senders are remembered for quoting replies
	quotedSenders = 1024
)

// Config holds WhatsApp-specific configuration
type Config struct {
	GroupJID    string
	DeviceName  string
	SessionPath string
	Enabled     bool
}

// Frontend implements the chat.Frontend interface for WhatsApp
type Frontend struct {
	config    *Config
	logger    *zap.Logger
	client    *whatsmeow.Client
	container *sqlstore.Container
	replies   *chat.ReplyWaiter
	senders   *lru.Cache[string, types.JID] // message ID -> sender, for quoting

	handlerMutex   sync.RWMutex
	messageHandler func(*chat.Message)
}

// NewFrontend creates a new WhatsApp frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	senders, _ := lru.New[string, types.JID](quotedSenders)

	return &Frontend{
		config:  config,
		logger:  logger,
		replies: chat.NewReplyWaiter(),
		senders: senders,
	}
}

// Name identifies the frontend.
func (f *Frontend) Name() string {
	return frontendName
}

// Start opens the session store and connects, printing a pairing QR code
// when no device is registered yet.
func (f *Frontend) Start(ctx context.Context) error {
	if !f.config.Enabled {
		f.logger.Info("WhatsApp frontend is disabled, skipping initialization")
		return nil
	}

	f.logger.Info("Starting WhatsApp frontend", zap.String("session", f.config.SessionPath))

	if err := f.openSession(ctx); err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	f.client.AddEventHandler(f.handleEvent)

	if err := f.connect(ctx); err != nil {
		return err
	}

	f.logger.Info("WhatsApp frontend started successfully")
	return nil
}

func (f *Frontend) connect(ctx context.Context) error {
	if f.client.Store.ID != nil {
		if err := f.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := f.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to request pairing code: %w", err)
	}
	if err := f.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for item := range qrChan {
		if item.Event != whatsmeow.QRChannelEventCode {
			f.logger.Info("Pairing event", zap.String("event", item.Event))
			continue
		}
		f.logger.Info("Scan the QR code below with WhatsApp on your phone")
		qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, os.Stdout)
	}
	return nil
}

// Listen delivers messages to handler until ctx ends, then disconnects
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Message)) error {
	if !f.config.Enabled {
		return nil
	}

	f.handlerMutex.Lock()
	f.messageHandler = handler
	f.handlerMutex.Unlock()

	// whatsmeow delivers events on its own goroutines.
	<-ctx.Done()

	return f.stop()
}

// SendText sends a text message to the specified chat, optionally quoting replyToID
func (f *Frontend) SendText(ctx context.Context, chatID, replyToID, text string) (string, error) {
	if !f.config.Enabled {
		return "", chat.ErrFrontendDisabled
	}

	jid, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("invalid chat JID: %w", err)
	}

	resp, err := f.client.SendMessage(ctx, jid, f.buildTextMessage(text, replyToID))
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return resp.ID, nil
}

// SendMusicCard sends the card's text form; WhatsApp has no music message.
func (f *Frontend) SendMusicCard(ctx context.Context, chatID, replyToID string, card chat.MusicCard) (string, error) {
	return f.SendText(ctx, chatID, replyToID, card.Fallback())
}

// SendImage uploads a PNG and sends it as an image message
func (f *Frontend) SendImage(ctx context.Context, chatID, replyToID string, png []byte, caption string) (string, error) {
	if !f.config.Enabled {
		return "", chat.ErrFrontendDisabled
	}

	jid, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("invalid chat JID: %w", err)
	}

	uploaded, err := f.client.Upload(ctx, png, whatsmeow.MediaImage)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	msg := &waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{
			Caption:       proto.String(caption),
			Mimetype:      proto.String(http.DetectContentType(png)),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			ContextInfo:   f.quoteContext(replyToID),
		},
	}

	resp, err := f.client.SendMessage(ctx, jid, msg)
	if err != nil {
		return "", fmt.Errorf("failed to send image: %w", err)
	}

	return resp.ID, nil
}

// AwaitReply waits for the next message of origin's sender in origin's chat
func (f *Frontend) AwaitReply(ctx context.Context, origin *chat.Message, timeout time.Duration) (string, bool, error) {
	if !f.config.Enabled {
		return "", false, chat.ErrFrontendDisabled
	}

	text, ok := f.replies.Await(ctx, origin.ChatID, origin.SenderID, timeout)
	return text, ok, nil
}

func (f *Frontend) buildTextMessage(text, replyToID string) *waE2E.Message {
	quote := f.quoteContext(replyToID)
	if quote == nil {
		return &waE2E.Message{Conversation: proto.String(text)}
	}

	return &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text:        proto.String(text),
			ContextInfo: quote,
		},
	}
}

// quoteContext references replyToID, or returns nil when there is nothing to quote.
func (f *Frontend) quoteContext(replyToID string) *waE2E.ContextInfo {
	if replyToID == "" {
		return nil
	}

	quote := &waE2E.ContextInfo{StanzaID: proto.String(replyToID)}
	if sender, ok := f.senders.Get(replyToID); ok {
		quote.Participant = proto.String(sender.String())
	}
	return quote
}

// handleEvent processes incoming WhatsApp events
func (f *Frontend) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		f.handleMessageEvent(v)
	case *events.KeepAliveTimeout:
		f.logger.Warn("WhatsApp keepalive timed out", zap.Int("errors", v.ErrorCount))
	case *events.KeepAliveRestored:
		f.logger.Info("WhatsApp keepalive restored")
	case *events.LoggedOut:
		f.logger.Error("WhatsApp session logged out, delete the session database and pair again")
	}
}

// handleMessageEvent converts a group message and routes it to a pending reply or the handler
func (f *Frontend) handleMessageEvent(evt *events.Message) {
	if evt.Message == nil {
		return
	}

	if evt.Info.Chat.Server != types.GroupServer {
		return
	}

	if f.config.GroupJID != "" && evt.Info.Chat.String() != f.config.GroupJID {
		return
	}

	if evt.Info.IsFromMe {
		return
	}

	text := extractMessageText(evt.Message)
	if text == "" {
		return
	}

	f.senders.Add(evt.Info.ID, evt.Info.Sender)

	message := &chat.Message{
		ID:         evt.Info.ID,
		ChatID:     evt.Info.Chat.String(),
		SenderID:   evt.Info.Sender.String(),
		SenderName: evt.Info.PushName,
		Text:       text,
		IsGroup:    true,
		Raw:        evt,
	}

	if f.replies.Deliver(message) {
		return
	}

	f.handlerMutex.RLock()
	handler := f.messageHandler
	f.handlerMutex.RUnlock()

	if handler != nil {
		handler(message)
	}
}

func (f *Frontend) stop() error {
	f.logger.Info("Stopping WhatsApp frontend")

	if f.client != nil {
		f.client.Disconnect()
	}
	if f.container == nil {
		return nil
	}
	if err := f.container.Close(); err != nil {
		return fmt.Errorf("failed to close session store: %w", err)
	}
	return nil
}

// openSession prepares the sqlite session store and a client for its first device.
func (f *Frontend) openSession(ctx context.Context) error {
	db, err := sql.Open("sqlite3", "file:"+f.config.SessionPath+"?_foreign_keys=on")
	if err != nil {
		return err
	}

	f.container = sqlstore.NewWithDB(db, "sqlite3", nil)
	if err := f.container.Upgrade(ctx); err != nil {
		return err
	}

	device, err := f.container.GetFirstDevice(ctx)
	if err != nil {
		return err
	}

	if f.config.DeviceName != "" {
		store.DeviceProps.Os = proto.String(f.config.DeviceName)
	}
	f.client = whatsmeow.NewClient(device, nil)
	return nil
}

// extractMessageText returns the text or media caption of msg.
func extractMessageText(msg *waE2E.Message) string {
	switch {
	case msg.Conversation != nil:
		return msg.GetConversation()
	case msg.GetExtendedTextMessage().GetText() != "":
		return msg.GetExtendedTextMessage().GetText()
	case msg.GetImageMessage().GetCaption() != "":
		return msg.GetImageMessage().GetCaption()
	case msg.GetVideoMessage().GetCaption() != "":
		return msg.GetVideoMessage().GetCaption()
	default:
		return msg.GetDocumentMessage().GetCaption()
	}
}
