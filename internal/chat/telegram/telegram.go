// Package telegram provides Telegram Bot API integration using go-telegram/bot library.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"musicbot/internal/chat"
	"musicbot/internal/i18n"
)

const (
	chatTypeGroup      = "group"
	chatTypeSuperGroup = "supergroup"
	frontendName       = "telegram"
	listImageFilename  = "songs.png"
)

// Config holds Telegram-specific configuration
type Config struct {
	BotToken  string
	GroupID   int64 // Chat ID of the group to serve, 0 serves every chat
	Enabled   bool
	Language  string // Bot language for button labels
	ServerURL string // Bot API base URL, empty for the public endpoint
}

// Frontend implements the chat.Frontend interface for Telegram
type Frontend struct {
	config    *Config
	logger    *zap.Logger
	bot       *bot.Bot
	localizer *i18n.Localizer
	replies   *chat.ReplyWaiter

	handlerMutex   sync.RWMutex
	messageHandler func(*chat.Message)
}

// NewFrontend creates a new Telegram frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	language := config.Language
	if language == "" {
		language = i18n.DefaultLanguage
	}

	return &Frontend{
		config:    config,
		logger:    logger,
		localizer: i18n.NewLocalizer(language),
		replies:   chat.NewReplyWaiter(),
	}
}

// Name identifies the frontend.
func (f *Frontend) Name() string {
	return frontendName
}

// Start creates the bot client and verifies access to the configured group
func (f *Frontend) Start(ctx context.Context) error {
	if !f.config.Enabled {
		f.logger.Info("Telegram frontend is disabled, skipping initialization")
		return nil
	}

	f.logger.Info("Starting Telegram frontend",
		zap.Int64("group_id", f.config.GroupID))

	opts := []bot.Option{
		bot.WithDefaultHandler(f.handleUpdate),
	}
	if f.config.ServerURL != "" {
		opts = append(opts, bot.WithServerURL(f.config.ServerURL), bot.WithSkipGetMe())
	}

	b, err := bot.New(f.config.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	f.bot = b

	if f.config.GroupID != 0 {
		if err := f.verifyGroupAccess(ctx); err != nil {
			return fmt.Errorf("failed to verify group access: %w", err)
		}
	}

	f.logger.Info("Telegram frontend started successfully")
	return nil
}

// Listen polls for updates until ctx ends and calls the handler for each message
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Message)) error {
	if !f.config.Enabled {
		return nil
	}

	f.handlerMutex.Lock()
	f.messageHandler = handler
	f.handlerMutex.Unlock()

	f.bot.Start(ctx)

	return nil
}

// SendText sends a text message to the specified chat, optionally as a reply
func (f *Frontend) SendText(ctx context.Context, chatID, replyToID, text string) (string, error) {
	if !f.config.Enabled {
		return "", chat.ErrFrontendDisabled
	}

	chatIDInt, replyParams, err := parseTarget(chatID, replyToID)
	if err != nil {
		return "", err
	}

	disabled := true
	msg, err := f.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chatIDInt,
		Text:               text,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disabled},
		ReplyParameters:    replyParams,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// SendMusicCard sends the card as text with a button opening the song page.
// Telegram has no native music message for third-party catalogs.
func (f *Frontend) SendMusicCard(ctx context.Context, chatID, replyToID string, card chat.MusicCard) (string, error) {
	if !f.config.Enabled {
		return "", chat.ErrFrontendDisabled
	}

	chatIDInt, replyParams, err := parseTarget(chatID, replyToID)
	if err != nil {
		return "", err
	}

	params := &bot.SendMessageParams{
		ChatID:          chatIDInt,
		Text:            card.Fallback(),
		ReplyParameters: replyParams,
	}
	if card.URL != "" {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: f.localizer.T("button.open_song"), URL: card.URL}},
			},
		}
	}

	msg, err := f.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send music card: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// SendImage uploads a PNG as a photo
func (f *Frontend) SendImage(ctx context.Context, chatID, replyToID string, png []byte, caption string) (string, error) {
	if !f.config.Enabled {
		return "", chat.ErrFrontendDisabled
	}

	chatIDInt, replyParams, err := parseTarget(chatID, replyToID)
	if err != nil {
		return "", err
	}

	msg, err := f.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          chatIDInt,
		Photo:           &models.InputFileUpload{Filename: listImageFilename, Data: bytes.NewReader(png)},
		Caption:         caption,
		ReplyParameters: replyParams,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send photo: %w", err)
	}

	return strconv.Itoa(msg.ID), nil
}

// AwaitReply waits for the next message of origin's sender in origin's chat
func (f *Frontend) AwaitReply(ctx context.Context, origin *chat.Message, timeout time.Duration) (string, bool, error) {
	if !f.config.Enabled {
		return "", false, chat.ErrFrontendDisabled
	}

	text, ok := f.replies.Await(ctx, origin.ChatID, origin.SenderID, timeout)
	return text, ok, nil
}

func parseTarget(chatID, replyToID string) (int64, *models.ReplyParameters, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if replyToID == "" {
		return chatIDInt, nil, nil
	}

	messageID, err := strconv.Atoi(replyToID)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid reply message ID: %w", err)
	}
	return chatIDInt, &models.ReplyParameters{MessageID: messageID}, nil
}

// handleUpdate processes incoming Telegram updates
func (f *Frontend) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message != nil {
		f.handleMessage(ctx, update.Message)
	}
}

// handleMessage converts a Telegram message and routes it to a pending reply or the handler
func (f *Frontend) handleMessage(_ context.Context, msg *models.Message) {
	if f.config.GroupID != 0 && msg.Chat.ID != f.config.GroupID {
		return
	}

	// Channel posts have no sender; bots are ignored, including ourselves.
	if msg.From == nil || msg.From.IsBot {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	message := &chat.Message{
		ID:         strconv.Itoa(msg.ID),
		ChatID:     strconv.FormatInt(msg.Chat.ID, 10),
		SenderID:   strconv.FormatInt(msg.From.ID, 10),
		SenderName: getUserDisplayName(msg.From),
		Text:       text,
		IsGroup:    msg.Chat.Type == chatTypeGroup || msg.Chat.Type == chatTypeSuperGroup,
		Raw:        msg,
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

// verifyGroupAccess checks if the bot has access to the configured group
func (f *Frontend) verifyGroupAccess(ctx context.Context) error {
	group, err := f.bot.GetChat(ctx, &bot.GetChatParams{
		ChatID: f.config.GroupID,
	})
	if err != nil {
		return fmt.Errorf("cannot access group %d: %w", f.config.GroupID, err)
	}

	f.logger.Info("Bot has access to group",
		zap.String("group_title", group.Title),
		zap.String("group_type", string(group.Type)))

	return nil
}

// getUserDisplayName creates a display name for the user
func getUserDisplayName(user *models.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}

	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}

	return name
}
