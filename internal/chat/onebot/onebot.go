// Package onebot provides a OneBot v11 frontend over a forward WebSocket connection.
package onebot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"musicbot/internal/chat"
)

const (
	frontendName = "onebot"

	defaultReconnectDelay   = 5 * time.Second
	defaultActionTimeout    = 15 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

var (
	// ErrNotConnected is returned when an action is sent without a live connection.
	ErrNotConnected = errors.New("onebot connection is not established")
	// ErrActionTimeout is returned when the implementation does not answer an action in time.
	ErrActionTimeout = errors.New("onebot action timed out")
	// ErrActionFailed is returned when the implementation rejects an action.
	ErrActionFailed = errors.New("onebot action failed")
	// ErrDisconnected is returned to actions pending when the connection drops.
	ErrDisconnected = errors.New("onebot connection lost")
)

// Config holds OneBot-specific configuration
type Config struct {
	URL            string // Forward WebSocket endpoint, e.g. ws://127.0.0.1:6700
	AccessToken    string
	ReconnectDelay time.Duration
	ActionTimeout  time.Duration
	Enabled        bool
}

// Frontend implements the chat.Frontend interface for OneBot v11 implementations
type Frontend struct {
	config  *Config
	logger  *zap.Logger
	dialer  *websocket.Dialer
	replies *chat.ReplyWaiter

	connMutex  sync.RWMutex
	conn       *websocket.Conn
	writeMutex sync.Mutex

	pendingMutex sync.Mutex
	pending      map[string]chan gjson.Result

	handlerMutex   sync.RWMutex
	messageHandler func(*chat.Message)
}

// NewFrontend creates a new OneBot frontend
func NewFrontend(config *Config, logger *zap.Logger) *Frontend {
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = defaultReconnectDelay
	}
	if config.ActionTimeout <= 0 {
		config.ActionTimeout = defaultActionTimeout
	}

	return &Frontend{
		config:  config,
		logger:  logger,
		dialer:  &websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout},
		replies: chat.NewReplyWaiter(),
		pending: make(map[string]chan gjson.Result),
	}
}

// Name identifies the frontend.
func (f *Frontend) Name() string {
	return frontendName
}

// Start opens the first connection so that a wrong URL or token fails fast
func (f *Frontend) Start(ctx context.Context) error {
	if !f.config.Enabled {
		f.logger.Info("OneBot frontend is disabled, skipping initialization")
		return nil
	}

	f.logger.Info("Starting OneBot frontend", zap.String("url", f.config.URL))

	conn, err := f.dial(ctx)
	if err != nil {
		return err
	}
	f.setConn(conn)

	f.logger.Info("OneBot frontend started successfully")
	return nil
}

// Listen reads events until ctx ends, reconnecting after connection loss
func (f *Frontend) Listen(ctx context.Context, handler func(*chat.Message)) error {
	if !f.config.Enabled {
		return nil
	}

	f.handlerMutex.Lock()
	f.messageHandler = handler
	f.handlerMutex.Unlock()

	for {
		conn := f.currentConn()
		if conn == nil {
			var err error
			conn, err = f.dial(ctx)
			if err != nil {
				f.logger.Warn("Failed to connect, retrying",
					zap.Error(err),
					zap.Duration("delay", f.config.ReconnectDelay))
				if !f.sleep(ctx) {
					return nil
				}
				continue
			}
			f.setConn(conn)
			f.logger.Info("Reconnected to OneBot implementation")
		}

		err := f.readLoop(ctx, conn)
		f.dropConn(conn)

		if ctx.Err() != nil {
			return nil
		}

		f.logger.Warn("OneBot connection lost", zap.Error(err))
		if !f.sleep(ctx) {
			return nil
		}
	}
}

// SendText sends a text message to the specified chat, optionally as a reply
func (f *Frontend) SendText(ctx context.Context, chatID, replyToID, text string) (string, error) {
	return f.sendMessage(ctx, chatID, withReply(replyToID, textSegment(text)))
}

// SendMusicCard sends a native music share segment.
func (f *Frontend) SendMusicCard(ctx context.Context, chatID, _ string, card chat.MusicCard) (string, error) {
	// Music segments cannot be combined with a reply in one message on most implementations.
	return f.sendMessage(ctx, chatID, []segment{musicSegment(card)})
}

// SendImage sends a PNG inline as a base64 image segment
func (f *Frontend) SendImage(ctx context.Context, chatID, replyToID string, png []byte, caption string) (string, error) {
	segments := []segment{}
	if caption != "" {
		segments = append(segments, textSegment(caption+"\n"))
	}
	segments = append(segments, imageSegment(png))
	return f.sendMessage(ctx, chatID, withReply(replyToID, segments...))
}

// AwaitReply waits for the next message of origin's sender in origin's chat
func (f *Frontend) AwaitReply(ctx context.Context, origin *chat.Message, timeout time.Duration) (string, bool, error) {
	if !f.config.Enabled {
		return "", false, chat.ErrFrontendDisabled
	}

	text, ok := f.replies.Await(ctx, origin.ChatID, origin.SenderID, timeout)
	return text, ok, nil
}

func (f *Frontend) sendMessage(ctx context.Context, chatID string, segments []segment) (string, error) {
	if !f.config.Enabled {
		return "", chat.ErrFrontendDisabled
	}

	params, err := buildSendParams(chatID, segments)
	if err != nil {
		return "", err
	}

	data, err := f.callAction(ctx, "send_msg", params)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return data.Get("message_id").String(), nil
}

// callAction sends an action and waits for the response carrying the same echo.
func (f *Frontend) callAction(ctx context.Context, action string, params any) (gjson.Result, error) {
	conn := f.currentConn()
	if conn == nil {
		return gjson.Result{}, ErrNotConnected
	}

	echo := uuid.NewString()
	respCh := make(chan gjson.Result, 1)

	f.pendingMutex.Lock()
	f.pending[echo] = respCh
	f.pendingMutex.Unlock()

	defer func() {
		f.pendingMutex.Lock()
		delete(f.pending, echo)
		f.pendingMutex.Unlock()
	}()

	f.writeMutex.Lock()
	err := conn.WriteJSON(actionRequest{Action: action, Params: params, Echo: echo})
	f.writeMutex.Unlock()
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to write %s: %w", action, err)
	}

	timer := time.NewTimer(f.config.ActionTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	case <-timer.C:
		return gjson.Result{}, ErrActionTimeout
	case resp, ok := <-respCh:
		if !ok {
			return gjson.Result{}, ErrDisconnected
		}
		if resp.Get("status").String() != statusOK {
			return gjson.Result{}, fmt.Errorf("%w: %s retcode=%d %s", ErrActionFailed,
				action, resp.Get("retcode").Int(), resp.Get("wording").String())
		}
		return resp.Get("data"), nil
	}
}

func (f *Frontend) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		if !gjson.ValidBytes(payload) {
			f.logger.Debug("Ignoring malformed frame", zap.Int("bytes", len(payload)))
			continue
		}
		f.handleFrame(gjson.ParseBytes(payload))
	}
}

// handleFrame routes action responses to their callers and messages to the handler.
func (f *Frontend) handleFrame(frame gjson.Result) {
	if echo := frame.Get("echo"); echo.Exists() {
		f.pendingMutex.Lock()
		respCh, ok := f.pending[echo.String()]
		if ok {
			delete(f.pending, echo.String())
		}
		f.pendingMutex.Unlock()

		if ok {
			respCh <- frame
		}
		return
	}

	message, ok := parseMessageEvent(frame)
	if !ok || message.Text == "" {
		return
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

func (f *Frontend) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if f.config.AccessToken != "" {
		header.Set("Authorization", "Bearer "+f.config.AccessToken)
	}

	conn, resp, err := f.dialer.DialContext(ctx, f.config.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s (HTTP %d): %w", f.config.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", f.config.URL, err)
	}
	return conn, nil
}

func (f *Frontend) currentConn() *websocket.Conn {
	f.connMutex.RLock()
	defer f.connMutex.RUnlock()
	return f.conn
}

func (f *Frontend) setConn(conn *websocket.Conn) {
	f.connMutex.Lock()
	defer f.connMutex.Unlock()
	f.conn = conn
}

// dropConn closes conn and fails every action still waiting on it.
func (f *Frontend) dropConn(conn *websocket.Conn) {
	f.connMutex.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.connMutex.Unlock()

	_ = conn.Close()

	f.pendingMutex.Lock()
	for echo, respCh := range f.pending {
		close(respCh)
		delete(f.pending, echo)
	}
	f.pendingMutex.Unlock()
}

// sleep waits for the reconnect delay and reports false if ctx ended first.
func (f *Frontend) sleep(ctx context.Context) bool {
	timer := time.NewTimer(f.config.ReconnectDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
