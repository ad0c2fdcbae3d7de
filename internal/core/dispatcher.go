package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"musicbot/internal/chat"
	"musicbot/internal/flood"
	"musicbot/pkg/text"
)

// Dispatcher routes messages from every configured chat frontend to the music command.
type Dispatcher struct {
	config    *Config
	frontends []chat.Frontend
	command   *MusicCommand
	parser    *text.Parser
	floodgate *flood.Floodgate
	seen      SeenStore
	metrics   Metrics
	logger    *zap.Logger
	onStarted func()

	inFlight sync.WaitGroup
}

// NewDispatcher creates a dispatcher. floodgate, seen and metrics may be nil.
func NewDispatcher(
	config *Config,
	frontends []chat.Frontend,
	command *MusicCommand,
	floodgate *flood.Floodgate,
	seen SeenStore,
	metrics Metrics,
	logger *zap.Logger,
) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}

	return &Dispatcher{
		config:    config,
		frontends: frontends,
		command:   command,
		parser:    text.NewParser(),
		floodgate: floodgate,
		seen:      seen,
		metrics:   metrics,
		logger:    logger,
	}
}

// OnStarted registers fn to run once every frontend has started, before listening begins.
// It must be called before Start.
func (d *Dispatcher) OnStarted(fn func()) {
	d.onStarted = fn
}

// Start starts every frontend and listens on all of them until ctx ends or one fails.
func (d *Dispatcher) Start(ctx context.Context) error {
	if len(d.frontends) == 0 {
		return errors.New("no chat frontend configured")
	}

	d.logger.Info("Starting message dispatcher", zap.Int("frontends", len(d.frontends)))

	for _, fe := range d.frontends {
		if err := fe.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s frontend: %w", fe.Name(), err)
		}
	}

	if d.onStarted != nil {
		d.onStarted()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fe := range d.frontends {
		g.Go(func() error {
			d.logger.Info("Listening for messages", zap.String("frontend", fe.Name()))
			err := fe.Listen(gctx, func(msg *chat.Message) {
				d.handleMessage(gctx, fe, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s frontend: %w", fe.Name(), err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Stop waits for running commands to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.logger.Info("Stopping message dispatcher")

	if d.floodgate != nil {
		stats := d.floodgate.Stats()
		d.logger.Debug("Floodgate state at shutdown",
			zap.Int("active_senders", stats.ActiveSenders),
			zap.Int("limit_per_minute", stats.LimitPerMinute))
		d.floodgate.Stop()
	}

	done := make(chan struct{})
	go func() {
		d.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("commands still running: %w", ctx.Err())
	}
}

// handleMessage filters a message and runs the command for it in the background.
func (d *Dispatcher) handleMessage(ctx context.Context, fe chat.Frontend, msg *chat.Message) {
	logger := d.logger.With(
		zap.String("frontend", fe.Name()),
		zap.String("messageID", msg.ID),
		zap.String("chat", msg.ChatID),
		zap.String("sender", msg.SenderID))

	if d.seen != nil && msg.ID != "" && !d.seen.MarkSeen(fe.Name()+":"+msg.ChatID+":"+msg.ID) {
		logger.Debug("Dropping duplicate message")
		d.metrics.RecordDuplicate()
		return
	}

	req, matched, parseErr := d.parser.ParseCommand(msg.Text)
	if !matched {
		return
	}

	if d.floodgate != nil && !d.floodgate.Allow(fe.Name()+":"+msg.ChatID, msg.SenderID) {
		logger.Info("Command rate limited")
		d.metrics.RecordFloodBlocked()
		return
	}

	logger.Debug("Received music command",
		zap.String("sender_name", msg.SenderName),
		zap.String("text", msg.Text))

	d.inFlight.Add(1)
	go func() {
		defer d.inFlight.Done()

		var outcome Outcome
		if parseErr != nil {
			outcome = d.command.RejectOptions(ctx, fe, msg, parseErr)
		} else {
			outcome = d.command.Execute(ctx, fe, msg, req)
		}
		logger.Debug("Command finished", zap.Stringer("outcome", outcome))
	}()
}
