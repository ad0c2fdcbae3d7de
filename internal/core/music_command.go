package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"musicbot/internal/chat"
	"musicbot/internal/i18n"
	"musicbot/internal/present"
	"musicbot/pkg/musicsearch"
	"musicbot/pkg/text"
)

// MusicCommand answers one music invocation: it validates the request, searches
// the selected platform and replies with a card, a candidate list or a notice.
type MusicCommand struct {
	config    MusicConfig
	searcher  SongSearcher
	presenter present.Presenter
	fallback  present.Presenter
	localizer *i18n.Localizer
	usage     string
	metrics   Metrics
	logger    *zap.Logger
}

// NewMusicCommand creates the command handler. metrics may be nil.
func NewMusicCommand(
	config *Config,
	searcher SongSearcher,
	presenter present.Presenter,
	metrics Metrics,
	logger *zap.Logger,
) *MusicCommand {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	localizer := i18n.NewLocalizer(config.App.Language)

	return &MusicCommand{
		config:    config.Music,
		searcher:  searcher,
		presenter: presenter,
		fallback:  present.NewTextPresenter(localizer),
		localizer: localizer,
		usage:     text.NewParser(platformHelp(config.Music.Platform)).Usage(),
		metrics:   metrics,
		logger:    logger,
	}
}

// invocation carries the per-call state of one command run.
type invocation struct {
	frontend chat.Frontend
	origin   *chat.Message
	logger   *zap.Logger
}

func (c *MusicCommand) begin(fe chat.Frontend, msg *chat.Message) *invocation {
	return &invocation{
		frontend: fe,
		origin:   msg,
		logger: c.logger.With(
			zap.String("invocation", uuid.NewString()),
			zap.String("frontend", fe.Name()),
			zap.String("chat", msg.ChatID),
			zap.String("sender", msg.SenderID)),
	}
}

// Execute runs the command for msg. It never returns an error: user mistakes
// become replies and upstream failures become the not-found outcome.
func (c *MusicCommand) Execute(ctx context.Context, fe chat.Frontend, msg *chat.Message, req text.Invocation) Outcome {
	inv := c.begin(fe, msg)

	if req.Help {
		return c.finish(inv, "", OutcomeHelp,
			c.replyText(ctx, inv, c.localizer.T("music.usage", c.usage)))
	}

	platformName := strings.TrimSpace(req.Platform)
	if platformName == "" {
		platformName = c.config.Platform
	}

	platform, err := musicsearch.ParsePlatform(platformName)
	if err != nil {
		inv.logger.Info("Rejected unsupported platform", zap.String("platform", platformName))
		return c.finish(inv, platformName, OutcomeUnsupportedPlatform,
			c.replyText(ctx, inv, c.localizer.T("music.unsupported_platform", platformName)))
	}

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return c.finish(inv, platform.String(), OutcomeMissingKeyword,
			c.replyText(ctx, inv, c.localizer.T("music.missing_keyword")))
	}

	inv.logger = inv.logger.With(zap.String("platform", platform.String()), zap.String("keyword", keyword))
	candidates := c.search(ctx, inv, platform, keyword)

	switch {
	case len(candidates) == 0:
		if !c.config.ShowWarning {
			return c.finish(inv, platform.String(), OutcomeNotFound, nil)
		}
		return c.finish(inv, platform.String(), OutcomeNotFound,
			c.replyText(ctx, inv, c.localizer.T("music.search_failed")))

	case len(candidates) == 1:
		return c.finish(inv, platform.String(), OutcomeSingle, c.replyCard(ctx, inv, candidates[0]))

	case req.Force:
		return c.finish(inv, platform.String(), OutcomeForced, c.replyCard(ctx, inv, candidates[0]))

	default:
		outcome := c.selectCandidate(ctx, inv, candidates)
		c.metrics.RecordCommand(platform.String(), outcome.String())
		return outcome
	}
}

// RejectOptions answers an invocation whose options could not be parsed.
func (c *MusicCommand) RejectOptions(ctx context.Context, fe chat.Frontend, msg *chat.Message, parseErr error) Outcome {
	inv := c.begin(fe, msg)
	inv.logger.Info("Rejected command options", zap.Error(parseErr))

	detail := parseErr.Error()
	if errors.Is(parseErr, text.ErrInvalidOptions) {
		detail = strings.TrimPrefix(detail, text.ErrInvalidOptions.Error()+": ")
	}

	return c.finish(inv, "", OutcomeInvalidOptions,
		c.replyText(ctx, inv, c.localizer.T("music.invalid_options", detail, c.usage)))
}

// search runs the upstream query and collapses every failure into "no candidates".
func (c *MusicCommand) search(
	ctx context.Context,
	inv *invocation,
	platform musicsearch.Platform,
	keyword string,
) []musicsearch.Candidate {
	start := time.Now()
	candidates, err := c.searcher.Search(ctx, platform, keyword)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		c.metrics.RecordSearch(platform.String(), "error", elapsed)
		inv.logger.Warn("Search failed", zap.Error(err), zap.Duration("took", elapsed))
		return nil
	case len(candidates) == 0:
		c.metrics.RecordSearch(platform.String(), "empty", elapsed)
		inv.logger.Info("Search found nothing", zap.Duration("took", elapsed))
		return nil
	}

	c.metrics.RecordSearch(platform.String(), "ok", elapsed)
	inv.logger.Debug("Search succeeded",
		zap.Int("candidates", len(candidates)),
		zap.Duration("took", elapsed))

	if len(candidates) > musicsearch.MaxResults {
		candidates = candidates[:musicsearch.MaxResults]
	}
	return candidates
}

// finish records the outcome, downgrading it when the terminal reply was not delivered.
func (c *MusicCommand) finish(inv *invocation, platform string, outcome Outcome, sendErr error) Outcome {
	if sendErr != nil {
		inv.logger.Error("Failed to deliver reply", zap.Stringer("outcome", outcome), zap.Error(sendErr))
		outcome = OutcomeDeliveryFailed
	}
	c.metrics.RecordCommand(platform, outcome.String())
	return outcome
}

func (c *MusicCommand) replyText(ctx context.Context, inv *invocation, message string) error {
	_, err := inv.frontend.SendText(ctx, inv.origin.ChatID, inv.origin.ID, message)
	return err
}

func (c *MusicCommand) replyCard(ctx context.Context, inv *invocation, candidate musicsearch.Candidate) error {
	card := chat.NewMusicCard(candidate)
	_, err := inv.frontend.SendMusicCard(ctx, inv.origin.ChatID, inv.origin.ID, card)
	if err == nil {
		inv.logger.Info("Sent music card",
			zap.String("card_type", card.Type),
			zap.String("song_id", card.ID),
			zap.String("title", card.Title))
	}
	return err
}

func platformHelp(defaultPlatform string) text.Option {
	names := make([]string, 0, len(musicsearch.Platforms()))
	for _, p := range musicsearch.Platforms() {
		names = append(names, p.String())
	}
	return text.WithPlatforms(names, defaultPlatform)
}
