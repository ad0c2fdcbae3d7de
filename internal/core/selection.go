package core

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"musicbot/internal/present"
	"musicbot/pkg/musicsearch"
)

// selectCandidate shows the candidate list and waits once for a 1-based choice.
// Timeout, cancellation and unusable input all end with the invalid-index reply.
func (c *MusicCommand) selectCandidate(ctx context.Context, inv *invocation, candidates []musicsearch.Candidate) Outcome {
	listing := c.presenter.Present(ctx, candidates)
	if err := c.sendListing(ctx, inv, candidates, listing); err != nil {
		inv.logger.Error("Failed to send candidate list", zap.Error(err))
		return OutcomeDeliveryFailed
	}

	input, received, err := inv.frontend.AwaitReply(ctx, inv.origin, c.config.PromptTimeout())
	if err != nil {
		inv.logger.Warn("Failed to wait for selection", zap.Error(err))
		received = false
	}

	index, ok := parseSelection(input, received, len(candidates))
	if !ok {
		inv.logger.Info("Invalid selection",
			zap.Bool("received", received),
			zap.String("input", input))
		c.metrics.RecordSelection("invalid")
		if sendErr := c.replyText(ctx, inv, c.localizer.T("music.invalid_index")); sendErr != nil {
			inv.logger.Error("Failed to deliver reply", zap.Error(sendErr))
			return OutcomeDeliveryFailed
		}
		return OutcomeInvalidSelection
	}

	c.metrics.RecordSelection("selected")
	if err := c.replyCard(ctx, inv, candidates[index]); err != nil {
		inv.logger.Error("Failed to deliver reply", zap.Error(err))
		return OutcomeDeliveryFailed
	}
	return OutcomeSelected
}

// sendListing delivers the list, retrying a failed image as plain text.
func (c *MusicCommand) sendListing(
	ctx context.Context,
	inv *invocation,
	candidates []musicsearch.Candidate,
	listing present.Listing,
) error {
	chatID, replyTo := inv.origin.ChatID, inv.origin.ID

	if !listing.IsImage() {
		_, err := inv.frontend.SendText(ctx, chatID, replyTo, listing.Text)
		return err
	}

	_, err := inv.frontend.SendImage(ctx, chatID, replyTo, listing.Image, listing.Caption)
	if err == nil {
		return nil
	}

	inv.logger.Warn("Failed to send list image, sending text", zap.Error(err))
	c.metrics.RecordRenderFallback("send")
	_, err = inv.frontend.SendText(ctx, chatID, replyTo, c.fallback.Present(ctx, candidates).Text)
	return err
}

// parseSelection maps a reply onto a 0-based candidate index.
func parseSelection(input string, received bool, count int) (int, bool) {
	if !received {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimSpace(norm.NFKC.String(input)))
	if err != nil || n < 1 || n > count {
		return 0, false
	}
	return n - 1, true
}
