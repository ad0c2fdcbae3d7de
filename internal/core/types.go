package core

import (
	"context"
	"time"

	"musicbot/pkg/musicsearch"
)

// Outcome is the terminal result of one music command invocation.
type Outcome int

const (
	// OutcomeUnsupportedPlatform means the requested platform is unknown
	OutcomeUnsupportedPlatform Outcome = iota
	// OutcomeMissingKeyword means no keyword was given
	OutcomeMissingKeyword
	// OutcomeInvalidOptions means the command options could not be parsed
	OutcomeInvalidOptions
	// OutcomeNotFound means the search failed or returned nothing
	OutcomeNotFound
	// OutcomeSingle means the only candidate was sent as a card
	OutcomeSingle
	// OutcomeForced means the top candidate was sent without prompting
	OutcomeForced
	// OutcomeSelected means the user picked a candidate from the list
	OutcomeSelected
	// OutcomeInvalidSelection means the prompt timed out or got a bad index
	OutcomeInvalidSelection
	// OutcomeDeliveryFailed means the chat transport rejected a message
	OutcomeDeliveryFailed
	// OutcomeHelp means the usage text was sent
	OutcomeHelp
)

var outcomeNames = map[Outcome]string{
	OutcomeUnsupportedPlatform: "unsupported_platform",
	OutcomeMissingKeyword:      "missing_keyword",
	OutcomeInvalidOptions:      "invalid_options",
	OutcomeNotFound:            "not_found",
	OutcomeSingle:              "single",
	OutcomeForced:              "forced",
	OutcomeSelected:            "selected",
	OutcomeInvalidSelection:    "invalid_selection",
	OutcomeDeliveryFailed:      "delivery_failed",
	OutcomeHelp:                "help",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// SongSearcher runs a keyword search on one platform.
type SongSearcher interface {
	Search(ctx context.Context, platform musicsearch.Platform, keyword string) ([]musicsearch.Candidate, error)
}

// SeenStore remembers delivered message IDs so redeliveries are dropped.
type SeenStore interface {
	// MarkSeen records id and reports whether it was new.
	MarkSeen(id string) bool
}

// Metrics receives command and dispatcher telemetry.
type Metrics interface {
	RecordCommand(platform, outcome string)
	RecordSearch(platform, status string, duration time.Duration)
	RecordSelection(outcome string)
	RecordRenderFallback(reason string)
	RecordFloodBlocked()
	RecordDuplicate()
}

// NopMetrics discards all telemetry.
type NopMetrics struct{}

func (NopMetrics) RecordCommand(string, string)               {}
func (NopMetrics) RecordSearch(string, string, time.Duration) {}
func (NopMetrics) RecordSelection(string)                     {}
func (NopMetrics) RecordRenderFallback(string)                {}
func (NopMetrics) RecordFloodBlocked()                        {}
func (NopMetrics) RecordDuplicate()                           {}
