// Package musicsearch provides keyword search against NetEase Cloud Music and QQ Music,
// normalizing both upstream responses into Candidate records.
package musicsearch

import (
	"context"
)

// MaxResults is the number of candidates a search returns at most.
const MaxResults = 5

// Candidate is a single normalized song result from an upstream search.
type Candidate struct {
	Source     Platform // Platform that produced the result.
	ExternalID string   // Platform-specific song identifier.
	Title      string   // Song display name.
	Artist     string   // Credited artists, "/"-joined for NetEase.
	Album      string   // Album name, always empty for QQ.
	URL        string   // Canonical song page on the source platform.
}

// CardType returns the music card type tag used by chat hosts for this candidate.
func (c Candidate) CardType() string {
	return c.Source.CardType()
}

// Searcher defines the capability shared by every platform adapter.
type Searcher interface {
	// Search returns up to MaxResults candidates ordered by upstream relevance.
	// An empty result with a nil error means the platform found nothing.
	Search(ctx context.Context, keyword string) ([]Candidate, error)
}
