package chat

import (
	"musicbot/pkg/musicsearch"
)

// MusicCard is a structured song reference with a plain-text fallback.
type MusicCard struct {
	Type   string // "163" or "qq"
	ID     string
	Title  string
	Artist string
	URL    string
}

// NewMusicCard builds the card for a search candidate.
func NewMusicCard(c musicsearch.Candidate) MusicCard {
	return MusicCard{
		Type:   c.CardType(),
		ID:     c.ExternalID,
		Title:  c.Title,
		Artist: c.Artist,
		URL:    c.URL,
	}
}

// Fallback is the text shown by clients that cannot display the card.
func (c MusicCard) Fallback() string {
	return c.Title + "\n" + c.Artist + "\n" + c.URL
}
