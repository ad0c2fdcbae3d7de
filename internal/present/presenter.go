// Package present formats candidate lists for user disambiguation, either as
// plain text or as a styled table rendered to an image.
package present

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"musicbot/internal/i18n"
	"musicbot/pkg/musicsearch"
)

const (
	// TextArtistLimit caps the artist column in plain-text lists.
	TextArtistLimit = 10
	// ImageArtistLimit caps the artist column in rendered tables.
	ImageArtistLimit = 15

	ellipsis = "..."
)

// Listing is the message payload for a candidate list. Image is set for
// rendered lists, Text otherwise.
type Listing struct {
	Text    string
	Image   []byte
	Caption string
}

// IsImage reports whether the listing carries a rendered image.
func (l Listing) IsImage() bool {
	return len(l.Image) > 0
}

// Presenter turns an ordered candidate list into a message payload.
type Presenter interface {
	Present(ctx context.Context, candidates []musicsearch.Candidate) Listing
}

// Renderer converts an HTML document into an image.
type Renderer interface {
	Available() bool
	Render(ctx context.Context, html string) ([]byte, error)
}

// New selects the presentation strategy. Image mode without a renderer is plain text.
func New(imageMode bool, renderer Renderer, localizer *i18n.Localizer, logger *zap.Logger, opts ...ImageOption) Presenter {
	text := NewTextPresenter(localizer)
	if !imageMode || renderer == nil {
		return text
	}
	return NewImagePresenter(renderer, text, localizer, logger, opts...)
}

// Truncate caps s at limit characters, appending an ellipsis when shortened.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + ellipsis
}

// TextPresenter renders a numbered paragraph list.
type TextPresenter struct {
	localizer *i18n.Localizer
}

// NewTextPresenter creates the plain-text strategy.
func NewTextPresenter(localizer *i18n.Localizer) *TextPresenter {
	return &TextPresenter{localizer: localizer}
}

// Present lists each candidate as "i. title artist album".
func (p *TextPresenter) Present(_ context.Context, candidates []musicsearch.Candidate) Listing {
	var b strings.Builder
	b.WriteString(p.localizer.T("list.header"))

	for i, c := range candidates {
		fields := []string{strconv.Itoa(i+1) + ".", c.Title}
		if c.Artist != "" {
			fields = append(fields, Truncate(c.Artist, TextArtistLimit))
		}
		if c.Album != "" {
			fields = append(fields, c.Album)
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(fields, " "))
	}

	return Listing{Text: b.String()}
}
