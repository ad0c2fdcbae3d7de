package musicsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const (
	qqSearchURL = "https://c.y.qq.com/splcloud/fcgi-bin/smartbox_new.fcg"
	qqSongURL   = "https://y.qq.com/n/ryqq/songDetail/"
)

// QQSearcher searches QQ Music through the smartbox suggestion API.
type QQSearcher struct {
	client   *http.Client
	endpoint string
}

// NewQQSearcher creates a QQ Music adapter.
func NewQQSearcher(opts ...Option) *QQSearcher {
	o := buildOptions(qqSearchURL, opts)
	return &QQSearcher{client: o.client, endpoint: o.endpoint}
}

// Search queries smartbox suggestions for keyword. Smartbox carries no album
// information, and song pages are addressed by mid rather than numeric id.
func (s *QQSearcher) Search(ctx context.Context, keyword string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("key", keyword)
	params.Set("format", "json")

	doc, err := fetchJSON(ctx, s.client, s.endpoint, params, "qq")
	if err != nil {
		return nil, err
	}

	code := doc.Get("code")
	if !code.Exists() {
		return nil, fmt.Errorf("%w: qq response has no code", ErrMalformedResponse)
	}
	if code.Int() != 0 {
		return nil, nil
	}

	song := doc.Get("data.song")
	if !song.IsObject() {
		return nil, fmt.Errorf("%w: qq response has no song section", ErrMalformedResponse)
	}
	if song.Get("count").Int() == 0 {
		return nil, nil
	}

	items := song.Get("itemlist").Array()
	candidates := make([]Candidate, 0, min(len(items), MaxResults))
	for _, item := range items {
		if len(candidates) == MaxResults {
			break
		}

		id := item.Get("id").String()
		mid := item.Get("mid").String()
		title := item.Get("name").String()
		if id == "" || mid == "" || title == "" {
			continue
		}

		candidates = append(candidates, Candidate{
			Source:     PlatformQQ,
			ExternalID: id,
			Title:      title,
			Artist:     item.Get("singer").String(),
			URL:        qqSongURL + mid,
		})
	}

	return candidates, nil
}
