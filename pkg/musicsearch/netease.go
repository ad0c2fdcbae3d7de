package musicsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	neteaseSearchURL = "http://music.163.com/api/cloudsearch/pc"
	neteaseSongURL   = "https://music.163.com/#/song?id="
	// neteaseSearchTypeSong selects single songs in the cloudsearch API.
	neteaseSearchTypeSong = "1"
	neteaseCodeOK         = 200
	neteaseArtistSep      = "/"
)

// Option configures a platform adapter.
type Option func(*adapterOptions)

type adapterOptions struct {
	client   *http.Client
	endpoint string
}

// WithHTTPClient sets the HTTP client used for upstream requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *adapterOptions) {
		o.client = client
	}
}

// WithEndpoint overrides the upstream search URL.
func WithEndpoint(endpoint string) Option {
	return func(o *adapterOptions) {
		o.endpoint = endpoint
	}
}

func buildOptions(defaultEndpoint string, opts []Option) adapterOptions {
	o := adapterOptions{endpoint: defaultEndpoint}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = NewHTTPClient(0)
	}
	return o
}

// NetEaseSearcher searches NetEase Cloud Music through the cloudsearch API.
type NetEaseSearcher struct {
	client   *http.Client
	endpoint string
}

// NewNetEaseSearcher creates a NetEase Cloud Music adapter.
func NewNetEaseSearcher(opts ...Option) *NetEaseSearcher {
	o := buildOptions(neteaseSearchURL, opts)
	return &NetEaseSearcher{client: o.client, endpoint: o.endpoint}
}

// Search queries the first page of song results for keyword.
func (s *NetEaseSearcher) Search(ctx context.Context, keyword string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("s", keyword)
	params.Set("type", neteaseSearchTypeSong)
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(MaxResults))

	doc, err := fetchJSON(ctx, s.client, s.endpoint, params, "netease")
	if err != nil {
		return nil, err
	}

	code := doc.Get("code")
	if !code.Exists() {
		return nil, fmt.Errorf("%w: netease response has no code", ErrMalformedResponse)
	}
	if code.Int() != neteaseCodeOK {
		return nil, nil
	}

	result := doc.Get("result")
	if !result.IsObject() {
		return nil, fmt.Errorf("%w: netease response has no result", ErrMalformedResponse)
	}
	if result.Get("songCount").Int() == 0 {
		return nil, nil
	}

	songs := result.Get("songs").Array()
	candidates := make([]Candidate, 0, min(len(songs), MaxResults))
	for _, song := range songs {
		if len(candidates) == MaxResults {
			break
		}

		id := song.Get("id").String()
		title := song.Get("name").String()
		if id == "" || title == "" {
			continue
		}

		var artists []string
		for _, ar := range song.Get("ar").Array() {
			if name := ar.Get("name").String(); name != "" {
				artists = append(artists, name)
			}
		}

		candidates = append(candidates, Candidate{
			Source:     PlatformNetEase,
			ExternalID: id,
			Title:      title,
			Artist:     strings.Join(artists, neteaseArtistSep),
			Album:      song.Get("al.name").String(),
			URL:        neteaseSongURL + id,
		})
	}

	return candidates, nil
}
