package musicsearch

import (
	"context"
	"fmt"
	"net/http"
)

// Manager dispatches searches to the adapter registered for a platform.
type Manager struct {
	searchers map[Platform]Searcher
}

// NewManager creates a manager with the NetEase and QQ adapters sharing client.
func NewManager(client *http.Client) *Manager {
	return NewManagerWith(map[Platform]Searcher{
		PlatformNetEase: NewNetEaseSearcher(WithHTTPClient(client)),
		PlatformQQ:      NewQQSearcher(WithHTTPClient(client)),
	})
}

// NewManagerWith creates a manager over an explicit dispatch table.
func NewManagerWith(searchers map[Platform]Searcher) *Manager {
	table := make(map[Platform]Searcher, len(searchers))
	for p, s := range searchers {
		table[p] = s
	}
	return &Manager{searchers: table}
}

// Search runs keyword against the adapter for platform.
func (m *Manager) Search(ctx context.Context, platform Platform, keyword string) ([]Candidate, error) {
	searcher, ok := m.searchers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
	return searcher.Search(ctx, keyword)
}

// Supports reports whether an adapter is registered for platform.
func (m *Manager) Supports(platform Platform) bool {
	_, ok := m.searchers[platform]
	return ok
}
