// Package flood limits how often a sender may invoke commands in a chat.
package flood

import (
	"sync"
	"time"
)

const (
	// window is the sliding window the per-minute limit applies to
	window = time.Minute
	// cleanupInterval is how often idle senders are forgotten
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a sender stays tracked without commands
	idleTimeout = 10 * time.Minute
)

// Floodgate is a per chat and sender sliding-window rate limiter.
type Floodgate struct {
	limitPerMinute int
	now            func() time.Time

	mutex   sync.Mutex
	senders map[string]*senderWindow

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// senderWindow holds the command timestamps of one sender inside the window.
type senderWindow struct {
	hits     []time.Time
	lastSeen time.Time
}

// New creates a Floodgate allowing limitPerMinute commands per sender and chat.
// A non-positive limit disables limiting.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		now:            time.Now,
		senders:        make(map[string]*senderWindow),
		stopCleanup:    make(chan struct{}),
	}

	go fg.cleanupLoop()

	return fg
}

// Stop ends the background cleanup. It is safe to call more than once.
func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() {
		close(fg.stopCleanup)
	})
}

// Allow records a command from senderID in chatID and reports whether it may run.
func (fg *Floodgate) Allow(chatID, senderID string) bool {
	if fg.limitPerMinute <= 0 {
		return true
	}

	key := chatID + ":" + senderID
	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	sw, ok := fg.senders[key]
	if !ok {
		sw = &senderWindow{hits: make([]time.Time, 0, fg.limitPerMinute)}
		fg.senders[key] = sw
	}
	sw.lastSeen = now

	cutoff := now.Add(-window)
	kept := sw.hits[:0]
	for _, hit := range sw.hits {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}
	sw.hits = kept

	if len(sw.hits) >= fg.limitPerMinute {
		return false
	}

	sw.hits = append(sw.hits, now)
	return true
}

func (fg *Floodgate) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.forgetIdle()
		case <-fg.stopCleanup:
			return
		}
	}
}

// forgetIdle drops senders that have been quiet for idleTimeout.
func (fg *Floodgate) forgetIdle() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for key, sw := range fg.senders {
		if sw.lastSeen.Before(cutoff) {
			delete(fg.senders, key)
		}
	}
}

// Stats returns counters for monitoring.
func (fg *Floodgate) Stats() Stats {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	return Stats{
		ActiveSenders:  len(fg.senders),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(window.Seconds()),
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveSenders  int `json:"active_senders"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
