package chat

import (
	"context"
	"sync"
	"time"
)

// ReplyWaiter hands the next message of a sender to a pending AwaitReply call.
// Frontends offer every incoming message to Deliver before dispatching it.
type ReplyWaiter struct {
	mutex   sync.Mutex
	pending map[string]chan string
}

// NewReplyWaiter creates an empty waiter.
func NewReplyWaiter() *ReplyWaiter {
	return &ReplyWaiter{
		pending: make(map[string]chan string),
	}
}

func replyKey(chatID, senderID string) string {
	return chatID + ":" + senderID
}

// Await blocks until Deliver receives a message from senderID in chatID, the
// timeout elapses or ctx ends. A newer Await for the same sender replaces an
// older one, which then runs into its timeout.
func (w *ReplyWaiter) Await(ctx context.Context, chatID, senderID string, timeout time.Duration) (string, bool) {
	key := replyKey(chatID, senderID)
	ch := make(chan string, 1)

	w.mutex.Lock()
	w.pending[key] = ch
	w.mutex.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case text := <-ch:
		return text, true
	case <-waitCtx.Done():
	}

	w.mutex.Lock()
	if w.pending[key] == ch {
		delete(w.pending, key)
	}
	w.mutex.Unlock()

	// Deliver sends under the mutex, so a message it consumed is buffered by now.
	select {
	case text := <-ch:
		return text, true
	default:
		return "", false
	}
}

// Deliver passes msg to a pending Await for its sender. It reports whether the
// message was consumed, in which case it must not be handled as a new command.
func (w *ReplyWaiter) Deliver(msg *Message) bool {
	key := replyKey(msg.ChatID, msg.SenderID)

	w.mutex.Lock()
	defer w.mutex.Unlock()

	ch, ok := w.pending[key]
	if !ok {
		return false
	}
	delete(w.pending, key)
	ch <- msg.Text
	return true
}

// Pending returns the number of open waits.
func (w *ReplyWaiter) Pending() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.pending)
}
