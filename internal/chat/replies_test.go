package chat

import (
	"context"
	"testing"
	"time"

	"musicbot/pkg/musicsearch"
)

func TestReplyWaiter_DeliversToMatchingSender(t *testing.T) {
	w := NewReplyWaiter()
	done := make(chan struct{})
	var (
		text string
		ok   bool
	)

	go func() {
		text, ok = w.Await(context.Background(), "chat", "alice", time.Second)
		close(done)
	}()

	waitForPending(t, w, 1)

	if w.Deliver(&Message{ChatID: "chat", SenderID: "bob", Text: "1"}) {
		t.Error("Deliver() consumed message from another sender")
	}
	if w.Deliver(&Message{ChatID: "other", SenderID: "alice", Text: "1"}) {
		t.Error("Deliver() consumed message from another chat")
	}
	if !w.Deliver(&Message{ChatID: "chat", SenderID: "alice", Text: "2"}) {
		t.Fatal("Deliver() did not consume matching message")
	}

	<-done
	if !ok || text != "2" {
		t.Errorf("Await() = (%q, %v), want (\"2\", true)", text, ok)
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}
}

func TestReplyWaiter_Timeout(t *testing.T) {
	w := NewReplyWaiter()

	text, ok := w.Await(context.Background(), "chat", "alice", 10*time.Millisecond)
	if ok || text != "" {
		t.Errorf("Await() = (%q, %v), want timeout", text, ok)
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d after timeout, want 0", w.Pending())
	}
	if w.Deliver(&Message{ChatID: "chat", SenderID: "alice", Text: "late"}) {
		t.Error("Deliver() consumed message after wait ended")
	}
}

func TestReplyWaiter_ContextCancel(t *testing.T) {
	w := NewReplyWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := w.Await(ctx, "chat", "alice", time.Minute); ok {
		t.Error("Await() ok = true for cancelled context")
	}
}

func waitForPending(t *testing.T, w *ReplyWaiter, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for w.Pending() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Pending() never reached %d", n)
		}
		time.Sleep(time.Millisecond)
	}
}

// A message Deliver reports as consumed must always reach the waiter, even
// when the timeout fires at the same moment.
func TestReplyWaiter_ConsumedMessageIsNeverLost(t *testing.T) {
	w := NewReplyWaiter()

	for i := 0; i < 200; i++ {
		result := make(chan bool, 1)
		go func() {
			_, ok := w.Await(context.Background(), "chat", "alice", 2*time.Millisecond)
			result <- ok
		}()

		time.Sleep(time.Duration(i%5) * 500 * time.Microsecond)
		consumed := w.Deliver(&Message{ChatID: "chat", SenderID: "alice", Text: "3"})

		if received := <-result; received != consumed {
			t.Fatalf("iteration %d: Deliver() = %v but Await() ok = %v", i, consumed, received)
		}
		if w.Pending() != 0 {
			t.Fatalf("iteration %d: %d waits left open", i, w.Pending())
		}
	}
}

func TestReplyWaiter_ReplacedWaitTimesOut(t *testing.T) {
	w := NewReplyWaiter()

	first := make(chan bool, 1)
	go func() {
		_, ok := w.Await(context.Background(), "chat", "alice", 50*time.Millisecond)
		first <- ok
	}()
	waitForPending(t, w, 1)

	second := make(chan string, 1)
	go func() {
		text, _ := w.Await(context.Background(), "chat", "alice", time.Second)
		second <- text
	}()
	time.Sleep(10 * time.Millisecond)

	if !w.Deliver(&Message{ChatID: "chat", SenderID: "alice", Text: "1"}) {
		t.Fatal("Deliver() did not consume message")
	}

	select {
	case ok := <-first:
		if ok {
			t.Error("replaced wait received the message")
		}
	case <-time.After(time.Second):
		t.Fatal("replaced wait did not return")
	}
	if text := <-second; text != "1" {
		t.Errorf("newer wait got %q, want 1", text)
	}
}

func TestMusicCard(t *testing.T) {
	card := NewMusicCard(musicsearch.Candidate{
		Source:     musicsearch.PlatformNetEase,
		ExternalID: "186016",
		Title:      "晴天",
		Artist:     "周杰伦",
		Album:      "叶惠美",
		URL:        "https://music.163.com/#/song?id=186016",
	})

	if card.Type != "163" || card.ID != "186016" {
		t.Errorf("card = %+v, want type 163 id 186016", card)
	}

	want := "晴天\n周杰伦\nhttps://music.163.com/#/song?id=186016"
	if got := card.Fallback(); got != want {
		t.Errorf("Fallback() = %q, want %q", got, want)
	}
}
