package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"musicbot/internal/chat"
)

// apiCall is one request captured by the fake Bot API.
type apiCall struct {
	method string
	fields map[string]string
	files  []string
}

type fakeBotAPI struct {
	mutex sync.Mutex
	calls []apiCall
}

func (a *fakeBotAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}

		call := apiCall{
			method: r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:],
			fields: map[string]string{},
		}
		if r.MultipartForm != nil {
			for k, v := range r.MultipartForm.Value {
				call.fields[k] = v[0]
			}
			for k := range r.MultipartForm.File {
				call.files = append(call.files, k)
			}
		}

		a.mutex.Lock()
		a.calls = append(a.calls, call)
		a.mutex.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":-100,"type":"group"}}}`))
	}
}

func (a *fakeBotAPI) lastCall(t *testing.T) apiCall {
	t.Helper()
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if len(a.calls) == 0 {
		t.Fatal("no Bot API call recorded")
	}
	return a.calls[len(a.calls)-1]
}

func newStartedFrontend(t *testing.T) (*Frontend, *fakeBotAPI) {
	t.Helper()

	api := &fakeBotAPI{}
	server := httptest.NewServer(api.handler(t))
	t.Cleanup(server.Close)

	frontend := NewFrontend(&Config{
		BotToken:  "test-token",
		Enabled:   true,
		Language:  "en",
		ServerURL: server.URL,
	}, zap.NewNop())

	if err := frontend.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return frontend, api
}

func TestNewFrontend(t *testing.T) {
	config := &Config{
		BotToken: "test-token",
		GroupID:  -123456789,
		Enabled:  true,
	}

	frontend := NewFrontend(config, zap.NewNop())

	if frontend == nil {
		t.Fatal("NewFrontend returned nil")
	}
	if frontend.Name() != "telegram" {
		t.Errorf("Name() = %q", frontend.Name())
	}
	if frontend.localizer.Language() != "zh" {
		t.Errorf("default language = %q, want zh", frontend.localizer.Language())
	}
}

func TestDisabledFrontend(t *testing.T) {
	frontend := NewFrontend(&Config{Enabled: false}, zap.NewNop())
	ctx := context.Background()

	if err := frontend.Start(ctx); err != nil {
		t.Errorf("Start with disabled config should not return error, got: %v", err)
	}

	listenCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	messageReceived := false
	if err := frontend.Listen(listenCtx, func(_ *chat.Message) { messageReceived = true }); err != nil {
		t.Errorf("Listen with disabled config should not return error, got: %v", err)
	}
	if messageReceived {
		t.Error("Should not receive messages when disabled")
	}

	if _, err := frontend.SendText(ctx, "123", "456", "test"); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("SendText error = %v, want ErrFrontendDisabled", err)
	}
	if _, err := frontend.SendMusicCard(ctx, "123", "456", chat.MusicCard{}); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("SendMusicCard error = %v, want ErrFrontendDisabled", err)
	}
	if _, err := frontend.SendImage(ctx, "123", "456", []byte("png"), ""); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("SendImage error = %v, want ErrFrontendDisabled", err)
	}
	if _, _, err := frontend.AwaitReply(ctx, &chat.Message{}, time.Second); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("AwaitReply error = %v, want ErrFrontendDisabled", err)
	}
}

func TestSendText(t *testing.T) {
	frontend, api := newStartedFrontend(t)

	id, err := frontend.SendText(context.Background(), "-100", "12", "hello")
	if err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if id != "77" {
		t.Errorf("message ID = %q, want 77", id)
	}

	call := api.lastCall(t)
	if call.method != "sendMessage" {
		t.Errorf("method = %q, want sendMessage", call.method)
	}
	if call.fields["chat_id"] != "-100" || call.fields["text"] != "hello" {
		t.Errorf("fields = %v", call.fields)
	}
	if !strings.Contains(call.fields["reply_parameters"], `"message_id":12`) {
		t.Errorf("reply_parameters = %q", call.fields["reply_parameters"])
	}
}

func TestSendText_InvalidTarget(t *testing.T) {
	frontend, _ := newStartedFrontend(t)

	if _, err := frontend.SendText(context.Background(), "group", "", "x"); err == nil {
		t.Error("expected error for non-numeric chat ID")
	}
	if _, err := frontend.SendText(context.Background(), "-100", "abc", "x"); err == nil {
		t.Error("expected error for non-numeric reply ID")
	}
}

func TestSendMusicCard(t *testing.T) {
	frontend, api := newStartedFrontend(t)

	card := chat.MusicCard{Type: "163", ID: "186016", Title: "晴天", Artist: "周杰伦", URL: "https://music.163.com/#/song?id=186016"}
	if _, err := frontend.SendMusicCard(context.Background(), "-100", "12", card); err != nil {
		t.Fatalf("SendMusicCard() error = %v", err)
	}

	call := api.lastCall(t)
	if call.fields["text"] != card.Fallback() {
		t.Errorf("text = %q, want %q", call.fields["text"], card.Fallback())
	}
	markup := call.fields["reply_markup"]
	if !strings.Contains(markup, card.URL) || !strings.Contains(markup, "Open song") {
		t.Errorf("reply_markup = %q", markup)
	}
}

func TestSendImage(t *testing.T) {
	frontend, api := newStartedFrontend(t)

	if _, err := frontend.SendImage(context.Background(), "-100", "", []byte("\x89PNG"), "pick one"); err != nil {
		t.Fatalf("SendImage() error = %v", err)
	}

	call := api.lastCall(t)
	if call.method != "sendPhoto" {
		t.Errorf("method = %q, want sendPhoto", call.method)
	}
	if call.fields["caption"] != "pick one" {
		t.Errorf("caption = %q", call.fields["caption"])
	}
	if len(call.files) != 1 || call.files[0] != "photo" {
		t.Errorf("files = %v, want photo upload", call.files)
	}
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		groupID int64
		msg     *models.Message
		want    bool
	}{
		{
			name: "any chat when unrestricted",
			msg: &models.Message{ID: 1, Text: "点歌 晴天",
				Chat: models.Chat{ID: -100, Type: "supergroup"}, From: &models.User{ID: 5, FirstName: "Ann"}},
			want: true,
		},
		{
			name: "other group filtered", groupID: -200,
			msg: &models.Message{ID: 1, Text: "点歌 晴天",
				Chat: models.Chat{ID: -100, Type: "group"}, From: &models.User{ID: 5}},
			want: false,
		},
		{
			name: "bots ignored",
			msg: &models.Message{ID: 1, Text: "点歌 晴天",
				Chat: models.Chat{ID: -100, Type: "group"}, From: &models.User{ID: 6, IsBot: true}},
			want: false,
		},
		{
			name: "channel post ignored",
			msg:  &models.Message{ID: 1, Text: "点歌 晴天", Chat: models.Chat{ID: -100, Type: "channel"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frontend := NewFrontend(&Config{Enabled: true, GroupID: tt.groupID}, zap.NewNop())
			var got *chat.Message
			frontend.messageHandler = func(m *chat.Message) { got = m }

			frontend.handleMessage(context.Background(), tt.msg)

			if (got != nil) != tt.want {
				t.Fatalf("handler called = %v, want %v", got != nil, tt.want)
			}
			if got != nil {
				if got.ChatID != "-100" || got.SenderID != "5" || got.ID != "1" || !got.IsGroup {
					t.Errorf("message = %+v", got)
				}
				if got.SenderName != "Ann" {
					t.Errorf("SenderName = %q", got.SenderName)
				}
			}
		})
	}
}

func TestAwaitReply_ConsumesNextMessage(t *testing.T) {
	frontend := NewFrontend(&Config{Enabled: true}, zap.NewNop())
	handled := 0
	frontend.messageHandler = func(*chat.Message) { handled++ }

	origin := &chat.Message{ChatID: "-100", SenderID: "5"}
	result := make(chan string, 1)
	go func() {
		text, ok, err := frontend.AwaitReply(context.Background(), origin, 2*time.Second)
		if err != nil || !ok {
			text = "failed"
		}
		result <- text
	}()

	deadline := time.Now().Add(time.Second)
	for frontend.replies.Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	frontend.handleMessage(context.Background(), &models.Message{
		ID: 2, Text: "2", Chat: models.Chat{ID: -100, Type: "group"}, From: &models.User{ID: 5},
	})

	if got := <-result; got != "2" {
		t.Errorf("AwaitReply() = %q, want 2", got)
	}
	if handled != 0 {
		t.Error("selection reply was also dispatched as a message")
	}
}

func TestGetUserDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		expected string
	}{
		{"username", &models.User{Username: "testuser", FirstName: "Test"}, "@testuser"},
		{"first and last", &models.User{FirstName: "John", LastName: "Doe"}, "John Doe"},
		{"first only", &models.User{FirstName: "Jane"}, "Jane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getUserDisplayName(tt.user); got != tt.expected {
				t.Errorf("getUserDisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}
