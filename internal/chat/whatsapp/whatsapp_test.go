package whatsapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"musicbot/internal/chat"
)

var (
	testGroup  = types.NewJID("120363000000000000", types.GroupServer)
	testSender = types.NewJID("4915112345678", types.DefaultUserServer)
)

func groupMessage(id, text string) *events.Message {
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:    testGroup,
				Sender:  testSender,
				IsGroup: true,
			},
			ID:       id,
			PushName: "Ann",
		},
		Message: &waE2E.Message{Conversation: proto.String(text)},
	}
}

func TestDisabledFrontend(t *testing.T) {
	frontend := NewFrontend(&Config{}, zap.NewNop())
	ctx := context.Background()

	if frontend.Name() != "whatsapp" {
		t.Errorf("Name() = %q", frontend.Name())
	}
	if err := frontend.Start(ctx); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := frontend.Listen(ctx, func(*chat.Message) {}); err != nil {
		t.Errorf("Listen() error = %v", err)
	}
	if _, err := frontend.SendText(ctx, testGroup.String(), "", "x"); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("SendText error = %v, want ErrFrontendDisabled", err)
	}
	if _, err := frontend.SendMusicCard(ctx, testGroup.String(), "", chat.MusicCard{}); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("SendMusicCard error = %v, want ErrFrontendDisabled", err)
	}
	if _, err := frontend.SendImage(ctx, testGroup.String(), "", nil, ""); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("SendImage error = %v, want ErrFrontendDisabled", err)
	}
	if _, _, err := frontend.AwaitReply(ctx, &chat.Message{}, time.Second); !errors.Is(err, chat.ErrFrontendDisabled) {
		t.Errorf("AwaitReply error = %v, want ErrFrontendDisabled", err)
	}
}

func TestHandleMessageEvent(t *testing.T) {
	frontend := NewFrontend(&Config{Enabled: true}, zap.NewNop())
	var got *chat.Message
	frontend.messageHandler = func(m *chat.Message) { got = m }

	frontend.handleMessageEvent(groupMessage("ABC", "点歌 晴天"))

	if got == nil {
		t.Fatal("handler not called")
	}
	if got.ID != "ABC" || got.ChatID != testGroup.String() || got.SenderID != testSender.String() {
		t.Errorf("message = %+v", got)
	}
	if got.Text != "点歌 晴天" || got.SenderName != "Ann" || !got.IsGroup {
		t.Errorf("message = %+v", got)
	}
}

func TestHandleMessageEvent_Filters(t *testing.T) {
	fromMe := groupMessage("1", "点歌 晴天")
	fromMe.Info.IsFromMe = true

	direct := groupMessage("2", "点歌 晴天")
	direct.Info.Chat = testSender

	empty := groupMessage("3", "")
	empty.Message = &waE2E.Message{}

	tests := []struct {
		name     string
		groupJID string
		evt      *events.Message
	}{
		{"own message", "", fromMe},
		{"direct chat", "", direct},
		{"no text", "", empty},
		{"other group", "999@g.us", groupMessage("4", "点歌 晴天")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frontend := NewFrontend(&Config{Enabled: true, GroupJID: tt.groupJID}, zap.NewNop())
			called := false
			frontend.messageHandler = func(*chat.Message) { called = true }

			frontend.handleMessageEvent(tt.evt)

			if called {
				t.Error("handler called for filtered message")
			}
		})
	}
}

func TestQuoteContext(t *testing.T) {
	frontend := NewFrontend(&Config{Enabled: true}, zap.NewNop())

	if frontend.quoteContext("") != nil {
		t.Error("empty reply ID should not quote")
	}

	unknown := frontend.quoteContext("XYZ")
	if unknown.GetStanzaID() != "XYZ" || unknown.Participant != nil {
		t.Errorf("unknown quote = %+v", unknown)
	}

	frontend.handleMessageEvent(groupMessage("ABC", "hello"))
	known := frontend.quoteContext("ABC")
	if known.GetParticipant() != testSender.String() {
		t.Errorf("participant = %q, want %q", known.GetParticipant(), testSender.String())
	}

	msg := frontend.buildTextMessage("reply", "ABC")
	if msg.GetExtendedTextMessage().GetText() != "reply" {
		t.Errorf("quoted message = %+v", msg)
	}
	if plain := frontend.buildTextMessage("hi", ""); plain.GetConversation() != "hi" {
		t.Errorf("plain message = %+v", plain)
	}
}

func TestAwaitReply_ConsumesNextMessage(t *testing.T) {
	frontend := NewFrontend(&Config{Enabled: true}, zap.NewNop())
	handled := false
	frontend.messageHandler = func(*chat.Message) { handled = true }

	origin := &chat.Message{ChatID: testGroup.String(), SenderID: testSender.String()}
	result := make(chan string, 1)
	go func() {
		text, _, _ := frontend.AwaitReply(context.Background(), origin, 2*time.Second)
		result <- text
	}()

	deadline := time.Now().Add(time.Second)
	for frontend.replies.Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	frontend.handleMessageEvent(groupMessage("5", "3"))

	if got := <-result; got != "3" {
		t.Errorf("AwaitReply() = %q, want 3", got)
	}
	if handled {
		t.Error("selection reply was also dispatched")
	}
}

func TestExtractMessageText(t *testing.T) {
	tests := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{"conversation", &waE2E.Message{Conversation: proto.String("a")}, "a"},
		{"extended", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("b")}}, "b"},
		{"image caption", &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("c")}}, "c"},
		{"empty", &waE2E.Message{}, ""},
	}

	for _, tt := range tests {
		if got := extractMessageText(tt.msg); got != tt.want {
			t.Errorf("%s: extractMessageText() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
