package onebot

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"musicbot/internal/chat"
)

const (
	messageTypeGroup   = "group"
	messageTypePrivate = "private"
	postTypeMessage    = "message"
	statusOK           = "ok"
)

var (
	cqCodeRegex = regexp.MustCompile(`\[CQ:[^\]]*\]`)
	cqUnescaper = strings.NewReplacer("&#91;", "[", "&#93;", "]", "&#44;", ",", "&amp;", "&")
)

// segment is one element of an array-format OneBot message.
type segment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// actionRequest is an API call sent over the universal connection.
type actionRequest struct {
	Action string `json:"action"`
	Params any    `json:"params"`
	Echo   string `json:"echo"`
}

type sendMsgParams struct {
	MessageType string    `json:"message_type"`
	UserID      int64     `json:"user_id,omitempty"`
	GroupID     int64     `json:"group_id,omitempty"`
	Message     []segment `json:"message"`
}

func textSegment(text string) segment {
	return segment{Type: "text", Data: map[string]string{"text": text}}
}

func replySegment(messageID string) segment {
	return segment{Type: "reply", Data: map[string]string{"id": messageID}}
}

func musicSegment(card chat.MusicCard) segment {
	return segment{Type: "music", Data: map[string]string{"type": card.Type, "id": card.ID}}
}

func imageSegment(png []byte) segment {
	return segment{Type: "image", Data: map[string]string{"file": "base64://" + base64.StdEncoding.EncodeToString(png)}}
}

// withReply prefixes segments with a reply reference when replyToID is set.
func withReply(replyToID string, segments ...segment) []segment {
	if replyToID == "" {
		return segments
	}
	return append([]segment{replySegment(replyToID)}, segments...)
}

// chatID encodes the message type with the peer ID, e.g. "group:123456".
func chatID(messageType string, id int64) string {
	return messageType + ":" + strconv.FormatInt(id, 10)
}

// buildSendParams turns an encoded chat ID into send_msg parameters.
func buildSendParams(id string, segments []segment) (sendMsgParams, error) {
	messageType, raw, found := strings.Cut(id, ":")
	if !found {
		return sendMsgParams{}, fmt.Errorf("invalid chat ID %q", id)
	}

	peer, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return sendMsgParams{}, fmt.Errorf("invalid chat ID %q: %w", id, err)
	}

	params := sendMsgParams{MessageType: messageType, Message: segments}
	switch messageType {
	case messageTypeGroup:
		params.GroupID = peer
	case messageTypePrivate:
		params.UserID = peer
	default:
		return sendMsgParams{}, fmt.Errorf("invalid chat ID %q: unknown message type", id)
	}
	return params, nil
}

// parseMessageEvent converts a message event, reporting false for any other frame.
func parseMessageEvent(frame gjson.Result) (*chat.Message, bool) {
	if frame.Get("post_type").String() != postTypeMessage {
		return nil, false
	}

	messageType := frame.Get("message_type").String()
	var peer int64
	switch messageType {
	case messageTypeGroup:
		peer = frame.Get("group_id").Int()
	case messageTypePrivate:
		peer = frame.Get("user_id").Int()
	default:
		return nil, false
	}

	userID := frame.Get("user_id").Int()
	if userID == 0 || userID == frame.Get("self_id").Int() {
		return nil, false
	}

	name := frame.Get("sender.card").String()
	if name == "" {
		name = frame.Get("sender.nickname").String()
	}

	return &chat.Message{
		ID:         frame.Get("message_id").String(),
		ChatID:     chatID(messageType, peer),
		SenderID:   strconv.FormatInt(userID, 10),
		SenderName: name,
		Text:       extractText(frame),
		IsGroup:    messageType == messageTypeGroup,
		Raw:        frame.Raw,
	}, true
}

// extractText returns the plain text of a message, without mentions or media.
func extractText(frame gjson.Result) string {
	message := frame.Get("message")
	if message.IsArray() {
		var b strings.Builder
		message.ForEach(func(_, seg gjson.Result) bool {
			if seg.Get("type").String() == "text" {
				b.WriteString(seg.Get("data.text").String())
			}
			return true
		})
		return strings.TrimSpace(b.String())
	}

	raw := frame.Get("raw_message").String()
	if raw == "" {
		raw = message.String()
	}
	return strings.TrimSpace(cqUnescaper.Replace(cqCodeRegex.ReplaceAllString(raw, "")))
}
