// Package proto defines the wire envelope and the room-suffixed event names.
//
// Every event except subscribe is scoped by a ":<room>" suffix, e.g.
// "chat:lobby" or "chat:history_request:lobby". Event names themselves may
// contain colons, so inbound names are parsed by longest known prefix.
package proto

import (
	"encoding/json"
	"errors"
	"strings"
)

// Inbound event names.
const (
	EventSubscribe      = "subscribe"
	EventMakePublic     = "make_public"
	EventMakePrivate    = "make_private"
	EventJoinPrivate    = "join_private"
	EventNickname       = "nickname"
	EventTopic          = "topic"
	EventChat           = "chat"
	EventChatIdle       = "chat:idle"
	EventChatUnidle     = "chat:unidle"
	EventHistoryRequest = "chat:history_request"
	EventIdentify       = "identify"
	EventRegisterNick   = "register_nick"
	EventUnsubscribe    = "unsubscribe"
)

// Outbound event name prefixes; the room is appended as a suffix.
const (
	EventUserList     = "userlist"
	EventCurrentID    = "chat:currentID"
	EventYourCID      = "chat:your_cid"
	EventSubscribed   = "subscribed"
	EventSubscribeAck = "subscribe:ack"
)

// inboundNames is ordered longest-first so prefix matching never confuses
// "chat" with "chat:idle" or "chat:history_request".
var inboundNames = []string{
	EventHistoryRequest,
	EventChatUnidle,
	EventChatIdle,
	EventMakePublic,
	EventMakePrivate,
	EventJoinPrivate,
	EventRegisterNick,
	EventUnsubscribe,
	EventNickname,
	EventIdentify,
	EventTopic,
	EventChat,
}

// ErrUnknownEvent is returned for event names outside the protocol.
var ErrUnknownEvent = errors.New("unknown event")

// ParseInbound splits a room-suffixed inbound event into its name and room.
// "subscribe" is the only event without a room suffix.
func ParseInbound(event string) (name, room string, err error) {
	if event == EventSubscribe {
		return EventSubscribe, "", nil
	}
	for _, candidate := range inboundNames {
		if rest, ok := strings.CutPrefix(event, candidate+":"); ok && rest != "" {
			return candidate, rest, nil
		}
	}
	return "", "", ErrUnknownEvent
}

// Scoped builds an outbound event name for a room.
func Scoped(name, room string) string {
	return name + ":" + room
}

// Envelope frames every message on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is the server-to-client frame.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level problem with an inbound frame.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// SubscribeData creates or joins a room.
type SubscribeData struct {
	Room string `json:"room"`
}

// PasswordData carries the password for privacy and identity events.
type PasswordData struct {
	Password string `json:"password"`
}

// NicknameData requests a rename.
type NicknameData struct {
	Nickname string `json:"nickname"`
}

// TopicData sets the room topic.
type TopicData struct {
	Topic string `json:"topic"`
}

// ChatData is a chat message body.
type ChatData struct {
	Body string `json:"body"`
}

// HistoryRequestData asks for logged messages by ID.
type HistoryRequestData struct {
	RequestRange []int64 `json:"requestRange"`
}

// AckData answers a subscribe with the session's cid.
type AckData struct {
	Room string `json:"room"`
	CID  string `json:"cid"`
}

// CurrentIDData tells a new subscriber the latest logged message ID.
type CurrentIDData struct {
	ID   int64  `json:"ID"`
	Room string `json:"room"`
}

// YourCIDData tells a subscriber its own cid.
type YourCIDData struct {
	Room string `json:"room"`
	CID  string `json:"cid"`
}

// IdleData announces an idle transition.
type IdleData struct {
	CID string `json:"cID"`
}
