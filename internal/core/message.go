package core

import "time"

// SystemType marks messages authored by the server rather than a participant.
const SystemType = "SYSTEM"

// Message classes for join/part system notices.
const (
	ClassJoin = "join"
	ClassPart = "part"
)

// Message is a chat or system message as delivered to clients. Logged chat
// messages are persisted in exactly this serialized form, so the stored record
// and the wire payload never drift apart.
type Message struct {
	Room      string `json:"room"`
	ID        *int64 `json:"ID,omitempty"` // set only on logged chat messages
	Timestamp int64  `json:"timestamp"`    // milliseconds since epoch
	Nickname  string `json:"nickname"`
	Color     string `json:"color,omitempty"`
	CID       string `json:"cID,omitempty"`
	Body      string `json:"body"`
	Type      string `json:"type,omitempty"`
	Class     string `json:"class,omitempty"`
	Log       *bool  `json:"log,omitempty"` // false tells clients not to record it
	You       bool   `json:"you,omitempty"`
}

// nowMillis returns the current wall clock in milliseconds.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

var logFalse = false

// noLog marks a message as exempt from client-side logging and history.
func noLog(m *Message) *Message {
	m.Log = &logFalse
	return m
}
