package core

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// defaultNick is assigned until the participant picks a nickname.
const defaultNick = "Anonymous"

// Session is one participant's live state while attached to at most one room.
// All mutable fields are owned by the hub goroutine; the transport only reads
// CID and consumes Events.
type Session struct {
	// CID is unique for the process lifetime and never reused.
	CID string

	Nick  string
	Color string

	// Room is the only room whose scoped events this session may invoke.
	// Empty until a subscribe (or private-room entry) succeeds.
	Room string

	Idle      bool
	IdleSince int64 // ms, set only while idle

	// Identified is true only after a successful password check against the
	// room's registered nickname; cleared on any nickname change.
	Identified bool

	// Events is consumed by the transport write loop. The hub drops events
	// instead of blocking when the consumer is slow.
	Events chan *Event
}

// NewSession creates a session with a fresh cid and a display color.
func NewSession() *Session {
	return &Session{
		CID:    uuid.NewString(),
		Nick:   defaultNick,
		Color:  randomColor(),
		Events: make(chan *Event, 32),
	}
}

// UserInfo is the serialized membership snapshot entry published in userlists.
type UserInfo struct {
	CID        string `json:"cid"`
	Nick       string `json:"nick"`
	Color      string `json:"color"`
	Idle       bool   `json:"idle"`
	IdleSince  int64  `json:"idleSince,omitempty"`
	Identified bool   `json:"identified"`
}

// Info snapshots the session for a userlist publication.
func (s *Session) Info() UserInfo {
	return UserInfo{
		CID:        s.CID,
		Nick:       s.Nick,
		Color:      s.Color,
		Idle:       s.Idle,
		IdleSince:  s.IdleSince,
		Identified: s.Identified,
	}
}

// send delivers an event to the session, dropping it if the consumer is slow.
func (s *Session) send(ev *Event) {
	select {
	case s.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

func randomColor() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", rand.Intn(200)+30, rand.Intn(200)+30, rand.Intn(200)+30)
}
