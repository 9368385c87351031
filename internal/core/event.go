package core

// EventKind is a notification the hub emits to sessions.
type EventKind int

const (
	// EventChat carries a chat or system message.
	EventChat EventKind = iota
	// EventUserList publishes the serialized membership set.
	EventUserList
	// EventTopic delivers the room topic as a system message.
	EventTopic
	// EventCurrentID tells a new subscriber the room's latest message ID.
	EventCurrentID
	// EventYourCID tells a subscriber its own cid.
	EventYourCID
	// EventIdle and EventUnidle announce a member's idle transitions.
	EventIdle
	EventUnidle
	// EventSubscribed confirms private-room entry.
	EventSubscribed
	// EventSubscribeAck answers a subscribe with the session's cid.
	EventSubscribeAck
)

// Event describes something that happened in a room.
type Event struct {
	Kind    EventKind
	Room    string
	Message *Message   // EventChat, EventTopic
	Users   []UserInfo // EventUserList
	ID      int64      // EventCurrentID
	CID     string     // EventYourCID, EventIdle, EventUnidle, EventSubscribeAck
}
