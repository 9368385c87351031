package core

// CommandKind describes what the session wants to do.
type CommandKind int

const (
	// CommandSubscribe creates/joins a room and establishes membership.
	CommandSubscribe CommandKind = iota
	// CommandMakePublic removes a room's privacy fields.
	CommandMakePublic
	// CommandMakePrivate derives and persists a room password.
	CommandMakePrivate
	// CommandJoinPrivate authenticates into a private room. It is the only
	// room-scoped command accepted before membership is established.
	CommandJoinPrivate
	// CommandNickname renames the session.
	CommandNickname
	// CommandTopic sets the room topic.
	CommandTopic
	// CommandChat delivers a chat message: sequencing, persistence,
	// broadcast, preview pipeline.
	CommandChat
	// CommandIdle and CommandUnidle toggle the session's idle state.
	CommandIdle
	CommandUnidle
	// CommandHistoryRequest replays logged messages by ID.
	CommandHistoryRequest
	// CommandIdentify checks a password against the registered nickname.
	CommandIdentify
	// CommandRegisterNick claims the session's nickname in this room.
	CommandRegisterNick
	// CommandUnsubscribe leaves the room.
	CommandUnsubscribe
	// CommandDisconnect is injected by the transport when the connection dies.
	CommandDisconnect

	// commandPreviewNotice carries a finished preview task's follow-up
	// message back onto the hub goroutine.
	commandPreviewNotice
)

// Command is an action requested by a session, dispatched on the hub
// goroutine. The session handle travels with the command; handlers never
// capture mutable state.
type Command struct {
	Session *Session
	Kind    CommandKind
	Room    string

	Body         string // chat body, topic, or preview follow-up text
	Nickname     string
	Password     string
	RequestRange []int64
}
