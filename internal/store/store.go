package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key or field has no stored value.
var ErrNotFound = errors.New("not found")

// ChannelMeta holds the persisted privacy state of a room.
// Salt and PasswordHash are hex encoded and present only when IsPrivate is set.
type ChannelMeta struct {
	IsPrivate    bool
	Salt         string
	PasswordHash string
}

// Identity is the persisted credential material for a registered nickname.
type Identity struct {
	Salt         string
	PasswordHash string
}

// ChannelStore persists per-room privacy metadata. The hub re-reads this on
// every privacy check instead of caching it in memory.
type ChannelStore interface {
	// ChannelMeta returns the privacy metadata for a room. A room with no
	// stored metadata is public.
	ChannelMeta(ctx context.Context, room string) (ChannelMeta, error)

	// SetPrivate marks the room private and stores its credential material.
	SetPrivate(ctx context.Context, room, salt, passwordHash string) error

	// ClearPrivate removes all privacy fields, restoring public access.
	ClearPrivate(ctx context.Context, room string) error
}

// MessageStore persists the per-room message log and its sequence counter.
type MessageStore interface {
	// IncrMessageID atomically increments the room's message counter and
	// returns the new value. The first call for a room returns 1.
	IncrMessageID(ctx context.Context, room string) (int64, error)

	// CurrentMessageID returns the room's counter without modifying it,
	// 0 if the room has never seen a message.
	CurrentMessageID(ctx context.Context, room string) (int64, error)

	// AppendMessage stores a serialized message under its ID.
	AppendMessage(ctx context.Context, room string, id int64, payload []byte) error

	// Messages fetches serialized messages for the given IDs. The result is
	// aligned with ids; entries with no stored value are nil.
	Messages(ctx context.Context, room string, ids []int64) ([][]byte, error)
}

// TopicStore persists room topics.
type TopicStore interface {
	// Topic returns the stored topic, ErrNotFound if none was ever set.
	Topic(ctx context.Context, room string) (string, error)

	SetTopic(ctx context.Context, room, topic string) error
}

// IdentityStore persists registered nicknames, scoped per room.
type IdentityStore interface {
	// IsRegistered reports whether nick is in the room's registered set.
	IsRegistered(ctx context.Context, room, nick string) (bool, error)

	// SaveIdentity adds nick to the room's registered set and stores its
	// credential material.
	SaveIdentity(ctx context.Context, room, nick, salt, passwordHash string) error

	// Identity returns the stored credential material for nick,
	// ErrNotFound if the nick was never registered in this room.
	Identity(ctx context.Context, room, nick string) (Identity, error)
}

// Store aggregates all persistence interfaces.
type Store interface {
	ChannelStore
	MessageStore
	TopicStore
	IdentityStore

	// Close releases the underlying connection.
	Close() error
}
