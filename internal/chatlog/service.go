// Package chatlog assigns per-room message IDs and serves history replay.
package chatlog

import (
	"context"
	"fmt"

	"github.com/gipsyblues/echoplexus/internal/store"
)

// Service sequences and persists the per-room message log.
type Service struct {
	messages store.MessageStore
}

// NewService creates a chat log service over the given message store.
func NewService(messages store.MessageStore) *Service {
	return &Service{messages: messages}
}

// NextID reserves the next message ID for a room. IDs start at 0 and are
// strictly increasing with no gaps. The reservation is an atomic
// increment-and-get against the store, so two concurrent posts to the same
// room can never be assigned the same ID.
func (s *Service) NextID(ctx context.Context, room string) (int64, error) {
	n, err := s.messages.IncrMessageID(ctx, room)
	if err != nil {
		return 0, fmt.Errorf("reserve message id: %w", err)
	}
	return n - 1, nil
}

// CurrentID returns the room's latest counter value, 0 for a fresh room.
// New subscribers receive it so they know which IDs to request.
func (s *Service) CurrentID(ctx context.Context, room string) (int64, error) {
	n, err := s.messages.CurrentMessageID(ctx, room)
	if err != nil {
		return 0, fmt.Errorf("read message id: %w", err)
	}
	return n, nil
}

// Append persists a serialized message under its reserved ID. Messages are
// immutable once written.
func (s *Service) Append(ctx context.Context, room string, id int64, payload []byte) error {
	if err := s.messages.AppendMessage(ctx, room, id, payload); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// History fetches the serialized messages for the requested IDs, preserving
// request order. IDs with no stored value are silently skipped.
func (s *Service) History(ctx context.Context, room string, ids []int64) ([][]byte, error) {
	aligned, err := s.messages.Messages(ctx, room, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	out := make([][]byte, 0, len(aligned))
	for _, payload := range aligned {
		if payload == nil {
			continue
		}
		out = append(out, payload)
	}
	return out, nil
}
