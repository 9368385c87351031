// Package memory implements store.Store with in-process maps. It backs tests
// and the "memory" store backend for running without redis.
package memory

import (
	"context"
	"sync"

	"github.com/gipsyblues/echoplexus/internal/store"
)

// Store is a mutex-guarded in-memory store.Store.
type Store struct {
	mu         sync.RWMutex
	channels   map[string]store.ChannelMeta
	counters   map[string]int64
	chatlogs   map[string]map[int64][]byte
	topics     map[string]string
	identities map[string]map[string]store.Identity // room -> nick -> identity
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		channels:   make(map[string]store.ChannelMeta),
		counters:   make(map[string]int64),
		chatlogs:   make(map[string]map[int64][]byte),
		topics:     make(map[string]string),
		identities: make(map[string]map[string]store.Identity),
	}
}

// ChannelMeta implements store.ChannelStore.
func (s *Store) ChannelMeta(_ context.Context, room string) (store.ChannelMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels[room], nil
}

// SetPrivate implements store.ChannelStore.
func (s *Store) SetPrivate(_ context.Context, room, salt, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[room] = store.ChannelMeta{
		IsPrivate:    true,
		Salt:         salt,
		PasswordHash: passwordHash,
	}
	return nil
}

// ClearPrivate implements store.ChannelStore.
func (s *Store) ClearPrivate(_ context.Context, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, room)
	return nil
}

// IncrMessageID implements store.MessageStore.
func (s *Store) IncrMessageID(_ context.Context, room string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[room]++
	return s.counters[room], nil
}

// CurrentMessageID implements store.MessageStore.
func (s *Store) CurrentMessageID(_ context.Context, room string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[room], nil
}

// AppendMessage implements store.MessageStore.
func (s *Store) AppendMessage(_ context.Context, room string, id int64, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.chatlogs[room]
	if log == nil {
		log = make(map[int64][]byte)
		s.chatlogs[room] = log
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	log[id] = cp
	return nil
}

// Messages implements store.MessageStore.
func (s *Store) Messages(_ context.Context, room string, ids []int64) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, len(ids))
	log := s.chatlogs[room]
	for i, id := range ids {
		if payload, ok := log[id]; ok {
			out[i] = payload
		}
	}
	return out, nil
}

// Topic implements store.TopicStore.
func (s *Store) Topic(_ context.Context, room string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, ok := s.topics[room]
	if !ok {
		return "", store.ErrNotFound
	}
	return topic, nil
}

// SetTopic implements store.TopicStore.
func (s *Store) SetTopic(_ context.Context, room, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[room] = topic
	return nil
}

// IsRegistered implements store.IdentityStore.
func (s *Store) IsRegistered(_ context.Context, room, nick string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.identities[room][nick]
	return ok, nil
}

// SaveIdentity implements store.IdentityStore.
func (s *Store) SaveIdentity(_ context.Context, room, nick, salt, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nicks := s.identities[room]
	if nicks == nil {
		nicks = make(map[string]store.Identity)
		s.identities[room] = nicks
	}
	nicks[nick] = store.Identity{Salt: salt, PasswordHash: passwordHash}
	return nil
}

// Identity implements store.IdentityStore.
func (s *Store) Identity(_ context.Context, room, nick string) (store.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[room][nick]
	if !ok {
		return store.Identity{}, store.ErrNotFound
	}
	return id, nil
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }
