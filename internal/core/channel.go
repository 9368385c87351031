package core

import "sync"

// Channel owns the live membership set of one room. Created on first
// reference, never destroyed; privacy metadata lives in the store, not here.
// Membership is mutated only by the hub goroutine.
type Channel struct {
	Name     string
	sessions map[*Session]struct{}
}

// NewChannel constructs a channel with no members.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:     name,
		sessions: make(map[*Session]struct{}),
	}
}

// AddMember inserts a session into the room. Returns true if newly added.
func (c *Channel) AddMember(s *Session) bool {
	if _, exists := c.sessions[s]; exists {
		return false
	}
	c.sessions[s] = struct{}{}
	return true
}

// RemoveMember deletes a session from the room. Returns true if removed.
func (c *Channel) RemoveMember(s *Session) bool {
	if _, exists := c.sessions[s]; !exists {
		return false
	}
	delete(c.sessions, s)
	return true
}

// Broadcast sends an event to every member.
func (c *Channel) Broadcast(ev *Event) {
	for s := range c.sessions {
		s.send(ev)
	}
}

// BroadcastExcept sends an event to every member but one.
func (c *Channel) BroadcastExcept(except *Session, ev *Event) {
	for s := range c.sessions {
		if s == except {
			continue
		}
		s.send(ev)
	}
}

// Users snapshots the membership set for a userlist publication.
func (c *Channel) Users() []UserInfo {
	users := make([]UserInfo, 0, len(c.sessions))
	for s := range c.sessions {
		users = append(users, s.Info())
	}
	return users
}

// Len returns the member count.
func (c *Channel) Len() int {
	return len(c.sessions)
}

// Registry owns the room-name to channel mapping. It replaces ambient global
// state: components receive it injected and the mapping is safe against
// concurrent first reference.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]*Channel)}
}

// GetOrCreate resolves a room name, creating the channel on first reference.
// Creation cannot fail and is idempotent.
func (r *Registry) GetOrCreate(name string) *Channel {
	r.mu.RLock()
	ch, ok := r.channels[name]
	r.mu.RUnlock()
	if ok {
		return ch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.channels[name]; ok {
		return ch
	}
	ch = NewChannel(name)
	r.channels[name] = ch
	return ch
}

// Get resolves a room name without creating it.
func (r *Registry) Get(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}
