package core

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/gipsyblues/echoplexus/internal/auth"
	"github.com/gipsyblues/echoplexus/internal/store"
)

// nickCommandPattern strips the /nick command prefix clients send along with
// a rename.
var nickCommandPattern = regexp.MustCompile(`^/nick\s*`)

func (h *Hub) handleSubscribe(ctx context.Context, s *Session, room string) {
	ch := h.registry.GetOrCreate(room)

	meta, err := h.store.ChannelMeta(ctx, room)
	if err != nil {
		h.storeFailure(s, room, err)
		s.send(&Event{Kind: EventSubscribeAck, Room: room, CID: s.CID})
		return
	}

	if meta.IsPrivate {
		// The session stays roomless; only join_private can get it in.
		h.quietNotice(s, room, "This room is private.  Type /password [room password] to join.")
		s.send(&Event{Kind: EventSubscribeAck, Room: room, CID: s.CID})
		return
	}

	h.log.Debug().Str("cid", s.CID).Str("room", room).Msg("subscribed to public room")
	h.joinRoom(ctx, s, ch)
	s.send(&Event{Kind: EventSubscribeAck, Room: room, CID: s.CID})
}

// joinRoom performs the post-join sequence shared by public subscribes and
// successful private-room entries. A session is a member of at most one room,
// so moving to a new room parts the old one first.
func (h *Hub) joinRoom(ctx context.Context, s *Session, ch *Channel) {
	room := ch.Name

	if s.Room != "" && s.Room != room {
		h.handleLeave(s)
	}

	s.Room = room
	added := ch.AddMember(s)

	// Let the new member know the ID of the latest logged message.
	if id, err := h.chatlog.CurrentID(ctx, room); err != nil {
		h.log.Warn().Err(err).Str("room", room).Msg("read current message id")
	} else {
		s.send(&Event{Kind: EventCurrentID, Room: room, ID: id})
	}

	// Replay the stored topic, unless the session moved on meanwhile.
	if topic, err := h.store.Topic(ctx, room); err == nil {
		if s.Room == room {
			s.send(&Event{Kind: EventTopic, Room: room, Message: noLog(h.systemMessage(room, topic))})
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Warn().Err(err).Str("room", room).Msg("read topic")
	}

	if added {
		h.userJoined(s, ch)
	}

	s.send(&Event{Kind: EventYourCID, Room: room, CID: s.CID})
}

func (h *Hub) handleMakePublic(ctx context.Context, s *Session, room string) {
	switch err := h.auth.ClearPrivate(ctx, room); {
	case err == nil:
		h.notice(s, room, "This channel is now public.")
	case errors.Is(err, auth.ErrAlreadyPublic):
		h.notice(s, room, "This channel is already public.")
	default:
		h.storeFailure(s, room, err)
	}
}

func (h *Hub) handleMakePrivate(ctx context.Context, s *Session, room, password string) {
	switch err := h.auth.SetPrivate(ctx, room, password); {
	case err == nil:
		h.notice(s, room, "This channel is now private.  Please remember your password.")
	case errors.Is(err, auth.ErrAlreadyPrivate):
		h.notice(s, room, "This channel is already private.")
	default:
		h.storeFailure(s, room, err)
	}
}

func (h *Hub) handleJoinPrivate(ctx context.Context, s *Session, room, password string) {
	ch := h.registry.GetOrCreate(room)

	switch err := h.auth.CheckPrivate(ctx, room, password); {
	case err == nil:
		h.joinRoom(ctx, s, ch)
		s.send(&Event{Kind: EventSubscribed, Room: room})
	case errors.Is(err, auth.ErrNotPrivate):
		h.notice(s, room, "This channel isn't private.")
	case errors.Is(err, auth.ErrWrongPassword):
		// Failures are deliberately room-visible.
		h.notice(s, room, "Wrong password for room")
		ch.BroadcastExcept(s, &Event{
			Kind:    EventChat,
			Room:    room,
			Message: h.systemMessage(room, s.Nick+" just failed to join the room."),
		})
	default:
		h.storeFailure(s, room, err)
	}
}

func (h *Hub) handleNickname(s *Session, room, nickname string) {
	newName := strings.TrimSpace(nickCommandPattern.ReplaceAllString(nickname, ""))
	if newName == "" {
		// Rejected before anything is mutated; the requester alone is told.
		h.quietNotice(s, room, "You may not use the empty string as a nickname.")
		return
	}

	prevName := s.Nick
	s.Identified = false
	s.Nick = newName

	ch, ok := h.registry.Get(room)
	if !ok {
		return
	}
	ch.BroadcastExcept(s, &Event{
		Kind:    EventChat,
		Room:    room,
		Message: noLog(h.systemMessage(room, prevName+" is now known as "+newName)),
	})
	h.quietNotice(s, room, "You are now known as "+newName)
	h.publishUserList(ch)
}

func (h *Hub) handleTopic(ctx context.Context, s *Session, room, topic string) {
	if err := h.store.SetTopic(ctx, room, topic); err != nil {
		h.storeFailure(s, room, err)
		return
	}
	s.send(&Event{Kind: EventTopic, Room: room, Message: noLog(h.systemMessage(room, topic))})
}

func (h *Hub) handleChat(ctx context.Context, s *Session, room, body string) {
	if body == "" {
		return
	}
	ch, ok := h.registry.Get(room)
	if !ok {
		return
	}

	msg := &Message{
		Room:      room,
		Timestamp: nowMillis(),
		Nickname:  s.Nick,
		Color:     s.Color,
		CID:       s.CID,
		Body:      body,
	}

	id, err := h.chatlog.NextID(ctx, room)
	if err != nil {
		h.storeFailure(s, room, err)
		return
	}
	msg.ID = &id

	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("marshal chat message")
		return
	}
	if err := h.chatlog.Append(ctx, room, id, payload); err != nil {
		h.storeFailure(s, room, err)
		return
	}

	ch.BroadcastExcept(s, &Event{Kind: EventChat, Room: room, Message: msg})
	you := *msg
	you.You = true
	s.send(&Event{Kind: EventChat, Room: room, Message: &you})
	h.mirror("chat."+room, msg)

	if h.preview != nil {
		h.preview.Process(room, body)
	}
}

func (h *Hub) handleIdle(s *Session, room string) {
	s.Idle = true
	s.IdleSince = nowMillis()

	ch, ok := h.registry.Get(room)
	if !ok {
		return
	}
	ch.Broadcast(&Event{Kind: EventIdle, Room: room, CID: s.CID})
	h.publishUserList(ch)
}

func (h *Hub) handleUnidle(s *Session, room string) {
	s.Idle = false
	s.IdleSince = 0

	ch, ok := h.registry.Get(room)
	if !ok {
		return
	}
	ch.Broadcast(&Event{Kind: EventUnidle, Room: room, CID: s.CID})
	h.publishUserList(ch)
}

func (h *Hub) handleHistoryRequest(ctx context.Context, s *Session, room string, ids []int64) {
	payloads, err := h.chatlog.History(ctx, room, ids)
	if err != nil {
		h.storeFailure(s, room, err)
		return
	}
	for _, payload := range payloads {
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Warn().Err(err).Str("room", room).Msg("corrupt logged message")
			continue
		}
		s.send(&Event{Kind: EventChat, Room: room, Message: &msg})
	}
}

func (h *Hub) handleIdentify(ctx context.Context, s *Session, room, password string) {
	nick := s.Nick
	ch, _ := h.registry.Get(room)

	switch err := h.auth.Identify(ctx, room, nick, password); {
	case err == nil:
		s.Identified = true
		h.notice(s, room, "You are now identified for "+nick)
		if ch != nil {
			h.publishUserList(ch)
		}
	case errors.Is(err, auth.ErrNotRegistered):
		h.notice(s, room, "There's no registration on file for "+nick)
	case errors.Is(err, auth.ErrWrongPassword):
		s.Identified = false
		h.notice(s, room, "Wrong password for "+nick)
		if ch != nil {
			ch.BroadcastExcept(s, &Event{
				Kind:    EventChat,
				Room:    room,
				Message: h.systemMessage(room, nick+" just failed to identify himself"),
			})
			h.publishUserList(ch)
		}
	default:
		h.storeFailure(s, room, err)
	}
}

func (h *Hub) handleRegisterNick(ctx context.Context, s *Session, room, password string) {
	nick := s.Nick

	switch err := h.auth.Register(ctx, room, nick, password); {
	case err == nil:
		s.Identified = true
		h.notice(s, room, "You have registered your nickname.  Please remember your password.")
		if ch, ok := h.registry.Get(room); ok {
			h.publishUserList(ch)
		}
	case errors.Is(err, auth.ErrAlreadyRegistered):
		h.notice(s, room, "That nickname is already registered by somebody.")
	default:
		h.storeFailure(s, room, err)
	}
}

// handleLeave covers both explicit unsubscribes and transport disconnects.
func (h *Hub) handleLeave(s *Session) {
	room := s.Room
	if room == "" {
		return
	}
	ch, ok := h.registry.Get(room)
	if !ok {
		return
	}

	h.log.Debug().Str("cid", s.CID).Str("room", room).Msg("session leaving room")
	h.userLeft(s, ch)
	ch.RemoveMember(s)
	s.Room = ""
	h.publishUserList(ch)
}

func (h *Hub) handlePreviewNotice(room, body string) {
	ch, ok := h.registry.Get(room)
	if !ok {
		h.log.Warn().Str("room", room).Msg("preview finished for a room that does not exist")
		return
	}
	msg := h.systemMessage(room, body)
	ch.Broadcast(&Event{Kind: EventChat, Room: room, Message: msg})
	h.mirror("chat."+room, msg)
}

// userJoined announces a new member and republishes the userlist.
func (h *Hub) userJoined(s *Session, ch *Channel) {
	msg := h.systemMessage(ch.Name, s.Nick+" has joined the chat.")
	msg.Class = ClassJoin
	msg.CID = s.CID
	ch.Broadcast(&Event{Kind: EventChat, Room: ch.Name, Message: msg})
	h.publishUserList(ch)
}

// userLeft announces a departure. The part notice is ephemeral: it is
// deliverable live but never logged or replayed.
func (h *Hub) userLeft(s *Session, ch *Channel) {
	msg := noLog(h.systemMessage(ch.Name, s.Nick+" has left the chat."))
	msg.Class = ClassPart
	msg.CID = s.CID
	ch.Broadcast(&Event{Kind: EventChat, Room: ch.Name, Message: msg})
}

// publishUserList emits the membership snapshot to every subscriber.
func (h *Hub) publishUserList(ch *Channel) {
	users := ch.Users()
	ch.Broadcast(&Event{Kind: EventUserList, Room: ch.Name, Users: users})
	h.mirror("userlist."+ch.Name, map[string]any{"users": users, "room": ch.Name})
}
