package core

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/gipsyblues/echoplexus/internal/auth"
	"github.com/gipsyblues/echoplexus/internal/chatlog"
	"github.com/gipsyblues/echoplexus/internal/pubsub"
	"github.com/gipsyblues/echoplexus/internal/store"
)

// Previewer launches the asynchronous link-preview pipeline for a message
// body. A nil Previewer disables previews.
type Previewer interface {
	Process(room, body string)
}

// Hub coordinates all room state. Every command runs as a short step on the
// hub goroutine, so membership, privacy, sequencing and idle mutations never
// race; per-room ordering follows command arrival order.
type Hub struct {
	commands chan *Command

	registry *Registry
	store    store.Store
	auth     *auth.Service
	chatlog  *chatlog.Service
	preview  Previewer
	bus      pubsub.Bus
	log      *zerolog.Logger

	serverNick string
}

// NewHub wires the hub with its collaborators. bus may be pubsub.Noop;
// the previewer is attached separately because it calls back into the hub.
func NewHub(registry *Registry, st store.Store, authSvc *auth.Service, logSvc *chatlog.Service, bus pubsub.Bus, serverNick string, logger *zerolog.Logger) *Hub {
	return &Hub{
		commands:   make(chan *Command, 256),
		registry:   registry,
		store:      st,
		auth:       authSvc,
		chatlog:    logSvc,
		bus:        bus,
		log:        logger,
		serverNick: serverNick,
	}
}

// SetPreviewer attaches the link-preview pipeline. Call before Run.
func (h *Hub) SetPreviewer(p Previewer) {
	h.preview = p
}

// Submit enqueues a command for dispatch. Safe for concurrent use.
func (h *Hub) Submit(cmd *Command) {
	h.commands <- cmd
}

// PostSystemNotice broadcasts body to a room as a server message. It is the
// re-entry point for asynchronous pipelines (previews) and is safe to call
// from any goroutine.
func (h *Hub) PostSystemNotice(room, body string) {
	h.Submit(&Command{Kind: commandPreviewNotice, Room: room, Body: body})
}

// Run dispatches commands until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			h.dispatch(ctx, cmd)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, cmd *Command) {
	if cmd.Kind == commandPreviewNotice {
		h.handlePreviewNotice(cmd.Room, cmd.Body)
		return
	}
	if cmd.Session == nil {
		return
	}

	switch cmd.Kind {
	case CommandSubscribe:
		h.handleSubscribe(ctx, cmd.Session, cmd.Room)
		return
	case CommandDisconnect:
		h.handleLeave(cmd.Session)
		return
	}

	// A session may only invoke events scoped to the room it is attached to.
	// join_private is the allow-listed exception: it is how membership in a
	// private room is established. Everything else is dropped silently.
	if cmd.Session.Room != cmd.Room && cmd.Kind != CommandJoinPrivate {
		h.log.Debug().
			Str("cid", cmd.Session.CID).
			Str("room", cmd.Room).
			Str("session_room", cmd.Session.Room).
			Msg("dropping event for room the session is not attached to")
		return
	}

	switch cmd.Kind {
	case CommandMakePublic:
		h.handleMakePublic(ctx, cmd.Session, cmd.Room)
	case CommandMakePrivate:
		h.handleMakePrivate(ctx, cmd.Session, cmd.Room, cmd.Password)
	case CommandJoinPrivate:
		h.handleJoinPrivate(ctx, cmd.Session, cmd.Room, cmd.Password)
	case CommandNickname:
		h.handleNickname(cmd.Session, cmd.Room, cmd.Nickname)
	case CommandTopic:
		h.handleTopic(ctx, cmd.Session, cmd.Room, cmd.Body)
	case CommandChat:
		h.handleChat(ctx, cmd.Session, cmd.Room, cmd.Body)
	case CommandIdle:
		h.handleIdle(cmd.Session, cmd.Room)
	case CommandUnidle:
		h.handleUnidle(cmd.Session, cmd.Room)
	case CommandHistoryRequest:
		h.handleHistoryRequest(ctx, cmd.Session, cmd.Room, cmd.RequestRange)
	case CommandIdentify:
		h.handleIdentify(ctx, cmd.Session, cmd.Room, cmd.Password)
	case CommandRegisterNick:
		h.handleRegisterNick(ctx, cmd.Session, cmd.Room, cmd.Password)
	case CommandUnsubscribe:
		h.handleLeave(cmd.Session)
	}
}

// systemMessage builds a server-authored message for a room.
func (h *Hub) systemMessage(room, body string) *Message {
	return &Message{
		Room:      room,
		Timestamp: nowMillis(),
		Nickname:  h.serverNick,
		Type:      SystemType,
		Body:      body,
	}
}

// notice sends a system message to a single session.
func (h *Hub) notice(s *Session, room, body string) {
	s.send(&Event{Kind: EventChat, Room: room, Message: h.systemMessage(room, body)})
}

// quietNotice is a notice clients should not record.
func (h *Hub) quietNotice(s *Session, room, body string) {
	s.send(&Event{Kind: EventChat, Room: room, Message: noLog(h.systemMessage(room, body))})
}

// storeFailure surfaces a failed store round trip to the requester. State is
// left unchanged; the operation can simply be retried.
func (h *Hub) storeFailure(s *Session, room string, err error) {
	h.log.Error().Err(err).Str("room", room).Str("cid", s.CID).Msg("store operation failed")
	h.quietNotice(s, room, "Something went wrong, please try again.")
}

// mirror publishes an outbound payload to the external bus, if one is
// configured. Local delivery never depends on it.
func (h *Hub) mirror(subject string, payload any) {
	if h.bus == nil {
		return
	}
	if _, ok := h.bus.(pubsub.Noop); ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn().Err(err).Str("subject", subject).Msg("marshal mirror payload")
		return
	}
	if err := h.bus.Publish(subject, data); err != nil {
		h.log.Warn().Err(err).Str("subject", subject).Msg("mirror publish failed")
	}
}
