package http

import (
	"encoding/json"
	"testing"

	"github.com/gipsyblues/echoplexus/internal/core"
	"github.com/gipsyblues/echoplexus/internal/proto"
)

func envelope(t *testing.T, event string, data any) proto.Envelope {
	t.Helper()

	env := proto.Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal data: %v", err)
		}
		env.Data = raw
	}
	return env
}

func TestInboundToCommandParsesRoomSuffix(t *testing.T) {
	session := core.NewSession()

	tests := []struct {
		event    string
		data     any
		wantKind core.CommandKind
		wantRoom string
	}{
		{"chat:lobby", proto.ChatData{Body: "hi"}, core.CommandChat, "lobby"},
		{"chat:idle:lobby", nil, core.CommandIdle, "lobby"},
		{"chat:unidle:lobby", nil, core.CommandUnidle, "lobby"},
		{"chat:history_request:lobby", proto.HistoryRequestData{RequestRange: []int64{0, 1}}, core.CommandHistoryRequest, "lobby"},
		{"make_public:lobby", nil, core.CommandMakePublic, "lobby"},
		{"make_private:lobby", proto.PasswordData{Password: "pw"}, core.CommandMakePrivate, "lobby"},
		{"join_private:lobby", proto.PasswordData{Password: "pw"}, core.CommandJoinPrivate, "lobby"},
		{"nickname:lobby", proto.NicknameData{Nickname: "alice"}, core.CommandNickname, "lobby"},
		{"topic:lobby", proto.TopicData{Topic: "welcome"}, core.CommandTopic, "lobby"},
		{"identify:lobby", proto.PasswordData{Password: "pw"}, core.CommandIdentify, "lobby"},
		{"register_nick:lobby", proto.PasswordData{Password: "pw"}, core.CommandRegisterNick, "lobby"},
		{"unsubscribe:lobby", nil, core.CommandUnsubscribe, "lobby"},
		// Rooms may themselves contain colons.
		{"chat:a:b", proto.ChatData{Body: "hi"}, core.CommandChat, "a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			cmd, protoErr, err := inboundToCommand(session, envelope(t, tt.event, tt.data))
			if err != nil || protoErr != nil {
				t.Fatalf("unexpected error: %v / %+v", err, protoErr)
			}
			if cmd.Kind != tt.wantKind || cmd.Room != tt.wantRoom {
				t.Fatalf("got kind=%v room=%q, want kind=%v room=%q", cmd.Kind, cmd.Room, tt.wantKind, tt.wantRoom)
			}
			if cmd.Session != session {
				t.Fatal("command must carry the session handle")
			}
		})
	}
}

func TestInboundSubscribe(t *testing.T) {
	session := core.NewSession()

	cmd, protoErr, err := inboundToCommand(session, envelope(t, "subscribe", proto.SubscribeData{Room: "lobby"}))
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected error: %v / %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandSubscribe || cmd.Room != "lobby" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	_, protoErr, err = inboundToCommand(session, envelope(t, "subscribe", proto.SubscribeData{}))
	if err != nil || protoErr == nil {
		t.Fatalf("expected protocol error for missing room, got %v / %+v", err, protoErr)
	}
}

func TestInboundUnknownEvent(t *testing.T) {
	session := core.NewSession()

	_, protoErr, err := inboundToCommand(session, envelope(t, "launch_missiles:lobby", nil))
	if err != nil {
		t.Fatalf("unexpected mapping error: %v", err)
	}
	if protoErr == nil || protoErr.Code != "unknown_event" {
		t.Fatalf("expected unknown_event error, got %+v", protoErr)
	}

	// A bare known name without a room suffix is also rejected.
	_, protoErr, _ = inboundToCommand(session, envelope(t, "chat", nil))
	if protoErr == nil {
		t.Fatal("expected protocol error for missing room suffix")
	}
}

func TestOutboundFromEvent(t *testing.T) {
	id := int64(3)
	msg := &core.Message{Room: "lobby", ID: &id, Body: "hello"}

	out := outboundFromEvent(&core.Event{Kind: core.EventChat, Room: "lobby", Message: msg})
	if out.Event != "chat:lobby" {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	if out.Data != msg {
		t.Fatal("chat payload must be the message itself")
	}

	out = outboundFromEvent(&core.Event{Kind: core.EventCurrentID, Room: "lobby", ID: 7})
	if out.Event != "chat:currentID:lobby" {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	data, ok := out.Data.(proto.CurrentIDData)
	if !ok || data.ID != 7 || data.Room != "lobby" {
		t.Fatalf("unexpected currentID payload: %+v", out.Data)
	}

	out = outboundFromEvent(&core.Event{Kind: core.EventIdle, Room: "lobby", CID: "abc"})
	if out.Event != "chat:idle:lobby" {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	idle, ok := out.Data.(proto.IdleData)
	if !ok || idle.CID != "abc" {
		t.Fatalf("unexpected idle payload: %+v", out.Data)
	}

	out = outboundFromEvent(&core.Event{Kind: core.EventUserList, Room: "lobby", Users: []core.UserInfo{{CID: "abc"}}})
	if out.Event != "userlist:lobby" {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	list, ok := out.Data.(userListData)
	if !ok || list.Room != "lobby" || len(list.Users) != 1 {
		t.Fatalf("unexpected userlist payload: %+v", out.Data)
	}
}
