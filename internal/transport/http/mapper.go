package http

import (
	"encoding/json"
	"errors"

	"github.com/gipsyblues/echoplexus/internal/core"
	"github.com/gipsyblues/echoplexus/internal/proto"
)

// userListData mirrors the original userlist payload shape.
type userListData struct {
	Users []core.UserInfo `json:"users"`
	Room  string          `json:"room"`
}

// inboundToCommand maps a wire frame onto a hub command for the session. A
// nil command with a nil error means the frame was valid but is a no-op.
func inboundToCommand(session *core.Session, env proto.Envelope) (*core.Command, *proto.Error, error) {
	name, room, err := proto.ParseInbound(env.Event)
	if errors.Is(err, proto.ErrUnknownEvent) {
		return nil, &proto.Error{Code: "unknown_event", Msg: "unknown event name"}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	cmd := &core.Command{Session: session, Room: room}

	switch name {
	case proto.EventSubscribe:
		var data proto.SubscribeData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		if data.Room == "" {
			return nil, &proto.Error{Code: "bad_request", Msg: "room is required"}, nil
		}
		cmd.Kind = core.CommandSubscribe
		cmd.Room = data.Room
	case proto.EventMakePublic:
		cmd.Kind = core.CommandMakePublic
	case proto.EventMakePrivate:
		var data proto.PasswordData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandMakePrivate
		cmd.Password = data.Password
	case proto.EventJoinPrivate:
		var data proto.PasswordData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandJoinPrivate
		cmd.Password = data.Password
	case proto.EventNickname:
		var data proto.NicknameData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandNickname
		cmd.Nickname = data.Nickname
	case proto.EventTopic:
		var data proto.TopicData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandTopic
		cmd.Body = data.Topic
	case proto.EventChat:
		var data proto.ChatData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandChat
		cmd.Body = data.Body
	case proto.EventChatIdle:
		cmd.Kind = core.CommandIdle
	case proto.EventChatUnidle:
		cmd.Kind = core.CommandUnidle
	case proto.EventHistoryRequest:
		var data proto.HistoryRequestData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandHistoryRequest
		cmd.RequestRange = data.RequestRange
	case proto.EventIdentify:
		var data proto.PasswordData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandIdentify
		cmd.Password = data.Password
	case proto.EventRegisterNick:
		var data proto.PasswordData
		if err := unmarshalData(env.Data, &data); err != nil {
			return nil, badData(), nil
		}
		cmd.Kind = core.CommandRegisterNick
		cmd.Password = data.Password
	case proto.EventUnsubscribe:
		cmd.Kind = core.CommandUnsubscribe
	default:
		return nil, &proto.Error{Code: "unknown_event", Msg: "unknown event name"}, nil
	}

	return cmd, nil, nil
}

func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func badData() *proto.Error {
	return &proto.Error{Code: "bad_request", Msg: "malformed event data"}
}

// outboundFromEvent frames a hub event for the wire. Message payloads go out
// exactly as they are persisted, so live delivery and history replay match.
func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventChat:
		return proto.Outbound{Event: proto.Scoped(proto.EventChat, ev.Room), Data: ev.Message}
	case core.EventUserList:
		return proto.Outbound{
			Event: proto.Scoped(proto.EventUserList, ev.Room),
			Data:  userListData{Users: ev.Users, Room: ev.Room},
		}
	case core.EventTopic:
		return proto.Outbound{Event: proto.Scoped(proto.EventTopic, ev.Room), Data: ev.Message}
	case core.EventCurrentID:
		return proto.Outbound{
			Event: proto.Scoped(proto.EventCurrentID, ev.Room),
			Data:  proto.CurrentIDData{ID: ev.ID, Room: ev.Room},
		}
	case core.EventYourCID:
		return proto.Outbound{
			Event: proto.Scoped(proto.EventYourCID, ev.Room),
			Data:  proto.YourCIDData{Room: ev.Room, CID: ev.CID},
		}
	case core.EventIdle:
		return proto.Outbound{Event: proto.Scoped(proto.EventChatIdle, ev.Room), Data: proto.IdleData{CID: ev.CID}}
	case core.EventUnidle:
		return proto.Outbound{Event: proto.Scoped(proto.EventChatUnidle, ev.Room), Data: proto.IdleData{CID: ev.CID}}
	case core.EventSubscribed:
		return proto.Outbound{Event: proto.Scoped(proto.EventSubscribed, ev.Room)}
	case core.EventSubscribeAck:
		return proto.Outbound{
			Event: proto.Scoped(proto.EventSubscribeAck, ev.Room),
			Data:  proto.AckData{Room: ev.Room, CID: ev.CID},
		}
	default:
		return proto.Outbound{Event: proto.Scoped(proto.EventChat, ev.Room)}
	}
}
