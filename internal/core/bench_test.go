package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub, _ := newTestHub(b)
	go hub.Run(ctx)

	sender := NewSession()
	hub.Submit(&Command{Session: sender, Kind: CommandSubscribe, Room: "bench"})

	sessions := make([]*Session, 0, recipients)
	for i := 0; i < recipients; i++ {
		s := NewSession()
		s.Nick = fmt.Sprintf("c%d", i)
		hub.Submit(&Command{Session: s, Kind: CommandSubscribe, Room: "bench"})
		sessions = append(sessions, s)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := sessions[0]
	for _, s := range sessions[1:] {
		go func(sess *Session) {
			for range sess.Events {
			}
		}(s)
	}
	go func() {
		for range sender.Events {
		}
	}()

	// Wait until the last join reached the observed recipient.
	for ev := range target.Events {
		if ev.Kind == EventUserList && len(ev.Users) == recipients+1 {
			break
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Submit(&Command{Session: sender, Kind: CommandChat, Room: "bench", Body: "payload"})
		for ev := range target.Events {
			if ev.Kind == EventChat {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
