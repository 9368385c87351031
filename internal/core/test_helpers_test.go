package core

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gipsyblues/echoplexus/internal/auth"
	"github.com/gipsyblues/echoplexus/internal/chatlog"
	"github.com/gipsyblues/echoplexus/internal/pubsub"
	"github.com/gipsyblues/echoplexus/internal/store/memory"
)

// newTestHub builds a hub over an in-memory store. The returned store is
// shared, so tests can pre-seed privacy or log state.
func newTestHub(tb testing.TB) (*Hub, *memory.Store) {
	tb.Helper()

	st := memory.New()
	logger := zerolog.Nop()
	hub := NewHub(
		NewRegistry(),
		st,
		auth.NewService(st, st),
		chatlog.NewService(st),
		pubsub.Noop{},
		"[server]",
		&logger,
	)
	return hub, st
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustQuiet asserts that no event arrives within a settle window.
func mustQuiet(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got kind %v: %+v", ev.Kind, ev)
	case <-time.After(150 * time.Millisecond):
	}
}
