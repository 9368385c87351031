package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/gipsyblues/echoplexus/internal/store/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st := memory.New()
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, st)
}

func TestPrivateRoomRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SetPrivate(ctx, "lobby", "pw"); err != nil {
		t.Fatalf("set private: %v", err)
	}

	if err := svc.CheckPrivate(ctx, "lobby", "pw"); err != nil {
		t.Fatalf("expected matching password to grant entry, got %v", err)
	}
	if err := svc.CheckPrivate(ctx, "lobby", "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	// A second make_private degrades to "already private".
	if err := svc.SetPrivate(ctx, "lobby", "other"); !errors.Is(err, ErrAlreadyPrivate) {
		t.Fatalf("expected ErrAlreadyPrivate, got %v", err)
	}

	if err := svc.ClearPrivate(ctx, "lobby"); err != nil {
		t.Fatalf("clear private: %v", err)
	}
	// After clearing, any password check reports the room as public.
	if err := svc.CheckPrivate(ctx, "lobby", "pw"); !errors.Is(err, ErrNotPrivate) {
		t.Fatalf("expected ErrNotPrivate, got %v", err)
	}
	if err := svc.ClearPrivate(ctx, "lobby"); !errors.Is(err, ErrAlreadyPublic) {
		t.Fatalf("expected ErrAlreadyPublic, got %v", err)
	}
}

func TestRegisterIsExactlyOncePerRoom(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "lobby", "alice", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Register(ctx, "lobby", "alice", "different"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	// The same nick registers independently in another room's namespace.
	if err := svc.Register(ctx, "other", "alice", "pw"); err != nil {
		t.Fatalf("register in other room: %v", err)
	}
}

func TestIdentify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Identify(ctx, "lobby", "alice", "pw"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	if err := svc.Register(ctx, "lobby", "alice", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Identify(ctx, "lobby", "alice", "pw"); err != nil {
		t.Fatalf("identify: %v", err)
	}
	if err := svc.Identify(ctx, "lobby", "alice", "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestDeriveKeyIsDeterministicPerSalt(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}

	a, err := DeriveKey("pw", salt)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := DeriveKey("pw", salt)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a != b {
		t.Fatal("same password and salt must derive the same key")
	}

	other, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	c, err := DeriveKey("pw", other)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a == c {
		t.Fatal("different salts must derive different keys")
	}
}
