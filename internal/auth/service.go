// Package auth implements salted key-derivation password checks for private
// room entry and for the per-room registered nickname namespace.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gipsyblues/echoplexus/internal/store"
)

var (
	// ErrAlreadyPrivate is returned when making an already-private room private.
	ErrAlreadyPrivate = errors.New("channel already private")
	// ErrAlreadyPublic is returned when making an already-public room public.
	ErrAlreadyPublic = errors.New("channel already public")
	// ErrNotPrivate is returned when authenticating against a public room.
	ErrNotPrivate = errors.New("channel is not private")
	// ErrWrongPassword is returned when the derived key does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrAlreadyRegistered is returned when the nickname is taken in this room.
	ErrAlreadyRegistered = errors.New("nickname already registered")
	// ErrNotRegistered is returned when no registration exists for the nickname.
	ErrNotRegistered = errors.New("nickname not registered")
)

// Service provides room privacy and nickname registration checks. Privacy
// state is read from the store on every call, never cached.
type Service struct {
	channels   store.ChannelStore
	identities store.IdentityStore
}

// NewService creates an authentication service over the given stores.
func NewService(channels store.ChannelStore, identities store.IdentityStore) *Service {
	return &Service{channels: channels, identities: identities}
}

// SetPrivate marks a room private, deriving and persisting fresh credential
// material from password.
func (s *Service) SetPrivate(ctx context.Context, room, password string) error {
	meta, err := s.channels.ChannelMeta(ctx, room)
	if err != nil {
		return fmt.Errorf("read channel meta: %w", err)
	}
	if meta.IsPrivate {
		return ErrAlreadyPrivate
	}

	salt, key, err := deriveFresh(password)
	if err != nil {
		return err
	}
	if err := s.channels.SetPrivate(ctx, room, salt, key); err != nil {
		return fmt.Errorf("persist privacy: %w", err)
	}
	return nil
}

// ClearPrivate removes a room's privacy fields, restoring public access.
func (s *Service) ClearPrivate(ctx context.Context, room string) error {
	meta, err := s.channels.ChannelMeta(ctx, room)
	if err != nil {
		return fmt.Errorf("read channel meta: %w", err)
	}
	if !meta.IsPrivate {
		return ErrAlreadyPublic
	}
	if err := s.channels.ClearPrivate(ctx, room); err != nil {
		return fmt.Errorf("clear privacy: %w", err)
	}
	return nil
}

// CheckPrivate re-derives the key with the stored salt and compares it against
// the stored hash. A match grants entry to the private room.
func (s *Service) CheckPrivate(ctx context.Context, room, password string) error {
	meta, err := s.channels.ChannelMeta(ctx, room)
	if err != nil {
		return fmt.Errorf("read channel meta: %w", err)
	}
	if !meta.IsPrivate {
		return ErrNotPrivate
	}

	key, err := DeriveKey(password, meta.Salt)
	if err != nil {
		return err
	}
	if !keysEqual(key, meta.PasswordHash) {
		return ErrWrongPassword
	}
	return nil
}

// Register claims nick in the room's registered-identity namespace. Each nick
// registers independently per room; a second registration fails regardless of
// password.
func (s *Service) Register(ctx context.Context, room, nick, password string) error {
	taken, err := s.identities.IsRegistered(ctx, room, nick)
	if err != nil {
		return fmt.Errorf("check registration: %w", err)
	}
	if taken {
		return ErrAlreadyRegistered
	}

	salt, key, err := deriveFresh(password)
	if err != nil {
		return err
	}
	if err := s.identities.SaveIdentity(ctx, room, nick, salt, key); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// Identify verifies password against the registration on file for nick.
func (s *Service) Identify(ctx context.Context, room, nick, password string) error {
	taken, err := s.identities.IsRegistered(ctx, room, nick)
	if err != nil {
		return fmt.Errorf("check registration: %w", err)
	}
	if !taken {
		return ErrNotRegistered
	}

	id, err := s.identities.Identity(ctx, room, nick)
	if err != nil {
		return fmt.Errorf("read identity: %w", err)
	}
	key, err := DeriveKey(password, id.Salt)
	if err != nil {
		return err
	}
	if !keysEqual(key, id.PasswordHash) {
		return ErrWrongPassword
	}
	return nil
}

func deriveFresh(password string) (salt, key string, err error) {
	salt, err = NewSalt()
	if err != nil {
		return "", "", err
	}
	key, err = DeriveKey(password, salt)
	if err != nil {
		return "", "", err
	}
	return salt, key, nil
}
