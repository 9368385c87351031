// Package redisstore implements store.Store on top of redis.
//
// The key layout is the classic echoplexus one:
//
//	channels:<room>          hash  isPrivate, salt, password
//	channels:currentMessageID hash room -> counter
//	chatlog:<room>           hash  messageID -> serialized message
//	topic                    hash  room -> topic
//	users:<room>             set   registered nicknames
//	salts:<room>             hash  nickname -> salt
//	passwords:<room>         hash  nickname -> derived key
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/gipsyblues/echoplexus/internal/store"
)

// Store is a redis-backed store.Store.
type Store struct {
	rdb *redis.Client
}

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to redis and verifies the connection with a ping.
func New(ctx context.Context, opts Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func channelKey(room string) string  { return "channels:" + room }
func chatlogKey(room string) string  { return "chatlog:" + room }
func usersKey(room string) string    { return "users:" + room }
func saltsKey(room string) string    { return "salts:" + room }
func passwordKey(room string) string { return "passwords:" + room }

const (
	counterKey = "channels:currentMessageID"
	topicKey   = "topic"
)

// ChannelMeta implements store.ChannelStore.
func (s *Store) ChannelMeta(ctx context.Context, room string) (store.ChannelMeta, error) {
	vals, err := s.rdb.HMGet(ctx, channelKey(room), "isPrivate", "salt", "password").Result()
	if err != nil {
		return store.ChannelMeta{}, fmt.Errorf("hmget %s: %w", channelKey(room), err)
	}

	var meta store.ChannelMeta
	if v, ok := vals[0].(string); ok {
		meta.IsPrivate = v == "true"
	}
	if v, ok := vals[1].(string); ok {
		meta.Salt = v
	}
	if v, ok := vals[2].(string); ok {
		meta.PasswordHash = v
	}
	return meta, nil
}

// SetPrivate implements store.ChannelStore.
func (s *Store) SetPrivate(ctx context.Context, room, salt, passwordHash string) error {
	err := s.rdb.HSet(ctx, channelKey(room),
		"isPrivate", "true",
		"salt", salt,
		"password", passwordHash,
	).Err()
	if err != nil {
		return fmt.Errorf("hset %s: %w", channelKey(room), err)
	}
	return nil
}

// ClearPrivate implements store.ChannelStore.
func (s *Store) ClearPrivate(ctx context.Context, room string) error {
	err := s.rdb.HDel(ctx, channelKey(room), "isPrivate", "salt", "password").Err()
	if err != nil {
		return fmt.Errorf("hdel %s: %w", channelKey(room), err)
	}
	return nil
}

// IncrMessageID implements store.MessageStore. HINCRBY makes the
// read-modify-write atomic, so concurrent posts to one room cannot
// be assigned the same ID.
func (s *Store) IncrMessageID(ctx context.Context, room string) (int64, error) {
	n, err := s.rdb.HIncrBy(ctx, counterKey, room, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("hincrby %s: %w", counterKey, err)
	}
	return n, nil
}

// CurrentMessageID implements store.MessageStore.
func (s *Store) CurrentMessageID(ctx context.Context, room string) (int64, error) {
	v, err := s.rdb.HGet(ctx, counterKey, room).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("hget %s: %w", counterKey, err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %q: %w", v, err)
	}
	return n, nil
}

// AppendMessage implements store.MessageStore.
func (s *Store) AppendMessage(ctx context.Context, room string, id int64, payload []byte) error {
	err := s.rdb.HSet(ctx, chatlogKey(room), strconv.FormatInt(id, 10), payload).Err()
	if err != nil {
		return fmt.Errorf("hset %s: %w", chatlogKey(room), err)
	}
	return nil
}

// Messages implements store.MessageStore.
func (s *Store) Messages(ctx context.Context, room string, ids []int64) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = strconv.FormatInt(id, 10)
	}
	vals, err := s.rdb.HMGet(ctx, chatlogKey(room), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget %s: %w", chatlogKey(room), err)
	}
	out := make([][]byte, len(ids))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

// Topic implements store.TopicStore.
func (s *Store) Topic(ctx context.Context, room string) (string, error) {
	v, err := s.rdb.HGet(ctx, topicKey, room).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("hget %s: %w", topicKey, err)
	}
	return v, nil
}

// SetTopic implements store.TopicStore.
func (s *Store) SetTopic(ctx context.Context, room, topic string) error {
	if err := s.rdb.HSet(ctx, topicKey, room, topic).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", topicKey, err)
	}
	return nil
}

// IsRegistered implements store.IdentityStore.
func (s *Store) IsRegistered(ctx context.Context, room, nick string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, usersKey(room), nick).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", usersKey(room), err)
	}
	return ok, nil
}

// SaveIdentity implements store.IdentityStore.
func (s *Store) SaveIdentity(ctx context.Context, room, nick, salt, passwordHash string) error {
	if err := s.rdb.SAdd(ctx, usersKey(room), nick).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", usersKey(room), err)
	}
	if err := s.rdb.HSet(ctx, saltsKey(room), nick, salt).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", saltsKey(room), err)
	}
	if err := s.rdb.HSet(ctx, passwordKey(room), nick, passwordHash).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", passwordKey(room), err)
	}
	return nil
}

// Identity implements store.IdentityStore.
func (s *Store) Identity(ctx context.Context, room, nick string) (store.Identity, error) {
	salt, err := s.rdb.HGet(ctx, saltsKey(room), nick).Result()
	if errors.Is(err, redis.Nil) {
		return store.Identity{}, store.ErrNotFound
	}
	if err != nil {
		return store.Identity{}, fmt.Errorf("hget %s: %w", saltsKey(room), err)
	}
	hash, err := s.rdb.HGet(ctx, passwordKey(room), nick).Result()
	if errors.Is(err, redis.Nil) {
		return store.Identity{}, store.ErrNotFound
	}
	if err != nil {
		return store.Identity{}, fmt.Errorf("hget %s: %w", passwordKey(room), err)
	}
	return store.Identity{Salt: salt, PasswordHash: hash}, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.rdb.Close()
}
