// Package redisstore keeps session history in Redis so a match survives a node restart.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"domino/internal/domain"
	"domino/internal/ports"
)

// DefaultTTL bounds how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "domino:session:"

// RoundKey holds the JSON state a round was dealt with.
func RoundKey(sessionID string) string { return keyPrefix + sessionID + ":round" }

// MovesKey holds the list of JSON history entries.
func MovesKey(sessionID string) string { return keyPrefix + sessionID + ":moves" }

// Store is a ports.HistoryStore backed by Redis strings and lists.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// New wraps a Redis client. A non-positive ttl falls back to DefaultTTL.
func New(rdb redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) SaveRound(ctx context.Context, sessionID string, initial *domain.State) error {
	data, err := json.Marshal(initial)
	if err != nil {
		return fmt.Errorf("encode round %s: %w", sessionID, err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, MovesKey(sessionID))
		pipe.Set(ctx, RoundKey(sessionID), data, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save round %s: %w", sessionID, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	n, err := s.rdb.Exists(ctx, RoundKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("append %s: %w", sessionID, err)
	}
	if n == 0 {
		return ports.ErrNoHistory
	}

	data, err := EncodeEntry(entry)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, MovesKey(sessionID), data)
		pipe.Expire(ctx, MovesKey(sessionID), s.ttl)
		pipe.Expire(ctx, RoundKey(sessionID), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append %s: %w", sessionID, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, []domain.HistoryEntry, error) {
	raw, err := s.rdb.Get(ctx, RoundKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil, ports.ErrNoHistory
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load round %s: %w", sessionID, err)
	}
	var initial domain.State
	if err := json.Unmarshal(raw, &initial); err != nil {
		return nil, nil, fmt.Errorf("decode round %s: %w", sessionID, err)
	}

	items, err := s.rdb.LRange(ctx, MovesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("load moves %s: %w", sessionID, err)
	}
	entries, err := DecodeEntries(items)
	if err != nil {
		return nil, nil, fmt.Errorf("decode moves %s: %w", sessionID, err)
	}
	return &initial, entries, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, RoundKey(sessionID), MovesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", sessionID, err)
	}
	return nil
}

// EncodeEntry serializes one history entry as stored in the moves list.
func EncodeEntry(entry domain.HistoryEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode entry %d: %w", entry.Seq, err)
	}
	return data, nil
}

// DecodeEntries parses the moves list in order.
func DecodeEntries(items []string) ([]domain.HistoryEntry, error) {
	entries := make([]domain.HistoryEntry, 0, len(items))
	for i, item := range items {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
