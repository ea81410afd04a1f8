// Package draft keeps in-flight point-of-sale orders in Redis so a
// terminal can recover its cart after a crash or page reload. Drafts
// are keyed by session and order UID and expire after a day.
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyDraft      = "pos:draft:%s:%s"    // session id, order uid
	keySessionSet = "pos:draft:index:%s" // session id -> set of order uids
)

var TTLDraft = 24 * time.Hour

var ErrNotFound = errors.New("draft: order not found")

// New dials Redis at addr with a short operation timeout.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Store persists serialized draft orders.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Save writes the serialized order under its session. The session
// index lets Resume list every draft the terminal had open.
func (s *Store) Save(ctx context.Context, sessionID, orderUID string, data []byte) error {
	key := fmt.Sprintf(keyDraft, sessionID, orderUID)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, data, TTLDraft)
	pipe.SAdd(ctx, fmt.Sprintf(keySessionSet, sessionID), orderUID)
	pipe.Expire(ctx, fmt.Sprintf(keySessionSet, sessionID), TTLDraft)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save draft %s: %w", orderUID, err)
	}
	return nil
}

// Load returns the serialized order, or ErrNotFound if it expired or
// was never saved.
func (s *Store) Load(ctx context.Context, sessionID, orderUID string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, fmt.Sprintf(keyDraft, sessionID, orderUID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", orderUID, err)
	}
	return data, nil
}

// Delete removes a draft once the order is paid or abandoned.
func (s *Store) Delete(ctx context.Context, sessionID, orderUID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(keyDraft, sessionID, orderUID))
	pipe.SRem(ctx, fmt.Sprintf(keySessionSet, sessionID), orderUID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete draft %s: %w", orderUID, err)
	}
	return nil
}

// List returns the order UIDs with a live draft for the session.
// Expired drafts are pruned from the index as a side effect.
func (s *Store) List(ctx context.Context, sessionID string) ([]string, error) {
	uids, err := s.rdb.SMembers(ctx, fmt.Sprintf(keySessionSet, sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	live := make([]string, 0, len(uids))
	for _, uid := range uids {
		n, err := s.rdb.Exists(ctx, fmt.Sprintf(keyDraft, sessionID, uid)).Result()
		if err != nil {
			return nil, fmt.Errorf("list drafts: %w", err)
		}
		if n > 0 {
			live = append(live, uid)
		} else {
			_ = s.rdb.SRem(ctx, fmt.Sprintf(keySessionSet, sessionID), uid).Err()
		}
	}
	return live, nil
}
