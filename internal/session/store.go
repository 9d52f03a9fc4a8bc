// Package session keeps per-visitor state that must outlive a single request,
// currently just affiliate attribution. Entries live in redis under the
// visitor's session ID and expire on their own.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CookieName carries the visitor's session ID across requests.
const CookieName = "storefront_sid"

// DefaultTTL is the attribution window: an affiliate code recorded for a
// visitor is credited to orders placed within this window, last touch wins.
const DefaultTTL = 30 * 24 * time.Hour

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func affiliateKey(sid string) string {
	return "session:" + sid + ":affiliate"
}

// SetAffiliateCode records the latest affiliate code for the visitor,
// replacing any earlier one and restarting the attribution window.
func (s *Store) SetAffiliateCode(ctx context.Context, sid, code string) error {
	return s.client.Set(ctx, affiliateKey(sid), code, s.ttl).Err()
}

// AffiliateCode returns the visitor's attributed code, or "" when none is
// recorded or the window has expired.
func (s *Store) AffiliateCode(ctx context.Context, sid string) (string, error) {
	code, err := s.client.Get(ctx, affiliateKey(sid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

func (s *Store) Clear(ctx context.Context, sid string) error {
	return s.client.Del(ctx, affiliateKey(sid)).Err()
}
