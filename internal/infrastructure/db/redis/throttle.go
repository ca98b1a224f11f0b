package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecoveryThrottle bounds recovery/magic-link mail per address using a
// Redis TTL key. SetNX makes check-and-mark a single atomic round trip.
// Key format: pwrecovery:<email>
type RecoveryThrottle struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecoveryThrottle creates a throttle allowing one request per ttl.
func NewRecoveryThrottle(client *redis.Client, ttl time.Duration) *RecoveryThrottle {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RecoveryThrottle{client: client, ttl: ttl}
}

// Allow reports whether a recovery mail may go out for this address now.
// The first caller within a window wins; later ones are throttled.
func (t *RecoveryThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("recovery throttle: %w", err)
	}
	return ok, nil
}

func (t *RecoveryThrottle) key(email string) string {
	return "pwrecovery:" + email
}
