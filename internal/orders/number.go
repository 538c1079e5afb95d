package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sequenceKey = "novamart:orders:seq"

// NumberGenerator produces unique order numbers of the form
// ORD-<epochMillis>-<sequence>. The sequence comes from an atomic Redis
// counter, so concurrent creations can never collide the way a
// count-the-rows scheme would.
type NumberGenerator struct {
	client *redis.Client
	now    func() time.Time
}

// NewNumberGenerator constructs a NumberGenerator.
func NewNumberGenerator(client *redis.Client) *NumberGenerator {
	return &NumberGenerator{client: client, now: time.Now}
}

// Next returns the next order number.
func (g *NumberGenerator) Next(ctx context.Context) (string, error) {
	seq, err := g.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("orders: next sequence: %w", err)
	}
	return fmt.Sprintf("ORD-%d-%d", g.now().UnixMilli(), seq), nil
}
