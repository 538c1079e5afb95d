package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestNumberGeneratorNext(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := NewNumberGenerator(client)
	gen.now = func() time.Time { return fixed }

	first, err := gen.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("ORD-%d-1", fixed.UnixMilli()), first)

	second, err := gen.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("ORD-%d-2", fixed.UnixMilli()), second)
	require.NotEqual(t, first, second)
}

func TestNumberGeneratorUniqueUnderConcurrency(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gen := NewNumberGenerator(client)

	const n = 20
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			num, err := gen.Next(context.Background())
			if err != nil {
				results <- ""
				return
			}
			results <- num
		}()
	}

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		num := <-results
		require.NotEmpty(t, num)
		require.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
}
