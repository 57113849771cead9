package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	infraredis "github.com/iho/gowallet/internal/infrastructure/redis"
)

// newTestStore returns a store backed by a fresh miniredis instance that is
// torn down with the test.
func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := infraredis.NewClient(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return NewIdempotencyStore(client), mr
}
