package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "token:user:7", userKey(7))
	assert.Equal(t, "token:lookup:abc", lookupKey("abc"))
}

func TestTokenRepositoryIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	repo := NewTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.StoreToken(ctx, 7, "token-a", time.Minute))
	require.NoError(t, repo.StoreToken(ctx, 7, "token-b", time.Minute))

	userID, err := repo.ValidateToken(ctx, "token-a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)

	require.NoError(t, repo.RevokeUserTokens(ctx, 7))

	_, err = repo.ValidateToken(ctx, "token-a")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = repo.ValidateToken(ctx, "token-b")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
