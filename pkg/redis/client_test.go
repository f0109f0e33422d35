package redis

import (
	"testing"

	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pass@cache.internal:6380/2", PoolSize: 15})
	require.NoError(t, err)
	require.Equal(t, "cache.internal:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 15, opts.PoolSize)
}

func TestOptionsFromConfigUsesAddress(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 1})
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", opts.Addr)
	require.Equal(t, 1, opts.DB)
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	require.Equal(t, "rbm:idempotency:checkout:abc", c.IdempotencyKey("checkout", "abc"))
	require.Equal(t, "rbm:rate_limit:login:1.2.3.4", c.RateLimitKey("login", "1.2.3.4"))
	require.Equal(t, "rbm:session:access:xyz", c.AccessSessionKey("xyz"))
}
