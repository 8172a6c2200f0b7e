package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/susp3kt93/myfleet-sub000/internal/config"
)

func testConfig(addr string) config.RedisConfig {
	host, port := addr, ""
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			host, port = addr[:i], addr[i+1:]
			break
		}
	}
	return config.RedisConfig{
		Host:         host,
		Port:         port,
		PoolSize:     5,
		MinIdleConns: 1,
		MaxRetries:   1,
		RetryDelay:   10 * time.Millisecond,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  time.Second,
	}
}

func TestNewClient_ConnectsAndReportsHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewClient(testConfig(mr.Addr()))
	defer client.Close()

	require.NotNil(t, client.GetClient())
	assert.True(t, client.IsConnected())

	status := client.HealthCheck(context.Background())
	assert.True(t, status.IsConnected)
	assert.Empty(t, status.Error)
	assert.Equal(t, mr.Addr(), status.ConnectionInfo)
}

func TestHealthCheck_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := NewClient(testConfig(mr.Addr()))
	defer client.Close()

	mr.Close()

	status := client.HealthCheck(context.Background())
	assert.False(t, status.IsConnected)
	assert.NotEmpty(t, status.Error)
}

func TestNewClient_URL(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig("unused:0")
	cfg.URL = "redis://" + mr.Addr() + "/0"
	client := NewClient(cfg)
	defer client.Close()

	assert.True(t, client.IsConnected())
}

func TestWrap(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	client := Wrap(rc)
	defer client.Close()

	require.NoError(t, client.GetClient().Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, client.HealthCheck(context.Background()).IsConnected)

	stats := client.GetConnectionStats()
	assert.Equal(t, true, stats["isConnected"])
}
