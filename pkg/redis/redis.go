package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/config"
)

// Client wraps a go-redis client with health tracking and reconnection.
type Client struct {
	client        *redis.Client
	config        config.RedisConfig
	mu            sync.RWMutex
	isConnected   bool
	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
}

type HealthStatus struct {
	IsConnected    bool          `json:"isConnected"`
	LastPing       time.Time     `json:"lastPing"`
	ResponseTime   time.Duration `json:"responseTime"`
	ConnectionInfo string        `json:"connectionInfo"`
	Error          string        `json:"error,omitempty"`
}

// NewClient creates a Redis client with connection pooling and starts the
// background health and reconnect loops.
func NewClient(cfg config.RedisConfig) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		config:        cfg,
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
	}

	client.connect()
	go client.healthCheckLoop()
	go client.reconnectLoop()

	return client
}

// Wrap adopts an existing go-redis client without background loops.
func Wrap(rc *redis.Client) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		client:        rc,
		isConnected:   true,
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
		config:        config.RedisConfig{Host: rc.Options().Addr},
	}
}

func (c *Client) options() (*redis.Options, error) {
	if c.config.URL != "" {
		opt, err := redis.ParseURL(c.config.URL)
		if err != nil {
			return nil, err
		}
		c.applyPool(opt)
		return opt, nil
	}

	opt := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", c.config.Host, c.config.Port),
		Password: c.config.Password,
		DB:       c.config.DB,
	}
	c.applyPool(opt)
	return opt, nil
}

func (c *Client) applyPool(opt *redis.Options) {
	opt.PoolSize = c.config.PoolSize
	opt.MinIdleConns = c.config.MinIdleConns
	opt.MaxRetries = c.config.MaxRetries
	opt.MinRetryBackoff = c.config.RetryDelay
	opt.DialTimeout = c.config.DialTimeout
	opt.ReadTimeout = c.config.ReadTimeout
	opt.WriteTimeout = c.config.WriteTimeout
	opt.PoolTimeout = c.config.PoolTimeout
}

func (c *Client) connect() {
	opt, err := c.options()
	if err != nil {
		log.WithError(err).Warn("Failed to parse Redis URL, falling back to host:port")
		c.config.URL = ""
		opt, _ = c.options()
	}

	client := redis.NewClient(opt)
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = client.Ping(ctx).Err()
	c.mu.Lock()
	c.isConnected = err == nil
	c.mu.Unlock()

	if err != nil {
		log.WithError(err).Warn("Redis connection test failed")
	} else {
		log.WithField("addr", opt.Addr).Info("Redis connected")
	}
}

// GetClient returns the Redis client instance (thread-safe)
func (c *Client) GetClient() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// IsConnected returns the current connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// HealthCheck pings Redis and returns detailed status. A failed ping
// schedules a reconnect.
func (c *Client) HealthCheck(ctx context.Context) HealthStatus {
	client := c.GetClient()

	status := HealthStatus{
		IsConnected:    c.IsConnected(),
		ConnectionInfo: c.addr(),
	}
	if client == nil {
		status.Error = "Redis client not initialized"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx).Err()
	status.ResponseTime = time.Since(start)
	status.LastPing = time.Now()

	c.mu.Lock()
	c.isConnected = err == nil
	c.mu.Unlock()

	status.IsConnected = err == nil
	if err != nil {
		status.Error = err.Error()
		c.triggerReconnect()
	}
	return status
}

func (c *Client) addr() string {
	if c.config.Port == "" {
		return c.config.Host
	}
	return fmt.Sprintf("%s:%s", c.config.Host, c.config.Port)
}

func (c *Client) triggerReconnect() {
	select {
	case c.reconnectChan <- struct{}{}:
	default:
	}
}

func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if status := c.HealthCheck(c.ctx); !status.IsConnected {
				log.WithField("error", status.Error).Warn("Redis health check failed")
			}
		}
	}
}

// reconnectLoop reconnects with exponential backoff capped at 30s.
func (c *Client) reconnectLoop() {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reconnectChan:
			if c.IsConnected() {
				continue
			}

			log.Info("Attempting to reconnect to Redis")
			c.mu.Lock()
			if c.client != nil {
				c.client.Close()
			}
			c.mu.Unlock()

			c.connect()
			if c.IsConnected() {
				log.Info("Reconnected to Redis")
				backoff = time.Second
				continue
			}

			log.WithField("retry_in", backoff).Warn("Redis reconnection failed")
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			c.triggerReconnect()
		}
	}
}

// Close stops the background loops and closes the connection pool.
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GetConnectionStats returns connection pool statistics
func (c *Client) GetConnectionStats() map[string]interface{} {
	client := c.GetClient()
	if client == nil {
		return map[string]interface{}{"error": "Redis client not initialized"}
	}

	stats := client.PoolStats()
	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"totalConns":  stats.TotalConns,
		"idleConns":   stats.IdleConns,
		"staleConns":  stats.StaleConns,
		"isConnected": c.IsConnected(),
	}
}
