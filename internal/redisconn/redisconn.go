package redisconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

type Options struct {
	URL         string
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Conn owns the staging store's Redis client. The client is created on first use
// and every caller-visible operation group starts with a PING. A failed PING swaps in
// a freshly dialed client; the old one stays open for callers still holding it and is
// closed with the Conn.
type Conn struct {
	opts   *redis.Options
	logger *slog.Logger

	mu      sync.Mutex
	client  *redis.Client
	retired []*redis.Client
}

func New(o Options, logger *slog.Logger) (*Conn, error) {
	opts, err := optionsFrom(o)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Conn{opts: opts, logger: logger}, nil
}

func optionsFrom(o Options) (*redis.Options, error) {
	if o.URL == "" && o.Addr == "" {
		return nil, errors.New("redis url or address is required")
	}

	var opts *redis.Options

	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}

		opts = parsed
	} else {
		opts = &redis.Options{Addr: o.Addr, Password: o.Password, DB: o.DB}
	}

	if opts.DialTimeout == 0 {
		opts.DialTimeout = o.DialTimeout
	}

	return opts, nil
}

// Client returns a client that answered PING.
func (c *Conn) Client(ctx context.Context) (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		err := c.client.Ping(ctx).Err()
		if err == nil {
			return c.client, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		c.logger.Warn("redis ping failed, reconnecting", "addr", c.opts.Addr, "error", err)
		c.retired = append(c.retired, c.client)
		c.client = nil
	}

	client := redis.NewClient(c.opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("connect redis %s: %w", c.opts.Addr, err)
	}

	c.client = client

	return client, nil
}

func (c *Conn) Ping(ctx context.Context) error {
	_, err := c.Client(ctx)
	return err
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error

	for _, old := range c.retired {
		err = multierr.Append(err, old.Close())
	}

	c.retired = nil

	if c.client != nil {
		err = multierr.Append(err, c.client.Close())
		c.client = nil
	}

	return err
}
