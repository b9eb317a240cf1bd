// Package redis keeps the last good catalog snapshot so replicas can classify while Postgres is down.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultKey = "triage:catalog"
	DefaultTTL = 24 * time.Hour

	envelopeVersion = 1
)

type Options struct {
	Key          string
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// CatalogCache stores a JSON snapshot under one key.
type CatalogCache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string, opts Options) (*CatalogCache, error) {
	parsed, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout > 0 {
		parsed.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		parsed.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		parsed.WriteTimeout = opts.WriteTimeout
	}
	if opts.PoolSize > 0 {
		parsed.PoolSize = opts.PoolSize
	}

	client := goredis.NewClient(parsed)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, domain.WrapError(domain.ErrTemporary, "ping redis", err)
	}
	return New(client, opts), nil
}

func New(client *goredis.Client, opts Options) *CatalogCache {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CatalogCache{client: client, key: key, ttl: ttl}
}

func (c *CatalogCache) Close() error {
	return c.client.Close()
}

// LoadCatalog returns nil, nil when no snapshot is cached.
func (c *CatalogCache) LoadCatalog(ctx context.Context) (*domain.CatalogSnapshot, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "redis get catalog", err)
	}
	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *CatalogCache) StoreCatalog(ctx context.Context, snapshot domain.CatalogSnapshot) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return domain.WrapError(domain.ErrTemporary, "redis set catalog", err)
	}
	return nil
}

type envelope struct {
	Version  int                    `json:"version"`
	StoredAt time.Time              `json:"stored_at"`
	Snapshot domain.CatalogSnapshot `json:"snapshot"`
}

func encodeSnapshot(snapshot domain.CatalogSnapshot) ([]byte, error) {
	data, err := json.Marshal(envelope{
		Version:  envelopeVersion,
		StoredAt: time.Now().UTC(),
		Snapshot: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal catalog snapshot: %w", err)
	}
	return data, nil
}

// decodeSnapshot treats an envelope from another layout version as a miss.
func decodeSnapshot(data []byte) (*domain.CatalogSnapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal catalog snapshot: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, nil
	}
	if len(env.Snapshot.Departments) == 0 {
		return nil, fmt.Errorf("cached catalog snapshot has no departments")
	}
	return &env.Snapshot, nil
}
