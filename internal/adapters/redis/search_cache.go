package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	versionKey   = "search:version"
	pageKeyFmt   = "search:v%d:%s"
	cacheTimeout = 500 * time.Millisecond
)

// cacheClient is the part of *redis.Client the cache uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// CachedGateway decorates a gateway with a read-through cache of
// listing page queries. Keys embed a version counter; bumping it orphans
// every cached page at once and lets the TTL reclaim them.
type CachedGateway struct {
	inner  port.GatewayPort
	client cacheClient
	ttl    time.Duration
}

func NewCachedGateway(inner port.GatewayPort, client *redis.Client, ttl time.Duration) (*CachedGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("cached gateway: redis client cannot be nil")
	}
	return newCachedGateway(inner, client, ttl)
}

func newCachedGateway(inner port.GatewayPort, client cacheClient, ttl time.Duration) (*CachedGateway, error) {
	if inner == nil {
		return nil, fmt.Errorf("cached gateway: inner gateway cannot be nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cached gateway: ttl must be positive, got %s", ttl)
	}
	return &CachedGateway{inner: inner, client: client, ttl: ttl}, nil
}

func (g *CachedGateway) Query(ctx context.Context, q domain.Query) ([]domain.Row, error) {
	if q.Table != constants.TableProperties {
		return g.inner.Query(ctx, q)
	}

	key, err := g.pageKey(ctx, q)
	if err != nil {
		log.Printf("CachedGateway: Cache unavailable, reading through: %v\n", err)
		return g.inner.Query(ctx, q)
	}

	if rows, ok := g.lookup(ctx, key); ok {
		return rows, nil
	}

	rows, err := g.inner.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	g.store(ctx, key, rows)
	return rows, nil
}

func (g *CachedGateway) Insert(ctx context.Context, table string, row domain.Row) (domain.Row, error) {
	inserted, err := g.inner.Insert(ctx, table, row)
	if err != nil {
		return nil, err
	}
	g.bump(ctx)
	return inserted, nil
}

func (g *CachedGateway) Update(ctx context.Context, table, id string, patch domain.Row) error {
	if err := g.inner.Update(ctx, table, id, patch); err != nil {
		return err
	}
	g.bump(ctx)
	return nil
}

func (g *CachedGateway) Delete(ctx context.Context, table, id string) error {
	if err := g.inner.Delete(ctx, table, id); err != nil {
		return err
	}
	g.bump(ctx)
	return nil
}

func (g *CachedGateway) DeleteWhere(ctx context.Context, table string, filter domain.Filter) error {
	if err := g.inner.DeleteWhere(ctx, table, filter); err != nil {
		return err
	}
	g.bump(ctx)
	return nil
}

// Invalidate implements port.SearchCachePort.
func (g *CachedGateway) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	if err := g.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump %s: %w", versionKey, err)
	}
	return nil
}

func (g *CachedGateway) bump(ctx context.Context) {
	if err := g.Invalidate(ctx); err != nil {
		log.Printf("CachedGateway: %v\n", err)
	}
}

func (g *CachedGateway) pageKey(ctx context.Context, q domain.Query) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	version, err := g.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		version = 0
	} else if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", versionKey, err)
	}

	digest, err := queryDigest(q)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(pageKeyFmt, version, digest), nil
}

func (g *CachedGateway) lookup(ctx context.Context, key string) ([]domain.Row, bool) {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	data, err := g.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("CachedGateway: Failed to read %s: %v\n", key, err)
		}
		return nil, false
	}
	var rows []domain.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Printf("CachedGateway: Discarding undecodable entry %s: %v\n", key, err)
		return nil, false
	}
	return rows, true
}

func (g *CachedGateway) store(ctx context.Context, key string, rows []domain.Row) {
	data, err := json.Marshal(rows)
	if err != nil {
		log.Printf("CachedGateway: Failed to encode rows for %s: %v\n", key, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	if err := g.client.Set(ctx, key, data, g.ttl).Err(); err != nil {
		log.Printf("CachedGateway: Failed to write %s: %v\n", key, err)
	}
}

// queryDigest is stable for equal queries: encoding/json emits struct
// fields in declaration order.
func queryDigest(q domain.Query) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
