package dbrouter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/metrics"
)

// ClientFactory constructs a data client for one rendered DSN. Swapped for a
// stub in tests.
type ClientFactory func(ctx context.Context, dsn string) (*pgxpool.Pool, error)

// DefaultFactory dials the tenant database and verifies it is reachable
// before the client is handed to anyone.
func DefaultFactory(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Router hands out per-tenant database clients. The cache key is the
// rendered DSN, the durable routing fact, not the tenant id. Entries live
// for the life of the process; the only eviction path is an explicit
// administrative Invalidate. Construction is single-flight per key so
// concurrent first requests for one tenant build one client, while first
// requests for different tenants proceed in parallel.
type Router struct {
	dsnTemplate string
	factory     ClientFactory
	logger      *zap.Logger
	m           *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*pgxpool.Pool
	group   singleflight.Group
}

// New builds a router. dsnTemplate must contain the "{db}" placeholder that
// gets replaced by a tenant's database name.
func New(dsnTemplate string, factory ClientFactory, logger *zap.Logger, m *metrics.Metrics) *Router {
	return &Router{
		dsnTemplate: dsnTemplate,
		factory:     factory,
		logger:      logger,
		m:           m,
		clients:     make(map[string]*pgxpool.Pool),
	}
}

// DSN renders the connection descriptor for a tenant database name.
func (r *Router) DSN(dbName string) string {
	return strings.ReplaceAll(r.dsnTemplate, "{db}", dbName)
}

// Client returns the live client for the tenant's database, constructing it
// on first access. Construction failures surface as ErrTenantUnavailable and
// cache nothing: the next request attempts construction again.
func (r *Router) Client(ctx context.Context, tenant *domain.Tenant) (*pgxpool.Pool, error) {
	dsn := r.DSN(tenant.DBName)

	r.mu.RLock()
	pool, ok := r.clients[dsn]
	r.mu.RUnlock()
	if ok {
		return pool, nil
	}

	v, err, _ := r.group.Do(dsn, func() (any, error) {
		// A previous flight may have installed the entry between our miss
		// and this call.
		r.mu.RLock()
		pool, ok := r.clients[dsn]
		r.mu.RUnlock()
		if ok {
			return pool, nil
		}

		pool, buildErr := r.factory(ctx, dsn)
		r.m.ObserveClientBuild(buildErr)
		if buildErr != nil {
			return nil, fmt.Errorf("%w: db %s: %v", domain.ErrTenantUnavailable, tenant.DBName, buildErr)
		}

		r.mu.Lock()
		r.clients[dsn] = pool
		r.mu.Unlock()

		r.logger.Info("tenant client constructed", zap.String("db", tenant.DBName))
		return pool, nil
	})
	if err != nil {
		// Drop the failed flight so the next caller retries instead of
		// observing a cached error.
		r.group.Forget(dsn)
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// Invalidate closes and evicts the client for a database name. Used when a
// tenant's database moved to a new descriptor. No-op for unknown names.
func (r *Router) Invalidate(dbName string) {
	dsn := r.DSN(dbName)

	r.mu.Lock()
	pool, ok := r.clients[dsn]
	delete(r.clients, dsn)
	r.mu.Unlock()

	r.group.Forget(dsn)
	if ok {
		pool.Close()
		r.logger.Info("tenant client evicted", zap.String("db", dbName))
	}
}

// Len reports the number of cached clients.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close drains every cached client. Called on shutdown.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for dsn, pool := range r.clients {
		pool.Close()
		delete(r.clients, dsn)
	}
}
