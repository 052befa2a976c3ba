// Package database owns the process-wide document store handle.
//
// The connection is established lazily by the first caller that needs it
// and cached for the life of the process. A failed dial is not cached, so
// the next request tries again.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/deppfellow/portfolio-api/internal/config"
	loggerConfig "github.com/deppfellow/portfolio-api/internal/logger"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// ErrUnavailable wraps every dial failure.
var ErrUnavailable = errors.New("database connection failed")

// DatabaseDialTimeout bounds a single connection attempt, in seconds.
const DatabaseDialTimeout = 10

// Dialer opens a backend.
type Dialer func(ctx context.Context) (store.Backend, error)

// ConnectHook runs once after every successful dial.
type ConnectHook func(ctx context.Context, backend store.Backend) error

// Database is the lazily connected, cached store handle.
type Database struct {
	mu      sync.Mutex
	dialing singleflight.Group
	backend store.Backend
	dial    Dialer
	hooks   []ConnectHook
	driver  string
	log     *zerolog.Logger

	// slowOp is the duration past which a collection call is logged at
	// warn. Zero disables the check.
	slowOp time.Duration
}

// New picks the backend from configuration. It does not connect.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	var dial Dialer

	switch cfg.Database.Driver {
	case "mongo":
		dial = func(ctx context.Context) (store.Backend, error) {
			return dialMongo(ctx, cfg, logger, loggerService)
		}
	case "postgres":
		dial = func(ctx context.Context) (store.Backend, error) {
			return dialPostgres(ctx, cfg, logger, loggerService)
		}
	case "memory":
		mem := store.NewMemory()
		dial = func(context.Context) (store.Backend, error) { return mem, nil }
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	db := NewWithDialer(cfg.Database.Driver, logger, dial)
	if cfg.Observability != nil {
		db.SetSlowThreshold(cfg.Observability.Logging.SlowQueryThreshold)
	}
	return db, nil
}

// SetSlowThreshold sets the duration past which collection calls are
// logged as slow.
func (db *Database) SetSlowThreshold(d time.Duration) {
	db.slowOp = d
}

// NewWithDialer builds a handle around an arbitrary dialer.
func NewWithDialer(driver string, logger *zerolog.Logger, dial Dialer) *Database {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Database{dial: dial, driver: driver, log: logger}
}

// NewMemory returns a handle over a fresh in-memory backend.
func NewMemory(logger *zerolog.Logger) *Database {
	mem := store.NewMemory()
	return NewWithDialer("memory", logger, func(context.Context) (store.Backend, error) { return mem, nil })
}

// OnConnect registers a hook run after each successful dial. Hooks
// registered after the connection exists run immediately.
func (db *Database) OnConnect(ctx context.Context, hook ConnectHook) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.hooks = append(db.hooks, hook)
	if db.backend != nil {
		db.runHook(ctx, hook, db.backend)
	}
}

// Get returns the cached backend, dialing when there is none. Concurrent
// callers share a single in-flight dial.
func (db *Database) Get(ctx context.Context) (store.Backend, error) {
	if backend := db.cached(); backend != nil {
		return backend, nil
	}

	v, err, _ := db.dialing.Do("dial", func() (any, error) {
		if backend := db.cached(); backend != nil {
			return backend, nil
		}
		return db.connect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(store.Backend), nil
}

func (db *Database) cached() store.Backend {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.backend
}

// connect dials without holding the lock. The shared attempt is detached
// from the cancellation of whichever caller started it.
func (db *Database) connect(ctx context.Context) (store.Backend, error) {
	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DatabaseDialTimeout*time.Second)
	defer cancel()

	start := time.Now()
	backend, err := db.dial(dialCtx)
	if err != nil {
		db.log.Error().Err(err).Str("driver", db.driver).Msg("failed to connect to the database")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, hook := range db.hooks {
		db.runHook(dialCtx, hook, backend)
	}
	db.backend = backend

	db.log.Info().
		Str("driver", backend.Name()).
		Dur("duration", time.Since(start)).
		Msg("connected to the database")

	return backend, nil
}

func (db *Database) runHook(ctx context.Context, hook ConnectHook, backend store.Backend) {
	if err := hook(ctx, backend); err != nil {
		db.log.Warn().Err(err).Msg("database connect hook failed")
	}
}

// Connected reports whether a backend is cached. It never dials.
func (db *Database) Connected() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.backend != nil
}

// Status is "connected" or "disconnected".
func (db *Database) Status() string {
	if db.Connected() {
		return "connected"
	}
	return "disconnected"
}

// Driver names the configured backend.
func (db *Database) Driver() string {
	return db.driver
}

// Ping checks the cached backend. It never dials.
func (db *Database) Ping(ctx context.Context) error {
	db.mu.Lock()
	backend := db.backend
	db.mu.Unlock()

	if backend == nil {
		return ErrUnavailable
	}
	return backend.Ping(ctx)
}

// Close releases the cached backend, if any.
func (db *Database) Close(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.backend == nil {
		return nil
	}

	db.log.Info().Msg("closing database connection")
	err := db.backend.Close(ctx)
	db.backend = nil
	return err
}

// Collection returns a collection that resolves the backend on every call,
// so repositories can be built before the first connection exists.
func (db *Database) Collection(name string) store.Collection {
	return &lazyCollection{db: db, name: name}
}

type lazyCollection struct {
	db   *Database
	name string
}

func (c *lazyCollection) observe(op string, start time.Time) {
	threshold := c.db.slowOp
	if threshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		c.db.log.Warn().
			Str("collection", c.name).
			Str("operation", op).
			Dur("duration", elapsed).
			Msg("slow store operation")
	}
}

func (c *lazyCollection) resolve(ctx context.Context) (store.Collection, error) {
	backend, err := c.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	return backend.Collection(c.name), nil
}

func (c *lazyCollection) Find(ctx context.Context, filter store.Filter, sorts []store.Sort, out any) error {
	defer c.observe("find", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.Find(ctx, filter, sorts, out)
}

func (c *lazyCollection) FindOne(ctx context.Context, filter store.Filter, out any) error {
	defer c.observe("find_one", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.FindOne(ctx, filter, out)
}

func (c *lazyCollection) Insert(ctx context.Context, doc any) error {
	defer c.observe("insert", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.Insert(ctx, doc)
}

func (c *lazyCollection) Replace(ctx context.Context, filter store.Filter, doc any) error {
	defer c.observe("replace", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.Replace(ctx, filter, doc)
}

func (c *lazyCollection) Upsert(ctx context.Context, filter store.Filter, doc any) error {
	defer c.observe("upsert", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.Upsert(ctx, filter, doc)
}

func (c *lazyCollection) Delete(ctx context.Context, filter store.Filter) error {
	defer c.observe("delete", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.Delete(ctx, filter)
}

func (c *lazyCollection) Count(ctx context.Context, filter store.Filter) (int64, error) {
	defer c.observe("count", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return 0, err
	}
	return coll.Count(ctx, filter)
}

func (c *lazyCollection) EnsureUnique(ctx context.Context, field string) error {
	defer c.observe("ensure_unique", time.Now())

	coll, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	return coll.EnsureUnique(ctx, field)
}
