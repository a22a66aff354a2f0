package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const healthCheckTimeout = 5 * time.Second

// ErrConnection reports that the store could not be reached.
var ErrConnection = errors.New("database unavailable")

// Opener opens a new connection pool.
type Opener func() (*gorm.DB, error)

// Acquirer hands out a usable connection pool.
type Acquirer interface {
	Acquire(ctx context.Context) (*gorm.DB, error)
}

// Gateway owns the process-wide connection pool. The pool is opened lazily on
// first use, migrated once, and health-checked on later acquisitions; a pool
// that fails its health check is dropped and reopened.
type Gateway struct {
	open     Opener
	interval time.Duration

	connecting singleflight.Group

	mu        sync.Mutex
	db        *gorm.DB
	lastCheck time.Time
	migrated  bool
	now       func() time.Time
}

// NewGateway returns a Gateway for cfg. No connection is made until Acquire.
func NewGateway(cfg Config) *Gateway {
	return NewGatewayWithOpener(func() (*gorm.DB, error) {
		return Open(cfg)
	}, cfg.HealthCheckInterval)
}

// NewGatewayWithOpener returns a Gateway that obtains pools from open.
func NewGatewayWithOpener(open Opener, healthCheckInterval time.Duration) *Gateway {
	return &Gateway{
		open:     open,
		interval: healthCheckInterval,
		now:      time.Now,
	}
}

// Open connects to the store described by cfg and sizes the pool.
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Acquire returns the live pool bound to ctx, connecting (and migrating) if
// needed. Failures wrap ErrConnection.
//
// The mutex only guards the pool fields; dialing, migrating and health checks
// run outside it. Concurrent callers share one connection attempt and stop
// waiting for it when their own ctx is done.
func (g *Gateway) Acquire(ctx context.Context) (*gorm.DB, error) {
	if db := g.fresh(); db != nil {
		return db.WithContext(ctx), nil
	}

	result := g.connecting.DoChan("acquire", func() (interface{}, error) {
		return g.connect()
	})
	select {
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*gorm.DB).WithContext(ctx), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrConnection, ctx.Err())
	}
}

// fresh returns the pool when it passed a health check within the interval.
func (g *Gateway) fresh() *gorm.DB {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db != nil && g.now().Sub(g.lastCheck) < g.interval {
		return g.db
	}
	return nil
}

// connect health-checks the current pool, replacing it when it is gone or
// broken. Only one connect runs at a time.
func (g *Gateway) connect() (*gorm.DB, error) {
	g.mu.Lock()
	current := g.db
	g.mu.Unlock()

	if current != nil {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		err := ping(ctx, current)
		cancel()
		if err == nil {
			g.mu.Lock()
			g.lastCheck = g.now()
			g.mu.Unlock()
			return current, nil
		}
		log.Printf("Database health check failed, reconnecting: %v", err)
		g.mu.Lock()
		if g.db == current {
			g.db = nil
		}
		g.mu.Unlock()
		closeDB(current)
	}

	db, err := g.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	g.mu.Lock()
	migrated := g.migrated
	g.mu.Unlock()
	if !migrated {
		if err := Migrate(db); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
	}

	g.mu.Lock()
	g.migrated = true
	g.db = db
	g.lastCheck = g.now()
	g.mu.Unlock()
	return db, nil
}

// Ping checks that the store is reachable, connecting if needed.
func (g *Gateway) Ping(ctx context.Context) error {
	db, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := ping(ctx, db); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Close releases the pool, if any.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.db == nil {
		return nil
	}
	err := closeDB(g.db)
	g.db = nil
	return err
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
