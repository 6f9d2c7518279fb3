package notecache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/tubenotes/internal/config"
	"github.com/at-ishikawa/tubenotes/internal/database"
)

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

// Drivers lists the accepted values of the cache.driver setting.
var Drivers = []string{DriverMemory, DriverFile, DriverSQLite, DriverMySQL, DriverRedis}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CacheConfig, dbCfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(cfg.Directory)
	case DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("database.OpenSQLite > %w", err)
		}
		store, err := NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	case DriverMySQL:
		db, err := database.OpenMySQL(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("database.OpenMySQL > %w", err)
		}
		store, err := NewMySQLStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	case DriverRedis:
		return ConnectRedis(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
