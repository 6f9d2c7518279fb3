// Package database opens the SQL databases backing the notes cache.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/at-ishikawa/tubenotes/internal/config"
)

// Pool bounds the connections of an opened database. Zero fields keep the driver defaults.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

func (pool Pool) apply(db *sqlx.DB) {
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxLifetime)
	}
}

// MySQLDSN formats the go-sql-driver DSN for cfg.
func MySQLDSN(cfg config.DatabaseConfig) string {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = cfg.Username
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mysqlCfg.DBName = cfg.Database
	if cfg.TLS {
		mysqlCfg.TLSConfig = "true"
	}
	if len(cfg.Params) > 0 {
		mysqlCfg.Params = cfg.Params
	}
	return mysqlCfg.FormatDSN()
}

// OpenMySQL opens a MySQL connection pool. The server is not contacted until first use.
func OpenMySQL(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open(mysql) > %w", err)
	}
	Pool{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
	}.apply(db)
	return db, nil
}

// OpenSQLite opens a single-connection SQLite database at path, creating its directory.
func OpenSQLite(path string) (*sqlx.DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("missing sqlite path")
	}
	p = filepath.Clean(p)
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(p), err)
	}

	db, err := sqlx.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open(sqlite) > %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY
	Pool{MaxOpen: 1, MaxIdle: 1}.apply(db)
	return db, nil
}

// RunInTx commits when fn succeeds and rolls back otherwise.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction > %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback transaction > %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction > %w", err)
	}
	return nil
}
