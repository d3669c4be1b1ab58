package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type txContextKey string

const txKey txContextKey = "trx"

// DB splits reads from writes. A transaction started with WithinTransaction is
// carried in the context and used by both sides.
type DB struct {
	read   *gorm.DB
	write  *gorm.DB
	driver string
}

// New wraps existing gorm handles. Pass the same handle twice when there is no
// replica.
func New(read, write *gorm.DB, driver string) *DB {
	return &DB{read: read, write: write, driver: driver}
}

func Create(config Config, withDebug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverPostgres:
		dialector = postgres.Open(postgresDSN(config.DSN, config.RequireSSL))
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(config.DSN))
	default:
		return nil, errors.Errorf("unsupported driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", config.Driver)
	}

	if config.Driver == DriverSQLite {
		// One connection serializes writers and keeps ":memory:" a single database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if withDebug {
		db = db.Debug()
	}
	return db, nil
}

// CreateReadWrite opens a write handle and, when readConfig carries a DSN, a
// separate read handle. SQLite always shares one handle.
func CreateReadWrite(readConfig Config, writeConfig Config, withDebug bool) (*DB, error) {
	write, err := Create(writeConfig, withDebug)
	if err != nil {
		return nil, err
	}
	if writeConfig.Driver == DriverSQLite || readConfig.DSN == "" {
		return New(write, write, writeConfig.Driver), nil
	}
	read, err := Create(readConfig, withDebug)
	if err != nil {
		return nil, err
	}
	return New(read, write, writeConfig.Driver), nil
}

func (r *DB) Driver() string {
	return r.driver
}

func (r *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.write.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, txKey, tx)
		return fn(ctx)
	})
}

func (r *DB) Write(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}

	return r.write.WithContext(ctx)
}

func (r *DB) Read(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok {
		return tx
	}

	return r.read.WithContext(ctx)
}

// SQL returns the database/sql handle behind the write side.
func (r *DB) SQL() (*sql.DB, error) {
	return r.write.DB()
}

// Ping checks the write side.
func (r *DB) Ping(ctx context.Context) error {
	sqlDB, err := r.SQL()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *DB) Close() error {
	w, err := r.write.DB()
	if err != nil {
		return err
	}
	if r.read != r.write {
		if rd, err := r.read.DB(); err == nil && rd != w {
			_ = rd.Close()
		}
	}
	return w.Close()
}

// sqliteDSN turns on foreign keys and a busy timeout for file databases.
func sqliteDSN(path string) string {
	if path == ":memory:" || path == "" {
		return ":memory:"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_busy_timeout=5000&_foreign_keys=on"
}
