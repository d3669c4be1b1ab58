package db

import (
	"database/sql"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects a backend. DSN is a postgres URL or keyword string for
// DriverPostgres and a file path (or ":memory:") for DriverSQLite.
type Config struct {
	Driver string
	DSN    string
	// RequireSSL appends sslmode=require to a postgres DSN that does not
	// specify one.
	RequireSSL bool
}

// postgresDSN applies the SSL policy to a postgres connection string.
func postgresDSN(dsn string, requireSSL bool) string {
	if !requireSSL || strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn + " sslmode=require")
}

// newSqlConnection opens a plain database/sql handle on lib/pq. Migrations run
// on it so they do not depend on gorm's pool.
func newSqlConnection(config Config) (*sql.DB, error) {
	conn, err := sql.Open("postgres", postgresDSN(config.DSN, config.RequireSSL))
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return conn, nil
}
