package db

import (
	"database/sql"
	"embed"
	"path"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

func dialectFor(driver string) (dialect, dir string, err error) {
	switch driver {
	case DriverPostgres:
		return "postgres", path.Join("migrations", "postgres"), nil
	case DriverSQLite:
		return "sqlite3", path.Join("migrations", "sqlite"), nil
	}
	return "", "", errors.Errorf("no migrations for driver %q", driver)
}

// Migrate runs the embedded goose migrations for driver against conn.
func Migrate(conn *sql.DB, driver string, direction Direction) error {
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.GetLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "goose dialect")
	}

	switch direction {
	case Up:
		err = goose.Up(conn, dir)
	case Down:
		err = goose.Down(conn, dir)
	case Status:
		err = goose.Status(conn, dir)
	default:
		return errors.Errorf("unknown migration direction %q", direction)
	}
	return errors.Wrapf(err, "migrate %s", direction)
}

// MigrateConfig opens a dedicated connection for config and migrates it.
// SQLite goes through the gorm handle since the driver is registered there.
func MigrateConfig(config Config, direction Direction) error {
	var (
		conn *sql.DB
		err  error
	)
	switch config.Driver {
	case DriverPostgres:
		conn, err = newSqlConnection(config)
	case DriverSQLite:
		var g *DB
		g, err = CreateReadWrite(Config{}, config, false)
		if err == nil {
			conn, err = g.SQL()
		}
	default:
		err = errors.Errorf("unsupported driver %q", config.Driver)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	return Migrate(conn, config.Driver, direction)
}

// MigrateUp brings r to the latest schema. The binaries call it on startup.
func (r *DB) MigrateUp() error {
	conn, err := r.SQL()
	if err != nil {
		return err
	}
	return Migrate(conn, r.driver, Up)
}
