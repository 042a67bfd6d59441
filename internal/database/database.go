package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Options selects and configures the backing database.
// PostgresURL wins over PrimaryURL, which wins over the local DBName.
type Options struct {
	DBName        string
	PrimaryURL    string
	AuthToken     string
	PostgresURL   string
	MigrationsDir string
}

// DB is a connection pool together with the dialect of its driver.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// InitDB opens the database described by opts and applies pending migrations.
// The returned teardown closes the pool.
func InitDB(opts Options) (*DB, func(), error) {
	dialect, dsn := resolve(opts)
	log.Info("Initializing database", "dialect", dialect, "target", redact(dialect, opts))

	sqlDB, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite && opts.DBName == ":memory:" {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	db := &DB{DB: sqlDB, Dialect: dialect}
	if err := Migrate(db, opts.MigrationsDir); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	teardown := func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	log.Info("Database initialized successfully", "dialect", dialect)
	return db, teardown, nil
}

// Migrate runs the goose migrations for the database's dialect.
func Migrate(db *DB, dir string) error {
	goose.SetLogger(log.Default())
	if err := goose.SetDialect(db.Dialect.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	path := filepath.Join(dir, db.Dialect.migrationsSubdir())
	if err := goose.Up(db.DB, path); err != nil {
		return fmt.Errorf("failed to apply migrations from %s: %w", path, err)
	}
	return nil
}

func resolve(opts Options) (Dialect, string) {
	switch {
	case opts.PostgresURL != "":
		return Postgres, opts.PostgresURL
	case opts.PrimaryURL != "":
		dsn := opts.PrimaryURL
		if opts.AuthToken != "" {
			dsn += "?authToken=" + opts.AuthToken
		}
		return LibSQL, dsn
	default:
		return SQLite, sqliteDSN(opts.DBName)
	}
}

// sqliteDSN opens write transactions with BEGIN IMMEDIATE so that concurrent
// writers queue on the busy timeout instead of failing at commit.
func sqliteDSN(name string) string {
	const params = "?_busy_timeout=5000&_txlock=immediate"
	if name == "" || name == ":memory:" {
		return "file::memory:" + params
	}
	return "file:" + name + params
}

func redact(d Dialect, opts Options) string {
	switch d {
	case Postgres:
		if i := strings.Index(opts.PostgresURL, "@"); i >= 0 {
			return "postgres://***" + opts.PostgresURL[i:]
		}
		return opts.PostgresURL
	case LibSQL:
		return opts.PrimaryURL
	default:
		return opts.DBName
	}
}
