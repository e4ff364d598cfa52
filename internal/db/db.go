package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	embedsql "github.com/nick-dorsch/taskboard/embed/sql"
	"github.com/nick-dorsch/taskboard/pkg/models"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

type DB struct {
	*sql.DB
	dialect Dialect
	clock   *models.CreationClock
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite works best with a single writer. This also keeps a :memory:
	// database alive for the lifetime of the handle.
	db.SetMaxOpenConns(1)

	return &DB{
		DB:      db,
		dialect: DialectSQLite,
		clock:   models.NewCreationClock(),
	}, nil
}

// OpenMySQL connects to a MySQL server. The DSN is the go-sql-driver format
// (user:pass@tcp(host:3306)/dbname).
func OpenMySQL(dsn string) (*DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}

	// Report matched rows instead of changed rows so that setting a task to
	// its current status is not mistaken for a missing task.
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	return &DB{
		DB:      db,
		dialect: DialectMySQL,
		clock:   models.NewCreationClock(),
	}, nil
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Migrate executes each statement of schema in order.
func (db *DB) Migrate(ctx context.Context, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (db *DB) Init(ctx context.Context) error {
	if db.dialect == DialectMySQL {
		return db.Migrate(ctx, embedsql.MySQLSchema)
	}
	return db.Migrate(ctx, embedsql.Schema)
}
