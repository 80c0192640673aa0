package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/example/loadmatch/internal/core/text"
)

// DriverName is the sqlite3 driver registered with the soundex function.
const DriverName = "sqlite3_loadmatch"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("soundex", text.Soundex, true)
		},
	})
}

var (
	db     *sql.DB
	dbPath string
	dbMu   sync.Mutex
)

// DSN builds the connection string for a database file. Transactions begin
// IMMEDIATE so a write lock is held from the first statement.
func DSN(path string, busyTimeoutMs int) string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=%d&_foreign_keys=on", path, busyTimeoutMs)
}

// DefaultPath returns ~/.loadmatch/loadmatch.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".loadmatch", "loadmatch.db"), nil
}

// Open returns the process-wide connection for path, creating the file,
// its directory and the schema on first use.
func Open(path string, busyTimeoutMs int) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if db != nil {
		if path != dbPath {
			return nil, fmt.Errorf("database already open at %s", dbPath)
		}
		return db, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open(DriverName, DSN(path, busyTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	db, dbPath = conn, path
	return db, nil
}

// Close closes the database connection
func Close() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Close()
	db, dbPath = nil, ""
	return err
}
