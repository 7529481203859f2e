// Package sqlite implements internal/storage.Store over an embedded,
// pure-Go SQLite engine (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver" // database/sql driver registration
	_ "github.com/ncruces/go-sqlite3/embed"  // embedded SQLite WASM binary
	"github.com/tetratelabs/wazero"

	"github.com/boardwire/boardwire/internal/storage"
)

// wslWindowsPathPattern matches WSL paths into Windows filesystems (/mnt/c/, /mnt/d/, ...).
var wslWindowsPathPattern = regexp.MustCompile(`^/mnt/[a-zA-Z]/`)

// wslNetworkPathPattern matches WSL2 network mounts (Docker Desktop bind mounts, etc).
var wslNetworkPathPattern = regexp.MustCompile(`^/mnt/wsl/`)

// isWSL2WindowsPath reports whether path sits on a filesystem where SQLite's
// WAL mode is unreliable: a WSL2 process talking to a Windows-side mount or
// a WSL2 network mount. WAL uses shared memory that doesn't cross the 9P
// filesystem boundary cleanly there.
func isWSL2WindowsPath(path string) bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	version := strings.ToLower(string(data))
	if !strings.Contains(version, "microsoft") && !strings.Contains(version, "wsl") {
		return false
	}
	return wslWindowsPathPattern.MatchString(path) || wslNetworkPathPattern.MatchString(path)
}

// setupWASMCache points go-sqlite3's wazero runtime at a persistent
// compilation cache under the user's cache dir, falling back to an
// in-memory cache if the directory can't be created. Avoids paying the
// ~200ms WASM compile cost on every process start.
func setupWASMCache() string {
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "boardwire", "wasm")
	}

	var cache wazero.CompilationCache
	if cacheDir != "" {
		if c, err := wazero.NewCompilationCacheWithDir(cacheDir); err == nil {
			cache = c
		}
	}
	if cache == nil {
		cache = wazero.NewCompilationCache()
		cacheDir = ""
	}

	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)
	return cacheDir
}

func init() {
	_ = setupWASMCache()
}

// Store implements storage.Store over a single *sql.DB.
type Store struct {
	db      *sql.DB
	dbPath  string
	connStr string
	closed  atomic.Bool

	projects     *projectRepo
	workItems    *workItemRepo
	sprints      *sprintRepo
	comments     *commentRepo
	timeEntries  *timeEntryRepo
	dependencies *dependencyRepo
	activityLog  *activityLogRepo
	idempotency  *idempotencyRepo
}

var _ storage.Store = (*Store)(nil)

// Open creates or opens the SQLite-backed store at path ("" or ":memory:"
// for an ephemeral database) with a 30s busy timeout.
func Open(ctx context.Context, path string) (*Store, error) {
	return OpenWithTimeout(ctx, path, 30*time.Second)
}

// OpenWithTimeout is Open with a configurable busy_timeout.
func OpenWithTimeout(ctx context.Context, path string, busyTimeout time.Duration) (*Store, error) {
	timeoutMs := int64(busyTimeout / time.Millisecond)

	var connStr string
	isInMemory := path == "" || path == ":memory:"
	if isInMemory {
		connStr = fmt.Sprintf("file:boardwiredb?mode=memory&cache=shared&_pragma=journal_mode(DELETE)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)&_time_format=sqlite", timeoutMs)
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		connStr = fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)&_time_format=sqlite", path, timeoutMs)
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if isInMemory {
		// SQLite's in-memory databases are isolated per connection; a pool
		// would make writes from one connection invisible to another.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		maxConns := runtime.NumCPU() + 1 // one writer, N readers under WAL
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)

		journalMode := "WAL"
		if isWSL2WindowsPath(path) {
			journalMode = "DELETE"
		}
		if _, err := db.Exec("PRAGMA journal_mode=" + journalMode); err != nil {
			return nil, fmt.Errorf("enable %s mode: %w", journalMode, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	absPath := path
	if !isInMemory {
		if absPath, err = filepath.Abs(path); err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}

	s := &Store{db: db, dbPath: absPath, connStr: connStr}
	s.projects = &projectRepo{}
	s.workItems = &workItemRepo{}
	s.sprints = &sprintRepo{}
	s.comments = &commentRepo{}
	s.timeEntries = &timeEntryRepo{}
	s.dependencies = &dependencyRepo{}
	s.activityLog = &activityLogRepo{}
	s.idempotency = &idempotencyRepo{}
	return s, nil
}

func (s *Store) Projects() storage.Projects         { return s.projects }
func (s *Store) WorkItems() storage.WorkItems       { return s.workItems }
func (s *Store) Sprints() storage.Sprints           { return s.sprints }
func (s *Store) Comments() storage.Comments         { return s.comments }
func (s *Store) TimeEntries() storage.TimeEntries   { return s.timeEntries }
func (s *Store) Dependencies() storage.Dependencies { return s.dependencies }
func (s *Store) ActivityLog() storage.ActivityLog   { return s.activityLog }
func (s *Store) Idempotency() storage.Idempotency   { return s.idempotency }

// BeginTx opens a transaction whose handle satisfies storage.Executor.
func (s *Store) BeginTx(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &txHandle{tx}, nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back if fn returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) (err error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DB exposes the underlying connection pool for components that need
// read-only access outside a repository method (e.g. health checks).
func (s *Store) DB() *sql.DB { return s.db }

// Close checkpoints the WAL and closes the connection pool.
func (s *Store) Close() error {
	s.closed.Store(true)
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// txHandle adapts *sql.Tx to storage.Tx; Commit/Rollback/ExecContext/
// QueryContext/QueryRowContext all come from the embedded *sql.Tx.
type txHandle struct {
	*sql.Tx
}
