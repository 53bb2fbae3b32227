// Package sqlite is a manager backend that keeps every logical database in
// its own SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrDatabaseExists   = errors.New("sqlite: database already exists")
	ErrDatabaseNotFound = errors.New("sqlite: database does not exist")
	ErrNoDatabase       = errors.New("sqlite: no database selected")
	ErrTableExists      = errors.New("sqlite: table already exists")
	ErrTableNotFound    = errors.New("sqlite: table does not exist")
	ErrInvalidName      = errors.New("sqlite: invalid name")
	ErrStoreClosed      = errors.New("sqlite: store is closed")
)

type Mode string

const (
	ModeFile   Mode = "file"
	ModeMemory Mode = "memory"
)

const dbFileExt = ".db"

var storeSeq atomic.Uint64

// Store owns the SQLite handles of all logical databases. It is safe for
// concurrent use; each client session talks to it through a *Session.
type Store struct {
	mode    Mode
	workdir string
	memID   string
	log     *slog.Logger

	mu     sync.Mutex
	dbs    map[string]*sql.DB
	closed bool
}

// NewStore prepares a store. In file mode workdir is created if missing and
// databases are the "<name>.db" files inside it.
func NewStore(mode Mode, workdir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch mode {
	case ModeFile:
		if workdir == "" {
			return nil, fmt.Errorf("sqlite: workdir is required in file mode")
		}
		abs, err := filepath.Abs(workdir)
		if err != nil {
			return nil, fmt.Errorf("sqlite: resolve workdir: %w", err)
		}
		workdir = abs
		if err := os.MkdirAll(workdir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create workdir: %w", err)
		}
	case ModeMemory:
	default:
		return nil, fmt.Errorf("sqlite: unknown mode %q", mode)
	}

	return &Store{
		mode:    mode,
		workdir: workdir,
		memID:   fmt.Sprintf("thssdb-%d-%d", os.Getpid(), storeSeq.Add(1)),
		log:     logger,
		dbs:     make(map[string]*sql.DB),
	}, nil
}

// Session returns a new session with no database selected.
func (s *Store) Session() *Session {
	return &Session{store: s, log: s.log}
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for name, db := range s.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sqlite: close %s: %w", name, err))
		}
	}
	s.dbs = nil
	return errors.Join(errs...)
}

// validName accepts the identifier shape the parser produces. Names end up in
// file paths, so nothing else gets through.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.workdir, name+dbFileExt)
}

func (s *Store) dsn(name string) string {
	if s.mode == ModeMemory {
		return fmt.Sprintf("file:%s-%s?mode=memory&cache=shared", s.memID, name)
	}
	// workdir is absolute; its path is escaped so '?', '#' and '%' stay
	// part of the file name
	p := filepath.ToSlash(s.path(name))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "_busy_timeout=5000"}
	return u.String()
}

// existsLocked reports whether the database is known. Callers hold s.mu.
func (s *Store) existsLocked(name string) (bool, error) {
	if _, ok := s.dbs[name]; ok {
		return true, nil
	}
	if s.mode == ModeMemory {
		return false, nil
	}
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *Store) openLocked(ctx context.Context, name string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.dsn(name))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", name, err)
	}
	// One connection per database: keeps an in-memory database alive for the
	// lifetime of the handle and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w", name, err)
	}
	s.dbs[name] = db
	return db, nil
}

func (s *Store) create(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	exists, err := s.existsLocked(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDatabaseExists, name)
	}

	if _, err := s.openLocked(ctx, name); err != nil {
		return err
	}
	s.log.Info("sqlite: database created", "name", name, "mode", s.mode)
	return nil
}

func (s *Store) drop(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	exists, err := s.existsLocked(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}

	if db, ok := s.dbs[name]; ok {
		delete(s.dbs, name)
		if err := db.Close(); err != nil {
			return fmt.Errorf("sqlite: close %s: %w", name, err)
		}
	}
	if s.mode == ModeFile {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("sqlite: remove %s: %w", name, err)
		}
		// journal may or may not be there
		_ = os.Remove(s.path(name) + "-journal")
	}
	s.log.Info("sqlite: database dropped", "name", name)
	return nil
}

// get returns the handle of an existing database, opening its file on first use.
func (s *Store) get(ctx context.Context, name string) (*sql.DB, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	if db, ok := s.dbs[name]; ok {
		return db, nil
	}
	exists, err := s.existsLocked(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}
	return s.openLocked(ctx, name)
}
