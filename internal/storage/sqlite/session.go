package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/executor"
)

var _ executor.Manager = (*Session)(nil)

// Session is one client's view of a Store: the store's databases plus the
// database chosen by USE. A Session is not safe for concurrent use.
type Session struct {
	store   *Store
	current string
	log     *slog.Logger
}

// Current returns the selected database name, "" when none is selected.
func (s *Session) Current() string { return s.current }

func (s *Session) CreateDatabase(ctx context.Context, name string) error {
	return s.store.create(ctx, name)
}

func (s *Session) DeleteDatabase(_ context.Context, name string) error {
	if err := s.store.drop(name); err != nil {
		return err
	}
	if s.current == name {
		s.current = ""
	}
	return nil
}

func (s *Session) SwitchDatabase(ctx context.Context, name string) error {
	if _, err := s.store.get(ctx, name); err != nil {
		return err
	}
	s.current = name
	return nil
}

func (s *Session) db(ctx context.Context) (*sql.DB, error) {
	if s.current == "" {
		return nil, ErrNoDatabase
	}
	return s.store.get(ctx, s.current)
}

func (s *Session) exec(ctx context.Context, db *sql.DB, query string, args ...any) error {
	s.log.Debug("sqlite: exec", "db", s.current, "sql", query, "args", len(args))
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup table %s: %w", name, err)
	}
	return n > 0, nil
}

func (s *Session) requireTable(ctx context.Context, db *sql.DB, name string) error {
	ok, err := tableExists(ctx, db, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return nil
}

func (s *Session) CreateTable(ctx context.Context, name string, cols []*ast.Column) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	ok, err := tableExists(ctx, db, name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrTableExists, name)
	}

	ddl, err := createTableSQL(name, cols)
	if err != nil {
		return err
	}
	return s.exec(ctx, db, ddl)
}

func (s *Session) DeleteTable(ctx context.Context, name string, ifExists bool) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if !ifExists {
		if err := s.requireTable(ctx, db, name); err != nil {
			return err
		}
	}
	return s.exec(ctx, db, "DROP TABLE IF EXISTS "+quoteIdent(name))
}

func (s *Session) Insert(ctx context.Context, table string, values []string, columns []string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if err := s.requireTable(ctx, db, table); err != nil {
		return err
	}

	query, args, err := insertSQL(table, values, columns)
	if err != nil {
		return err
	}
	return s.exec(ctx, db, query, args...)
}

func (s *Session) GetSingleTable(ctx context.Context, name string) (ast.QueryTable, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireTable(ctx, db, name); err != nil {
		return nil, err
	}
	return &ast.SingleTable{Name: name}, nil
}

func (s *Session) GetJointTable(ctx context.Context, names []string, on ast.Where) (ast.QueryTable, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("sqlite: join needs at least two tables, got %d", len(names))
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := s.requireTable(ctx, db, name); err != nil {
			return nil, err
		}
	}
	cp := make([]string, len(names))
	copy(cp, names)
	return &ast.JoinTable{Names: cp, On: on}, nil
}

func (s *Session) Select(
	ctx context.Context,
	cols ast.Projection,
	tables []ast.QueryTable,
	where ast.Where,
	distinct bool,
) (*executor.ResultSet, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := selectSQL(cols, tables, where, distinct)
	if err != nil {
		return nil, err
	}
	s.log.Debug("sqlite: query", "db", s.current, "sql", query, "args", len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanResultSet(rows)
}

func scanResultSet(rows *sql.Rows) (*executor.ResultSet, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	rs := &executor.ResultSet{Columns: names, Rows: [][]any{}}
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		for i, c := range cells {
			if b, ok := c.([]byte); ok {
				cells[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return rs, nil
}
