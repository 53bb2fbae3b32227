package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/parser"
	"github.com/Chinwer/ThssDB/internal/sql/planner"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// Manager is the storage/query manager the executor drives. Every call is
// synchronous; names it receives are already lower-cased.
type Manager interface {
	CreateDatabase(ctx context.Context, name string) error
	DeleteDatabase(ctx context.Context, name string) error
	SwitchDatabase(ctx context.Context, name string) error

	CreateTable(ctx context.Context, name string, cols []*ast.Column) error
	DeleteTable(ctx context.Context, name string, ifExists bool) error

	// Insert adds one row. values are raw literal texts; columns is nil when
	// the statement had no column list.
	Insert(ctx context.Context, table string, values []string, columns []string) error

	Select(ctx context.Context, cols ast.Projection, tables []ast.QueryTable, where ast.Where, distinct bool) (*ResultSet, error)

	GetSingleTable(ctx context.Context, name string) (ast.QueryTable, error)
	GetJointTable(ctx context.Context, names []string, on ast.Where) (ast.QueryTable, error)
}

// StatementError is returned when a statement fails and the rest of the
// batch is abandoned.
type StatementError struct {
	Index int
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("executor: statement %d: %v", e.Index+1, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Executor translates statements and issues them to a Manager, one statement
// at a time and in order.
type Executor struct {
	mgr Manager
	log *slog.Logger
}

// NewExecutor returns an Executor over mgr. A nil logger means slog.Default().
func NewExecutor(mgr Manager, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{mgr: mgr, log: logger}
}

// ExecSQL is the top-level entry: SQL script -> one Result per statement.
func (e *Executor) ExecSQL(ctx context.Context, sql string) ([]Result, error) {
	list, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, list)
}

// Execute runs every statement of list in source order.
//
// CREATE TABLE failures reported by the manager become that statement's
// message. Any other failure stops the batch: the results of the statements
// already completed are returned along with a *StatementError.
//
// INSERT issues one manager call per row, so rows inserted before a failing
// row stay inserted.
func (e *Executor) Execute(ctx context.Context, list *syntax.StmtList) ([]Result, error) {
	if list == nil {
		return nil, nil
	}

	results := make([]Result, 0, len(list.Stmts))
	for i, stmt := range list.Stmts {
		e.log.Debug("executor: statement", "index", i, "type", fmt.Sprintf("%T", stmt))

		res, err := e.execStmt(ctx, stmt)
		if err != nil {
			e.log.Debug("executor: statement failed", "index", i, "err", err)
			return results, &StatementError{Index: i, Err: err}
		}
		results = append(results, *res)
	}
	return results, nil
}

func (e *Executor) execStmt(ctx context.Context, stmt syntax.Stmt) (*Result, error) {
	switch s := stmt.(type) {
	case *syntax.CreateDatabase:
		return e.execCreateDatabase(ctx, s)
	case *syntax.DropDatabase:
		return e.execDropDatabase(ctx, s)
	case *syntax.UseDatabase:
		return e.execUseDatabase(ctx, s)

	case *syntax.CreateTable:
		return e.execCreateTable(ctx, s)
	case *syntax.DropTable:
		return e.execDropTable(ctx, s)

	case *syntax.Insert:
		return e.execInsert(ctx, s)
	case *syntax.Select:
		return e.execSelect(ctx, s)

	default:
		return nil, fmt.Errorf("executor: unsupported statement type %T", stmt)
	}
}

func (e *Executor) execCreateDatabase(ctx context.Context, s *syntax.CreateDatabase) (*Result, error) {
	if err := e.mgr.CreateDatabase(ctx, planner.Ident(s.Name)); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Created database '%s'", s.Name)}, nil
}

func (e *Executor) execDropDatabase(ctx context.Context, s *syntax.DropDatabase) (*Result, error) {
	if err := e.mgr.DeleteDatabase(ctx, planner.Ident(s.Name)); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Dropped database '%s'", s.Name)}, nil
}

func (e *Executor) execUseDatabase(ctx context.Context, s *syntax.UseDatabase) (*Result, error) {
	if err := e.mgr.SwitchDatabase(ctx, planner.Ident(s.Name)); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Switched to database '%s'", s.Name)}, nil
}

func (e *Executor) execCreateTable(ctx context.Context, s *syntax.CreateTable) (*Result, error) {
	// ColumnNotFound from the primary key pass propagates; the manager is
	// never called in that case.
	cols, err := planner.ResolveColumns(s.Columns, s.Constraint)
	if err != nil {
		return nil, err
	}

	if err := e.mgr.CreateTable(ctx, planner.Ident(s.Name), cols); err != nil {
		e.log.Warn("executor: create table failed", "table", s.Name, "err", err)
		return &Result{Message: err.Error()}, nil
	}
	return &Result{Message: fmt.Sprintf("Created table %s.", s.Name)}, nil
}

func (e *Executor) execDropTable(ctx context.Context, s *syntax.DropTable) (*Result, error) {
	if err := e.mgr.DeleteTable(ctx, planner.Ident(s.Name), s.IfExists); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Dropped table '%s'", s.Name)}, nil
}

func (e *Executor) execInsert(ctx context.Context, s *syntax.Insert) (*Result, error) {
	table := planner.Ident(s.Table)

	var columns []string
	if len(s.Columns) > 0 {
		columns = make([]string, len(s.Columns))
		for i, c := range s.Columns {
			columns[i] = planner.Ident(c)
		}
	}

	for i, row := range s.Rows {
		values := make([]string, len(row.Values))
		for j, v := range row.Values {
			values[j] = v.Text
		}
		if err := e.mgr.Insert(ctx, table, values, columns); err != nil {
			return nil, fmt.Errorf("executor: insert row %d into %s: %w", i+1, table, err)
		}
	}
	return &Result{Message: fmt.Sprintf("Inserted %d rows.", len(s.Rows))}, nil
}

func (e *Executor) execSelect(ctx context.Context, s *syntax.Select) (*Result, error) {
	proj := resolveProjection(s.Columns)

	tables := make([]ast.QueryTable, 0, len(s.From))
	for _, tq := range s.From {
		qt, err := e.resolveTableQuery(ctx, tq)
		if err != nil {
			return nil, err
		}
		tables = append(tables, qt)
	}

	var where ast.Where
	if s.Where != nil {
		w, err := planner.BuildWhere(s.Where)
		if err != nil {
			return nil, err
		}
		where = w
	}

	rs, err := e.mgr.Select(ctx, proj, tables, where, s.Distinct)
	if err != nil {
		return nil, err
	}
	return &Result{ResultSet: rs}, nil
}

// resolveProjection collapses the whole list to "all columns" as soon as a
// bare "*" item is seen.
func resolveProjection(cols []*syntax.ResultColumn) ast.Projection {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		name := planner.Ident(c.Text)
		if name == "*" {
			return ast.AllColumns()
		}
		names = append(names, name)
	}
	return ast.Columns(names...)
}
