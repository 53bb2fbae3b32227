package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/planner"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// ---- fakes ----

type insertCall struct {
	table   string
	values  []string
	columns []string
}

type selectCall struct {
	cols     ast.Projection
	tables   []ast.QueryTable
	where    ast.Where
	distinct bool
}

type fakeManager struct {
	calls []string

	tables  map[string][]*ast.Column
	inserts []insertCall
	selects []selectCall

	createTableErr error
	insertErrAt    int // 1-based insert call that fails; 0 = never
	switchErr      error
	rs             *ResultSet
}

func newFakeManager() *fakeManager {
	return &fakeManager{tables: map[string][]*ast.Column{}}
}

func (f *fakeManager) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeManager) CreateDatabase(_ context.Context, name string) error {
	f.record("createDatabase(%s)", name)
	return nil
}

func (f *fakeManager) DeleteDatabase(_ context.Context, name string) error {
	f.record("deleteDatabase(%s)", name)
	return nil
}

func (f *fakeManager) SwitchDatabase(_ context.Context, name string) error {
	f.record("switchDatabase(%s)", name)
	return f.switchErr
}

func (f *fakeManager) CreateTable(_ context.Context, name string, cols []*ast.Column) error {
	f.record("createTable(%s)", name)
	if f.createTableErr != nil {
		return f.createTableErr
	}
	f.tables[name] = cols
	return nil
}

func (f *fakeManager) DeleteTable(_ context.Context, name string, ifExists bool) error {
	f.record("deleteTable(%s,%t)", name, ifExists)
	return nil
}

func (f *fakeManager) Insert(_ context.Context, table string, values, columns []string) error {
	f.record("insert(%s)", table)
	f.inserts = append(f.inserts, insertCall{table: table, values: values, columns: columns})
	if f.insertErrAt == len(f.inserts) {
		return errors.New("duplicate key")
	}
	return nil
}

func (f *fakeManager) Select(_ context.Context, cols ast.Projection, tables []ast.QueryTable, where ast.Where, distinct bool) (*ResultSet, error) {
	f.record("select")
	f.selects = append(f.selects, selectCall{cols: cols, tables: tables, where: where, distinct: distinct})
	if f.rs != nil {
		return f.rs, nil
	}
	return &ResultSet{}, nil
}

func (f *fakeManager) GetSingleTable(_ context.Context, name string) (ast.QueryTable, error) {
	f.record("getSingleTable(%s)", name)
	return &ast.SingleTable{Name: name}, nil
}

func (f *fakeManager) GetJointTable(_ context.Context, names []string, on ast.Where) (ast.QueryTable, error) {
	f.record("getJointTable(%s)", strings.Join(names, ","))
	return &ast.JoinTable{Names: names, On: on}, nil
}

func run(t *testing.T, mgr *fakeManager, sql string) ([]Result, error) {
	t.Helper()
	return NewExecutor(mgr, nil).ExecSQL(context.Background(), sql)
}

// ---- database statements ----

func TestExec_DatabaseStatements(t *testing.T) {
	mgr := newFakeManager()
	res, err := run(t, mgr, "CREATE DATABASE MyDB; USE MyDB; DROP DATABASE MyDB;")
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, "Created database 'MyDB'", res[0].Message)
	assert.Equal(t, "Switched to database 'MyDB'", res[1].Message)
	assert.Equal(t, "Dropped database 'MyDB'", res[2].Message)
	assert.Equal(t, []string{
		"createDatabase(mydb)",
		"switchDatabase(mydb)",
		"deleteDatabase(mydb)",
	}, mgr.calls)
}

// ---- CREATE TABLE ----

func TestExec_CreateTable(t *testing.T) {
	mgr := newFakeManager()
	res, err := run(t, mgr, "CREATE TABLE Person (ID INT PRIMARY KEY, Name STRING(10));")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Created table Person.", res[0].Message)

	cols := mgr.tables["person"]
	require.Len(t, cols, 2)
	assert.Equal(t, &ast.Column{Name: "id", Type: ast.TypeInt, Primary: 1, NotNull: true, MaxLength: -1}, cols[0])
	assert.Equal(t, &ast.Column{Name: "name", Type: ast.TypeString, Primary: 0, NotNull: false, MaxLength: 10}, cols[1])
}

func TestExec_CreateTable_ManagerFailureIsContained(t *testing.T) {
	mgr := newFakeManager()
	mgr.createTableErr = errors.New("table person already exists")

	res, err := run(t, mgr, "CREATE TABLE person (id INT); USE db;")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "table person already exists", res[0].Message)
	assert.Equal(t, "Switched to database 'db'", res[1].Message)
}

func TestExec_CreateTable_ColumnNotFoundPropagates(t *testing.T) {
	mgr := newFakeManager()
	res, err := run(t, mgr, "USE db; CREATE TABLE t (a INT, PRIMARY KEY (b)); USE other;")
	require.Error(t, err)
	require.ErrorIs(t, err, planner.ErrColumnNotFound)

	var se *StatementError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)

	// first statement completed, the failing CREATE TABLE never reached the manager
	require.Len(t, res, 1)
	assert.Equal(t, []string{"switchDatabase(db)"}, mgr.calls)
}

// ---- DROP TABLE ----

func TestExec_DropTable(t *testing.T) {
	mgr := newFakeManager()
	res, err := run(t, mgr, "DROP TABLE Person; DROP TABLE IF EXISTS Ghost;")
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "Dropped table 'Person'", res[0].Message)
	assert.Equal(t, "Dropped table 'Ghost'", res[1].Message)
	assert.Equal(t, []string{"deleteTable(person,false)", "deleteTable(ghost,true)"}, mgr.calls)
}

// ---- INSERT ----

func TestExec_Insert_OneCallPerRow(t *testing.T) {
	mgr := newFakeManager()
	res, err := run(t, mgr, "INSERT INTO T VALUES (1,'x'), (2,'y');")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Inserted 2 rows.", res[0].Message)

	require.Len(t, mgr.inserts, 2)
	assert.Equal(t, insertCall{table: "t", values: []string{"1", "'x'"}}, mgr.inserts[0])
	assert.Equal(t, insertCall{table: "t", values: []string{"2", "'y'"}}, mgr.inserts[1])
}

func TestExec_Insert_ColumnList(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "INSERT INTO t (A, b) VALUES (1, NULL);")
	require.NoError(t, err)

	require.Len(t, mgr.inserts, 1)
	assert.Equal(t, []string{"a", "b"}, mgr.inserts[0].columns)
	assert.Equal(t, []string{"1", "NULL"}, mgr.inserts[0].values)
}

func TestExec_Insert_RawValuesAsWritten(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "INSERT INTO t VALUES (null, - 5, 1.50, 'A b');")
	require.NoError(t, err)

	require.Len(t, mgr.inserts, 1)
	assert.Equal(t, []string{"null", "- 5", "1.50", "'A b'"}, mgr.inserts[0].values)
}

func TestExec_Insert_NoRollback(t *testing.T) {
	mgr := newFakeManager()
	mgr.insertErrAt = 2

	res, err := run(t, mgr, "INSERT INTO t VALUES (1), (2), (3); USE db;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.Empty(t, res)

	// row 1 was already handed to the manager; row 3 and USE never ran
	require.Len(t, mgr.inserts, 2)
	assert.Equal(t, []string{"insert(t)", "insert(t)"}, mgr.calls)
}

// ---- SELECT ----

func TestExec_Select_Star(t *testing.T) {
	mgr := newFakeManager()
	mgr.rs = &ResultSet{Columns: []string{"a"}, Rows: [][]any{{int64(1)}}}

	res, err := run(t, mgr, "SELECT * FROM T;")
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Same(t, mgr.rs, res[0].ResultSet)
	assert.Empty(t, res[0].Message)

	require.Len(t, mgr.selects, 1)
	call := mgr.selects[0]
	assert.True(t, call.cols.All())
	assert.Nil(t, call.cols.Names())
	assert.Nil(t, call.where)
	assert.False(t, call.distinct)
	assert.Equal(t, []ast.QueryTable{&ast.SingleTable{Name: "t"}}, call.tables)
}

func TestExec_Select_StarAnywhereCollapses(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "SELECT a, *, b FROM t;")
	require.NoError(t, err)
	assert.True(t, mgr.selects[0].cols.All())
}

func TestExec_Select_ExplicitColumns(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "SELECT DISTINCT T.A, b FROM t WHERE a = 1 AND b <> 'x';")
	require.NoError(t, err)

	call := mgr.selects[0]
	assert.False(t, call.cols.All())
	assert.Equal(t, []string{"t.a", "b"}, call.cols.Names())
	assert.True(t, call.distinct)
	require.NotNil(t, call.where)
	assert.Equal(t, "(a = 1 AND b <> 'x')", call.where.String())
}

func TestExec_Select_SingleColumnIsNotStar(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "SELECT a FROM t;")
	require.NoError(t, err)

	call := mgr.selects[0]
	assert.False(t, call.cols.All())
	assert.Equal(t, []string{"a"}, call.cols.Names())
}

func TestExec_Select_Join(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "SELECT * FROM Person JOIN Address ON person.id = address.pid, extra;")
	require.NoError(t, err)

	call := mgr.selects[0]
	require.Len(t, call.tables, 2)

	jt, ok := call.tables[0].(*ast.JoinTable)
	require.True(t, ok)
	assert.Equal(t, []string{"person", "address"}, jt.Names)
	require.NotNil(t, jt.On)
	assert.Equal(t, "person.id = address.pid", jt.On.String())

	assert.Equal(t, &ast.SingleTable{Name: "extra"}, call.tables[1])
	assert.Equal(t, []string{
		"getJointTable(person,address)",
		"getSingleTable(extra)",
		"select",
	}, mgr.calls)
}

// ---- failure propagation ----

func TestExec_ManagerFailureStopsBatch(t *testing.T) {
	mgr := newFakeManager()
	mgr.switchErr = errors.New("database nope does not exist")

	res, err := run(t, mgr, "CREATE DATABASE a; USE nope; CREATE DATABASE b;")
	require.Error(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Created database 'a'", res[0].Message)
	assert.Equal(t, []string{"createDatabase(a)", "switchDatabase(nope)"}, mgr.calls)
	assert.Contains(t, err.Error(), "statement 2")
}

func TestExec_ParseErrorIssuesNothing(t *testing.T) {
	mgr := newFakeManager()
	_, err := run(t, mgr, "CREATE DATABASE a; SELEKT 1;")
	require.Error(t, err)
	assert.Empty(t, mgr.calls)
}

func TestExecute_NilList(t *testing.T) {
	res, err := NewExecutor(newFakeManager(), nil).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolveTableQuery_Malformed(t *testing.T) {
	e := NewExecutor(newFakeManager(), nil)
	ctx := context.Background()

	_, err := e.resolveTableQuery(ctx, &syntax.TableQuery{})
	require.ErrorIs(t, err, planner.ErrMalformedInput)

	_, err = e.resolveTableQuery(ctx, &syntax.TableQuery{Tables: []string{"a", "b"}})
	require.ErrorIs(t, err, planner.ErrMalformedInput)

	_, err = e.resolveTableQuery(ctx, &syntax.TableQuery{Tables: []string{"a", "b"}, Join: true})
	require.ErrorIs(t, err, planner.ErrMalformedInput)
}
