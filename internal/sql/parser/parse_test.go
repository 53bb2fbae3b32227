package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

func parseOne(t *testing.T, sql string) syntax.Stmt {
	t.Helper()
	list, err := Parse(sql)
	require.NoError(t, err)
	require.Len(t, list.Stmts, 1)
	return list.Stmts[0]
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty statement")

	_, err = Parse(";;")
	require.Error(t, err)
}

func TestParse_StatementList(t *testing.T) {
	list, err := Parse("CREATE DATABASE a;; USE a; DROP DATABASE a")
	require.NoError(t, err)
	require.Len(t, list.Stmts, 3)

	assert.IsType(t, &syntax.CreateDatabase{}, list.Stmts[0])
	assert.IsType(t, &syntax.UseDatabase{}, list.Stmts[1])
	assert.IsType(t, &syntax.DropDatabase{}, list.Stmts[2])
}

func TestParse_MissingSeparator(t *testing.T) {
	_, err := Parse("USE a USE b;")
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Line)
	assert.Equal(t, 7, se.Col)
}

func TestParse_Database(t *testing.T) {
	s, ok := parseOne(t, "create database TestDB;").(*syntax.CreateDatabase)
	require.True(t, ok)
	assert.Equal(t, "TestDB", s.Name)

	d, ok := parseOne(t, "DROP DATABASE testdb;").(*syntax.DropDatabase)
	require.True(t, ok)
	assert.Equal(t, "testdb", d.Name)

	u, ok := parseOne(t, "USE testdb;").(*syntax.UseDatabase)
	require.True(t, ok)
	assert.Equal(t, "testdb", u.Name)
}

func TestParse_UseDatabase_InvalidIdent(t *testing.T) {
	_, err := Parse("USE 123abc;")
	require.Error(t, err)
}

func TestParse_CreateTable(t *testing.T) {
	stmt := parseOne(t, "CREATE TABLE Person (ID INT PRIMARY KEY, name STRING(32) NOT NULL, score DOUBLE);")
	s, ok := stmt.(*syntax.CreateTable)
	require.True(t, ok, "want *CreateTable, got %T", stmt)

	assert.Equal(t, "Person", s.Name)
	require.Len(t, s.Columns, 3)
	assert.Nil(t, s.Constraint)

	assert.Equal(t, &syntax.ColumnDef{
		Name:        "ID",
		Type:        syntax.TypeName{Kind: syntax.TypeInt},
		Constraints: []syntax.ColumnConstraint{syntax.ConstraintPrimaryKey},
	}, s.Columns[0])
	assert.Equal(t, &syntax.ColumnDef{
		Name:        "name",
		Type:        syntax.TypeName{Kind: syntax.TypeString, Width: "32"},
		Constraints: []syntax.ColumnConstraint{syntax.ConstraintNotNull},
	}, s.Columns[1])
	assert.Equal(t, syntax.TypeDouble, s.Columns[2].Type.Kind)
	assert.Empty(t, s.Columns[2].Constraints)
}

func TestParse_CreateTable_TableConstraint(t *testing.T) {
	s := parseOne(t, "CREATE TABLE t (a INT, b LONG, c FLOAT, PRIMARY KEY (a, B));").(*syntax.CreateTable)
	require.Len(t, s.Columns, 3)
	require.NotNil(t, s.Constraint)
	assert.Equal(t, []string{"a", "B"}, s.Constraint.Columns)
}

func TestParse_CreateTable_Invalid(t *testing.T) {
	for _, sql := range []string{
		"CREATE TABLE users id INT;",
		"CREATE TABLE users ();",
		"CREATE TABLE users (1id INT);",
		"CREATE TABLE users (name STRING);",
		"CREATE TABLE users (name TEXT);",
		"CREATE TABLE users (PRIMARY KEY (a));",
		"CREATE TABLE users (a INT, PRIMARY KEY (a), b INT);",
	} {
		_, err := Parse(sql)
		assert.Error(t, err, sql)
	}
}

func TestParse_DropTable(t *testing.T) {
	s := parseOne(t, "DROP TABLE users;").(*syntax.DropTable)
	assert.Equal(t, "users", s.Name)
	assert.False(t, s.IfExists)

	s = parseOne(t, "drop table if exists Users;").(*syntax.DropTable)
	assert.Equal(t, "Users", s.Name)
	assert.True(t, s.IfExists)
}

func TestParse_Insert(t *testing.T) {
	s := parseOne(t, "INSERT INTO users VALUES (1, 'a,b', NULL, -2.5e3), (2, 'it''s', null, .5);").(*syntax.Insert)

	assert.Equal(t, "users", s.Table)
	assert.Nil(t, s.Columns)
	require.Len(t, s.Rows, 2)

	assert.Equal(t, []*syntax.Literal{
		{Kind: syntax.LiteralNumber, Text: "1"},
		{Kind: syntax.LiteralString, Text: "'a,b'"},
		{Kind: syntax.LiteralNull, Text: "NULL"},
		{Kind: syntax.LiteralNumber, Text: "-2.5e3"},
	}, s.Rows[0].Values)
	assert.Equal(t, "'it''s'", s.Rows[1].Values[1].Text)
	assert.Equal(t, ".5", s.Rows[1].Values[3].Text)
}

func TestParse_Insert_LiteralsKeepSourceText(t *testing.T) {
	s := parseOne(t, "insert into t values (null, - 5, 1.50, Null, -\t2);").(*syntax.Insert)
	require.Len(t, s.Rows, 1)

	assert.Equal(t, []*syntax.Literal{
		{Kind: syntax.LiteralNull, Text: "null"},
		{Kind: syntax.LiteralNumber, Text: "- 5"},
		{Kind: syntax.LiteralNumber, Text: "1.50"},
		{Kind: syntax.LiteralNull, Text: "Null"},
		{Kind: syntax.LiteralNumber, Text: "-\t2"},
	}, s.Rows[0].Values)
}

func TestParse_Insert_ColumnList(t *testing.T) {
	s := parseOne(t, "insert into users (ID, Name) values (1, 'x');").(*syntax.Insert)
	assert.Equal(t, []string{"ID", "Name"}, s.Columns)
	require.Len(t, s.Rows, 1)
}

func TestParse_Insert_Invalid(t *testing.T) {
	for _, sql := range []string{
		"INSERT INTO users ok VALUES (1);",
		"INSERT INTO users VALUES 1;",
		"INSERT INTO users VALUES ('abc);",
		"INSERT INTO users VALUES (abc);",
	} {
		_, err := Parse(sql)
		assert.Error(t, err, sql)
	}
}

func TestParse_Select_Star(t *testing.T) {
	s := parseOne(t, "SELECT * FROM users;").(*syntax.Select)
	require.Len(t, s.Columns, 1)
	assert.Equal(t, "*", s.Columns[0].Text)
	require.Len(t, s.From, 1)
	assert.Equal(t, &syntax.TableQuery{Tables: []string{"users"}}, s.From[0])
	assert.Nil(t, s.Where)
	assert.False(t, s.Distinct)
}

func TestParse_Select_ColumnsAndDistinct(t *testing.T) {
	s := parseOne(t, "SELECT DISTINCT a, T.b, t.* FROM t, u;").(*syntax.Select)
	assert.True(t, s.Distinct)
	require.Len(t, s.Columns, 3)
	assert.Equal(t, "a", s.Columns[0].Text)
	assert.Equal(t, "T.b", s.Columns[1].Text)
	assert.Equal(t, "t.*", s.Columns[2].Text)
	require.Len(t, s.From, 2)
}

func TestParse_Select_Join(t *testing.T) {
	s := parseOne(t, "SELECT * FROM a JOIN b JOIN c ON a.id = b.id AND b.id = c.id;").(*syntax.Select)
	require.Len(t, s.From, 1)

	tq := s.From[0]
	assert.True(t, tq.Join)
	assert.Equal(t, []string{"a", "b", "c"}, tq.Tables)
	require.NotNil(t, tq.On)
	assert.Equal(t, syntax.LogicAnd, tq.On.Logic)
}

func TestParse_Select_JoinRequiresOn(t *testing.T) {
	_, err := Parse("SELECT * FROM a JOIN b;")
	require.Error(t, err)
}

func TestParse_Where_AndBindsTighterThanOr(t *testing.T) {
	s := parseOne(t, "SELECT a FROM t WHERE a = 1 OR b = 2 AND c = 3;").(*syntax.Select)
	w := s.Where
	require.NotNil(t, w)

	require.Equal(t, syntax.LogicOr, w.Logic)
	require.NotNil(t, w.Left.Cond)
	require.Equal(t, syntax.LogicAnd, w.Right.Logic)
	assert.NotNil(t, w.Right.Left.Cond)
	assert.NotNil(t, w.Right.Right.Cond)
}

func TestParse_Where_LeftAssociative(t *testing.T) {
	s := parseOne(t, "SELECT a FROM t WHERE a = 1 AND b = 2 AND c = 3;").(*syntax.Select)
	w := s.Where

	require.Equal(t, syntax.LogicAnd, w.Logic)
	require.Equal(t, syntax.LogicAnd, w.Left.Logic)
	assert.NotNil(t, w.Right.Cond)
}

func TestParse_Expression_Shape(t *testing.T) {
	s := parseOne(t, "SELECT a FROM t WHERE a + b * 2 >= (c - 1) / 3;").(*syntax.Select)
	cond := s.Where.Cond
	require.NotNil(t, cond)
	assert.Equal(t, syntax.CompareGE, cond.Comparator.Token)

	// a + (b * 2)
	left := cond.Left
	require.Len(t, left.Children, 2)
	assert.Equal(t, syntax.ArithAdd, left.Op)
	assert.Equal(t, "a", left.Children[0].Comparer.Column)
	assert.Equal(t, syntax.ArithMul, left.Children[1].Op)

	// ((c - 1)) / 3 : the parenthesized part is a single-child node
	right := cond.Right
	assert.Equal(t, syntax.ArithDiv, right.Op)
	paren := right.Children[0]
	require.Len(t, paren.Children, 1)
	assert.Equal(t, syntax.ArithNone, paren.Op)
	assert.Equal(t, syntax.ArithSub, paren.Children[0].Op)
}

func TestParse_Comparators(t *testing.T) {
	cases := map[string]syntax.CompareToken{
		"=":  syntax.CompareEQ,
		"<>": syntax.CompareNE,
		"!=": syntax.CompareNE,
		">":  syntax.CompareGT,
		">=": syntax.CompareGE,
		"<=": syntax.CompareLE,
		"<":  syntax.CompareLT,
	}
	for tok, want := range cases {
		s := parseOne(t, "SELECT a FROM t WHERE a "+tok+" 1;").(*syntax.Select)
		assert.Equal(t, want, s.Where.Cond.Comparator.Token, tok)
	}
}

func TestParse_LineComment(t *testing.T) {
	list, err := Parse("-- bootstrap\nUSE db; -- trailing\n")
	require.NoError(t, err)
	require.Len(t, list.Stmts, 1)
}

func TestParse_Unsupported(t *testing.T) {
	_, err := Parse("UPDATE t SET a = 1;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported statement")
}
