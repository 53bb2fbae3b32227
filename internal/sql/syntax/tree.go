// Package syntax holds the parse tree handed to the translator.
//
// Node shapes follow the SQL grammar one-to-one: a node that the grammar
// defines recursively (expression, multiple_condition) is recursive here too,
// and operator/comparator/type tokens are closed enumerations instead of text.
package syntax

// StmtList is the root of a parsed script.
type StmtList struct {
	Stmts []Stmt
}

// Stmt is implemented by every top-level statement node.
type Stmt interface {
	stmtNode()
}

// ----- database -----

type CreateDatabase struct {
	Name string
}

func (*CreateDatabase) stmtNode() {}

type DropDatabase struct {
	Name string
}

func (*DropDatabase) stmtNode() {}

type UseDatabase struct {
	Name string
}

func (*UseDatabase) stmtNode() {}

// ----- CREATE TABLE -----

type CreateTable struct {
	Name       string
	Columns    []*ColumnDef
	Constraint *TableConstraint // nil when absent
}

func (*CreateTable) stmtNode() {}

type ColumnDef struct {
	Name        string
	Type        TypeName
	Constraints []ColumnConstraint
}

// TypeName is a declared column type. Width is the numeric literal text of
// STRING(n) and empty for every other kind.
type TypeName struct {
	Kind  TypeKind
	Width string
}

// TableConstraint is PRIMARY KEY (a, b, ...).
type TableConstraint struct {
	Columns []string
}

// ----- DROP TABLE -----

type DropTable struct {
	Name     string
	IfExists bool
}

func (*DropTable) stmtNode() {}

// ----- INSERT -----

type Insert struct {
	Table   string
	Columns []string // nil when no column list was written
	Rows    []*ValueEntry
}

func (*Insert) stmtNode() {}

// ValueEntry is one parenthesized VALUES row.
type ValueEntry struct {
	Values []*Literal
}

// ----- SELECT -----

type Select struct {
	Distinct bool
	Columns  []*ResultColumn
	From     []*TableQuery
	Where    *MultipleCondition // nil when there is no WHERE
}

func (*Select) stmtNode() {}

// ResultColumn keeps the projection item as written: "*", "t.*", "t.a" or "a".
type ResultColumn struct {
	Text string
}

// TableQuery is one FROM entry. Join reports whether a JOIN keyword was present;
// when it is, On holds the join condition.
type TableQuery struct {
	Tables []string
	Join   bool
	On     *MultipleCondition
}

// ----- conditions and expressions -----

// MultipleCondition is either a leaf (Cond != nil) or a binary AND/OR node
// over Left and Right.
type MultipleCondition struct {
	Cond  *Condition
	Left  *MultipleCondition
	Right *MultipleCondition
	Logic LogicToken
}

type Condition struct {
	Left       *Expression
	Right      *Expression
	Comparator Comparator
}

// Comparator wraps the comparison token of a condition.
type Comparator struct {
	Token CompareToken
}

// Expression is one of:
//   - a leaf: Comparer != nil
//   - a pass-through (parenthesized) node: exactly one child, no operator
//   - a binary node: exactly two children and Op set
type Expression struct {
	Comparer *Comparer
	Children []*Expression
	Op       ArithToken
}

// Comparer is either a column reference (Column != "") or a literal.
type Comparer struct {
	Column  string
	Literal *Literal
}

// Literal keeps the token's source text verbatim.
type Literal struct {
	Kind LiteralKind
	Text string
}
