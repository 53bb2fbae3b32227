package planner

import (
	"strings"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// Ident normalizes a database, table or column name. Identifiers are
// case-insensitive everywhere, so every stored and compared name goes through it.
func Ident(name string) string { return strings.ToLower(name) }

// ResolveValue turns a comparer (column reference or literal) into a Value.
func ResolveValue(c *syntax.Comparer) (*ast.Value, error) {
	if c == nil {
		return nil, malformed("nil comparer")
	}
	if c.Column != "" {
		if c.Literal != nil {
			return nil, malformed("comparer %q has both a column and a literal", c.Column)
		}
		return ast.ColumnValue(Ident(c.Column)), nil
	}
	return ResolveLiteral(c.Literal)
}

// ResolveLiteral keeps number and string text verbatim.
func ResolveLiteral(l *syntax.Literal) (*ast.Value, error) {
	if l == nil {
		return nil, malformed("nil literal")
	}
	switch l.Kind {
	case syntax.LiteralNumber:
		return ast.NumberValue(l.Text), nil
	case syntax.LiteralString:
		return ast.StringValue(l.Text), nil
	case syntax.LiteralNull:
		return ast.NullValue(), nil
	default:
		return nil, malformed("unknown literal kind %d", l.Kind)
	}
}
