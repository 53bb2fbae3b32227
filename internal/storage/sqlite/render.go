package sqlite

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumn quotes each part of a possibly qualified name: t.a -> "t"."a",
// t.* -> "t".*.
func quoteColumn(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func sqlType(c *ast.Column) (string, error) {
	switch c.Type {
	case ast.TypeInt, ast.TypeLong:
		return "INTEGER", nil
	case ast.TypeFloat, ast.TypeDouble:
		return "REAL", nil
	case ast.TypeString:
		return fmt.Sprintf("VARCHAR(%d)", c.MaxLength), nil
	default:
		return "", fmt.Errorf("sqlite: unsupported column type %v", c.Type)
	}
}

// createTableSQL renders the DDL for a column set. Every column with a
// primary level > 0 goes into one PRIMARY KEY clause, in declaration order.
func createTableSQL(name string, cols []*ast.Column) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("sqlite: table %s has no columns", name)
	}

	var (
		defs []string
		keys []string
	)
	for _, c := range cols {
		typ, err := sqlType(c)
		if err != nil {
			return "", err
		}
		def := quoteIdent(c.Name) + " " + typ
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.Type == ast.TypeString {
			def += fmt.Sprintf(" CHECK (length(%s) <= %d)", quoteIdent(c.Name), c.MaxLength)
		}
		defs = append(defs, def)
		if c.Primary > ast.PrimaryNone {
			keys = append(keys, quoteIdent(c.Name))
		}
	}
	if len(keys) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", ")), nil
}

// literalArg converts raw literal text ("12", "1.5e3", "'it''s'", "null")
// into a driver argument.
func literalArg(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(raw, "null"):
		return nil, nil
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		return unquote(raw), nil
	default:
		return numberArg(raw)
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, "''", "'")
}

// numberArg parses number text; a sign may be separated from its digits
// ("- 5").
func numberArg(text string) (any, error) {
	if rest, ok := strings.CutPrefix(text, "-"); ok {
		text = "-" + strings.TrimLeftFunc(rest, unicode.IsSpace)
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("sqlite: unsupported literal %q", text)
}

func insertSQL(table string, values []string, columns []string) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("sqlite: insert into %s without values", table)
	}

	args := make([]any, len(values))
	marks := make([]string, len(values))
	for i, v := range values {
		a, err := literalArg(v)
		if err != nil {
			return "", nil, err
		}
		args[i] = a
		marks[i] = "?"
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(table))
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = quoteIdent(c)
		}
		b.WriteString(" (" + strings.Join(quoted, ", ") + ")")
	}
	b.WriteString(" VALUES (" + strings.Join(marks, ", ") + ")")
	return b.String(), args, nil
}

// renderer writes ast trees as SQL, collecting literal operands as bound args.
type renderer struct {
	b    strings.Builder
	args []any
}

func (r *renderer) expr(e ast.Expr) error {
	switch x := e.(type) {
	case *ast.Value:
		return r.value(x)
	case *ast.BinaryExpr:
		r.b.WriteByte('(')
		if err := r.expr(x.Left); err != nil {
			return err
		}
		r.b.WriteString(" " + x.Op.String() + " ")
		if err := r.expr(x.Right); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	default:
		return fmt.Errorf("sqlite: unsupported expression %T", e)
	}
}

func (r *renderer) value(v *ast.Value) error {
	switch v.Kind {
	case ast.ValueColumn:
		r.b.WriteString(quoteColumn(v.Text))
	case ast.ValueNull:
		r.b.WriteString("NULL")
	case ast.ValueString:
		r.b.WriteByte('?')
		r.args = append(r.args, unquote(v.Text))
	case ast.ValueNumber:
		n, err := numberArg(v.Text)
		if err != nil {
			return err
		}
		r.b.WriteByte('?')
		r.args = append(r.args, n)
	default:
		return fmt.Errorf("sqlite: unsupported value kind %v", v.Kind)
	}
	return nil
}

func (r *renderer) where(w ast.Where) error {
	switch x := w.(type) {
	case *ast.CondWhere:
		c := x.Cond
		r.b.WriteByte('(')
		if err := r.expr(c.Left); err != nil {
			return err
		}
		r.b.WriteString(" " + c.Op.String() + " ")
		if err := r.expr(c.Right); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	case *ast.LogicWhere:
		r.b.WriteByte('(')
		if err := r.where(x.Left); err != nil {
			return err
		}
		r.b.WriteString(" " + x.Op.String() + " ")
		if err := r.where(x.Right); err != nil {
			return err
		}
		r.b.WriteByte(')')
		return nil
	default:
		return fmt.Errorf("sqlite: unsupported predicate %T", w)
	}
}

func (r *renderer) table(t ast.QueryTable) error {
	switch x := t.(type) {
	case *ast.SingleTable:
		r.b.WriteString(quoteIdent(x.Name))
		return nil
	case *ast.JoinTable:
		for i, name := range x.Names {
			if i > 0 {
				r.b.WriteString(" JOIN ")
			}
			r.b.WriteString(quoteIdent(name))
		}
		if x.On != nil {
			r.b.WriteString(" ON ")
			return r.where(x.On)
		}
		return nil
	default:
		return fmt.Errorf("sqlite: unsupported table %T", t)
	}
}

func selectSQL(cols ast.Projection, tables []ast.QueryTable, where ast.Where, distinct bool) (string, []any, error) {
	if len(tables) == 0 {
		return "", nil, fmt.Errorf("sqlite: select without tables")
	}

	r := &renderer{}
	r.b.WriteString("SELECT ")
	if distinct {
		r.b.WriteString("DISTINCT ")
	}
	if cols.All() {
		r.b.WriteByte('*')
	} else {
		names := cols.Names()
		for i, n := range names {
			if i > 0 {
				r.b.WriteString(", ")
			}
			r.b.WriteString(quoteColumn(n))
		}
	}

	r.b.WriteString(" FROM ")
	for i, t := range tables {
		if i > 0 {
			r.b.WriteString(", ")
		}
		if err := r.table(t); err != nil {
			return "", nil, err
		}
	}

	if where != nil {
		r.b.WriteString(" WHERE ")
		if err := r.where(where); err != nil {
			return "", nil, err
		}
	}
	return r.b.String(), r.args, nil
}
