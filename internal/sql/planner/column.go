package planner

import (
	"strconv"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// ResolveColumn builds one column from its declaration. Name is lower-cased;
// a PRIMARY KEY constraint makes the column level-1 primary and NOT NULL.
func ResolveColumn(def *syntax.ColumnDef) (*ast.Column, error) {
	if def == nil {
		return nil, malformed("nil column definition")
	}

	primary := ast.PrimaryNone
	notNull := false
	for _, c := range def.Constraints {
		switch c {
		case syntax.ConstraintPrimaryKey:
			primary = ast.PrimarySingle
		case syntax.ConstraintNotNull:
			notNull = true
		default:
			return nil, malformed("unknown column constraint %d on %q", c, def.Name)
		}
		notNull = notNull || primary > ast.PrimaryNone
	}

	typ, maxLength, err := resolveType(def.Type)
	if err != nil {
		return nil, err
	}
	return ast.NewColumn(Ident(def.Name), typ, primary, notNull, maxLength), nil
}

func resolveType(t syntax.TypeName) (ast.ColumnType, int, error) {
	switch t.Kind {
	case syntax.TypeInt:
		return ast.TypeInt, ast.NoMaxLength, nil
	case syntax.TypeLong:
		return ast.TypeLong, ast.NoMaxLength, nil
	case syntax.TypeFloat:
		return ast.TypeFloat, ast.NoMaxLength, nil
	case syntax.TypeDouble:
		return ast.TypeDouble, ast.NoMaxLength, nil
	case syntax.TypeString:
		n, err := strconv.Atoi(t.Width)
		if err != nil || n <= 0 {
			return 0, 0, malformed("STRING width %q is not a positive integer", t.Width)
		}
		return ast.TypeString, n, nil
	default:
		return 0, 0, malformed("unknown column type %d", t.Kind)
	}
}

// ResolveColumns resolves every column declaration of a CREATE TABLE, then
// applies the table-level primary key (if any). On error no columns are returned.
func ResolveColumns(defs []*syntax.ColumnDef, constraint *syntax.TableConstraint) ([]*ast.Column, error) {
	cols := make([]*ast.Column, 0, len(defs))
	for _, def := range defs {
		col, err := ResolveColumn(def)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	if constraint != nil {
		if err := ApplyPrimaryKey(cols, constraint.Columns); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// ApplyPrimaryKey back-patches a PRIMARY KEY (names...) table constraint.
//
// One name marks that column level 1; two or more mark every named column
// level 2. Every name is checked before any column is touched, so a
// *ColumnNotFoundError leaves cols unchanged.
func ApplyPrimaryKey(cols []*ast.Column, names []string) error {
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = Ident(name)
		if findColumn(cols, keys[i]) < 0 {
			return &ColumnNotFoundError{Name: keys[i]}
		}
	}

	level := ast.PrimarySingle
	if len(keys) > 1 {
		level = ast.PrimaryComposite
	}
	for _, key := range keys {
		for _, col := range cols {
			if Ident(col.Name) == key {
				col.SetPrimary(level)
			}
		}
	}
	return nil
}

func findColumn(cols []*ast.Column, name string) int {
	for i, col := range cols {
		if Ident(col.Name) == name {
			return i
		}
	}
	return -1
}
