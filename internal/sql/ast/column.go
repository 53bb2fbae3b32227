package ast

import (
	"fmt"
	"strings"
)

type ColumnType uint8

const (
	TypeInt ColumnType = iota + 1
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeLong:
		return "LONG"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	default:
		return "?"
	}
}

// NoMaxLength is the MaxLength of every non-STRING column.
const NoMaxLength = -1

// Primary levels.
const (
	PrimaryNone      = 0
	PrimarySingle    = 1
	PrimaryComposite = 2
)

// Column describes one table column.
//
// NotNull is always true when Primary > 0; NewColumn and SetPrimary keep that.
type Column struct {
	Name      string
	Type      ColumnType
	Primary   int
	NotNull   bool
	MaxLength int
}

func NewColumn(name string, typ ColumnType, primary int, notNull bool, maxLength int) *Column {
	return &Column{
		Name:      name,
		Type:      typ,
		Primary:   primary,
		NotNull:   notNull || primary > PrimaryNone,
		MaxLength: maxLength,
	}
}

// SetPrimary back-patches the primary level from a table-level constraint.
func (c *Column) SetPrimary(level int) {
	c.Primary = level
	if level > PrimaryNone {
		c.NotNull = true
	}
}

func (c *Column) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(c.Type.String())
	if c.Type == TypeString {
		fmt.Fprintf(&b, "(%d)", c.MaxLength)
	}
	switch c.Primary {
	case PrimarySingle:
		b.WriteString(" PRIMARY KEY")
	case PrimaryComposite:
		b.WriteString(" PRIMARY KEY (composite)")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}
