// Package ast is the logical representation the translator builds from a
// parse tree and hands to the manager. Trees are built once and not shared.
package ast

import "fmt"

// ValueKind tags a Value.
type ValueKind uint8

const (
	ValueNumber ValueKind = iota + 1
	ValueString
	ValueNull
	ValueColumn
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "NUMBER"
	case ValueString:
		return "STRING"
	case ValueNull:
		return "NULL"
	case ValueColumn:
		return "COLUMN"
	default:
		return "?"
	}
}

// Value is a leaf operand.
//
// Text is the literal source text for numbers (no numeric parsing), the quoted
// source text for strings, the lower-cased dotted name for columns and empty for
// NULL.
type Value struct {
	Kind ValueKind
	Text string
}

func NumberValue(text string) *Value { return &Value{Kind: ValueNumber, Text: text} }
func StringValue(text string) *Value { return &Value{Kind: ValueString, Text: text} }
func NullValue() *Value              { return &Value{Kind: ValueNull} }
func ColumnValue(name string) *Value { return &Value{Kind: ValueColumn, Text: name} }

func (*Value) exprNode() {}

func (v *Value) String() string {
	if v.Kind == ValueNull {
		return "NULL"
	}
	return v.Text
}

// Expr is an arithmetic expression: a *Value leaf or a *BinaryExpr.
type Expr interface {
	fmt.Stringer
	exprNode()
}

type ArithOp uint8

const (
	OpAdd ArithOp = iota + 1
	OpSub
	OpMul
	OpDiv
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// BinaryExpr applies Op to Left and Right.
type BinaryExpr struct {
	Left  Expr
	Right Expr
	Op    ArithOp
}

func (*BinaryExpr) exprNode() {}

// String parenthesizes every binary node so the tree shape is visible.
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}
