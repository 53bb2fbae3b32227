package ast

import "fmt"

type CompareOp uint8

const (
	OpEQ CompareOp = iota + 1
	OpNE
	OpGT
	OpGE
	OpLE
	OpLT
)

func (op CompareOp) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpNE:
		return "<>"
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	case OpLE:
		return "<="
	case OpLT:
		return "<"
	default:
		return "?"
	}
}

// Cond is a single relational comparison.
type Cond struct {
	Left  Expr
	Right Expr
	Op    CompareOp
}

func (c *Cond) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// Where is a predicate tree: a *CondWhere leaf or a *LogicWhere combinator.
// Nesting mirrors the source exactly; nothing is flattened.
type Where interface {
	fmt.Stringer
	whereNode()
}

type LogicOp uint8

const (
	OpAnd LogicOp = iota + 1
	OpOr
)

func (op LogicOp) String() string {
	switch op {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}

// CondWhere is a leaf predicate.
type CondWhere struct {
	Cond *Cond
}

func (*CondWhere) whereNode() {}

func (w *CondWhere) String() string { return w.Cond.String() }

// LogicWhere combines two predicates.
type LogicWhere struct {
	Left  Where
	Right Where
	Op    LogicOp
}

func (*LogicWhere) whereNode() {}

func (w *LogicWhere) String() string {
	return fmt.Sprintf("(%s %s %s)", w.Left, w.Op, w.Right)
}
