package planner

import (
	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// ResolveComparator maps a comparator token to its operator. No match is a
// parser defect and reported as ErrMalformedInput.
func ResolveComparator(c syntax.Comparator) (ast.CompareOp, error) {
	switch c.Token {
	case syntax.CompareEQ:
		return ast.OpEQ, nil
	case syntax.CompareNE:
		return ast.OpNE, nil
	case syntax.CompareGT:
		return ast.OpGT, nil
	case syntax.CompareGE:
		return ast.OpGE, nil
	case syntax.CompareLE:
		return ast.OpLE, nil
	case syntax.CompareLT:
		return ast.OpLT, nil
	default:
		return 0, malformed("unknown comparator %d", c.Token)
	}
}

// BuildCond builds one comparison from its two operands and comparator.
func BuildCond(left, right *syntax.Expression, cmp syntax.Comparator) (*ast.Cond, error) {
	l, err := BuildExpr(left)
	if err != nil {
		return nil, err
	}
	r, err := BuildExpr(right)
	if err != nil {
		return nil, err
	}
	op, err := ResolveComparator(cmp)
	if err != nil {
		return nil, err
	}
	return &ast.Cond{Left: l, Right: r, Op: op}, nil
}

// BuildWhere folds a multiple_condition node into a Where tree with the same
// binary nesting. Nothing is flattened or evaluated here.
func BuildWhere(mc *syntax.MultipleCondition) (ast.Where, error) {
	if mc == nil {
		return nil, malformed("nil condition")
	}

	if mc.Cond != nil {
		if mc.Left != nil || mc.Right != nil {
			return nil, malformed("condition leaf has children")
		}
		cond, err := BuildCond(mc.Cond.Left, mc.Cond.Right, mc.Cond.Comparator)
		if err != nil {
			return nil, err
		}
		return &ast.CondWhere{Cond: cond}, nil
	}

	var op ast.LogicOp
	switch mc.Logic {
	case syntax.LogicAnd:
		op = ast.OpAnd
	case syntax.LogicOr:
		op = ast.OpOr
	default:
		return nil, malformed("combinator without AND/OR")
	}

	left, err := BuildWhere(mc.Left)
	if err != nil {
		return nil, err
	}
	right, err := BuildWhere(mc.Right)
	if err != nil {
		return nil, err
	}
	return &ast.LogicWhere{Left: left, Right: right, Op: op}, nil
}
