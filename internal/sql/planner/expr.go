package planner

import (
	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// BuildExpr folds an expression node into an Expr tree.
//
// Precedence is already encoded in the node shape and is kept as is. A
// parenthesized node (one child, no operator) yields its child's tree with no
// wrapper.
func BuildExpr(e *syntax.Expression) (ast.Expr, error) {
	if e == nil {
		return nil, malformed("nil expression")
	}

	if e.Comparer != nil {
		if len(e.Children) != 0 {
			return nil, malformed("expression has both a comparer and children")
		}
		v, err := ResolveValue(e.Comparer)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	switch len(e.Children) {
	case 1:
		if e.Op != syntax.ArithNone {
			return nil, malformed("unary %s expression", e.Op)
		}
		return BuildExpr(e.Children[0])
	case 2:
		op, err := resolveArith(e.Op)
		if err != nil {
			return nil, err
		}
		left, err := BuildExpr(e.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := BuildExpr(e.Children[1])
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Left: left, Right: right, Op: op}, nil
	default:
		return nil, malformed("expression with %d children", len(e.Children))
	}
}

func resolveArith(t syntax.ArithToken) (ast.ArithOp, error) {
	switch t {
	case syntax.ArithAdd:
		return ast.OpAdd, nil
	case syntax.ArithSub:
		return ast.OpSub, nil
	case syntax.ArithMul:
		return ast.OpMul, nil
	case syntax.ArithDiv:
		return ast.OpDiv, nil
	default:
		return 0, malformed("unknown arithmetic operator %d", t)
	}
}
