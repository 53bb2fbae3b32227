package executor

import (
	"context"
	"fmt"

	"github.com/Chinwer/ThssDB/internal/sql/ast"
	"github.com/Chinwer/ThssDB/internal/sql/planner"
	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

// resolveTableQuery turns one FROM entry into a manager table handle: a single
// table when no JOIN was written, otherwise a joint table over every named
// table in source order.
func (e *Executor) resolveTableQuery(ctx context.Context, tq *syntax.TableQuery) (ast.QueryTable, error) {
	if tq == nil || len(tq.Tables) == 0 {
		return nil, fmt.Errorf("%w: empty FROM entry", planner.ErrMalformedInput)
	}

	if !tq.Join {
		if len(tq.Tables) != 1 {
			return nil, fmt.Errorf("%w: %d tables without JOIN", planner.ErrMalformedInput, len(tq.Tables))
		}
		return e.mgr.GetSingleTable(ctx, planner.Ident(tq.Tables[0]))
	}

	if len(tq.Tables) < 2 || tq.On == nil {
		return nil, fmt.Errorf("%w: JOIN needs two tables and ON", planner.ErrMalformedInput)
	}
	on, err := planner.BuildWhere(tq.On)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(tq.Tables))
	for i, t := range tq.Tables {
		names[i] = planner.Ident(t)
	}
	return e.mgr.GetJointTable(ctx, names, on)
}
