package executors

import (
	"coredb/execution/expression"
	"coredb/types"
)

// Projection evaluates Exprs against each child tuple and emits the
// resulting row.
//
// Grounded on original_source's src/execution/projection_executor.cpp.
type Projection struct {
	child      Executor
	exprs      []expression.Expr
	childSchema *types.Schema
}

func NewProjection(child Executor, exprs []expression.Expr, childSchema *types.Schema) *Projection {
	return &Projection{child: child, exprs: exprs, childSchema: childSchema}
}

func (p *Projection) Init() error { return p.child.Init() }

func (p *Projection) Next() (types.Tuple, types.RID, bool, error) {
	tuple, rid, ok, err := p.child.Next()
	if err != nil || !ok {
		return types.Tuple{}, types.RID{}, false, err
	}
	values := make([]types.Value, len(p.exprs))
	for i, expr := range p.exprs {
		values[i] = expr.Evaluate(tuple, p.childSchema)
	}
	return types.NewTuple(values...), rid, true, nil
}
