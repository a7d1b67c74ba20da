package executors

import (
	"coredb/execution/expression"
	"coredb/execution/plan"
	"coredb/types"
)

type groupState struct {
	groupValues []types.Value
	aggValues   []types.Value
}

func initialAggregateValue(t plan.AggregateType) types.Value {
	if t == plan.CountStar {
		return types.NewInteger(0)
	}
	return types.NewNull(types.Integer)
}

func combineAggregateValue(current, input types.Value, t plan.AggregateType) types.Value {
	switch t {
	case plan.CountStar:
		return types.NewInteger(current.AsInteger() + 1)
	case plan.Count:
		if input.IsNull() {
			return current
		}
		if current.IsNull() {
			return types.NewInteger(1)
		}
		return types.NewInteger(current.AsInteger() + 1)
	case plan.Sum:
		if input.IsNull() {
			return current
		}
		if current.IsNull() {
			return input
		}
		return current.Add(input)
	case plan.Min:
		if input.IsNull() {
			return current
		}
		if current.IsNull() || input.LessThan(current) {
			return input
		}
		return current
	case plan.Max:
		if input.IsNull() {
			return current
		}
		if current.IsNull() || current.LessThan(input) {
			return input
		}
		return current
	default:
		return current
	}
}

// Aggregation drains its child into an in-memory hash table keyed by
// group-by tuple during Init, then emits one output row per group,
// concatenating the group key with the aggregate values.
//
// Grounded on original_source's src/execution/aggregation_executor.cpp
// and its SimpleAggregationHashTable. The empty-input special case
// (no group-by expressions and no input rows emits one row so
// COUNT(*) reports 0) is ported via the same copy_with_empty_ guard
// the original uses to emit that row exactly once.
type Aggregation struct {
	child       Executor
	groupBys    []expression.Expr
	aggregates  []expression.Expr
	aggTypes    []plan.AggregateType
	childSchema *types.Schema

	groups       map[string]*groupState
	order        []string
	pos          int
	emittedEmpty bool
}

func NewAggregation(child Executor, groupBys, aggregates []expression.Expr, aggTypes []plan.AggregateType, childSchema *types.Schema) *Aggregation {
	return &Aggregation{child: child, groupBys: groupBys, aggregates: aggregates, aggTypes: aggTypes, childSchema: childSchema}
}

func (a *Aggregation) Init() error {
	if err := a.child.Init(); err != nil {
		return err
	}
	a.groups = make(map[string]*groupState)
	a.order = nil
	a.pos = 0
	a.emittedEmpty = false

	for {
		tuple, _, ok, err := a.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		groupValues := make([]types.Value, len(a.groupBys))
		var keyBuf []byte
		for i, expr := range a.groupBys {
			v := expr.Evaluate(tuple, a.childSchema)
			groupValues[i] = v
			keyBuf = append(keyBuf, v.HashBytes()...)
		}
		key := string(keyBuf)

		gs, exists := a.groups[key]
		if !exists {
			aggValues := make([]types.Value, len(a.aggTypes))
			for i, t := range a.aggTypes {
				aggValues[i] = initialAggregateValue(t)
			}
			gs = &groupState{groupValues: groupValues, aggValues: aggValues}
			a.groups[key] = gs
			a.order = append(a.order, key)
		}
		for i, expr := range a.aggregates {
			input := expr.Evaluate(tuple, a.childSchema)
			gs.aggValues[i] = combineAggregateValue(gs.aggValues[i], input, a.aggTypes[i])
		}
	}
	return nil
}

func (a *Aggregation) Next() (types.Tuple, types.RID, bool, error) {
	if len(a.order) > 0 {
		if a.pos >= len(a.order) {
			return types.Tuple{}, types.RID{}, false, nil
		}
		gs := a.groups[a.order[a.pos]]
		a.pos++
		values := make([]types.Value, 0, len(gs.groupValues)+len(gs.aggValues))
		values = append(values, gs.groupValues...)
		values = append(values, gs.aggValues...)
		return types.NewTuple(values...), types.RID{}, true, nil
	}

	if a.emittedEmpty {
		return types.Tuple{}, types.RID{}, false, nil
	}
	a.emittedEmpty = true
	if len(a.groupBys) == 0 {
		values := make([]types.Value, len(a.aggTypes))
		for i, t := range a.aggTypes {
			values[i] = initialAggregateValue(t)
		}
		return types.NewTuple(values...), types.RID{}, true, nil
	}
	return types.Tuple{}, types.RID{}, false, nil
}
