// Package expression implements the §6 "Expression tree (consumed)"
// contract: evaluate(tuple, schema), evaluate_join(left, right),
// clone_with_children, return_type, dispatched on a small set of
// concrete variants (column-reference, constant, comparison,
// arithmetic, logic AND/OR).
//
// Grounded on original_source's src/execution/expressions/*.cpp:
// column_value_expression.cpp, constant_value_expression.cpp,
// comparison_expression.cpp, arithmetic_expression.cpp,
// logic_expression.cpp. The original dispatches via a class hierarchy
// with dynamic_cast; here every variant is a concrete type implementing
// one interface, the "tagged variant, not open inheritance" pattern the
// spec's design notes call for.
package expression

import "coredb/types"

// Expr is the capability set every expression variant implements.
type Expr interface {
	// Evaluate computes this expression's value against a single tuple.
	Evaluate(tuple types.Tuple, schema *types.Schema) types.Value

	// EvaluateJoin computes this expression's value against a pair of
	// tuples from a join's two sides, used by NestedLoopJoin/HashJoin
	// predicates and key expressions.
	EvaluateJoin(leftTuple types.Tuple, leftSchema *types.Schema, rightTuple types.Tuple, rightSchema *types.Schema) types.Value

	// CloneWithChildren returns a copy of this expression with its
	// children replaced, the mechanism the optimizer's post-order
	// rewrites use without needing per-variant rewrite logic.
	CloneWithChildren(children []Expr) Expr

	// Children returns this expression's operand subexpressions.
	Children() []Expr

	// ReturnType reports the type of value Evaluate produces.
	ReturnType() types.TypeID
}

// ColumnValue reads one column out of a tuple. TupleIdx selects which
// side of a join the column comes from: 0 for a single-tuple context
// or a join's left side, 1 for a join's right side.
type ColumnValue struct {
	TupleIdx int
	ColIdx   int
	Type     types.TypeID
}

func NewColumnValue(tupleIdx, colIdx int, t types.TypeID) *ColumnValue {
	return &ColumnValue{TupleIdx: tupleIdx, ColIdx: colIdx, Type: t}
}

func (c *ColumnValue) Evaluate(tuple types.Tuple, _ *types.Schema) types.Value {
	return tuple.GetValue(c.ColIdx)
}

func (c *ColumnValue) EvaluateJoin(leftTuple types.Tuple, _ *types.Schema, rightTuple types.Tuple, _ *types.Schema) types.Value {
	if c.TupleIdx == 0 {
		return leftTuple.GetValue(c.ColIdx)
	}
	return rightTuple.GetValue(c.ColIdx)
}

func (c *ColumnValue) CloneWithChildren(_ []Expr) Expr {
	cp := *c
	return &cp
}

func (c *ColumnValue) Children() []Expr { return nil }

func (c *ColumnValue) ReturnType() types.TypeID { return c.Type }

// Constant always evaluates to the same value, regardless of tuple.
type Constant struct {
	Value types.Value
}

func NewConstant(v types.Value) *Constant { return &Constant{Value: v} }

func (c *Constant) Evaluate(_ types.Tuple, _ *types.Schema) types.Value { return c.Value }

func (c *Constant) EvaluateJoin(_ types.Tuple, _ *types.Schema, _ types.Tuple, _ *types.Schema) types.Value {
	return c.Value
}

func (c *Constant) CloneWithChildren(_ []Expr) Expr {
	cp := *c
	return &cp
}

func (c *Constant) Children() []Expr { return nil }

func (c *Constant) ReturnType() types.TypeID { return c.Value.TypeID() }

// CompOp enumerates the comparison operators a Comparison expression
// may apply.
type CompOp int

const (
	Eq CompOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Comparison evaluates Left op Right to a Boolean value.
type Comparison struct {
	Op          CompOp
	Left, Right Expr
}

func NewComparison(op CompOp, left, right Expr) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func (c *Comparison) apply(l, r types.Value) types.Value {
	switch c.Op {
	case Eq:
		return types.NewBoolean(l.Equals(r))
	case Ne:
		return types.NewBoolean(!l.Equals(r))
	case Lt:
		return types.NewBoolean(l.LessThan(r))
	case Le:
		return types.NewBoolean(l.LessThan(r) || l.Equals(r))
	case Gt:
		return types.NewBoolean(r.LessThan(l))
	case Ge:
		return types.NewBoolean(r.LessThan(l) || l.Equals(r))
	default:
		return types.NewNull(types.Boolean)
	}
}

func (c *Comparison) Evaluate(tuple types.Tuple, schema *types.Schema) types.Value {
	l := c.Left.Evaluate(tuple, schema)
	r := c.Right.Evaluate(tuple, schema)
	if l.IsNull() || r.IsNull() {
		return types.NewNull(types.Boolean)
	}
	return c.apply(l, r)
}

func (c *Comparison) EvaluateJoin(lt types.Tuple, ls *types.Schema, rt types.Tuple, rs *types.Schema) types.Value {
	l := c.Left.EvaluateJoin(lt, ls, rt, rs)
	r := c.Right.EvaluateJoin(lt, ls, rt, rs)
	if l.IsNull() || r.IsNull() {
		return types.NewNull(types.Boolean)
	}
	return c.apply(l, r)
}

func (c *Comparison) CloneWithChildren(children []Expr) Expr {
	return &Comparison{Op: c.Op, Left: children[0], Right: children[1]}
}

func (c *Comparison) Children() []Expr { return []Expr{c.Left, c.Right} }

func (c *Comparison) ReturnType() types.TypeID { return types.Boolean }

// ArithOp enumerates the arithmetic operators an Arithmetic expression
// may apply, covering the variant the way the original's single
// ArithmeticExpression class does. (Aggregation's SUM calls
// types.Value.Add directly rather than building an Arithmetic.)
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

// Arithmetic evaluates Left op Right to an Integer value.
type Arithmetic struct {
	Op          ArithOp
	Left, Right Expr
}

func NewArithmetic(op ArithOp, left, right Expr) *Arithmetic {
	return &Arithmetic{Op: op, Left: left, Right: right}
}

func (a *Arithmetic) apply(l, r types.Value) types.Value {
	switch a.Op {
	case Add:
		return l.Add(r)
	case Sub:
		return types.NewInteger(l.AsInteger() - r.AsInteger())
	case Mul:
		return types.NewInteger(l.AsInteger() * r.AsInteger())
	case Div:
		return types.NewInteger(l.AsInteger() / r.AsInteger())
	default:
		return types.NewNull(types.Integer)
	}
}

func (a *Arithmetic) Evaluate(tuple types.Tuple, schema *types.Schema) types.Value {
	l := a.Left.Evaluate(tuple, schema)
	r := a.Right.Evaluate(tuple, schema)
	if l.IsNull() || r.IsNull() {
		return types.NewNull(types.Integer)
	}
	return a.apply(l, r)
}

func (a *Arithmetic) EvaluateJoin(lt types.Tuple, ls *types.Schema, rt types.Tuple, rs *types.Schema) types.Value {
	l := a.Left.EvaluateJoin(lt, ls, rt, rs)
	r := a.Right.EvaluateJoin(lt, ls, rt, rs)
	if l.IsNull() || r.IsNull() {
		return types.NewNull(types.Integer)
	}
	return a.apply(l, r)
}

func (a *Arithmetic) CloneWithChildren(children []Expr) Expr {
	return &Arithmetic{Op: a.Op, Left: children[0], Right: children[1]}
}

func (a *Arithmetic) Children() []Expr { return []Expr{a.Left, a.Right} }

func (a *Arithmetic) ReturnType() types.TypeID { return types.Integer }

// LogicOp enumerates AND/OR.
type LogicOp int

const (
	And LogicOp = iota
	Or
)

// Logic evaluates Left op Right to a Boolean value. Both operands are
// always evaluated (no short-circuit), and if either is NULL the result
// is NULL, exactly as for Comparison's operands here — so FALSE AND NULL
// and TRUE OR NULL are NULL too.
type Logic struct {
	Op          LogicOp
	Left, Right Expr
}

func NewLogic(op LogicOp, left, right Expr) *Logic {
	return &Logic{Op: op, Left: left, Right: right}
}

func (l *Logic) apply(a, b types.Value) types.Value {
	switch l.Op {
	case And:
		return types.NewBoolean(a.AsBoolean() && b.AsBoolean())
	case Or:
		return types.NewBoolean(a.AsBoolean() || b.AsBoolean())
	default:
		return types.NewNull(types.Boolean)
	}
}

func (l *Logic) Evaluate(tuple types.Tuple, schema *types.Schema) types.Value {
	a := l.Left.Evaluate(tuple, schema)
	b := l.Right.Evaluate(tuple, schema)
	if a.IsNull() || b.IsNull() {
		return types.NewNull(types.Boolean)
	}
	return l.apply(a, b)
}

func (l *Logic) EvaluateJoin(lt types.Tuple, ls *types.Schema, rt types.Tuple, rs *types.Schema) types.Value {
	a := l.Left.EvaluateJoin(lt, ls, rt, rs)
	b := l.Right.EvaluateJoin(lt, ls, rt, rs)
	if a.IsNull() || b.IsNull() {
		return types.NewNull(types.Boolean)
	}
	return l.apply(a, b)
}

func (l *Logic) CloneWithChildren(children []Expr) Expr {
	return &Logic{Op: l.Op, Left: children[0], Right: children[1]}
}

func (l *Logic) Children() []Expr { return []Expr{l.Left, l.Right} }

func (l *Logic) ReturnType() types.TypeID { return types.Boolean }
