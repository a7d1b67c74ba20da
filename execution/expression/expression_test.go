package expression

import (
	"testing"

	"coredb/types"
)

func testSchema() *types.Schema {
	return types.NewSchema(
		types.Column{Name: "id", Type: types.Integer},
		types.Column{Name: "name", Type: types.Varchar},
	)
}

func TestColumnValueEvaluate(t *testing.T) {
	schema := testSchema()
	tuple := types.NewTuple(types.NewInteger(7), types.NewVarchar("bob"))
	col := NewColumnValue(0, 1, types.Varchar)

	got := col.Evaluate(tuple, schema)
	if got.AsVarchar() != "bob" {
		t.Fatalf("Evaluate() = %v, want bob", got)
	}
}

func TestColumnValueEvaluateJoinSelectsBySide(t *testing.T) {
	left := types.NewTuple(types.NewInteger(1))
	right := types.NewTuple(types.NewInteger(2))

	leftCol := NewColumnValue(0, 0, types.Integer)
	rightCol := NewColumnValue(1, 0, types.Integer)

	if v := leftCol.EvaluateJoin(left, nil, right, nil); v.AsInteger() != 1 {
		t.Fatalf("left-side EvaluateJoin() = %d, want 1", v.AsInteger())
	}
	if v := rightCol.EvaluateJoin(left, nil, right, nil); v.AsInteger() != 2 {
		t.Fatalf("right-side EvaluateJoin() = %d, want 2", v.AsInteger())
	}
}

func TestConstantAlwaysReturnsSameValue(t *testing.T) {
	c := NewConstant(types.NewInteger(99))
	tuple := types.NewTuple(types.NewInteger(1))
	if v := c.Evaluate(tuple, nil); v.AsInteger() != 99 {
		t.Fatalf("Evaluate() = %d, want 99", v.AsInteger())
	}
	if v := c.EvaluateJoin(tuple, nil, tuple, nil); v.AsInteger() != 99 {
		t.Fatalf("EvaluateJoin() = %d, want 99", v.AsInteger())
	}
}

func TestComparisonOperators(t *testing.T) {
	schema := testSchema()
	tuple := types.NewTuple(types.NewInteger(5), types.NewVarchar("x"))
	col := NewColumnValue(0, 0, types.Integer)

	cases := []struct {
		op   CompOp
		rhs  int64
		want bool
	}{
		{Eq, 5, true}, {Eq, 6, false},
		{Ne, 6, true}, {Ne, 5, false},
		{Lt, 6, true}, {Lt, 5, false},
		{Le, 5, true}, {Le, 4, false},
		{Gt, 4, true}, {Gt, 5, false},
		{Ge, 5, true}, {Ge, 6, false},
	}
	for _, c := range cases {
		cmp := NewComparison(c.op, col, NewConstant(types.NewInteger(c.rhs)))
		got := cmp.Evaluate(tuple, schema)
		if got.AsBoolean() != c.want {
			t.Fatalf("op=%v rhs=%d: Evaluate() = %v, want %v", c.op, c.rhs, got.AsBoolean(), c.want)
		}
	}
}

func TestComparisonNullPropagates(t *testing.T) {
	schema := testSchema()
	tuple := types.NewTuple(types.NewInteger(5), types.NewVarchar("x"))
	col := NewColumnValue(0, 0, types.Integer)
	cmp := NewComparison(Eq, col, NewConstant(types.NewNull(types.Integer)))

	got := cmp.Evaluate(tuple, schema)
	if !got.IsNull() {
		t.Fatalf("Evaluate() with a NULL operand should be NULL, got %v", got)
	}
}

func TestArithmeticOperators(t *testing.T) {
	left := NewConstant(types.NewInteger(10))
	right := NewConstant(types.NewInteger(3))

	cases := []struct {
		op   ArithOp
		want int64
	}{
		{Add, 13}, {Sub, 7}, {Mul, 30}, {Div, 3},
	}
	for _, c := range cases {
		a := NewArithmetic(c.op, left, right)
		got := a.Evaluate(types.Tuple{}, nil)
		if got.AsInteger() != c.want {
			t.Fatalf("op=%v: Evaluate() = %d, want %d", c.op, got.AsInteger(), c.want)
		}
	}
}

func TestArithmeticNullPropagates(t *testing.T) {
	a := NewArithmetic(Add, NewConstant(types.NewInteger(1)), NewConstant(types.NewNull(types.Integer)))
	got := a.Evaluate(types.Tuple{}, nil)
	if !got.IsNull() {
		t.Fatalf("Evaluate() with a NULL operand should be NULL, got %v", got)
	}
}

func TestLogicAndOr(t *testing.T) {
	tr := NewConstant(types.NewBoolean(true))
	fa := NewConstant(types.NewBoolean(false))

	if v := NewLogic(And, tr, fa).Evaluate(types.Tuple{}, nil); v.AsBoolean() {
		t.Fatalf("true AND false should be false")
	}
	if v := NewLogic(Or, tr, fa).Evaluate(types.Tuple{}, nil); !v.AsBoolean() {
		t.Fatalf("true OR false should be true")
	}
}

func TestLogicNullPropagates(t *testing.T) {
	tr := NewConstant(types.NewBoolean(true))
	null := NewConstant(types.NewNull(types.Boolean))
	got := NewLogic(And, tr, null).Evaluate(types.Tuple{}, nil)
	if !got.IsNull() {
		t.Fatalf("Evaluate() with a NULL operand should be NULL, got %v", got)
	}
}

func TestCloneWithChildrenReplacesOperands(t *testing.T) {
	orig := NewComparison(Eq, NewConstant(types.NewInteger(1)), NewConstant(types.NewInteger(2)))
	newLeft := NewConstant(types.NewInteger(10))
	newRight := NewConstant(types.NewInteger(20))

	cloned := orig.CloneWithChildren([]Expr{newLeft, newRight}).(*Comparison)
	if cloned.Left != Expr(newLeft) || cloned.Right != Expr(newRight) {
		t.Fatalf("CloneWithChildren did not replace operands")
	}
	// Original untouched.
	if orig.Left == Expr(newLeft) {
		t.Fatalf("CloneWithChildren mutated the original expression")
	}
}

func TestColumnValueCloneWithChildrenIsIndependentCopy(t *testing.T) {
	orig := NewColumnValue(0, 2, types.Integer)
	cloned := orig.CloneWithChildren(nil).(*ColumnValue)
	cloned.ColIdx = 5

	if orig.ColIdx != 2 {
		t.Fatalf("CloneWithChildren shared state with the original: orig.ColIdx = %d", orig.ColIdx)
	}
}

func TestReturnTypes(t *testing.T) {
	if (NewColumnValue(0, 0, types.Varchar)).ReturnType() != types.Varchar {
		t.Fatalf("ColumnValue.ReturnType() wrong")
	}
	if (NewConstant(types.NewBoolean(true))).ReturnType() != types.Boolean {
		t.Fatalf("Constant.ReturnType() wrong")
	}
	if (NewComparison(Eq, nil, nil)).ReturnType() != types.Boolean {
		t.Fatalf("Comparison.ReturnType() wrong")
	}
	if (NewArithmetic(Add, nil, nil)).ReturnType() != types.Integer {
		t.Fatalf("Arithmetic.ReturnType() wrong")
	}
	if (NewLogic(And, nil, nil)).ReturnType() != types.Boolean {
		t.Fatalf("Logic.ReturnType() wrong")
	}
}
