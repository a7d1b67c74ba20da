package types

import "testing"

func encodeDecodeSchema() *Schema {
	return NewSchema(
		Column{Name: "id", Type: Integer},
		Column{Name: "name", Type: Varchar},
		Column{Name: "active", Type: Boolean},
	)
}

func TestTupleEncodeDecodeRoundTrip(t *testing.T) {
	schema := encodeDecodeSchema()
	tuple := NewTuple(NewInteger(7), NewVarchar("hello"), NewBoolean(true))

	buf := tuple.Encode(schema)
	got := DecodeTuple(schema, buf)

	if got.GetValue(0).AsInteger() != 7 {
		t.Fatalf("decoded id = %d, want 7", got.GetValue(0).AsInteger())
	}
	if got.GetValue(1).AsVarchar() != "hello" {
		t.Fatalf("decoded name = %q, want hello", got.GetValue(1).AsVarchar())
	}
	if got.GetValue(2).AsBoolean() != true {
		t.Fatalf("decoded active = %v, want true", got.GetValue(2).AsBoolean())
	}
}

func TestTupleEncodeDecodeRoundTripWithNulls(t *testing.T) {
	schema := encodeDecodeSchema()
	tuple := NewTuple(NewNull(Integer), NewVarchar("x"), NewNull(Boolean))

	buf := tuple.Encode(schema)
	got := DecodeTuple(schema, buf)

	if !got.GetValue(0).IsNull() {
		t.Fatalf("decoded id should be NULL")
	}
	if got.GetValue(1).AsVarchar() != "x" {
		t.Fatalf("decoded name = %q, want x", got.GetValue(1).AsVarchar())
	}
	if !got.GetValue(2).IsNull() {
		t.Fatalf("decoded active should be NULL")
	}
}

func TestTupleEncodeDecodeEmptyVarchar(t *testing.T) {
	schema := NewSchema(Column{Name: "s", Type: Varchar})
	tuple := NewTuple(NewVarchar(""))

	buf := tuple.Encode(schema)
	got := DecodeTuple(schema, buf)
	if got.GetValue(0).AsVarchar() != "" {
		t.Fatalf("decoded empty varchar = %q, want empty", got.GetValue(0).AsVarchar())
	}
}

func TestTupleLen(t *testing.T) {
	tuple := NewTuple(NewInteger(1), NewInteger(2))
	if tuple.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tuple.Len())
	}
}

func TestRIDValidity(t *testing.T) {
	if InvalidRID.IsValid() {
		t.Fatalf("InvalidRID should not be valid")
	}
	if !(RID{PageID: 0, Slot: 0}).IsValid() {
		t.Fatalf("page 0 slot 0 should be a valid RID")
	}
}
