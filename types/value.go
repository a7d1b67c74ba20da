package types

import "fmt"

// TypeID tags the variant a Value currently holds.
type TypeID int

const (
	Invalid TypeID = iota
	Integer
	Varchar
	Boolean
)

// Value is a tagged, possibly-NULL scalar of one of the supported
// types, the minimal concrete form of the "value" the §6 expression
// tree contract evaluates to.
type Value struct {
	typeID  TypeID
	null    bool
	intVal  int64
	strVal  string
	boolVal bool
}

// NewInteger returns a non-NULL integer value.
func NewInteger(v int64) Value { return Value{typeID: Integer, intVal: v} }

// NewVarchar returns a non-NULL string value.
func NewVarchar(v string) Value { return Value{typeID: Varchar, strVal: v} }

// NewBoolean returns a non-NULL boolean value.
func NewBoolean(v bool) Value { return Value{typeID: Boolean, boolVal: v} }

// NewNull returns a NULL value of the given type, needed because
// aggregate initial values and comparison-with-absent results must
// still carry a type.
func NewNull(t TypeID) Value { return Value{typeID: t, null: true} }

// TypeID returns the value's type tag, valid even when IsNull.
func (v Value) TypeID() TypeID { return v.typeID }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.null }

// AsInteger returns the integer payload; only meaningful when
// TypeID() == Integer and !IsNull().
func (v Value) AsInteger() int64 { return v.intVal }

// AsVarchar returns the string payload.
func (v Value) AsVarchar() string { return v.strVal }

// AsBoolean returns the boolean payload.
func (v Value) AsBoolean() bool { return v.boolVal }

func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.typeID {
	case Integer:
		return fmt.Sprintf("%d", v.intVal)
	case Varchar:
		return v.strVal
	case Boolean:
		return fmt.Sprintf("%t", v.boolVal)
	default:
		return "<invalid>"
	}
}

// Equals compares two non-NULL values of the same type.
func (v Value) Equals(other Value) bool {
	if v.null || other.null {
		return false
	}
	switch v.typeID {
	case Integer:
		return v.intVal == other.intVal
	case Varchar:
		return v.strVal == other.strVal
	case Boolean:
		return v.boolVal == other.boolVal
	default:
		return false
	}
}

// LessThan compares two non-NULL values of the same type, used by
// TopN/Sort comparators.
func (v Value) LessThan(other Value) bool {
	switch v.typeID {
	case Integer:
		return v.intVal < other.intVal
	case Varchar:
		return v.strVal < other.strVal
	default:
		return false
	}
}

// Add returns v + other for Integer values; used by SUM aggregation.
func (v Value) Add(other Value) Value {
	return NewInteger(v.intVal + other.intVal)
}

// HashBytes returns a byte encoding suitable for use as a hash-index
// key or an aggregation group-by key.
func (v Value) HashBytes() []byte {
	if v.null {
		return []byte{0}
	}
	switch v.typeID {
	case Integer:
		b := make([]byte, 9)
		b[0] = 1
		u := uint64(v.intVal)
		for i := 0; i < 8; i++ {
			b[1+i] = byte(u >> (8 * i))
		}
		return b
	case Varchar:
		return append([]byte{2}, []byte(v.strVal)...)
	case Boolean:
		if v.boolVal {
			return []byte{3, 1}
		}
		return []byte{3, 0}
	default:
		return []byte{255}
	}
}
