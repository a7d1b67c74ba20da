package types

import "encoding/binary"

// Tuple is an ordered sequence of typed values conforming to a schema,
// the concrete form executors pass between each other's Next calls.
// This supersedes the teacher's Row (a bare map[string]interface{},
// convenient for its JSON-persisted rows but untyped and unordered).
type Tuple struct {
	Values []Value
}

// NewTuple wraps values as a Tuple.
func NewTuple(values ...Value) Tuple {
	return Tuple{Values: values}
}

// GetValue returns the value at column index idx.
func (t Tuple) GetValue(idx int) Value {
	return t.Values[idx]
}

// Len returns the number of values.
func (t Tuple) Len() int { return len(t.Values) }

// TupleMeta carries the transaction id that last touched a tuple and
// whether it is marked deleted, per §6's TableHeap contract.
type TupleMeta struct {
	TxnID     uint64
	IsDeleted bool
}

// Encode serializes t according to schema: a leading null-bitmap byte
// per 8 columns, followed by each non-NULL column's fixed- or
// variable-length encoding in schema order.
func (t Tuple) Encode(schema *Schema) []byte {
	buf := make([]byte, (schema.Len()+7)/8)
	for i, v := range t.Values {
		if v.IsNull() {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	for i, col := range schema.Columns {
		v := t.Values[i]
		if v.IsNull() {
			continue
		}
		switch col.Type {
		case Integer:
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(v.AsInteger()))
			buf = append(buf, b[:]...)
		case Varchar:
			s := v.AsVarchar()
			var lb [4]byte
			binary.LittleEndian.PutUint32(lb[:], uint32(len(s)))
			buf = append(buf, lb[:]...)
			buf = append(buf, []byte(s)...)
		case Boolean:
			if v.AsBoolean() {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
	}
	return buf
}

// DecodeTuple is Encode's inverse.
func DecodeTuple(schema *Schema, buf []byte) Tuple {
	bitmapLen := (schema.Len() + 7) / 8
	bitmap := buf[:bitmapLen]
	off := bitmapLen
	values := make([]Value, schema.Len())
	for i, col := range schema.Columns {
		isNull := bitmap[i/8]&(1<<(i%8)) != 0
		if isNull {
			values[i] = NewNull(col.Type)
			continue
		}
		switch col.Type {
		case Integer:
			v := int64(binary.LittleEndian.Uint64(buf[off:]))
			off += 8
			values[i] = NewInteger(v)
		case Varchar:
			n := int(binary.LittleEndian.Uint32(buf[off:]))
			off += 4
			values[i] = NewVarchar(string(buf[off : off+n]))
			off += n
		case Boolean:
			values[i] = NewBoolean(buf[off] != 0)
			off++
		}
	}
	return Tuple{Values: values}
}
