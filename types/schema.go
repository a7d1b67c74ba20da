package types

// Column describes one schema column: a name and a type tag. This
// supersedes the teacher's ColumnDef (which carried a string type name
// and a primary-key flag meant for JSON persistence) with the typed
// form the expression tree and executors need directly.
type Column struct {
	Name string
	Type TypeID
}

// Schema is an ordered sequence of typed columns a Tuple conforms to.
type Schema struct {
	Columns []Column
}

// NewSchema builds a Schema from columns.
func NewSchema(columns ...Column) *Schema {
	return &Schema{Columns: columns}
}

// ColumnIndex returns the index of the column named name, or -1.
func (s *Schema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.Columns) }

// Concat returns a new schema with right's columns appended after
// left's, used by Projection/Aggregation to build an output schema.
func Concat(left, right *Schema) *Schema {
	cols := make([]Column, 0, left.Len()+right.Len())
	cols = append(cols, left.Columns...)
	cols = append(cols, right.Columns...)
	return &Schema{Columns: cols}
}
