package model

// NotFound marks a semantic field with no source column.
const NotFound = -1

// ColumnMapping maps semantic field names (date, amount, asin, ...) to
// zero-based column indices.
type ColumnMapping map[string]int

// Index returns the column for field, or NotFound.
func (m ColumnMapping) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return NotFound
}

// Has reports whether field is mapped to a column.
func (m ColumnMapping) Has(field string) bool {
	return m.Index(field) != NotFound
}

// Cell returns the raw cell for field in row, or "" when the
// field is unmapped or the row is too short.
func (m ColumnMapping) Cell(row []string, field string) string {
	idx := m.Index(field)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Clone copies the mapping.
func (m ColumnMapping) Clone() ColumnMapping {
	c := make(ColumnMapping, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
