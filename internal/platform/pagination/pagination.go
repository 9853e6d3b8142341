// Package pagination holds the offset/limit page model shared by list screens and the
// services that back them.
package pagination

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 25

// MaxLimit caps the page size a caller may request.
const MaxLimit = 100

// Query selects a slice of a collection.
type Query struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Normalize clamps a query to valid bounds: negative offsets become zero and
// limits outside [1, MaxLimit] fall back to DefaultLimit or MaxLimit.
func (q Query) Normalize() Query {
	if q.Offset < 0 {
		q.Offset = 0
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	return q
}

// Page is a fetched slice of a collection.
//
// Count is the number of items in this slice; Offset+Count <= Total is expected
// from the backend but not enforced.
type Page[T any] struct {
	Count  int `json:"count"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Items  []T `json:"items"`
}

// Empty returns the zero page shown before any fetch completes.
func Empty[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// Clone returns a copy of p that does not share its item slice.
func (p Page[T]) Clone() Page[T] {
	out := p
	out.Items = make([]T, len(p.Items))
	copy(out.Items, p.Items)
	return out
}

// PageToOffset converts a 1-based page number to a zero-based offset.
// Page numbers below 1 map to offset 0.
func PageToOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// OffsetToPage converts an offset to the 1-based page number containing it.
func OffsetToPage(offset, limit int) int {
	if limit <= 0 || offset <= 0 {
		return 1
	}
	return offset/limit + 1
}

// PageCount returns the number of pages needed to show total items.
func PageCount(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Window cuts the slice described by q out of a fully materialized collection.
func Window[T any](items []T, q Query) Page[T] {
	total := len(items)
	start := min(max(q.Offset, 0), total)
	end := min(start+max(q.Limit, 0), total)

	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{
		Count:  len(out),
		Total:  total,
		Offset: q.Offset,
		Limit:  q.Limit,
		Items:  out,
	}
}
