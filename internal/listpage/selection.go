package listpage

// selection is an insertion-ordered set of items keyed by their identifier.
type selection[T any] struct {
	order []string
	items map[string]T
}

func newSelection[T any]() selection[T] {
	return selection[T]{items: make(map[string]T)}
}

// add inserts item or, when its identifier is already selected, replaces the stored
// value in place.
func (s *selection[T]) add(id string, item T) {
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}

func (s *selection[T]) remove(id string) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *selection[T]) has(id string) bool {
	_, ok := s.items[id]
	return ok
}

func (s *selection[T]) clear() {
	s.order = nil
	s.items = make(map[string]T)
}

func (s *selection[T]) ids() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *selection[T]) values() []T {
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}
