package generic

// Set is an unordered collection of distinct comparable values.
type Set[T comparable] map[T]struct{}

func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add returns true if the item was not already present.
func (s Set[T]) Add(item T) bool {
	if _, found := s[item]; found {
		return false
	}
	s[item] = struct{}{}
	return true
}

// Contains returns true only if every one of items is present.
func (s Set[T]) Contains(items ...T) bool {
	for _, item := range items {
		if _, found := s[item]; !found {
			return false
		}
	}
	return true
}

// ContainsAny returns true if at least one of items is present.
func (s Set[T]) ContainsAny(items ...T) bool {
	for _, item := range items {
		if _, found := s[item]; found {
			return true
		}
	}
	return false
}

func (s Set[T]) Count() int {
	return len(s)
}

func (s Set[T]) Remove(item T) bool {
	if _, found := s[item]; !found {
		return false
	}
	delete(s, item)
	return true
}

func (s Set[T]) ToSlice() []T {
	slice := make([]T, 0, len(s))
	for item := range s {
		slice = append(slice, item)
	}
	return slice
}
