package node

// Set is a set of element identities.
type Set map[*Element]struct{}

// NewSet creates a set holding els.
func NewSet(els ...*Element) Set {
	s := make(Set, len(els))
	for _, el := range els {
		s[el] = struct{}{}
	}
	return s
}

// Add inserts el.
func (s Set) Add(el *Element) {
	s[el] = struct{}{}
}

// Has reports membership. A nil set is empty.
func (s Set) Has(el *Element) bool {
	_, ok := s[el]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set holding the members of s and every other set.
func (s Set) Union(others ...Set) Set {
	n := len(s)
	for _, o := range others {
		n += len(o)
	}
	out := make(Set, n)
	for el := range s {
		out[el] = struct{}{}
	}
	for _, o := range others {
		for el := range o {
			out[el] = struct{}{}
		}
	}
	return out
}

// Func adapts the set to a SkipFunc.
func (s Set) Func() SkipFunc {
	return func(el *Element) bool {
		return s.Has(el)
	}
}

// Subtree returns el and every descendant element not pruned by skip.
func Subtree(el *Element, skip SkipFunc) Set {
	s := Set{}
	Walk(el, func(cur *Element) bool {
		if cur != el && skip != nil && skip(cur) {
			return false
		}
		s[cur] = struct{}{}
		return true
	})
	return s
}

// AnySkip combines predicates; an element is skipped when any of them says so.
func AnySkip(fns ...SkipFunc) SkipFunc {
	return func(el *Element) bool {
		for _, fn := range fns {
			if fn != nil && fn(el) {
				return true
			}
		}
		return false
	}
}
