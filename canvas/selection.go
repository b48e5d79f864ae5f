package canvas

import (
	"sort"

	"github.com/TFMV/canvasgraph/graph"
)

// Selection is an observable set of selected elements. Removing an element
// from the scene also removes it from the selection.
type Selection struct {
	members  map[graph.ID]Element
	onChange []func()
}

func newSelection() *Selection {
	return &Selection{members: make(map[graph.ID]Element)}
}

// OnChange registers a callback invoked after every selection change.
func (s *Selection) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *Selection) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

// Contains reports whether the element is selected.
func (s *Selection) Contains(id graph.ID) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of selected elements.
func (s *Selection) Len() int { return len(s.members) }

// Set replaces the selection with the single given element.
func (s *Selection) Set(el Element) {
	if el.IsZero() {
		return
	}
	if len(s.members) == 1 && s.Contains(el.ID()) {
		return
	}
	s.members = map[graph.ID]Element{el.ID(): el}
	s.changed()
}

// Toggle adds the element if absent and removes it if present.
func (s *Selection) Toggle(el Element) {
	if el.IsZero() {
		return
	}
	if s.Contains(el.ID()) {
		delete(s.members, el.ID())
	} else {
		s.members[el.ID()] = el
	}
	s.changed()
}

// Clear empties the selection.
func (s *Selection) Clear() {
	if len(s.members) == 0 {
		return
	}
	s.members = make(map[graph.ID]Element)
	s.changed()
}

// Elements returns the selected elements in a stable (ID-sorted) order.
func (s *Selection) Elements() []Element {
	els := make([]Element, 0, len(s.members))
	for _, el := range s.members {
		els = append(els, el)
	}
	sort.Slice(els, func(i, j int) bool { return els[i].ID() < els[j].ID() })
	return els
}

// discard removes an element without firing callbacks for absent IDs.
func (s *Selection) discard(id graph.ID) {
	if _, ok := s.members[id]; !ok {
		return
	}
	delete(s.members, id)
	s.changed()
}
