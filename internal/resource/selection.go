package resource

import "slices"

// Selection is an ordered id set. Ids keep the order they were picked in,
// which is the order the ledger receives them.
type Selection struct {
	ids []uint64
}

func NewSelection(ids ...uint64) *Selection {
	s := &Selection{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *Selection) Has(id uint64) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Add(id uint64) {
	if !s.Has(id) {
		s.ids = append(s.ids, id)
	}
}

func (s *Selection) Remove(id uint64) {
	s.ids = slices.DeleteFunc(s.ids, func(v uint64) bool { return v == id })
}

// Toggle adds id at the end, or removes it when already selected.
func (s *Selection) Toggle(id uint64) {
	if s.Has(id) {
		s.Remove(id)
		return
	}
	s.ids = append(s.ids, id)
}

// SelectAll appends every id not yet selected, keeping existing order.
func (s *Selection) SelectAll(ids []uint64) {
	for _, id := range ids {
		s.Add(id)
	}
}

func (s *Selection) Clear() {
	s.ids = nil
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selection.
func (s *Selection) IDs() []uint64 {
	return slices.Clone(s.ids)
}
