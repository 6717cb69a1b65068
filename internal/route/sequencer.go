// Package route keeps the visiting order of customers on the delivery round.
package route

import "milkround/internal/core"

// Sequencer holds an ordered list of customer ids. It starts in registry
// insertion order and may be reordered from an external suggestion.
type Sequencer struct {
	order []string
}

func New(ids []string) *Sequencer {
	s := &Sequencer{}
	for _, id := range ids {
		s.Append(id)
	}
	return s
}

// Append adds id at the end unless it is already sequenced.
func (s *Sequencer) Append(id string) {
	if s.indexOf(id) >= 0 {
		return
	}
	s.order = append(s.order, id)
}

// Remove drops id from the sequence.
func (s *Sequencer) Remove(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
}

// Order returns the full sequence, inactive customers included.
func (s *Sequencer) Order() []string {
	return append([]string(nil), s.order...)
}

// ApplySuggestedOrder reorders the sequence from a list of display names.
//
// Names are matched exactly against the active customers; unknown names are
// dropped and a repeated name claims the next customer with that name in prior
// order. Active customers the suggestion did not place are appended in their
// prior relative order, and inactive customers follow them. Ids no longer in
// customers are dropped. The active set is therefore preserved whatever the
// suggestion contains.
func (s *Sequencer) ApplySuggestedOrder(names []string, customers []core.Customer) []string {
	byID := make(map[string]core.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}
	// Sequence ids the sequencer has not seen yet, so prior order is total.
	for _, c := range customers {
		s.Append(c.ID)
	}

	byName := make(map[string][]string)
	for _, id := range s.order {
		if c, ok := byID[id]; ok && c.IsActive {
			byName[c.Name] = append(byName[c.Name], id)
		}
	}

	placed := make(map[string]bool, len(s.order))
	next := make([]string, 0, len(s.order))
	for _, name := range names {
		ids := byName[name]
		if len(ids) == 0 {
			continue
		}
		next = append(next, ids[0])
		placed[ids[0]] = true
		byName[name] = ids[1:]
	}
	for _, id := range s.order {
		if c, ok := byID[id]; ok && c.IsActive && !placed[id] {
			next = append(next, id)
			placed[id] = true
		}
	}
	for _, id := range s.order {
		if _, known := byID[id]; known && !placed[id] {
			next = append(next, id)
		}
	}
	s.order = next
	return s.VisibleOrder(customers)
}

// VisibleOrder returns the sequence restricted to active customers.
func (s *Sequencer) VisibleOrder(customers []core.Customer) []string {
	active := make(map[string]bool, len(customers))
	for _, c := range customers {
		if c.IsActive {
			active[c.ID] = true
		}
	}
	out := make([]string, 0, len(active))
	for _, id := range s.order {
		if active[id] {
			out = append(out, id)
		}
	}
	return out
}

// Restore replaces the sequence.
func (s *Sequencer) Restore(ids []string) {
	s.order = nil
	for _, id := range ids {
		s.Append(id)
	}
}

func (s *Sequencer) indexOf(id string) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}
