package store

import (
	"encoding/json"
	"fmt"

	"github.com/dori/ectrack/internal/model"
)

// Reorder rebuilds the working list in the given ID order.
// IDs not in the list are ignored, as are repeats. Items missing from ids
// are dropped; use Remove to delete on purpose.
func (s *Store) Reorder(ids []string) error {
	return s.mutate(func() (Event, bool, error) {
		s.items = s.reorderedLocked(ids)
		return Event{Kind: EventReordered, IDs: ids}, true, nil
	})
}

func (s *Store) reorderedLocked(ids []string) []model.Item {
	byID := make(map[string]model.Item, len(s.items))
	for _, it := range s.items {
		byID[it.ID] = it
	}

	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, it)
		delete(byID, id)
	}
	return out
}

// Move shifts an item by delta positions, clamped to the list bounds.
// It returns the item's new position.
func (s *Store) Move(id string, delta int) (int, error) {
	var pos int
	err := s.mutate(func() (Event, bool, error) {
		from := s.indexLocked(id)
		if from < 0 {
			return Event{}, false, fmt.Errorf("%w: %s", ErrUnknownItem, id)
		}

		to := from + delta
		if to < 0 {
			to = 0
		}
		if to > len(s.items)-1 {
			to = len(s.items) - 1
		}
		pos = to
		if to == from {
			return Event{}, false, nil
		}

		ids := make([]string, 0, len(s.items))
		for _, it := range s.items {
			if it.ID != id {
				ids = append(ids, it.ID)
			}
		}
		ids = append(ids[:to], append([]string{id}, ids[to:]...)...)

		s.items = s.reorderedLocked(ids)
		return Event{Kind: EventReordered, IDs: ids}, true, nil
	})
	return pos, err
}

// Remove deletes an item from the working list
func (s *Store) Remove(id string) error {
	return s.mutate(func() (Event, bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return Event{}, false, fmt.Errorf("%w: %s", ErrUnknownItem, id)
		}
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		return Event{Kind: EventRemoved, IDs: []string{id}}, true, nil
	})
}

// SetDone sets the completion flag of an item.
//
// When the item goes from not done to done, cascades run: every other item in
// the same EC group with a lower level is marked done, and if the
// all-previous setting is on, every item above it in the working order is
// marked done too. The list is persisted once. The returned IDs are the items
// changed by cascades, in working order.
func (s *Store) SetDone(id string, done bool) ([]string, error) {
	var cascaded []string
	err := s.mutate(func() (Event, bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return Event{}, false, fmt.Errorf("%w: %s", ErrUnknownItem, id)
		}
		if s.items[i].Done == done {
			return Event{}, false, nil
		}

		s.items[i].Done = done
		if done {
			cascaded = s.cascadeLocked(i)
		}
		return Event{Kind: EventToggled, IDs: append([]string{id}, cascaded...), Done: done}, true, nil
	})
	return cascaded, err
}

// Toggle flips the completion flag of an item
func (s *Store) Toggle(id string) (bool, []string, error) {
	it, ok := s.Item(id)
	if !ok {
		return false, nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	cascaded, err := s.SetDone(id, !it.Done)
	return !it.Done, cascaded, err
}

func (s *Store) cascadeLocked(i int) []string {
	marked := make(map[int]bool)

	if tag, ok := s.items[i].Tag(); ok {
		for j, other := range s.items {
			if j == i || other.Done {
				continue
			}
			if ot, ok := other.Tag(); ok && tag.SameGroupBelow(ot) {
				marked[j] = true
			}
		}
	}

	if s.settings.CascadeAllPreviousEnabled {
		for j := 0; j < i; j++ {
			if !s.items[j].Done {
				marked[j] = true
			}
		}
	}

	var ids []string
	for j := range s.items {
		if marked[j] {
			s.items[j].Done = true
			ids = append(ids, s.items[j].ID)
		}
	}
	return ids
}

// SetTask replaces the task label; it persists only when the label changed
func (s *Store) SetTask(id, task string) (bool, error) {
	return s.edit(id, func(it *model.Item) bool {
		if it.Task == task {
			return false
		}
		it.Task = task
		return true
	})
}

// SetTree replaces the secondary field; it persists only when it changed
func (s *Store) SetTree(id, tree string) (bool, error) {
	return s.edit(id, func(it *model.Item) bool {
		if it.Tree == tree {
			return false
		}
		it.Tree = tree
		return true
	})
}

func (s *Store) edit(id string, apply func(*model.Item) bool) (bool, error) {
	var changed bool
	err := s.mutate(func() (Event, bool, error) {
		i := s.indexLocked(id)
		if i < 0 {
			return Event{}, false, fmt.Errorf("%w: %s", ErrUnknownItem, id)
		}
		changed = apply(&s.items[i])
		return Event{Kind: EventEdited, IDs: []string{id}}, changed, nil
	})
	return changed, err
}

// Reset discards order, edits, deletions and completion state
func (s *Store) Reset() error {
	return s.mutate(func() (Event, bool, error) {
		s.items = model.CloneItems(s.defaults)
		return Event{Kind: EventReset}, true, nil
	})
}

type fingerprint struct {
	T    string `json:"t"`
	Tree string `json:"tree"`
	ID   string `json:"id"`
}

func fingerprintOf(items []model.Item) string {
	fp := make([]fingerprint, len(items))
	for i, it := range items {
		fp[i] = fingerprint{T: it.Task, Tree: it.Tree, ID: it.ID}
	}
	data, _ := json.Marshal(fp)
	return string(data)
}

// IsModified reports whether the working list differs from the defaults in
// order, text, tree or membership. Completion state is ignored.
func (s *Store) IsModified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) != len(s.defaults) {
		return true
	}
	return fingerprintOf(s.items) != fingerprintOf(s.defaults)
}
