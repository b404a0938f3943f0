package store

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dori/ectrack/internal/model"
)

// Load installs defaults as the source list and initializes the working list
// from persisted state.
//
// Nothing stored: the working list is a copy of defaults. A legacy value (an
// array of completed row indices) is migrated onto defaults and written back
// in the current format. Anything else is taken as the current format as is.
// Loading twice is safe: after migration the stored value is current format.
func (s *Store) Load(defaults []model.Item) error {
	s.mu.Lock()

	s.defaults = model.CloneItems(defaults)
	s.settings = s.readSettingsLocked()
	s.hintDismissed = s.readHintLocked()

	raw, ok, err := s.kv.GetValue(KeyItems)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to read checklist: %w", err)
	}

	var migrated bool
	if !ok {
		s.items = model.CloneItems(s.defaults)
	} else {
		items, legacy, err := decodeItems(raw, s.defaults)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.items = items
		migrated = legacy
	}

	if migrated {
		if err := s.saveItemsLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventLoaded})
	return nil
}

// decodeItems parses the stored checklist, migrating the legacy format
func decodeItems(raw string, defaults []model.Item) ([]model.Item, bool, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if elems == nil {
		return nil, false, fmt.Errorf("%w: value is null", ErrCorruptState)
	}

	if len(elems) == 0 || isNumber(elems[0]) {
		return migrateLegacy(elems, defaults), true, nil
	}

	var items []model.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	return items, false, nil
}

// migrateLegacy marks defaults done when their row index is in the legacy set
func migrateLegacy(elems []json.RawMessage, defaults []model.Item) []model.Item {
	completed := make(map[int]bool, len(elems))
	for _, e := range elems {
		var f float64
		if err := json.Unmarshal(e, &f); err != nil || f != math.Trunc(f) {
			continue
		}
		completed[int(f)] = true
	}

	items := model.CloneItems(defaults)
	if items == nil {
		items = []model.Item{}
	}
	for i := range items {
		row, ok := items[i].RowIndex()
		items[i].Done = ok && completed[row]
	}
	return items
}

func isNumber(raw json.RawMessage) bool {
	for _, c := range raw {
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			continue
		case c == '-' || (c >= '0' && c <= '9'):
			return true
		default:
			return false
		}
	}
	return false
}
