// Package store owns the working checklist: the user's ordered, edited copy of
// the source items, persisted to a key-value backend after every mutation.
//
// The store is UI agnostic. Presentation layers call its operations and may
// Subscribe to be told about every persisted change.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dori/ectrack/internal/model"
)

// Persisted keys. These match the keys used by the web tracker so existing
// exports can be imported verbatim.
const (
	KeyItems         = "ad_ec_tracker_completed_v1"
	KeySettings      = "ad_ec_tracker_settings_v1"
	KeyHintDismissed = "ad_ec_tracker_hint_dismissed"
)

// Common errors
var (
	ErrCorruptState = errors.New("stored checklist is not valid")
	ErrUnknownItem  = errors.New("unknown item")
)

// KV is the string-keyed, JSON-valued persistence the store writes to
type KV interface {
	GetValue(key string) (string, bool, error)
	SetValue(key, value string) error
}

// EventKind identifies the mutation that produced an Event
type EventKind int

const (
	EventLoaded EventKind = iota
	EventReordered
	EventRemoved
	EventToggled
	EventEdited
	EventReset
	EventSettingsChanged
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventReordered:
		return "reordered"
	case EventRemoved:
		return "removed"
	case EventToggled:
		return "toggled"
	case EventEdited:
		return "edited"
	case EventReset:
		return "reset"
	case EventSettingsChanged:
		return "settings"
	default:
		return "unknown"
	}
}

// Event describes a persisted change.
// For EventToggled, IDs[0] is the toggled item and the rest were cascaded.
type Event struct {
	Kind EventKind
	IDs  []string
	Done bool
}

// Store is the ordered item list plus its default (source) order
type Store struct {
	mu sync.Mutex
	kv KV

	defaults      []model.Item
	items         []model.Item
	settings      model.Settings
	hintDismissed bool

	subs    map[int]func(Event)
	nextSub int
}

// New creates an empty store persisting to kv. Call Load before use.
func New(kv KV) *Store {
	return &Store{
		kv:       kv,
		settings: model.DefaultSettings(),
		subs:     make(map[int]func(Event)),
	}
}

// Subscribe registers fn to be called after every persisted change.
// fn runs on the mutating goroutine after the store lock is released.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) emit(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// mutate runs fn under the lock, persists the list when fn reports a change,
// then notifies subscribers. The in-memory list is rolled back when fn or the
// save fails, so memory never runs ahead of storage.
func (s *Store) mutate(fn func() (Event, bool, error)) error {
	s.mu.Lock()
	prev := model.CloneItems(s.items)
	ev, changed, err := fn()
	if err == nil && changed {
		err = s.saveItemsLocked()
	}
	if err != nil {
		s.items = prev
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		s.emit(ev)
	}
	return nil
}

func (s *Store) saveItemsLocked() error {
	items := s.items
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode checklist: %w", err)
	}
	if err := s.kv.SetValue(KeyItems, string(data)); err != nil {
		return fmt.Errorf("failed to save checklist: %w", err)
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Items returns a copy of the working list in display order
func (s *Store) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneItems(s.items)
}

// Defaults returns a copy of the source-ordered default list
func (s *Store) Defaults() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneItems(s.defaults)
}

// Item returns the item with the given ID
func (s *Store) Item(id string) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return model.Item{}, false
}

// Len returns the number of items in the working list
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Progress returns how many items are done out of the working list
func (s *Store) Progress() (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Done {
			done++
		}
	}
	return done, len(s.items)
}

// LastDoneIndex returns the position of the last done item, or -1
func (s *Store) LastDoneIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Done {
			return i
		}
	}
	return -1
}

// MarshalItems returns the working list in its persisted JSON form
func (s *Store) MarshalItems() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items
	if items == nil {
		items = []model.Item{}
	}
	return json.MarshalIndent(items, "", "  ")
}
