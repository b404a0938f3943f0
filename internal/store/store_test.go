package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dori/ectrack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KV that counts writes per key
type memKV struct {
	data   map[string]string
	writes map[string]int
	failOn string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string), writes: make(map[string]int)}
}

func (m *memKV) GetValue(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) SetValue(key, value string) error {
	if key == m.failOn {
		return errors.New("disk full")
	}
	m.data[key] = value
	m.writes[key]++
	return nil
}

func defaultItems(tasks ...string) []model.Item {
	items := make([]model.Item, len(tasks))
	for i, task := range tasks {
		items[i] = model.Item{ID: model.RowID(i), Task: task}
	}
	return items
}

func loadStore(t *testing.T, kv *memKV, defaults []model.Item) *Store {
	t.Helper()
	s := New(kv)
	require.NoError(t, s.Load(defaults))
	return s
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func stored(t *testing.T, kv *memKV) []model.Item {
	t.Helper()
	var items []model.Item
	require.NoError(t, json.Unmarshal([]byte(kv.data[KeyItems]), &items))
	return items
}

func TestLoadWithoutStateClonesDefaults(t *testing.T) {
	kv := newMemKV()
	defaults := defaultItems("A", "B")
	s := loadStore(t, kv, defaults)

	assert.Equal(t, defaults, s.Items())
	assert.False(t, s.IsModified())
	assert.Zero(t, kv.writes[KeyItems], "loading without state must not write")

	// The default list is never touched by working list mutations
	_, err := s.SetDone("row-0", true)
	require.NoError(t, err)
	assert.False(t, s.Defaults()[0].Done)
}

func TestLoadMigratesLegacyFormat(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyItems] = "[2]"
	s := loadStore(t, kv, defaultItems("r0", "r1", "r2", "r3"))

	for _, it := range s.Items() {
		assert.Equal(t, it.ID == "row-2", it.Done, it.ID)
	}
	assert.Equal(t, 1, kv.writes[KeyItems], "migration writes the current format once")
	assert.Equal(t, s.Items(), stored(t, kv))
}

func TestLoadMigratesEmptyLegacyArray(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyItems] = "[]"
	defaults := defaultItems("A", "B")
	s := loadStore(t, kv, defaults)

	assert.Equal(t, defaults, s.Items())
	assert.Equal(t, defaults, stored(t, kv))
}

func TestMigrationIsIdempotent(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyItems] = "[0, 3]"
	defaults := defaultItems("r0", "r1", "r2", "r3")

	first := loadStore(t, kv, defaults).Items()
	afterFirst := kv.data[KeyItems]

	second := loadStore(t, kv, defaults).Items()
	assert.Equal(t, first, second)
	assert.Equal(t, afterFirst, kv.data[KeyItems])
	assert.Equal(t, 1, kv.writes[KeyItems], "second load reads current format without rewriting")
}

func TestLoadCurrentFormatIsUsedAsIs(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyItems] = `[{"id":"row-9","task":"gone from source","tree":"","done":true},{"id":"row-0","task":"edited","tree":"t","done":false}]`
	s := loadStore(t, kv, defaultItems("A"))

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "row-9", items[0].ID)
	assert.Equal(t, "edited", items[1].Task)
	assert.True(t, s.IsModified())
}

func TestLoadRejectsCorruptState(t *testing.T) {
	for _, raw := range []string{"{not json", "null", `{"id":"row-0"}`, `["a", 1]`} {
		kv := newMemKV()
		kv.data[KeyItems] = raw
		err := New(kv).Load(defaultItems("A"))
		assert.ErrorIs(t, err, ErrCorruptState, raw)
	}
}

func TestReorderAndDelete(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, []model.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	// b dragged to the trash: it is absent from the new order
	require.NoError(t, s.Reorder([]string{"c", "a"}))
	assert.Equal(t, []string{"c", "a"}, ids(s.Items()))
	assert.Equal(t, []string{"c", "a"}, ids(stored(t, kv)))
}

func TestReorderIgnoresUnknownAndRepeatedIDs(t *testing.T) {
	s := loadStore(t, newMemKV(), []model.Item{{ID: "a"}, {ID: "b"}})
	require.NoError(t, s.Reorder([]string{"b", "zzz", "a", "b"}))
	assert.Equal(t, []string{"b", "a"}, ids(s.Items()))
}

func TestRemove(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, []model.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	require.NoError(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, ids(s.Items()))
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Defaults()))
	assert.ErrorIs(t, s.Remove("b"), ErrUnknownItem)
}

func TestMove(t *testing.T) {
	s := loadStore(t, newMemKV(), []model.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	pos, err := s.Move("a", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, []string{"b", "a", "c"}, ids(s.Items()))

	pos, err = s.Move("c", -10)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, []string{"c", "b", "a"}, ids(s.Items()))

	pos, err = s.Move("a", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	_, err = s.Move("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestSameGroupCascade(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, defaultItems("EC1x1 first", "EC1x2 second", "EC2x1 other group", "untagged"))

	cascaded, err := s.SetDone("row-1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"row-0"}, cascaded)

	items := s.Items()
	assert.True(t, items[0].Done, "EC1x1 becomes done")
	assert.True(t, items[1].Done)
	assert.False(t, items[2].Done, "EC2x1 is unaffected")
	assert.False(t, items[3].Done)
	assert.Equal(t, 1, kv.writes[KeyItems], "one write per toggle")
}

func TestCascadeOnlyOnCheck(t *testing.T) {
	s := loadStore(t, newMemKV(), defaultItems("EC1x1", "EC1x2"))

	_, err := s.SetDone("row-1", true)
	require.NoError(t, err)

	cascaded, err := s.SetDone("row-1", false)
	require.NoError(t, err)
	assert.Empty(t, cascaded)
	assert.True(t, s.Items()[0].Done, "unchecking never cascades")
	assert.False(t, s.Items()[1].Done)
}

func TestCascadeIsCaseInsensitiveAndSkipsHigherLevels(t *testing.T) {
	s := loadStore(t, newMemKV(), defaultItems("ec3x1 a", "EC3x3 c", "Ec3X2 b"))

	cascaded, err := s.SetDone("row-2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"row-0"}, cascaded)
	assert.False(t, s.Items()[1].Done, "higher levels stay open")
}

func TestAllPreviousCascade(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, defaultItems("plain one", "EC9x1 tagged", "third", "fourth"))
	require.NoError(t, s.SetCascadeAllPrevious(true))

	cascaded, err := s.SetDone("row-2", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"row-0", "row-1"}, cascaded)

	items := s.Items()
	assert.True(t, items[0].Done)
	assert.True(t, items[1].Done)
	assert.True(t, items[2].Done)
	assert.False(t, items[3].Done)
	assert.Equal(t, 1, kv.writes[KeyItems])
}

func TestAllPreviousFollowsWorkingOrder(t *testing.T) {
	s := loadStore(t, newMemKV(), defaultItems("a", "b", "c"))
	require.NoError(t, s.SetCascadeAllPrevious(true))
	require.NoError(t, s.Reorder([]string{"row-2", "row-0", "row-1"}))

	cascaded, err := s.SetDone("row-0", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"row-2"}, cascaded)
	assert.False(t, s.Items()[2].Done)
}

func TestBothCascadesFireTogether(t *testing.T) {
	s := loadStore(t, newMemKV(), defaultItems("x", "EC1x2", "EC1x1"))
	require.NoError(t, s.SetCascadeAllPrevious(true))

	cascaded, err := s.SetDone("row-1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"row-0", "row-2"}, cascaded)
}

func TestEditPersistsOnlyOnChange(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, []model.Item{{ID: "a", Task: "Task", Tree: "oak"}})

	changed, err := s.SetTask("a", "Task")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, kv.writes[KeyItems])

	changed, err = s.SetTask("a", "Renamed")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, kv.writes[KeyItems])

	changed, err = s.SetTree("a", "birch")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "birch", stored(t, kv)[0].Tree)

	_, err = s.SetTree("missing", "x")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestReset(t *testing.T) {
	kv := newMemKV()
	defaults := defaultItems("A", "B", "C")
	s := loadStore(t, kv, defaults)

	require.NoError(t, s.Remove("row-1"))
	_, err := s.SetTask("row-0", "changed")
	require.NoError(t, err)
	_, err = s.SetDone("row-2", true)
	require.NoError(t, err)
	assert.True(t, s.IsModified())

	require.NoError(t, s.Reset())
	assert.Equal(t, defaults, s.Items())
	assert.Equal(t, defaults, stored(t, kv))
	assert.False(t, s.IsModified())
}

func TestIsModified(t *testing.T) {
	s := loadStore(t, newMemKV(), defaultItems("A", "B"))

	_, err := s.SetDone("row-0", true)
	require.NoError(t, err)
	assert.False(t, s.IsModified(), "completion state is not a modification")

	require.NoError(t, s.Reorder([]string{"row-1", "row-0"}))
	assert.True(t, s.IsModified(), "a pure reorder is a modification")

	require.NoError(t, s.Reorder([]string{"row-0", "row-1"}))
	assert.False(t, s.IsModified())

	require.NoError(t, s.Remove("row-1"))
	assert.True(t, s.IsModified())
}

func TestSettingsFallBackOnMalformedJSON(t *testing.T) {
	kv := newMemKV()
	kv.data[KeySettings] = "{broken"
	s := loadStore(t, kv, nil)
	assert.Equal(t, model.DefaultSettings(), s.Settings())

	require.NoError(t, s.SetCascadeAllPrevious(true))
	assert.JSONEq(t, `{"cascadeAllPreviousEnabled":true}`, kv.data[KeySettings])

	reloaded := loadStore(t, kv, nil)
	assert.True(t, reloaded.Settings().CascadeAllPreviousEnabled)
}

func TestHintDismissed(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, nil)
	assert.False(t, s.HintDismissed())

	require.NoError(t, s.DismissHint())
	assert.Equal(t, "true", kv.data[KeyHintDismissed])
	assert.True(t, loadStore(t, kv, nil).HintDismissed())
}

func TestSubscribe(t *testing.T) {
	s := New(newMemKV())
	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) {
		// Reading the store from a subscriber must not deadlock
		_ = s.Len()
		events = append(events, ev)
	})

	require.NoError(t, s.Load(defaultItems("EC1x1", "EC1x2")))
	_, err := s.SetDone("row-1", true)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, EventLoaded, events[0].Kind)
	assert.Equal(t, EventToggled, events[1].Kind)
	assert.Equal(t, []string{"row-1", "row-0"}, events[1].IDs)

	unsubscribe()
	require.NoError(t, s.Reset())
	assert.Len(t, events, 2)
}

func TestPersistFailureIsReturned(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, defaultItems("EC1x1 a", "EC1x2 b"))
	kv.failOn = KeyItems

	_, err := s.SetDone("row-1", true)
	assert.Error(t, err)

	// Nothing was saved, so nothing may change in memory either
	for _, id := range []string{"row-0", "row-1"} {
		it, ok := s.Item(id)
		require.True(t, ok)
		assert.False(t, it.Done, id)
	}

	// A retry after the failure clears must persist the change
	kv.failOn = ""
	cascaded, err := s.SetDone("row-1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"row-0"}, cascaded)

	reloaded := loadStore(t, kv, defaultItems("EC1x1 a", "EC1x2 b"))
	done, total := reloaded.Progress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 2, total)
}

func TestFailedMutationRollsBackOrder(t *testing.T) {
	kv := newMemKV()
	s := loadStore(t, kv, defaultItems("a", "b", "c"))
	kv.failOn = KeyItems

	assert.Error(t, s.Remove("row-1"))
	assert.Equal(t, []string{"row-0", "row-1", "row-2"}, ids(s.Items()))
	assert.False(t, s.IsModified())
}

func TestProgressAndLastDone(t *testing.T) {
	s := loadStore(t, newMemKV(), defaultItems("a", "b", "c"))
	assert.Equal(t, -1, s.LastDoneIndex())

	_, err := s.SetDone("row-1", true)
	require.NoError(t, err)
	done, total := s.Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, s.LastDoneIndex())
}
