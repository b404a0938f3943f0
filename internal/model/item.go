package model

import (
	"strconv"
	"strings"
)

// RowIDPrefix prefixes the source row index in every item ID
const RowIDPrefix = "row-"

// Item represents a single challenge in the checklist.
// The JSON field names are the persisted format and must not change.
type Item struct {
	ID   string `json:"id"`
	Task string `json:"task"`
	Tree string `json:"tree"`
	Done bool   `json:"done"`
}

// RowID returns the item ID for a source row index
func RowID(row int) string {
	return RowIDPrefix + strconv.Itoa(row)
}

// RowIndex returns the numeric source row encoded in the item ID
func (i Item) RowIndex() (int, bool) {
	if !strings.HasPrefix(i.ID, RowIDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(i.ID, RowIDPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Tag returns the EC tag parsed from the task label, if any
func (i Item) Tag() (Tag, bool) {
	return ParseTag(i.Task)
}

// HasTree returns true if the item carries a secondary field
func (i Item) HasTree() bool {
	return i.Tree != ""
}

// CloneItems returns a copy of the list that shares no backing array with items
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
