package model

import (
	"fmt"
	"regexp"
	"strconv"
)

var tagPattern = regexp.MustCompile(`(?i)^EC(\d+)x(\d+)`)

// Tag is the structured EC<group>x<level> prefix of a task label
type Tag struct {
	Group int
	Level int
}

// ParseTag extracts the tag from the start of a task label
func ParseTag(task string) (Tag, bool) {
	m := tagPattern.FindStringSubmatch(task)
	if m == nil {
		return Tag{}, false
	}
	group, err := strconv.Atoi(m[1])
	if err != nil {
		return Tag{}, false
	}
	level, err := strconv.Atoi(m[2])
	if err != nil {
		return Tag{}, false
	}
	return Tag{Group: group, Level: level}, true
}

// String renders the tag in its canonical form
func (t Tag) String() string {
	return fmt.Sprintf("EC%dx%d", t.Group, t.Level)
}

// SameGroupBelow returns true if other is in the same group at a strictly lower level
func (t Tag) SameGroupBelow(other Tag) bool {
	return other.Group == t.Group && other.Level < t.Level
}

// SplitTag splits a task label into its EC prefix as written and the rest
func SplitTag(task string) (prefix, rest string) {
	loc := tagPattern.FindStringIndex(task)
	if loc == nil {
		return "", task
	}
	return task[:loc[1]], task[loc[1]:]
}
