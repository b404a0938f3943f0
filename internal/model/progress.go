package model

import "sort"

// GroupProgress counts completion within one EC group
type GroupProgress struct {
	Group int
	Done  int
	Total int
}

// Complete returns true when every item in the group is done
func (g GroupProgress) Complete() bool {
	return g.Total > 0 && g.Done == g.Total
}

// Groups summarizes progress per EC group in ascending group order.
// Untagged items are not counted.
func Groups(items []Item) (groups []GroupProgress) {
	groups, _ = GroupsWithUntagged(items)
	return groups
}

// GroupsWithUntagged is Groups plus the progress of items without a tag
func GroupsWithUntagged(items []Item) ([]GroupProgress, GroupProgress) {
	byGroup := make(map[int]*GroupProgress)
	var untagged GroupProgress

	for _, it := range items {
		tag, ok := it.Tag()
		if !ok {
			untagged.Total++
			if it.Done {
				untagged.Done++
			}
			continue
		}
		gp, ok := byGroup[tag.Group]
		if !ok {
			gp = &GroupProgress{Group: tag.Group}
			byGroup[tag.Group] = gp
		}
		gp.Total++
		if it.Done {
			gp.Done++
		}
	}

	out := make([]GroupProgress, 0, len(byGroup))
	for _, gp := range byGroup {
		out = append(out, *gp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out, untagged
}
