package report

import (
	"fmt"
	"reflect"
	"sort"
)

// ChangeKind classifies one entry in a version diff.
type ChangeKind string

const (
	DiffAdded    ChangeKind = "added"
	DiffRemoved  ChangeKind = "removed"
	DiffModified ChangeKind = "modified"
)

// Change is one difference between two content documents, located by a
// dotted path ("forms.form_6251.amt", "line_items[2].amount").
type Change struct {
	Path     string     `json:"path"`
	Type     ChangeKind `json:"type"`
	OldValue any        `json:"old_value,omitempty"`
	NewValue any        `json:"new_value,omitempty"`
}

// CompareVersions computes the recursive structural diff between two
// versions' content. Comparing a version with itself yields an empty list.
func CompareVersions(a, b *ReportVersion) []Change {
	return diffValue("", a.Content, b.Content)
}

func diffValue(path string, old, new any) []Change {
	oldMap, oldIsMap := old.(map[string]any)
	newMap, newIsMap := new.(map[string]any)
	if oldIsMap && newIsMap {
		return diffMap(path, oldMap, newMap)
	}

	oldSlice, oldIsSlice := old.([]any)
	newSlice, newIsSlice := new.([]any)
	if oldIsSlice && newIsSlice {
		return diffSlice(path, oldSlice, newSlice)
	}

	if !reflect.DeepEqual(old, new) {
		return []Change{{Path: path, Type: DiffModified, OldValue: old, NewValue: new}}
	}
	return nil
}

func diffMap(path string, old, new map[string]any) []Change {
	keys := make(map[string]struct{}, len(old)+len(new))
	for k := range old {
		keys[k] = struct{}{}
	}
	for k := range new {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []Change
	for _, k := range sorted {
		childPath := k
		if path != "" {
			childPath = path + "." + k
		}
		oldVal, inOld := old[k]
		newVal, inNew := new[k]
		switch {
		case !inOld:
			changes = append(changes, Change{Path: childPath, Type: DiffAdded, NewValue: newVal})
		case !inNew:
			changes = append(changes, Change{Path: childPath, Type: DiffRemoved, OldValue: oldVal})
		default:
			changes = append(changes, diffValue(childPath, oldVal, newVal)...)
		}
	}
	return changes
}

func diffSlice(path string, old, new []any) []Change {
	var changes []Change
	n := len(old)
	if len(new) > n {
		n = len(new)
	}
	for i := 0; i < n; i++ {
		childPath := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case i >= len(old):
			changes = append(changes, Change{Path: childPath, Type: DiffAdded, NewValue: new[i]})
		case i >= len(new):
			changes = append(changes, Change{Path: childPath, Type: DiffRemoved, OldValue: old[i]})
		default:
			changes = append(changes, diffValue(childPath, old[i], new[i])...)
		}
	}
	return changes
}
