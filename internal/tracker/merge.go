package tracker

import (
	"cmp"
	"reflect"
	"slices"
)

// MergeByDate combines two collections keyed by date. Local entries go in
// first and remote entries overwrite them, so on a shared date the remote
// copy always wins regardless of which edit is newer. The result is sorted
// by date, newest first.
func MergeByDate[T Dated](local, remote []T) []T {
	merged := make(map[string]T, len(local)+len(remote))
	for _, e := range local {
		merged[e.EntryDate()] = e
	}
	for _, e := range remote {
		merged[e.EntryDate()] = e
	}

	out := make([]T, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b T) int {
		return cmp.Compare(b.EntryDate(), a.EntryDate())
	})
	return out
}

// displaced returns the dates whose local entry differs from the remote one
// that replaces it during a merge.
func displaced[T Dated](local, remote []T) []string {
	byDate := make(map[string]T, len(remote))
	for _, e := range remote {
		byDate[e.EntryDate()] = e
	}
	var dates []string
	for _, e := range local {
		if r, ok := byDate[e.EntryDate()]; ok && !reflect.DeepEqual(r, e) {
			dates = append(dates, e.EntryDate())
		}
	}
	return dates
}
