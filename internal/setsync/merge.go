// Package setsync keeps the device-local set list in step with the server.
package setsync

import "alcyxob/sets-tracker/internal/domain"

// MergeSets combines local and remote copies so every id appears once.
// When both sides hold an id, the copy with the later LastModified wins and
// an exact tie goes to the remote copy. Local order is kept; remote-only sets
// follow in remote order.
func MergeSets(local, remote []domain.LoggedSet) []domain.LoggedSet {
	merged := make([]domain.LoggedSet, 0, len(local)+len(remote))
	index := make(map[string]int, len(local)+len(remote))

	for _, s := range local {
		if i, ok := index[s.ID]; ok {
			merged[i] = s
			continue
		}
		index[s.ID] = len(merged)
		merged = append(merged, s)
	}

	for _, s := range remote {
		i, ok := index[s.ID]
		if !ok {
			index[s.ID] = len(merged)
			merged = append(merged, s)
			continue
		}
		if s.LastModified() >= merged[i].LastModified() {
			merged[i] = s
		}
	}
	return merged
}
