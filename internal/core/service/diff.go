package service

import (
	"github.com/just-nibble/starsync/internal/core/domain/entities"
)

// Diff classifies the remote starred list against the stored snapshot.
//
// A remote repository unknown to the store is a create. A known one is an
// update only when its last push is strictly newer than the stored one; equal
// or older push times are unchanged even if other fields differ. Stored ids
// missing from the remote list are deleted. If the remote list repeats an id
// (stars moving between pages mid-fetch), the later entry wins.
func Diff(remote []entities.StarredRepository, persisted []entities.Repository) entities.Classification {
	stored := indexByID(persisted)
	remote = dedupeByID(remote)

	var c entities.Classification
	seen := make(map[int64]struct{}, len(remote))

	for _, r := range remote {
		seen[r.ID] = struct{}{}

		existing, ok := stored[r.ID]
		switch {
		case !ok:
			c.Create = append(c.Create, r)
		case r.PushedAt.After(existing.RepoPushedAt):
			c.Update = append(c.Update, r)
		default:
			c.Unchanged = append(c.Unchanged, r)
		}
	}

	for _, p := range persisted {
		if _, ok := seen[p.ID]; !ok {
			c.Delete = append(c.Delete, p.ID)
		}
	}

	return c
}

func indexByID(repos []entities.Repository) map[int64]entities.Repository {
	index := make(map[int64]entities.Repository, len(repos))
	for _, r := range repos {
		index[r.ID] = r
	}
	return index
}

// dedupeByID keeps one entry per id at the position of its first occurrence,
// holding the value of its last occurrence.
func dedupeByID(items []entities.StarredRepository) []entities.StarredRepository {
	position := make(map[int64]int, len(items))
	out := make([]entities.StarredRepository, 0, len(items))

	for _, item := range items {
		if i, ok := position[item.ID]; ok {
			out[i] = item
			continue
		}
		position[item.ID] = len(out)
		out = append(out, item)
	}

	return out
}
