package manipulation

import "github.com/asakaida/datastore/internal/entities"

// Partition is the three-way split between current and desired membership
type Partition struct {
	ToAdd    []entities.Identity // desired but not current
	ToKeep   []entities.Identity // both current and desired
	ToRemove []entities.Identity // current but not desired
}

// Diff partitions current and desired identities by (type, id).
// Duplicates are coalesced and first-seen order is kept.
func Diff(current, desired []entities.Identity) Partition {
	currentSet := make(map[entities.Identity]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[entities.Identity]bool, len(desired))

	var p Partition
	for _, id := range desired {
		if desiredSet[id] {
			continue
		}
		desiredSet[id] = true
		if currentSet[id] {
			p.ToKeep = append(p.ToKeep, id)
		} else {
			p.ToAdd = append(p.ToAdd, id)
		}
	}

	seen := make(map[entities.Identity]bool, len(current))
	for _, id := range current {
		if seen[id] || desiredSet[id] {
			continue
		}
		seen[id] = true
		p.ToRemove = append(p.ToRemove, id)
	}
	return p
}

// pick returns the records whose identity is in ids, in record order
func pick(records []*entities.Record, ids []entities.Identity) []*entities.Record {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[entities.Identity]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var picked []*entities.Record
	for _, r := range records {
		if want[r.Identity()] {
			picked = append(picked, r)
			delete(want, r.Identity())
		}
	}
	return picked
}

// members returns the supplied records that are currently related, coalescing duplicates
func members(current, supplied []*entities.Record) []*entities.Record {
	currentSet := make(map[entities.Identity]bool, len(current))
	for _, r := range current {
		currentSet[r.Identity()] = true
	}
	var out []*entities.Record
	for _, r := range supplied {
		if !r.Exists() || !currentSet[r.Identity()] {
			continue
		}
		out = append(out, r)
		delete(currentSet, r.Identity())
	}
	return out
}
