// Package diff computes the structural change report between two taxonomy
// snapshots.
package diff

import "github.com/shelfdata/subjectwatch/internal/taxonomy"

// InputError reports a snapshot the differ cannot work with.
type InputError struct {
	Side string
}

func (e *InputError) Error() string {
	return "diff input: " + e.Side + " snapshot has no categories"
}

// EntryChange is one added or removed entry paired with its owning heading.
type EntryChange struct {
	Heading string         `json:"heading"`
	Entry   taxonomy.Entry `json:"entry"`
}

// Report is the read-only view over the differences between two snapshots.
// A modified entry (label or owning heading changed) appears as one removal
// plus one addition sharing the same code; there is deliberately no third
// "modified" list, consumers reconstruct it by joining on code.
type Report struct {
	AddedCategories   []taxonomy.Category `json:"added_categories"`
	RemovedCategories []taxonomy.Category `json:"removed_categories"`
	AddedEntries      []EntryChange       `json:"added_entries"`
	RemovedEntries    []EntryChange       `json:"removed_entries"`
}

// Empty reports whether the two snapshots were identical.
func (r Report) Empty() bool {
	return len(r.AddedCategories) == 0 &&
		len(r.RemovedCategories) == 0 &&
		len(r.AddedEntries) == 0 &&
		len(r.RemovedEntries) == 0
}

// codeOwner locates one entry within a snapshot.
type codeOwner struct {
	heading string
	entry   taxonomy.Entry
}

// Diff compares two snapshots. It is pure and deterministic; Diff(s, s) is
// always empty. Emission order follows the owning snapshot's category order,
// then entry order within each category.
func Diff(oldSnap, newSnap taxonomy.Snapshot) (Report, error) {
	if len(oldSnap.Categories) == 0 {
		return Report{}, &InputError{Side: "old"}
	}
	if len(newSnap.Categories) == 0 {
		return Report{}, &InputError{Side: "new"}
	}

	oldHeadings := headingSet(oldSnap)
	newHeadings := headingSet(newSnap)

	var report Report
	for _, category := range newSnap.Categories {
		if _, ok := oldHeadings[taxonomy.HeadingKey(category.Heading)]; !ok {
			report.AddedCategories = append(report.AddedCategories, category)
		}
	}
	for _, category := range oldSnap.Categories {
		if _, ok := newHeadings[taxonomy.HeadingKey(category.Heading)]; !ok {
			report.RemovedCategories = append(report.RemovedCategories, category)
		}
	}

	oldByCode := codeIndex(oldSnap)
	newByCode := codeIndex(newSnap)

	emitted := make(map[string]struct{})
	for _, category := range newSnap.Categories {
		for _, entry := range category.Entries {
			if _, done := emitted[entry.Code]; done {
				continue
			}
			emitted[entry.Code] = struct{}{}
			owner := newByCode[entry.Code]
			prev, existed := oldByCode[entry.Code]
			if !existed || changed(prev, owner) {
				report.AddedEntries = append(report.AddedEntries, EntryChange{
					Heading: owner.heading,
					Entry:   owner.entry,
				})
			}
		}
	}
	emitted = make(map[string]struct{})
	for _, category := range oldSnap.Categories {
		for _, entry := range category.Entries {
			if _, done := emitted[entry.Code]; done {
				continue
			}
			emitted[entry.Code] = struct{}{}
			owner := oldByCode[entry.Code]
			next, exists := newByCode[entry.Code]
			if !exists || changed(owner, next) {
				report.RemovedEntries = append(report.RemovedEntries, EntryChange{
					Heading: owner.heading,
					Entry:   owner.entry,
				})
			}
		}
	}

	return report, nil
}

// changed reports whether an entry present in both snapshots moved category
// or was relabeled.
func changed(oldOwner, newOwner codeOwner) bool {
	if taxonomy.HeadingKey(oldOwner.heading) != taxonomy.HeadingKey(newOwner.heading) {
		return true
	}
	return oldOwner.entry.Label != newOwner.entry.Label
}

func headingSet(snap taxonomy.Snapshot) map[string]struct{} {
	set := make(map[string]struct{}, len(snap.Categories))
	for _, category := range snap.Categories {
		set[taxonomy.HeadingKey(category.Heading)] = struct{}{}
	}
	return set
}

// codeIndex merges entries across all categories into one code-keyed map.
// Codes are expected to be globally unique within a snapshot; if one repeats,
// the first occurrence in snapshot order wins, mirroring the validator's
// per-category rule.
func codeIndex(snap taxonomy.Snapshot) map[string]codeOwner {
	index := make(map[string]codeOwner)
	for _, category := range snap.Categories {
		for _, entry := range category.Entries {
			if _, seen := index[entry.Code]; seen {
				continue
			}
			index[entry.Code] = codeOwner{heading: category.Heading, entry: entry}
		}
	}
	return index
}
