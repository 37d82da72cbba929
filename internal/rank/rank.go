// Package rank scores candidate taxonomy entries against the weak textual
// signals available for a book record and picks the best match. The result is
// best-effort, not a correctness guarantee.
package rank

import (
	"sort"
	"strings"

	"github.com/shelfdata/subjectwatch/internal/taxonomy"
)

// FullLabelSeparator joins a category heading and an entry label into the
// candidate's full label.
const FullLabelSeparator = " / "

// Candidate is one taxonomy entry under evaluation for a book.
type Candidate struct {
	Entry taxonomy.Entry
	// FullLabel is "HEADING / label".
	FullLabel string
}

// NewCandidate builds the full-label form from a heading and an entry.
func NewCandidate(heading string, entry taxonomy.Entry) Candidate {
	return Candidate{
		Entry:     entry,
		FullLabel: heading + FullLabelSeparator + entry.Label,
	}
}

// Signals are the external hints used for scoring: a free-text description
// and a short list of coarse category names from the book-metadata source.
type Signals struct {
	Description     string
	LooseCategories []string
}

// Scoring weights. The comics bonus is a hand-tuned fix for a known
// miscategorization pattern in the source data, not a general rule.
const (
	looseCategoryPoints = 5
	headingPoints       = 2
	subLabelPoints      = 3
	comicsBonus         = 8
)

var comicsTriggers = []string{"comic", "marvel", "superhero", "graphic novel"}

// Pick returns the best-scoring candidate, or ok=false when there are none.
// A single candidate is returned unconditionally. Ties keep the original
// candidate order.
func Pick(candidates []Candidate, signals Signals) (Candidate, bool) {
	switch len(candidates) {
	case 0:
		return Candidate{}, false
	case 1:
		return candidates[0], true
	}

	type scored struct {
		candidate Candidate
		score     int
	}
	description := strings.ToLower(signals.Description)

	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, scored{
			candidate: candidate,
			score:     score(candidate, description, signals.LooseCategories),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked[0].candidate, true
}

func score(candidate Candidate, description string, looseCategories []string) int {
	fullLabel := strings.ToLower(candidate.FullLabel)
	heading, subLabel := splitFullLabel(fullLabel)

	total := 0
	for _, loose := range looseCategories {
		if strings.Contains(strings.ToLower(loose), fullLabel) {
			total += looseCategoryPoints
		}
	}
	if heading != "" && strings.Contains(description, heading) {
		total += headingPoints
	}
	if subLabel != "" && strings.Contains(description, subLabel) {
		total += subLabelPoints
	}
	if comicsCandidate(fullLabel) && descriptionTriggersComics(description) {
		total += comicsBonus
	}
	return total
}

func splitFullLabel(fullLabel string) (heading, subLabel string) {
	heading, subLabel, found := strings.Cut(fullLabel, FullLabelSeparator)
	if !found {
		return fullLabel, ""
	}
	return strings.TrimSpace(heading), strings.TrimSpace(subLabel)
}

func comicsCandidate(fullLabel string) bool {
	return strings.Contains(fullLabel, "comics") || strings.Contains(fullLabel, "graphic novel")
}

func descriptionTriggersComics(description string) bool {
	for _, trigger := range comicsTriggers {
		if strings.Contains(description, trigger) {
			return true
		}
	}
	return false
}
