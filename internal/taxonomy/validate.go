package taxonomy

import (
	"fmt"
	"strings"
)

// Reason identifies which validation rule rejected a segmented category.
type Reason string

// Validation failure reasons, checked in order; the first failure wins.
const (
	ReasonEmptyHeading Reason = "empty_heading"
	ReasonNoEntries    Reason = "no_entries"
)

// ValidationError reports why a segmented page was rejected.
type ValidationError struct {
	Reason  Reason
	Heading string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmptyHeading:
		return "category heading is empty"
	case ReasonNoEntries:
		return fmt.Sprintf("category %q has no entries", e.Heading)
	default:
		return fmt.Sprintf("category %q failed validation: %s", e.Heading, e.Reason)
	}
}

// Validate turns a RawCategory into the canonical Category used downstream.
// Rules, in order: non-empty heading, at least one entry, trim notes and
// entry fields, drop notes emptied by trimming, de-duplicate entries by code
// keeping the first occurrence in page order.
func Validate(raw RawCategory) (Category, error) {
	heading := strings.TrimSpace(raw.Heading)
	if heading == "" {
		return Category{}, &ValidationError{Reason: ReasonEmptyHeading}
	}
	if len(raw.Entries) == 0 {
		return Category{}, &ValidationError{Reason: ReasonNoEntries, Heading: heading}
	}

	notes := make([]string, 0, len(raw.Notes))
	for _, note := range raw.Notes {
		if n := strings.TrimSpace(note); n != "" {
			notes = append(notes, n)
		}
	}

	seen := make(map[string]struct{}, len(raw.Entries))
	entries := make([]Entry, 0, len(raw.Entries))
	for _, entry := range raw.Entries {
		code := strings.TrimSpace(entry.Code)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		entries = append(entries, Entry{Code: code, Label: strings.TrimSpace(entry.Label)})
	}

	return Category{Heading: heading, Notes: notes, Entries: entries}, nil
}
