// Package taxonomy defines the core subject-heading types shared across
// subsystems.
package taxonomy

import (
	"regexp"
	"strings"
	"time"
)

// CodePattern matches a well-formed subject code such as "ANT007000".
var CodePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{6}$`)

// Entry is one leaf taxonomy item: a subject code plus its label.
// Entries are immutable once extracted.
type Entry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// RawCategory is the unvalidated output of page segmentation. It may carry
// duplicate codes and untrimmed text; Validate turns it into a Category.
type RawCategory struct {
	Heading string
	Notes   []string
	Entries []Entry
}

// Category is a validated, named group of entries plus free-text notes.
// Entries are unique by code. The heading is stored verbatim; use HeadingKey
// for comparisons.
type Category struct {
	Heading string   `json:"heading"`
	Notes   []string `json:"notes,omitempty"`
	Entries []Entry  `json:"entries"`
}

// Snapshot is an immutable point-in-time collection of categories. Headings
// are unique within a snapshot under HeadingKey comparison.
type Snapshot struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Categories  []Category `json:"categories"`
}

var spaceRun = regexp.MustCompile(`\s+`)

// HeadingKey returns the comparison key for a category heading: trimmed,
// upper-cased, "&" folded to "AND", interior whitespace collapsed. Source
// pages are inconsistent about ampersands between releases.
func HeadingKey(heading string) string {
	key := strings.ToUpper(strings.TrimSpace(heading))
	key = strings.ReplaceAll(key, "&", "AND")
	return spaceRun.ReplaceAllString(key, " ")
}
