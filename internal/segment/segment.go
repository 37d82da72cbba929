// Package segment classifies the raw text blocks of a fetched category page
// into notes and code/label entries.
package segment

import (
	"regexp"
	"strings"

	"github.com/shelfdata/subjectwatch/internal/taxonomy"
)

var (
	// codePrefix signals the irrevocable notes → entries phase transition.
	codePrefix = regexp.MustCompile(`^[A-Z]{3}[0-9]{6}`)
	// entryLine captures a full code/label pair.
	entryLine = regexp.MustCompile(`^([A-Z]{3}[0-9]{6})\s+(.+)$`)
)

// phase is the segmentation scan state. The transition from inNotes to
// inEntries happens exactly once, on the first code-shaped block, and is
// never reversed.
type phase int

const (
	inNotes phase = iota
	inEntries
)

// Segment walks the ordered text blocks of one page and splits them into a
// notes preamble and code/label entries. It is pure and total: an unexpected
// page shape yields a partial RawCategory rather than an error. Duplicate
// codes are preserved; de-duplication is the validator's job.
func Segment(heading string, blocks []string) taxonomy.RawCategory {
	raw := taxonomy.RawCategory{Heading: heading}

	state := inNotes
	for _, block := range blocks {
		text := strings.TrimSpace(block)
		if text == "" || boilerplate.Matches(text) {
			continue
		}
		if state == inNotes && codePrefix.MatchString(text) {
			state = inEntries
		}
		switch state {
		case inNotes:
			// Everything before the first code is a note, including blocks
			// that do not look like descriptive guidance.
			raw.Notes = append(raw.Notes, text)
		case inEntries:
			match := entryLine.FindStringSubmatch(text)
			if match == nil {
				// Stray text after the boundary is dropped, not demoted to a
				// note. Notes only exist before the first code.
				continue
			}
			raw.Entries = append(raw.Entries, taxonomy.Entry{
				Code:  match[1],
				Label: strings.TrimSpace(match[2]),
			})
		}
	}
	return raw
}
