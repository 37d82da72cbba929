package segment

import "strings"

// boilerplatePatterns holds lowercase substrings that identify page furniture
// repeated on every category page of the source. A block matching any of them
// contributes to neither notes nor entries.
var boilerplatePatterns = []string{
	"all rights reserved",
	"copyright",
	"to download a spreadsheet",
	"download the complete list",
	"click here to return",
	"for questions about these subject codes",
	"terms of use",
}

var boilerplate = newBlockPatternList(boilerplatePatterns)

// blockPatternList matches text blocks against a fixed set of lowercase
// substrings.
type blockPatternList struct {
	patterns []string
}

func newBlockPatternList(patterns []string) *blockPatternList {
	matcher := &blockPatternList{}
	for _, raw := range patterns {
		value := strings.ToLower(strings.TrimSpace(raw))
		if value == "" {
			continue
		}
		matcher.patterns = append(matcher.patterns, value)
	}
	if len(matcher.patterns) == 0 {
		return nil
	}
	return matcher
}

func (b *blockPatternList) Matches(block string) bool {
	if b == nil {
		return false
	}
	text := strings.ToLower(block)
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, pattern := range b.patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
