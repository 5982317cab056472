// Package query turns free-text user input into an optional (track, artist)
// pair. Parsing is a pure function with no I/O.
package query

import (
	"regexp"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	byRe    = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)
)

// separators tried in priority order after the "by" pattern. The hyphen
// comes first, then em dash, then en dash.
var separators = []string{" - ", " — ", " – "}

// NormalizeSpace collapses runs of whitespace to single spaces and trims
// leading and trailing whitespace.
func NormalizeSpace(s string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Parsed holds the outcome of parsing one query. Empty strings mean the
// part was not present in the input.
type Parsed struct {
	Track  string
	Artist string
}

// Parse splits raw user text into a track and artist.
//
// Rules, applied to the whitespace-normalized text in priority order:
//
//  1. "<track> by <artist>" with "by" as a case-insensitive whole word.
//  2. The first occurrence of " - ", then " — ", then " – "; the split is
//     accepted only when both sides are non-empty after normalization.
//  3. Anything else is treated as an artist name on its own.
//
// Empty input yields a zero Parsed.
func Parse(text string) Parsed {
	t := NormalizeSpace(text)
	if t == "" {
		return Parsed{}
	}

	if m := byRe.FindStringSubmatch(t); m != nil {
		return Parsed{Track: NormalizeSpace(m[1]), Artist: NormalizeSpace(m[2])}
	}

	for _, sep := range separators {
		if idx := strings.Index(t, sep); idx >= 0 {
			left := NormalizeSpace(t[:idx])
			right := NormalizeSpace(t[idx+len(sep):])
			if left != "" && right != "" {
				return Parsed{Track: left, Artist: right}
			}
		}
	}

	return Parsed{Artist: t}
}
