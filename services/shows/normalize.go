package shows

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var digitsRe = regexp.MustCompile(`\d+`)

// NormalizeShowID folds a user-supplied show name or key into the canonical
// epguides key: lowercase, spaces removed, leading "the" stripped.
// Idempotent: normalizing an already-normalized key is a no-op.
func NormalizeShowID(showID string) string {
	normalized := strings.ReplaceAll(strings.ToLower(showID), " ", "")
	return strings.TrimPrefix(normalized, "the")
}

// ParseIMDBID reformats a raw IMDB id into the standard two-letter prefix
// plus zero-padded 7-digit form ("tt903747" -> "tt0903747"). Anything that
// doesn't split into prefix + number passes through unchanged.
func ParseIMDBID(raw string) string {
	if len(raw) < 3 {
		return raw
	}
	number, err := strconv.Atoi(raw[2:])
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%s%07d", raw[:2], number)
}

// parseNumeric pulls the first run of digits out of free text ("60 min",
// "279 eps"). No digits means unknown, reported as nil rather than zero.
func parseNumeric(s string) *int {
	match := digitsRe.FindString(s)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}

// knownTitleRepairs lists lowercased fragments of corrupted master-list
// titles and their intended form. The upstream listing drops some non-ASCII
// leading characters, leaving a telltale leading space; this is a
// data-specific lookup, not general encoding repair.
var knownTitleRepairs = []struct {
	fragment string
	repaired string
}{
	{" la carte", "À La Carte"},
}

// cleanTitle trims and repairs master-list titles. A leading space followed
// by "la ..." is the signature of a lost "À".
func cleanTitle(title string) string {
	if title == "" {
		return title
	}
	if strings.HasPrefix(title, " ") && len(title) > 1 {
		lower := strings.ToLower(title)
		for _, repair := range knownTitleRepairs {
			if strings.Contains(lower, repair.fragment) {
				return repair.repaired
			}
		}
		if strings.HasPrefix(lower, " la ") {
			return "À" + title
		}
		return strings.TrimLeft(title, " ")
	}
	return strings.TrimSpace(title)
}
