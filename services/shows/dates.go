package shows

import (
	"regexp"
	"time"
)

// releaseThresholdHours is the grace window after a scheduled air date before
// an episode counts as released. It absorbs timezone and late-posting skew in
// the upstream schedule data.
const releaseThresholdHours = 32

const isoDate = "2006-01-02"

// episodeDateFormats are the formats epguides uses for episode air dates,
// tried in order. The slash form is the native export format.
var episodeDateFormats = []string{
	"02/Jan/06",
	"02 Jan 06",
	isoDate,
}

// monthYearFormats cover master-list start/end dates given without a day;
// these resolve to the first of the month.
var monthYearFormats = []string{
	"Jan 2006",
	"January 2006",
	"Jan 06",
	"January 06",
}

// placeholderRes match values the upstream uses for "date unknown".
var placeholderRes = []*regexp.Regexp{
	regexp.MustCompile(`^_+`),
	regexp.MustCompile(`(?i)^TBA`),
	regexp.MustCompile(`(?i)^TBD`),
	regexp.MustCompile(`^\?+`),
	regexp.MustCompile(`(?i)^N/A`),
}

// parseDate converts an episode release date string to a calendar date.
// Malformed input reports ok=false, never an error or a default date.
func parseDate(s string, now time.Time) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range episodeDateFormats {
		parsed, err := time.Parse(format, s)
		if err != nil {
			continue
		}
		return fixCentury(parsed, now), true
	}
	return time.Time{}, false
}

// parseLooseDate handles the master list's free-text date fields: it rejects
// placeholders, then tries the episode formats, then month+year forms.
func parseLooseDate(s string, now time.Time) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, re := range placeholderRes {
		if re.MatchString(s) {
			return time.Time{}, false
		}
	}
	if parsed, ok := parseDate(s, now); ok {
		return parsed, true
	}
	for _, format := range monthYearFormats {
		parsed, err := time.Parse(format, s)
		if err != nil {
			continue
		}
		return fixCentury(parsed, now), true
	}
	return time.Time{}, false
}

// fixCentury resolves two-digit-year ambiguity: the parsing library pivots
// 00-68 into the 2000s, so a 1930s-1960s show comes back as a far-future
// date. Any parsed year more than two years ahead of now is moved back a
// century.
func fixCentury(parsed, now time.Time) time.Time {
	if parsed.Year() > now.Year()+2 {
		return parsed.AddDate(-100, 0, 0)
	}
	return parsed
}

// released reports whether a release date is past the recency threshold.
// Monotonic in time: once true it stays true.
func released(releaseDate, now time.Time) bool {
	return now.Sub(releaseDate) > releaseThresholdHours*time.Hour
}
