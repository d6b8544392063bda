package shows

import (
	"html"
	"sort"
	"strconv"
	"time"

	"showguide/models"
	"showguide/services/epguides"
)

// assembleEpisodes converts raw per-show rows into canonical, sorted,
// globally-numbered episode records. Rows missing a season, number, title,
// or parseable date are dropped silently; malformed upstream rows are common
// and must never abort the batch. Pure and deterministic given its inputs
// and now.
func assembleEpisodes(rows []epguides.EpisodeRow, runTimeMin *int, now time.Time) []models.Episode {
	episodes := make([]models.Episode, 0, len(rows))
	for _, row := range rows {
		season, err := strconv.Atoi(row.Season)
		if err != nil || season < 1 {
			continue
		}
		number, err := strconv.Atoi(row.Number)
		if err != nil || number < 1 {
			continue
		}
		if row.Title == "" {
			continue
		}
		releaseDate, ok := parseDate(row.ReleaseDate, now)
		if !ok {
			continue
		}

		episodes = append(episodes, models.Episode{
			Season:      season,
			Number:      number,
			Title:       html.UnescapeString(row.Title),
			ReleaseDate: releaseDate.Format(isoDate),
			IsReleased:  released(releaseDate, now),
			RunTimeMin:  runTimeMin,
		})
	}

	sort.Slice(episodes, func(i, j int) bool {
		if episodes[i].Season != episodes[j].Season {
			return episodes[i].Season < episodes[j].Season
		}
		return episodes[i].Number < episodes[j].Number
	})
	for i := range episodes {
		episodes[i].EpisodeNumber = i + 1
	}
	return episodes
}

// episodeStats are the facts the merger needs from raw episode data, computed
// without building full episode records so show lookup never re-enters
// episode assembly.
type episodeStats struct {
	hasUnreleased   bool
	lastReleaseDate time.Time
	validCount      int
}

// computeEpisodeStats scans raw rows for the end-date inference rule: the
// last release date, whether any episode is still inside the release
// threshold, and how many rows form valid episodes.
func computeEpisodeStats(rows []epguides.EpisodeRow, now time.Time) episodeStats {
	var stats episodeStats
	for _, row := range rows {
		releaseDate, ok := parseDate(row.ReleaseDate, now)
		if !ok {
			continue
		}
		if hasRequiredEpisodeFields(row) {
			stats.validCount++
		}
		if !released(releaseDate, now) {
			stats.hasUnreleased = true
		}
		if releaseDate.After(stats.lastReleaseDate) {
			stats.lastReleaseDate = releaseDate
		}
	}
	return stats
}

func hasRequiredEpisodeFields(row epguides.EpisodeRow) bool {
	return row.Season != "" && row.Number != "" && row.Title != ""
}
