package shows

import (
	"sort"

	"showguide/models"
)

// The projections below are pure functions over an already-assembled episode
// list. Absence is an ordinary outcome, reported through the ok result.

// NextEpisode returns the first episode that has not yet been released.
func NextEpisode(episodes []models.Episode) (models.Episode, bool) {
	for _, ep := range episodes {
		if !ep.IsReleased {
			return ep, true
		}
	}
	return models.Episode{}, false
}

// LatestEpisode returns the most recently released episode.
func LatestEpisode(episodes []models.Episode) (models.Episode, bool) {
	var latest models.Episode
	found := false
	for _, ep := range episodes {
		if ep.IsReleased {
			latest = ep
			found = true
		}
	}
	return latest, found
}

// FirstEpisode returns the earliest released episode, usually the series
// premiere.
func FirstEpisode(episodes []models.Episode) (models.Episode, bool) {
	for _, ep := range episodes {
		if ep.IsReleased {
			return ep, true
		}
	}
	return models.Episode{}, false
}

// FindEpisode locates a specific episode by season and number.
func FindEpisode(episodes []models.Episode, season, number int) (models.Episode, bool) {
	for _, ep := range episodes {
		if ep.Season == season && ep.Number == number {
			return ep, true
		}
	}
	return models.Episode{}, false
}

// EpisodeReleased reports whether a specific episode exists and is past the
// release threshold.
func EpisodeReleased(episodes []models.Episode, season, number int) (released, found bool) {
	ep, ok := FindEpisode(episodes, season, number)
	if !ok {
		return false, false
	}
	return ep.IsReleased, true
}

// NextFrom returns the episode that follows the given one: the next number
// within the same season when it exists, otherwise the opener of the next
// season.
func NextFrom(episodes []models.Episode, season, number int) (models.Episode, bool) {
	if ep, ok := FindEpisode(episodes, season, number+1); ok {
		return ep, true
	}
	return FindEpisode(episodes, season+1, 1)
}

// SeasonStats summarizes each season's size and date range, in season order.
func SeasonStats(episodes []models.Episode) []models.SeasonStats {
	bySeason := make(map[int]*models.SeasonStats)
	for _, ep := range episodes {
		stats, ok := bySeason[ep.Season]
		if !ok {
			stats = &models.SeasonStats{Number: ep.Season}
			bySeason[ep.Season] = stats
		}
		stats.EpisodeCount++
		if stats.PremiereDate == "" || ep.ReleaseDate < stats.PremiereDate {
			stats.PremiereDate = ep.ReleaseDate
		}
		if ep.ReleaseDate > stats.EndDate {
			stats.EndDate = ep.ReleaseDate
		}
	}

	out := make([]models.SeasonStats, 0, len(bySeason))
	for _, stats := range bySeason {
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
