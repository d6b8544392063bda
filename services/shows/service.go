package shows

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"showguide/models"
	"showguide/services/epguides"
)

// Source provides raw rows from the listings site. The shows service only
// ever consumes raw data through this interface; derived records are rebuilt
// on every read.
type Source interface {
	MasterList(ctx context.Context) ([]epguides.ShowRow, error)
	ShowEpisodes(ctx context.Context, key string) ([]epguides.EpisodeRow, error)
	ShowSummary(ctx context.Context, key string) (epguides.Summary, bool, error)
}

// Registry lists show keys that have been looked up directly, so discovery
// listings stay complete for shows missing from the master list.
type Registry interface {
	KnownShowKeys(ctx context.Context) ([]string, error)
}

// Service merges master-list metadata with per-show scrape data and derives
// temporal facts about episodes.
type Service struct {
	source   Source
	registry Registry

	// now is swappable in tests.
	now func() time.Time

	// Enrichment batching (see enrich.go). pause is swappable in tests.
	batchSize  int
	batchDelay time.Duration
	pause      func(time.Duration)
}

func New(source Source, registry Registry) *Service {
	return &Service{
		source:     source,
		registry:   registry,
		now:        time.Now,
		batchSize:  enrichBatchSize,
		batchDelay: enrichBatchDelay,
		pause:      time.Sleep,
	}
}

// GetShow returns the merged record for one show, or found=false when the
// key is absent from both the master list and the per-show source. The
// master list wins on every field it carries; the per-show scrape only fills
// identifier gaps or stands in when the master list has no row at all.
func (s *Service) GetShow(ctx context.Context, showID string) (models.Show, bool, error) {
	key := NormalizeShowID(showID)

	index, err := s.masterIndex(ctx)
	if err != nil {
		return models.Show{}, false, err
	}

	show, found := index[key]
	if !found {
		return s.showFromScrape(ctx, key)
	}

	if show.IMDBID == "" {
		// Best effort: a summary failure leaves the id unset rather than
		// failing the whole lookup.
		if summary, ok, err := s.source.ShowSummary(ctx, key); err != nil {
			log.Printf("[shows] summary fetch for %s failed: %v", key, err)
		} else if ok && summary.IMDBIDRaw != "" {
			show.IMDBID = ParseIMDBID(summary.IMDBIDRaw)
		}
	}

	if show.EndDate == "" {
		s.applyEpisodeStats(ctx, key, &show)
	}

	return show, true, nil
}

// applyEpisodeStats derives the end date and corrects the episode count from
// raw episode rows. It consumes raw rows directly instead of going through
// GetEpisodes so show lookup and episode assembly never call into each other.
func (s *Service) applyEpisodeStats(ctx context.Context, key string, show *models.Show) {
	rows, err := s.source.ShowEpisodes(ctx, key)
	if err != nil {
		log.Printf("[shows] episode stats for %s unavailable: %v", key, err)
		return
	}

	stats := computeEpisodeStats(rows, s.now())
	// An end date is only ever inferred once every known episode is past the
	// release threshold; it is never guessed from metadata alone.
	if !stats.hasUnreleased && !stats.lastReleaseDate.IsZero() {
		show.EndDate = stats.lastReleaseDate.Format(isoDate)
	}
	if stats.validCount > 0 {
		// The counted episodes beat the master list's free-text count.
		count := stats.validCount
		show.TotalEpisodes = &count
	}
}

// showFromScrape builds a minimal record straight from the per-show page for
// keys the master list doesn't carry. No network/country/runtime metadata is
// available on this path.
func (s *Service) showFromScrape(ctx context.Context, key string) (models.Show, bool, error) {
	summary, ok, err := s.source.ShowSummary(ctx, key)
	if err != nil {
		return models.Show{}, false, fmt.Errorf("scrape show %s: %w", key, err)
	}
	if !ok {
		return models.Show{}, false, nil
	}
	return models.Show{
		Key:    key,
		Title:  summary.Title,
		IMDBID: ParseIMDBID(summary.IMDBIDRaw),
	}, true, nil
}

// GetAllShows lists every master-list show, plus minimal records for
// registry keys the master list doesn't carry.
func (s *Service) GetAllShows(ctx context.Context) ([]models.Show, error) {
	rows, err := s.source.MasterList(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	shows := make([]models.Show, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		show := s.mapShowRow(row, now)
		shows = append(shows, show)
		seen[show.Key] = true
	}

	extras, err := s.registry.KnownShowKeys(ctx)
	if err != nil {
		// The registry is best effort for discovery; the master list alone
		// is still a complete answer.
		log.Printf("[shows] known-shows registry unavailable: %v", err)
		return shows, nil
	}
	sort.Strings(extras)
	for _, key := range extras {
		if seen[key] {
			continue
		}
		shows = append(shows, models.Show{Key: key, Title: key})
	}
	return shows, nil
}

// SearchShows performs a case-insensitive substring match on show titles.
func (s *Service) SearchShows(ctx context.Context, query string) ([]models.Show, error) {
	all, err := s.GetAllShows(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var matched []models.Show
	for _, show := range all {
		if strings.Contains(strings.ToLower(show.Title), needle) {
			matched = append(matched, show)
		}
	}
	return matched, nil
}

// GetEpisodes returns the canonical episode list for a show, rebuilt from
// raw rows on every read. The parent show's runtime is threaded in as a
// plain value so episode assembly never calls back into show lookup.
func (s *Service) GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error) {
	key := NormalizeShowID(showID)

	rows, err := s.source.ShowEpisodes(ctx, key)
	if err != nil {
		return nil, err
	}

	var runTimeMin *int
	if index, err := s.masterIndex(ctx); err != nil {
		log.Printf("[shows] master list unavailable for runtime of %s: %v", key, err)
	} else if show, ok := index[key]; ok {
		runTimeMin = show.RunTimeMin
	}

	return assembleEpisodes(rows, runTimeMin, s.now()), nil
}

// masterIndex maps normalized keys to master-list shows for O(1) lookup.
func (s *Service) masterIndex(ctx context.Context) (map[string]models.Show, error) {
	rows, err := s.source.MasterList(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	index := make(map[string]models.Show, len(rows))
	for _, row := range rows {
		show := s.mapShowRow(row, now)
		if _, dup := index[show.Key]; !dup {
			index[show.Key] = show
		}
	}
	return index, nil
}

// mapShowRow converts a raw master-list row into a canonical Show.
func (s *Service) mapShowRow(row epguides.ShowRow, now time.Time) models.Show {
	show := models.Show{
		Key:           NormalizeShowID(row.Directory),
		Title:         cleanTitle(row.Title),
		Network:       row.Network,
		Country:       row.Country,
		RunTimeMin:    parseNumeric(row.RunTime),
		TotalEpisodes: parseNumeric(row.EpisodeCount),
	}
	if start, ok := parseLooseDate(row.StartDate, now); ok {
		show.StartDate = start.Format(isoDate)
	}
	if end, ok := parseLooseDate(row.EndDate, now); ok {
		show.EndDate = end.Format(isoDate)
	}
	return show
}
