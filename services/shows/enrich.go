package shows

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc/pool"

	"showguide/models"
)

const (
	enrichBatchSize  = 5
	enrichBatchDelay = 500 * time.Millisecond
)

// EnrichIMDBIDs fills missing IMDB ids by scraping each show's page. Shows
// that already carry an id pass through untouched, as does any show whose
// scrape fails. The result preserves the input's order and length.
func (s *Service) EnrichIMDBIDs(ctx context.Context, in []models.Show) []models.Show {
	out := make([]models.Show, len(in))
	copy(out, in)

	var candidates []int
	for i, show := range out {
		if show.IMDBID == "" {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return out
	}
	log.Printf("[shows] enriching imdb ids for %d of %d shows", len(candidates), len(out))

	for start := 0; start < len(candidates); start += s.batchSize {
		end := start + s.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		p := pool.New().WithMaxGoroutines(s.batchSize)
		for _, idx := range candidates[start:end] {
			idx := idx
			p.Go(func() {
				summary, ok, err := s.source.ShowSummary(ctx, out[idx].Key)
				if err != nil {
					log.Printf("[shows] enrich %s: %v", out[idx].Key, err)
					return
				}
				if !ok || summary.IMDBIDRaw == "" {
					return
				}
				out[idx].IMDBID = ParseIMDBID(summary.IMDBIDRaw)
			})
		}
		p.Wait()

		// Spread scrapes out so the listings site never sees a sustained
		// burst. No pause after the final batch.
		if end < len(candidates) {
			s.pause(s.batchDelay)
		}
	}
	return out
}
