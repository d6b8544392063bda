package epguides

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// TVMaze is the fallback source for episode rows when the epguides CSV
// export is unreachable or missing. Only episode data has a fallback; the
// master list and show summaries do not.

type tvmazeShow struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Embedded struct {
		Episodes []tvmazeEpisode `json:"episodes"`
	} `json:"_embedded"`
}

type tvmazeEpisode struct {
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
	AirDate string `json:"airdate"` // YYYY-MM-DD
}

func (c *Client) fetchEpisodesFromTVMaze(ctx context.Context, key string) ([]EpisodeRow, error) {
	endpoint := c.tvmazeBaseURL + "/singlesearch/shows?q=" + url.QueryEscape(key) + "&embed=episodes"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tvmaze search %s: %s", key, resp.Status)
	}

	var show tvmazeShow
	if err := json.NewDecoder(resp.Body).Decode(&show); err != nil {
		return nil, fmt.Errorf("tvmaze decode %s: %w", key, err)
	}

	rows := make([]EpisodeRow, 0, len(show.Embedded.Episodes))
	for _, ep := range show.Embedded.Episodes {
		rows = append(rows, EpisodeRow{
			Season:      strconv.Itoa(ep.Season),
			Number:      strconv.Itoa(ep.Number),
			ReleaseDate: ep.AirDate,
			Title:       ep.Name,
		})
	}
	return rows, nil
}
