package models

// Show is the canonical merged record for one TV show. The key is the
// normalized epguides directory name (lowercase, no spaces, no leading
// "the"); all other fields are optional metadata from the master list or
// the per-show page.
type Show struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	IMDBID        string `json:"imdbId,omitempty"`        // tt + 7 zero-padded digits
	Network       string `json:"network,omitempty"`
	Country       string `json:"country,omitempty"`
	RunTimeMin    *int   `json:"runTimeMin,omitempty"`    // minutes per episode
	TotalEpisodes *int   `json:"totalEpisodes,omitempty"`
	StartDate     string `json:"startDate,omitempty"`     // YYYY-MM-DD
	EndDate       string `json:"endDate,omitempty"`       // YYYY-MM-DD, derived; set only when every episode has aired
}

// EpguidesURL returns the show's page on epguides.com.
func (s Show) EpguidesURL(baseURL string) string {
	return baseURL + "/" + s.Key
}

// IMDBURL returns the show's IMDB page, or "" when the IMDB ID is unknown.
func (s Show) IMDBURL() string {
	if s.IMDBID == "" {
		return ""
	}
	return "https://www.imdb.com/title/" + s.IMDBID
}

// SeasonStats summarizes one season of a show.
type SeasonStats struct {
	Number       int    `json:"number"`
	EpisodeCount int    `json:"episodeCount"`
	PremiereDate string `json:"premiereDate"` // YYYY-MM-DD
	EndDate      string `json:"endDate"`      // YYYY-MM-DD of the season's last listed episode
}
