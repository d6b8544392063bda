package epguides

// ShowRow is one raw master-list row. Fields hold the untouched CSV text;
// validation and conversion happen in the shows service, never here.
type ShowRow struct {
	Directory     string `json:"directory"`
	Title         string `json:"title"`
	Network       string `json:"network"`
	Country       string `json:"country"`
	RunTime       string `json:"runTime"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	EpisodeCount  string `json:"episodeCount"`
}

// EpisodeRow is one raw per-show episode row, either from an epguides CSV
// export or from the TVMaze fallback.
type EpisodeRow struct {
	Season      string `json:"season"`
	Number      string `json:"number"`
	ReleaseDate string `json:"releaseDate"`
	Title       string `json:"title"`
}

// Summary is the scraped per-show page metadata: the raw (unpadded) IMDB id
// and the page title.
type Summary struct {
	IMDBIDRaw string `json:"imdbIdRaw"`
	Title     string `json:"title"`
}
