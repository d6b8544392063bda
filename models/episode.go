package models

// Episode is one canonical episode record, rebuilt from raw source rows on
// every read. EpisodeNumber is the global 1-indexed position across all
// seasons in (season, number) order.
type Episode struct {
	Season        int    `json:"season"`
	Number        int    `json:"number"`
	Title         string `json:"title"`
	ReleaseDate   string `json:"releaseDate"` // YYYY-MM-DD
	IsReleased    bool   `json:"isReleased"`
	EpisodeNumber int    `json:"episodeNumber"`
	RunTimeMin    *int   `json:"runTimeMin,omitempty"`
}
