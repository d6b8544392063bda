package epguides

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"showguide/internal/store"
)

const (
	defaultBaseURL       = "http://epguides.com"
	defaultTVMazeBaseURL = "https://api.tvmaze.com"

	masterListTTL = 7 * 24 * time.Hour
	summaryTTL    = 7 * 24 * time.Hour
	// Episode lists change weekly at most; a day of staleness is fine.
	episodesTTL = 24 * time.Hour
)

var (
	rageExportRe = regexp.MustCompile(`exportToCSV\.asp\?rage=(\d+)`)
	mazeExportRe = regexp.MustCompile(`exportToCSVmaze\.asp\?maze=(\d+)`)

	imdbURLRe   = regexp.MustCompile(`(?i)imdb\.com/title/(tt\d+)`)
	h2TitleRe   = regexp.MustCompile(`(?is)<h2>.*?<a[^>]*href=["']?[^"']*title/([^"'/]+)[^"']*["']?[^>]*>([^<]+)</a>`)
	h2SimpleRe  = regexp.MustCompile(`(?i)<h2>([^<]+)</h2>`)
	pageTitleRe = regexp.MustCompile(`(?i)<title>([^<]+)</title>`)
)

// rageColumns and mazeColumns map CSV column indices for the two export
// formats epguides serves.
var (
	rageColumns = episodeColumns{season: 1, number: 2, date: 4, title: 5}
	mazeColumns = episodeColumns{season: 1, number: 2, date: 3, title: 4}
)

type episodeColumns struct {
	season, number, date, title int
}

// Client fetches raw show and episode rows from epguides.com, with TVMaze as
// the fallback source for episode data. Every fetch is wrapped by a
// cache-aside policy over the injected store; the cache holds raw rows only,
// never derived records.
type Client struct {
	baseURL       string
	tvmazeBaseURL string
	httpc         *http.Client
	store         store.Store
}

func NewClient(baseURL, tvmazeBaseURL string, httpc *http.Client, st store.Store) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if tvmazeBaseURL == "" {
		tvmazeBaseURL = defaultTVMazeBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		tvmazeBaseURL: strings.TrimRight(tvmazeBaseURL, "/"),
		httpc:         httpc,
		store:         st,
	}
}

// MasterList returns every raw row of the epguides bulk show listing.
// Failures surface to the caller; there is no fallback source for the
// master list.
func (c *Client) MasterList(ctx context.Context) ([]ShowRow, error) {
	const cacheID = "epguides:masterlist"

	var cached []ShowRow
	if c.cacheGet(ctx, cacheID, &cached) {
		return cached, nil
	}

	body, err := c.fetchText(ctx, c.baseURL+"/common/allshows.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch master list: %w", err)
	}

	rows, err := parseMasterListCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse master list: %w", err)
	}

	c.cacheSet(ctx, cacheID, rows, masterListTTL)
	return rows, nil
}

// ShowEpisodes returns the raw episode rows for one show. The epguides CSV
// export is the primary source; on any failure the TVMaze API is tried
// before surfacing an error. A successful fetch registers the key in the
// known-shows set so discovery listings include shows only ever looked up
// directly.
func (c *Client) ShowEpisodes(ctx context.Context, key string) ([]EpisodeRow, error) {
	cacheID := "epguides:episodes:" + key

	var cached []EpisodeRow
	if c.cacheGet(ctx, cacheID, &cached) {
		return cached, nil
	}

	rows, err := c.fetchEpisodesFromEpguides(ctx, key)
	if err != nil {
		log.Printf("[epguides] episode fetch failed for %s, trying tvmaze: %v", key, err)
		rows, err = c.fetchEpisodesFromTVMaze(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch episodes for %s: %w", key, err)
		}
	}

	c.cacheSet(ctx, cacheID, rows, episodesTTL)
	if err := c.store.AddKnownShow(ctx, key); err != nil {
		log.Printf("[epguides] failed to register show key %s: %v", key, err)
	}
	return rows, nil
}

// ShowSummary scrapes the show page for its raw IMDB id and title. Absence
// (page exists but carries no usable metadata) is reported as ok=false
// without an error; only transport failures return an error.
func (c *Client) ShowSummary(ctx context.Context, key string) (Summary, bool, error) {
	cacheID := "epguides:summary:" + key

	var cached Summary
	if c.cacheGet(ctx, cacheID, &cached) {
		return cached, cached.IMDBIDRaw != "" || cached.Title != "", nil
	}

	body, err := c.fetchText(ctx, c.baseURL+"/"+key)
	if err != nil {
		return Summary{}, false, fmt.Errorf("fetch summary for %s: %w", key, err)
	}

	summary, ok := parseSummary(body)
	if !ok {
		log.Printf("[epguides] no imdb id or title found for %s", key)
		return Summary{}, false, nil
	}

	c.cacheSet(ctx, cacheID, summary, summaryTTL)
	return summary, true, nil
}

func (c *Client) fetchEpisodesFromEpguides(ctx context.Context, key string) ([]EpisodeRow, error) {
	page, err := c.fetchText(ctx, c.baseURL+"/"+key)
	if err != nil {
		return nil, err
	}

	exportURL, columns, err := findExportURL(c.baseURL, page)
	if err != nil {
		return nil, err
	}

	body, err := c.fetchText(ctx, exportURL)
	if err != nil {
		return nil, err
	}
	return parseEpisodeCSV(body, columns), nil
}

// findExportURL locates the CSV export link on a show page. Epguides serves
// two formats depending on the show's upstream listing (TVRage or TVMaze),
// with different column layouts.
func findExportURL(baseURL, page string) (string, episodeColumns, error) {
	if m := rageExportRe.FindStringSubmatch(page); m != nil {
		return baseURL + "/common/exportToCSV.asp?rage=" + m[1], rageColumns, nil
	}
	if m := mazeExportRe.FindStringSubmatch(page); m != nil {
		return baseURL + "/common/exportToCSVmaze.asp?maze=" + m[1], mazeColumns, nil
	}
	return "", episodeColumns{}, fmt.Errorf("no CSV export link on show page")
}

func parseSummary(page string) (Summary, bool) {
	var summary Summary

	if m := imdbURLRe.FindStringSubmatch(page); m != nil {
		summary.IMDBIDRaw = m[1]
	}
	if m := h2TitleRe.FindStringSubmatch(page); m != nil {
		if summary.IMDBIDRaw == "" {
			summary.IMDBIDRaw = m[1]
		}
		summary.Title = strings.TrimSpace(m[2])
	}
	if summary.Title == "" {
		if m := h2SimpleRe.FindStringSubmatch(page); m != nil {
			summary.Title = strings.TrimSpace(m[1])
		}
	}
	if summary.Title == "" {
		if m := pageTitleRe.FindStringSubmatch(page); m != nil {
			summary.Title = strings.TrimSpace(m[1])
		}
	}

	if summary.IMDBIDRaw == "" {
		// A bare title with no id is not enough to build a show record from.
		return Summary{}, false
	}
	if summary.Title == "" {
		summary.Title = "Unknown"
	}
	return summary, true
}

func parseMasterListCSV(body string) ([]ShowRow, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []ShowRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are common in the upstream listing; skip them.
			continue
		}
		directory := field(record, "directory")
		if directory == "" {
			continue
		}
		rows = append(rows, ShowRow{
			Directory:    directory,
			Title:        field(record, "title"),
			Network:      field(record, "network"),
			Country:      field(record, "country"),
			RunTime:      field(record, "run time"),
			StartDate:    field(record, "start date"),
			EndDate:      field(record, "end date"),
			EpisodeCount: field(record, "number of episodes"),
		})
	}
	return rows, nil
}

func parseEpisodeCSV(body string, columns episodeColumns) []EpisodeRow {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	// Both export formats lead with a header line.
	if _, err := reader.Read(); err != nil {
		return nil
	}

	var rows []EpisodeRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		// Rows shorter than the widest referenced column are incomplete.
		if len(record) <= columns.title || len(record) <= columns.date {
			continue
		}
		rows = append(rows, EpisodeRow{
			Season:      strings.TrimSpace(record[columns.season]),
			Number:      strings.TrimSpace(record[columns.number]),
			ReleaseDate: strings.TrimSpace(record[columns.date]),
			Title:       strings.TrimSpace(record[columns.title]),
		})
	}
	return rows
}

func (c *Client) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("get %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	text := string(body)
	// The upstream listing occasionally carries malformed byte sequences that
	// decode to U+FFFD; strip them so the CSV reader sees clean text.
	if strings.ContainsRune(text, '�') {
		text = strings.ReplaceAll(text, "�", "")
	}
	return text, nil
}

func (c *Client) cacheGet(ctx context.Context, key string, v any) bool {
	payload, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("[epguides] cache get %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		log.Printf("[epguides] cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *Client) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("[epguides] cache encode %s: %v", key, err)
		return
	}
	if err := c.store.Set(ctx, key, payload, ttl); err != nil {
		log.Printf("[epguides] cache set %s: %v", key, err)
	}
}
