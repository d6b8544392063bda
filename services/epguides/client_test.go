package epguides

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"showguide/internal/store"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt roundTripFunc) (*Client, *store.MemoryStore) {
	st := store.NewMemoryStore()
	httpc := &http.Client{Transport: rt}
	c := NewClient("http://epguides.test", "http://tvmaze.test", httpc, st)
	return c, st
}

const masterListCSV = `directory,title,network,country,"run time","start date","end date","number of episodes"
BreakingBad,Breaking Bad,AMC,US,60 min,Jan 2008,Sep 2013,62 eps
TheWire,The Wire,HBO,US,60 min,Jun 2002,Mar 2008,60 eps
,No Directory,XYZ,US,30 min,Jan 2001,Jan 2002,10 eps
`

func TestMasterList(t *testing.T) {
	var fetches int
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/common/allshows.txt" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		fetches++
		return textResponse(http.StatusOK, masterListCSV), nil
	})

	rows, err := client.MasterList(context.Background())
	if err != nil {
		t.Fatalf("MasterList: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (header and empty-directory rows skipped), got %d", len(rows))
	}
	if rows[0].Directory != "BreakingBad" || rows[0].Title != "Breaking Bad" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[0].RunTime != "60 min" || rows[0].EpisodeCount != "62 eps" {
		t.Errorf("row 0 free-text fields = %+v", rows[0])
	}

	// Second call must come from cache.
	if _, err := client.MasterList(context.Background()); err != nil {
		t.Fatalf("cached MasterList: %v", err)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1", fetches)
	}
}

func TestMasterListNoFallback(t *testing.T) {
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	if _, err := client.MasterList(context.Background()); err == nil {
		t.Fatal("master list failure must surface, there is no fallback")
	}
}

func TestShowEpisodesRageExport(t *testing.T) {
	showPage := `<html><a href="http://epguides.test/common/exportToCSV.asp?rage=3021">csv</a></html>`
	// Rage layout: number,season,episode,prodnum,airdate,title,...
	exportCSV := "number,season,episode,production code,airdate,title,special?,tvrage\n" +
		"1,1,1,,20/Jan/08,\"Pilot\",n,\n" +
		"2,1,2,,27/Jan/08,\"Cat's in the Bag...\",n,\n"

	client, st := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/BreakingBad":
			return textResponse(http.StatusOK, showPage), nil
		case req.URL.Path == "/common/exportToCSV.asp" && req.URL.Query().Get("rage") == "3021":
			return textResponse(http.StatusOK, exportCSV), nil
		}
		t.Errorf("unexpected request %s", req.URL)
		return textResponse(http.StatusNotFound, ""), nil
	})

	rows, err := client.ShowEpisodes(context.Background(), "BreakingBad")
	if err != nil {
		t.Fatalf("ShowEpisodes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Season != "1" || rows[0].Number != "1" || rows[0].ReleaseDate != "20/Jan/08" || rows[0].Title != "Pilot" {
		t.Errorf("row 0 = %+v", rows[0])
	}

	// A successful fetch registers the key for discovery.
	keys, err := st.KnownShowKeys(context.Background())
	if err != nil {
		t.Fatalf("KnownShowKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "BreakingBad" {
		t.Errorf("known keys = %v", keys)
	}
}

func TestShowEpisodesMazeExport(t *testing.T) {
	showPage := `<a href="common/exportToCSVmaze.asp?maze=169">csv</a>`
	// Maze layout: number,season,episode,airdate,title,...
	exportCSV := "number,season,episode,airdate,title,tvmaze link\n" +
		"1,1,1,2008-01-20,\"Pilot\",link\n"

	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch {
		case req.URL.Path == "/BreakingBad":
			return textResponse(http.StatusOK, showPage), nil
		case req.URL.Path == "/common/exportToCSVmaze.asp" && req.URL.Query().Get("maze") == "169":
			return textResponse(http.StatusOK, exportCSV), nil
		}
		t.Errorf("unexpected request %s", req.URL)
		return textResponse(http.StatusNotFound, ""), nil
	})

	rows, err := client.ShowEpisodes(context.Background(), "BreakingBad")
	if err != nil {
		t.Fatalf("ShowEpisodes: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ReleaseDate != "2008-01-20" || rows[0].Title != "Pilot" {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestShowEpisodesFallsBackToTVMaze(t *testing.T) {
	tvmazeJSON := `{"id":169,"name":"Breaking Bad","_embedded":{"episodes":[
		{"season":1,"number":1,"name":"Pilot","airdate":"2008-01-20"},
		{"season":1,"number":2,"name":"Cat's in the Bag...","airdate":"2008-01-27"}
	]}}`

	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host == "tvmaze.test" {
			if req.URL.Path != "/singlesearch/shows" || req.URL.Query().Get("q") != "breakingbad" {
				t.Errorf("unexpected tvmaze request %s", req.URL)
			}
			return textResponse(http.StatusOK, tvmazeJSON), nil
		}
		// Epguides show page has no export link at all.
		return textResponse(http.StatusOK, "<html>nothing here</html>"), nil
	})

	rows, err := client.ShowEpisodes(context.Background(), "breakingbad")
	if err != nil {
		t.Fatalf("ShowEpisodes: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows from tvmaze, got %d", len(rows))
	}
	if rows[1].Season != "1" || rows[1].Number != "2" || rows[1].ReleaseDate != "2008-01-27" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestShowEpisodesBothSourcesFail(t *testing.T) {
	client, st := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(http.StatusInternalServerError, ""), nil
	})

	if _, err := client.ShowEpisodes(context.Background(), "gone"); err == nil {
		t.Fatal("expected an error when both sources fail")
	}
	keys, _ := st.KnownShowKeys(context.Background())
	if len(keys) != 0 {
		t.Errorf("failed fetch must not register the key, got %v", keys)
	}
}

func TestShowEpisodesServedFromCache(t *testing.T) {
	var mu sync.Mutex
	var fetches int
	showPage := `<a href="common/exportToCSVmaze.asp?maze=169">csv</a>`
	exportCSV := "number,season,episode,airdate,title\n1,1,1,2008-01-20,Pilot\n"

	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		fetches++
		mu.Unlock()
		if req.URL.Path == "/BreakingBad" {
			return textResponse(http.StatusOK, showPage), nil
		}
		return textResponse(http.StatusOK, exportCSV), nil
	})

	for i := 0; i < 3; i++ {
		if _, err := client.ShowEpisodes(context.Background(), "BreakingBad"); err != nil {
			t.Fatalf("ShowEpisodes #%d: %v", i, err)
		}
	}
	if fetches != 2 {
		t.Errorf("fetches = %d, want 2 (show page + export, once)", fetches)
	}
}

func TestShowSummary(t *testing.T) {
	page := `<html><h2><a href="https://www.imdb.com/title/tt0903747/">Breaking Bad</a></h2></html>`
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, page), nil
	})

	summary, ok, err := client.ShowSummary(context.Background(), "BreakingBad")
	if err != nil {
		t.Fatalf("ShowSummary: %v", err)
	}
	if !ok {
		t.Fatal("expected a summary")
	}
	if summary.IMDBIDRaw != "tt0903747" {
		t.Errorf("imdb id = %q", summary.IMDBIDRaw)
	}
	if summary.Title != "Breaking Bad" {
		t.Errorf("title = %q", summary.Title)
	}
}

func TestShowSummaryNoIMDBID(t *testing.T) {
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, "<html><h2>Some Show</h2></html>"), nil
	})

	_, ok, err := client.ShowSummary(context.Background(), "someshow")
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if ok {
		t.Fatal("a page without an imdb id yields no summary")
	}
}

func TestShowSummaryTitleFallsBackToPageTitle(t *testing.T) {
	page := `<html><head><title>Obscure Show (a Titles &amp; Air Dates Guide)</title></head>
	<body>see <a href="http://imdb.com/title/tt123456/">imdb</a></body></html>`
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, page), nil
	})

	summary, ok, err := client.ShowSummary(context.Background(), "obscureshow")
	if err != nil || !ok {
		t.Fatalf("ShowSummary: ok=%v err=%v", ok, err)
	}
	if summary.IMDBIDRaw != "tt123456" {
		t.Errorf("imdb id = %q", summary.IMDBIDRaw)
	}
	if !strings.HasPrefix(summary.Title, "Obscure Show") {
		t.Errorf("title = %q", summary.Title)
	}
}

func TestFetchTextScrubsReplacementRunes(t *testing.T) {
	client, _ := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, "Caf�� Nervosa"), nil
	})

	text, err := client.fetchText(context.Background(), "http://epguides.test/x")
	if err != nil {
		t.Fatalf("fetchText: %v", err)
	}
	if text != "Caf Nervosa" {
		t.Errorf("text = %q", text)
	}
}
