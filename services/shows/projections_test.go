package shows

import (
	"testing"

	"showguide/models"
)

func episodeFixture() []models.Episode {
	return []models.Episode{
		{Season: 1, Number: 1, Title: "Pilot", ReleaseDate: "2008-01-20", IsReleased: true, EpisodeNumber: 1},
		{Season: 1, Number: 2, Title: "Second", ReleaseDate: "2008-01-27", IsReleased: true, EpisodeNumber: 2},
		{Season: 2, Number: 1, Title: "Return", ReleaseDate: "2009-02-10", IsReleased: true, EpisodeNumber: 3},
		{Season: 2, Number: 2, Title: "Upcoming", ReleaseDate: "2030-01-01", IsReleased: false, EpisodeNumber: 4},
		{Season: 2, Number: 3, Title: "Later", ReleaseDate: "2030-01-08", IsReleased: false, EpisodeNumber: 5},
	}
}

func TestNextEpisode(t *testing.T) {
	ep, ok := NextEpisode(episodeFixture())
	if !ok || ep.Title != "Upcoming" {
		t.Fatalf("got %+v ok=%v, want Upcoming", ep, ok)
	}

	if _, ok := NextEpisode(episodeFixture()[:3]); ok {
		t.Error("fully released show has no next episode")
	}
	if _, ok := NextEpisode(nil); ok {
		t.Error("empty list has no next episode")
	}
}

func TestLatestEpisode(t *testing.T) {
	ep, ok := LatestEpisode(episodeFixture())
	if !ok || ep.Title != "Return" {
		t.Fatalf("got %+v ok=%v, want Return", ep, ok)
	}

	if _, ok := LatestEpisode(episodeFixture()[3:]); ok {
		t.Error("nothing released means no latest episode")
	}
}

func TestFirstEpisode(t *testing.T) {
	ep, ok := FirstEpisode(episodeFixture())
	if !ok || ep.Title != "Pilot" {
		t.Fatalf("got %+v ok=%v, want Pilot", ep, ok)
	}
}

func TestFindEpisode(t *testing.T) {
	ep, ok := FindEpisode(episodeFixture(), 2, 1)
	if !ok || ep.Title != "Return" {
		t.Fatalf("got %+v ok=%v, want Return", ep, ok)
	}
	if _, ok := FindEpisode(episodeFixture(), 3, 1); ok {
		t.Error("season 3 does not exist")
	}
}

func TestEpisodeReleased(t *testing.T) {
	released, found := EpisodeReleased(episodeFixture(), 1, 1)
	if !found || !released {
		t.Errorf("S1E1: released=%v found=%v, want true/true", released, found)
	}
	released, found = EpisodeReleased(episodeFixture(), 2, 2)
	if !found || released {
		t.Errorf("S2E2: released=%v found=%v, want false/true", released, found)
	}
	if _, found := EpisodeReleased(episodeFixture(), 9, 9); found {
		t.Error("S9E9 should not be found")
	}
}

func TestNextFrom(t *testing.T) {
	ep, ok := NextFrom(episodeFixture(), 1, 1)
	if !ok || ep.Title != "Second" {
		t.Fatalf("after S1E1 got %+v, want Second", ep)
	}

	// End of season rolls over to the next season's opener.
	ep, ok = NextFrom(episodeFixture(), 1, 2)
	if !ok || ep.Title != "Return" {
		t.Fatalf("after S1E2 got %+v, want Return", ep)
	}

	if _, ok := NextFrom(episodeFixture(), 2, 3); ok {
		t.Error("nothing follows the last known episode")
	}
}

func TestSeasonStats(t *testing.T) {
	stats := SeasonStats(episodeFixture())
	if len(stats) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(stats))
	}
	if stats[0].Number != 1 || stats[0].EpisodeCount != 2 {
		t.Errorf("season 1 stats = %+v", stats[0])
	}
	if stats[0].PremiereDate != "2008-01-20" || stats[0].EndDate != "2008-01-27" {
		t.Errorf("season 1 dates = %s..%s", stats[0].PremiereDate, stats[0].EndDate)
	}
	if stats[1].Number != 2 || stats[1].EpisodeCount != 3 {
		t.Errorf("season 2 stats = %+v", stats[1])
	}
	if stats[1].EndDate != "2030-01-08" {
		t.Errorf("season 2 end = %s", stats[1].EndDate)
	}

	if got := SeasonStats(nil); len(got) != 0 {
		t.Errorf("empty input should yield no stats, got %+v", got)
	}
}
