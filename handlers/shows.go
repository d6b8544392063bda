package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"showguide/models"
	"showguide/services/shows"
)

// episodeFilter answers natural-language questions over an episode list.
// Implemented by the assist service; nil disables the feature.
type episodeFilter interface {
	IsConfigured() bool
	FilterEpisodes(ctx context.Context, query string, episodes []models.Episode) ([]models.Episode, bool)
}

// ShowsHandler serves the show and episode endpoints.
type ShowsHandler struct {
	Service *shows.Service
	Assist  episodeFilter
}

func NewShowsHandler(service *shows.Service, assist episodeFilter) *ShowsHandler {
	return &ShowsHandler{Service: service, Assist: assist}
}

// Register attaches all show routes to the router.
func (h *ShowsHandler) Register(r *mux.Router) {
	r.HandleFunc("/shows", h.ListShows).Methods(http.MethodGet)
	r.HandleFunc("/shows/search", h.SearchShows).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}", h.GetShow).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes", h.GetEpisodes).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/seasons", h.GetSeasons).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes/next", h.NextEpisode).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes/latest", h.LatestEpisode).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes/first", h.FirstEpisode).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes/{season:[0-9]+}/{number:[0-9]+}", h.GetEpisode).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes/{season:[0-9]+}/{number:[0-9]+}/released", h.EpisodeReleased).Methods(http.MethodGet)
	r.HandleFunc("/shows/{key}/episodes/{season:[0-9]+}/{number:[0-9]+}/next", h.NextFrom).Methods(http.MethodGet)
}

// ListShows returns the full show listing. Supports offset/limit paging and
// an optional on-the-fly IMDB id enrichment pass over the returned page.
func (h *ShowsHandler) ListShows(w http.ResponseWriter, r *http.Request) {
	all, err := h.Service.GetAllShows(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)
	if offset > len(all) {
		offset = len(all)
	}
	page := all[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}

	if r.URL.Query().Get("enrich") == "imdb" {
		page = h.Service.EnrichIMDBIDs(r.Context(), page)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shows": page,
		"total": len(all),
	})
}

func (h *ShowsHandler) SearchShows(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	matched, err := h.Service.SearchShows(r.Context(), query)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if matched == nil {
		matched = []models.Show{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shows": matched,
		"total": len(matched),
	})
}

func (h *ShowsHandler) GetShow(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	show, found, err := h.Service.GetShow(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "show not found")
		return
	}
	writeJSON(w, http.StatusOK, show)
}

// GetEpisodes lists a show's episodes, optionally restricted to one season
// or filtered by a natural-language query.
func (h *ShowsHandler) GetEpisodes(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	episodes, err := h.Service.GetEpisodes(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if seasonStr := r.URL.Query().Get("season"); seasonStr != "" {
		season, err := strconv.Atoi(seasonStr)
		if err != nil || season < 1 {
			writeError(w, http.StatusBadRequest, "invalid season")
			return
		}
		var filtered []models.Episode
		for _, ep := range episodes {
			if ep.Season == season {
				filtered = append(filtered, ep)
			}
		}
		episodes = filtered
	}

	if query := strings.TrimSpace(r.URL.Query().Get("q")); query != "" {
		if h.Assist == nil || !h.Assist.IsConfigured() {
			writeError(w, http.StatusNotImplemented, "natural-language filtering is not configured")
			return
		}
		matched, ok := h.Assist.FilterEpisodes(r.Context(), query, episodes)
		if !ok {
			// Best effort: an unanswerable query falls back to the
			// unfiltered list rather than failing the request.
			log.Printf("[handlers] episode filter unavailable for %s, returning unfiltered list", key)
		} else {
			episodes = matched
		}
	}

	if episodes == nil {
		episodes = []models.Episode{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"episodes": episodes,
		"total":    len(episodes),
	})
}

func (h *ShowsHandler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	episodes, err := h.Service.GetEpisodes(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	stats := shows.SeasonStats(episodes)
	if stats == nil {
		stats = []models.SeasonStats{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"seasons": stats,
		"total":   len(stats),
	})
}

func (h *ShowsHandler) NextEpisode(w http.ResponseWriter, r *http.Request) {
	h.projectEpisode(w, r, shows.NextEpisode, "no upcoming episode")
}

func (h *ShowsHandler) LatestEpisode(w http.ResponseWriter, r *http.Request) {
	h.projectEpisode(w, r, shows.LatestEpisode, "no released episode")
}

func (h *ShowsHandler) FirstEpisode(w http.ResponseWriter, r *http.Request) {
	h.projectEpisode(w, r, shows.FirstEpisode, "no released episode")
}

func (h *ShowsHandler) projectEpisode(w http.ResponseWriter, r *http.Request, project func([]models.Episode) (models.Episode, bool), absenceMsg string) {
	key := mux.Vars(r)["key"]

	episodes, err := h.Service.GetEpisodes(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	ep, ok := project(episodes)
	if !ok {
		writeError(w, http.StatusNotFound, absenceMsg)
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

func (h *ShowsHandler) GetEpisode(w http.ResponseWriter, r *http.Request) {
	key, season, number := episodeVars(r)

	episodes, err := h.Service.GetEpisodes(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	ep, ok := shows.FindEpisode(episodes, season, number)
	if !ok {
		writeError(w, http.StatusNotFound, "episode not found")
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

func (h *ShowsHandler) EpisodeReleased(w http.ResponseWriter, r *http.Request) {
	key, season, number := episodeVars(r)

	episodes, err := h.Service.GetEpisodes(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	released, found := shows.EpisodeReleased(episodes, season, number)
	if !found {
		writeError(w, http.StatusNotFound, "episode not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"released": released})
}

func (h *ShowsHandler) NextFrom(w http.ResponseWriter, r *http.Request) {
	key, season, number := episodeVars(r)

	episodes, err := h.Service.GetEpisodes(r.Context(), key)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	ep, ok := shows.NextFrom(episodes, season, number)
	if !ok {
		writeError(w, http.StatusNotFound, "no following episode")
		return
	}
	writeJSON(w, http.StatusOK, ep)
}

// episodeVars pulls the path parameters for episode routes. The route
// patterns guarantee season and number are numeric.
func episodeVars(r *http.Request) (key string, season, number int) {
	vars := mux.Vars(r)
	season, _ = strconv.Atoi(vars["season"])
	number, _ = strconv.Atoi(vars["number"])
	return vars["key"], season, number
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError maps source failures to 502. The listings site being
// down is the only way these calls fail.
func writeUpstreamError(w http.ResponseWriter, err error) {
	log.Printf("[handlers] upstream failure: %v", err)
	writeError(w, http.StatusBadGateway, "upstream source unavailable")
}
