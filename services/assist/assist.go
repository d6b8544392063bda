package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"showguide/models"
)

// maxEpisodeSummaries caps how much of an episode list is shown to the
// model. Long-running shows would otherwise blow the prompt budget.
const maxEpisodeSummaries = 50

// Service answers natural-language questions over an episode list by asking
// an OpenAI-compatible chat completions endpoint. The whole feature is best
// effort: when the service is unconfigured or the model misbehaves, callers
// fall back to the unfiltered list.
type Service struct {
	apiURL string
	apiKey string
	model  string
	httpc  *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration

	attempts   uint
	retryDelay time.Duration
}

func New(apiURL, apiKey, model string, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Service{
		apiURL:      strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		apiKey:      strings.TrimSpace(apiKey),
		model:       model,
		httpc:       httpc,
		minInterval: 100 * time.Millisecond,
		attempts:    3,
		retryDelay:  500 * time.Millisecond,
	}
}

func (s *Service) IsConfigured() bool {
	return s.apiURL != "" && s.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// FilterEpisodes returns the episodes matching a natural-language query, in
// their original order. ok=false means the answer is unavailable (service
// unconfigured, transport failure, or unparseable model output), never that
// zero episodes matched.
func (s *Service) FilterEpisodes(ctx context.Context, query string, episodes []models.Episode) ([]models.Episode, bool) {
	if !s.IsConfigured() || len(episodes) == 0 {
		return nil, false
	}

	shown := episodes
	if len(shown) > maxEpisodeSummaries {
		shown = shown[len(shown)-maxEpisodeSummaries:]
	}

	indices, err := s.askForIndices(ctx, query, shown)
	if err != nil {
		log.Printf("[assist] episode filter failed: %v", err)
		return nil, false
	}

	byIndex := make(map[int]bool, len(indices))
	for _, idx := range indices {
		byIndex[idx] = true
	}
	var matched []models.Episode
	for _, ep := range episodes {
		if byIndex[ep.EpisodeNumber] {
			matched = append(matched, ep)
		}
	}
	return matched, true
}

func (s *Service) askForIndices(ctx context.Context, query string, episodes []models.Episode) ([]int, error) {
	var sb strings.Builder
	for _, ep := range episodes {
		fmt.Fprintf(&sb, "%d: S%02dE%02d %q aired %s\n", ep.EpisodeNumber, ep.Season, ep.Number, ep.Title, ep.ReleaseDate)
	}

	prompt := fmt.Sprintf(`You are an episode guide assistant. Below is a numbered list of TV episodes, then a user question. Answer with ONLY a JSON array of the numbers of the episodes that match the question, for example [3,4,5]. If none match, answer [].

Episodes:
%s
Question: %s`, sb.String(), query)

	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	s.throttle()

	content, err := retry.DoWithData(
		func() (string, error) { return s.postChat(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var perm *permanentError
			return !errors.As(err, &perm)
		}),
	)
	if err != nil {
		return nil, err
	}

	return parseIndexArray(content)
}

// permanentError marks chat failures that a retry cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (s *Service) postChat(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &permanentError{err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("chat completions: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return "", &permanentError{fmt.Errorf("chat completions %d: %s", resp.StatusCode, string(raw))}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &permanentError{fmt.Errorf("decode chat response: %w", err)}
	}
	if parsed.Error != nil {
		return "", &permanentError{errors.New(parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &permanentError{errors.New("empty chat response")}
	}
	return parsed.Choices[0].Message.Content, nil
}

func (s *Service) throttle() {
	s.throttleMu.Lock()
	defer s.throttleMu.Unlock()
	since := time.Since(s.lastRequest)
	if since < s.minInterval {
		time.Sleep(s.minInterval - since)
	}
	s.lastRequest = time.Now()
}

// parseIndexArray decodes the model's answer, tolerating a markdown code
// fence around the JSON.
func parseIndexArray(content string) ([]int, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var indices []int
	if err := json.Unmarshal([]byte(cleaned), &indices); err != nil {
		return nil, fmt.Errorf("parse index array: %w (raw: %s)", err, content)
	}
	return indices, nil
}
