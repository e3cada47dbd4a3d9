package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/guildhall/arena/internal/cache"
	"github.com/guildhall/arena/internal/model"
)

const (
	githubCacheTTL = 5 * time.Minute

	// Response bodies larger than this are truncated rather than
	// buffered in full.
	maxFetchBodyBytes = 4 << 20 // 4 MiB
)

// ExternalService proxies outbound HTTP fetches and the GitHub lookup.
// Every fetch is recorded through the APILogRecorder.
type ExternalService struct {
	client        *http.Client
	recorder      *APILogRecorder
	cache         cache.Cache
	githubBaseURL string
	maxBatchURLs  int
}

// ExternalServiceConfig holds configuration for the external service
type ExternalServiceConfig struct {
	FetchTimeout  time.Duration
	GitHubBaseURL string
	MaxBatchURLs  int
	Recorder      *APILogRecorder
	Cache         cache.Cache

	// Client overrides the default HTTP client, used in tests
	Client *http.Client
}

// NewExternalService creates a new external service
func NewExternalService(cfg ExternalServiceConfig) *ExternalService {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewNoop()
	}
	maxBatch := cfg.MaxBatchURLs
	if maxBatch <= 0 {
		maxBatch = 10
	}
	baseURL := strings.TrimSuffix(cfg.GitHubBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}

	return &ExternalService{
		client:        client,
		recorder:      cfg.Recorder,
		cache:         c,
		githubBaseURL: baseURL,
		maxBatchURLs:  maxBatch,
	}
}

// FetchResult is the outcome of a single proxied fetch
type FetchResult struct {
	URL          string      `json:"url,omitempty"`
	StatusCode   int         `json:"status_code"`
	Data         interface{} `json:"data"`
	ResponseTime float64     `json:"response_time"`
}

// Fetch retrieves a URL on behalf of a member. Timeouts and connection
// failures map to ErrFetchTimeout and ErrUpstreamUnreachable.
func (s *ExternalService) Fetch(ctx context.Context, userID, rawURL string) (*FetchResult, error) {
	if err := validateFetchURL(rawURL); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.get(ctx, rawURL)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	data := decodeBody(resp)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	s.record(userID, rawURL, resp.StatusCode, elapsed)

	return &FetchResult{
		StatusCode:   resp.StatusCode,
		Data:         data,
		ResponseTime: elapsed,
	}, nil
}

// BatchItem is the outcome of one URL within a batch fetch
type BatchItem struct {
	URL          string      `json:"url"`
	StatusCode   int         `json:"status_code,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	ResponseTime float64     `json:"response_time,omitempty"`
	Error        string      `json:"error,omitempty"`
	Success      bool        `json:"success"`
}

// BatchResult summarizes a parallel batch fetch
type BatchResult struct {
	TotalRequests int         `json:"total_requests"`
	Successful    int         `json:"successful"`
	Failed        int         `json:"failed"`
	TotalTime     float64     `json:"total_time"`
	Results       []BatchItem `json:"results"`
}

// FetchMultiple retrieves several URLs in parallel. Individual failures
// are reported per URL rather than failing the whole batch.
func (s *ExternalService) FetchMultiple(ctx context.Context, userID string, urls []string) (*BatchResult, error) {
	if len(urls) == 0 {
		return nil, ErrInvalidFetchURL
	}
	if len(urls) > s.maxBatchURLs {
		return nil, ErrTooManyURLs
	}

	results := make([]BatchItem, len(urls))
	var wg sync.WaitGroup

	for i, rawURL := range urls {
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			results[i] = s.fetchOne(ctx, userID, rawURL)
		}(i, rawURL)
	}
	wg.Wait()

	batch := &BatchResult{
		TotalRequests: len(urls),
		Results:       results,
	}
	for _, r := range results {
		if r.Success {
			batch.Successful++
			batch.TotalTime += r.ResponseTime
		}
	}
	batch.Failed = batch.TotalRequests - batch.Successful
	batch.TotalTime = round2(batch.TotalTime)

	return batch, nil
}

func (s *ExternalService) fetchOne(ctx context.Context, userID, rawURL string) BatchItem {
	if err := validateFetchURL(rawURL); err != nil {
		return BatchItem{URL: rawURL, Error: err.Error()}
	}

	start := time.Now()
	resp, err := s.get(ctx, rawURL)
	if err != nil {
		return BatchItem{URL: rawURL, Error: err.Error()}
	}
	defer resp.Body.Close()

	data := decodeBody(resp)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	s.record(userID, rawURL, resp.StatusCode, elapsed)

	return BatchItem{
		URL:          rawURL,
		StatusCode:   resp.StatusCode,
		Data:         data,
		ResponseTime: elapsed,
		Success:      true,
	}
}

// GitHubUser proxies a GitHub profile lookup with read-through caching
func (s *ExternalService) GitHubUser(ctx context.Context, username string) (json.RawMessage, error) {
	if username == "" {
		return nil, ErrGitHubUserNotFound
	}

	key := "external:github:" + username
	if data, err := s.cache.Get(ctx, key); err == nil {
		return json.RawMessage(data), nil
	}

	fetchURL := s.githubBaseURL + "/users/" + url.PathEscape(username)

	resp, err := s.get(ctx, fetchURL)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrGitHubUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: github returned status %d", ErrUpstreamUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}

	_ = s.cache.Set(ctx, key, body, githubCacheTTL)
	return json.RawMessage(body), nil
}

func (s *ExternalService) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return s.client.Do(req)
}

func (s *ExternalService) record(userID, endpoint string, statusCode int, responseTimeMS float64) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(&model.APILog{
		UserID:         userID,
		Endpoint:       endpoint,
		Method:         http.MethodGet,
		StatusCode:     statusCode,
		ResponseTimeMS: responseTimeMS,
	})
}

// decodeBody parses a response as JSON when the content type says so,
// otherwise wraps the raw text
func decodeBody(resp *http.Response) interface{} {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes))
	if err != nil {
		return map[string]interface{}{"content": ""}
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var data interface{}
		if err := json.Unmarshal(body, &data); err == nil {
			return data
		}
	}
	return map[string]interface{}{"content": string(body)}
}

func validateFetchURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidFetchURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidFetchURL
	}
	if parsed.Host == "" {
		return ErrInvalidFetchURL
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
