package event

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"subscriber-activity-backend/config"
)

// Source supplies the full list of lifecycle events for each poll cycle.
type Source interface {
	FetchAll(ctx context.Context) ([]LifecycleEvent, error)
}

// feedResponse models the OSS event feed's envelope.
type feedResponse struct {
	Data  []LifecycleEvent `json:"data"`
	Count int              `json:"count"`
}

// HTTPSource fetches lifecycle events from the OSS REST feed with
// limit/offset pagination.
type HTTPSource struct {
	cfg    config.FeedRequest
	client *http.Client
}

// NewHTTPSource builds an HTTPSource from the poller configuration.
func NewHTTPSource(cfg config.PollerConfig) *HTTPSource {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Printf("Warning: invalid proxy URL %q: %v. Poller will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &HTTPSource{
		cfg: cfg.Feed,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// FetchAll pages through the feed until a short page or the page cap is hit.
func (s *HTTPSource) FetchAll(ctx context.Context) ([]LifecycleEvent, error) {
	var all []LifecycleEvent
	for page := 0; page < s.cfg.MaxPages; page++ {
		batch, err := s.fetchPage(ctx, page*s.cfg.PageSize)
		if err != nil {
			if len(all) > 0 {
				log.Printf("Error fetching event page %d, continuing with %d events: %v", page, len(all), err)
				break
			}
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < s.cfg.PageSize {
			break
		}
	}
	return all, nil
}

func (s *HTTPSource) fetchPage(ctx context.Context, offset int) ([]LifecycleEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(s.cfg.PageSize))
	q.Set("offset", strconv.Itoa(offset))
	req.URL.RawQuery = q.Encode()

	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed response: %w", err)
	}

	return feed.Data, nil
}
