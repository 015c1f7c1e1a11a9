package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_blowouts/checker/internal/metrics"
	"mlb_blowouts/checker/internal/models"
)

// FetchError marks an upstream failure: the API was unreachable, returned a
// non-success status, or sent a payload we could not decode. For the schedule
// endpoint this aborts the whole run for the date.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client is the MLB Stats API client
type Client struct {
	baseURL    string
	sportID    int
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new MLB Stats API client
func NewClient(baseURL string, sportID int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		sportID:    sportID,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request against the Stats API with retry logic
func (c *Client) get(ctx context.Context, endpoint, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	start := time.Now()

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, &FetchError{Endpoint: endpoint, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &FetchError{Endpoint: endpoint, Err: err}
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "mlb-blowout-checker/1.0")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Retry on network errors
			if attempt < c.maxRetries {
				continue
			}
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			return nil, &FetchError{Endpoint: endpoint, Err: err}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if attempt < c.maxRetries {
				continue
			}
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			return nil, &FetchError{Endpoint: endpoint, Err: err}
		}

		switch resp.StatusCode {
		case http.StatusOK:
			log.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("size", len(body)).
				Msg("API request successful")
			metrics.RecordAPICall(endpoint, "ok", time.Since(start).Seconds())
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			return nil, &FetchError{
				Endpoint: endpoint,
				Status:   resp.StatusCode,
				Err:      fmt.Errorf("retryable upstream error: %s", string(body)),
			}

		default:
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			return nil, &FetchError{
				Endpoint: endpoint,
				Status:   resp.StatusCode,
				Err:      fmt.Errorf("unexpected upstream status: %s", string(body)),
			}
		}
	}
}

// FetchSchedule fetches the schedule for a date (YYYY-MM-DD) and flattens it
// to the games for that date
func (c *Client) FetchSchedule(ctx context.Context, date string) ([]models.ScheduleGame, error) {
	body, err := c.get(ctx, "schedule", "v1/schedule", map[string]string{
		"sportId": fmt.Sprintf("%d", c.sportID),
		"date":    date,
	})
	if err != nil {
		return nil, err
	}

	var schedule models.ScheduleResponse
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, &FetchError{Endpoint: "schedule", Err: fmt.Errorf("failed to unmarshal schedule: %w", err)}
	}

	var games []models.ScheduleGame
	for _, d := range schedule.Dates {
		if d.Date == date {
			games = append(games, d.Games...)
		}
	}

	return games, nil
}

// FetchLinescore fetches the live feed for a game and reduces it to the
// per-inning linescore
func (c *Client) FetchLinescore(ctx context.Context, gamePk int64) (models.Linescore, error) {
	path := fmt.Sprintf("v1.1/game/%d/feed/live", gamePk)
	body, err := c.get(ctx, "live_feed", path, nil)
	if err != nil {
		return nil, err
	}

	var feed models.LiveFeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, &FetchError{Endpoint: "live_feed", Err: fmt.Errorf("failed to unmarshal live feed: %w", err)}
	}

	return feed.ToLinescore(), nil
}
