package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/metrics"
)

// ErrNotFound is returned for a 404. For odds and predictor endpoints it
// means the game simply has no such data.
var ErrNotFound = errors.New("upstream resource not found")

// StatusError is a non-2xx, non-404 response that was not (or no longer) retried.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

// ResponseCache stores raw response bodies of reference endpoints.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// Options configures a Client
type Options struct {
	CoreBaseURL string
	SiteBaseURL string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	Limiter     *rate.Limiter
	Cache       ResponseCache
	CacheTTL    time.Duration
}

// NewOptions builds client options from configuration. A zero API_RATE_LIMIT
// leaves requests unthrottled.
func NewOptions(cfg *config.Config) Options {
	opts := Options{
		CoreBaseURL: cfg.ESPNCoreBaseURL,
		SiteBaseURL: cfg.ESPNSiteBaseURL,
		Timeout:     cfg.ESPNTimeout,
		MaxRetries:  cfg.ESPNMaxRetries,
		RetryDelay:  cfg.ESPNRetryDelay,
		CacheTTL:    cfg.CacheTTLReference,
	}
	if cfg.APIRateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.APIRateLimit), cfg.APIBurstLimit)
	}
	return opts
}

// Client is the ESPN core/site API client. A Client is used by one worker
// at a time; hand them out through a Pool.
type Client struct {
	coreBaseURL string
	siteBaseURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	cache       ResponseCache
	cacheTTL    time.Duration
	maxRetries  int
	retryDelay  time.Duration
	calls       *atomic.Int64
}

// New creates a standalone client with its own connection pool and call counter
func New(opts Options) *Client {
	return newClient(opts, new(atomic.Int64))
}

func newClient(opts Options, calls *atomic.Int64) *Client {
	return &Client{
		coreBaseURL: opts.CoreBaseURL,
		siteBaseURL: opts.SiteBaseURL,
		limiter:     opts.Limiter,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		calls:       calls,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Calls returns the number of HTTP requests issued, retries included
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, endpoint, rawURL string, params url.Values, cacheable bool) ([]byte, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	useCache := cacheable && c.cache != nil
	if useCache {
		if body, ok := c.cache.Get(ctx, reqURL); ok {
			log.Debug().Str("url", reqURL).Msg("Serving API response from cache")
			return body, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", reqURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, status, err := c.do(ctx, endpoint, reqURL)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Retry on network errors
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch {
		case status >= 200 && status < 300:
			if useCache {
				if err := c.cache.Set(ctx, reqURL, body, c.cacheTTL); err != nil {
					log.Warn().Err(err).Str("url", reqURL).Msg("Failed to cache API response")
				}
			}
			return body, nil

		case status == http.StatusNotFound:
			return nil, errors.Wrapf(ErrNotFound, "GET %s", reqURL)

		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = &StatusError{StatusCode: status, URL: reqURL, Body: truncate(body)}
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", reqURL).
					Int("status", status).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		default:
			// Other errors - don't retry
			return nil, &StatusError{StatusCode: status, URL: reqURL, Body: truncate(body)}
		}
	}

	return nil, lastErr
}

// do issues a single request and reads the whole body
func (c *Client) do(ctx context.Context, endpoint, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ncaam-ingestion/1.0")

	log.Debug().
		Str("url", reqURL).
		Str("method", req.Method).
		Msg("Making API request")

	c.calls.Add(1)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, params url.Values, cacheable bool) (map[string]any, error) {
	body, err := c.get(ctx, endpoint, rawURL, params, cacheable)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := sonic.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s response: %w", endpoint, err)
	}
	return out, nil
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

func localized() url.Values {
	return url.Values{"lang": {"en"}, "region": {"us"}}
}

// Events fetches one page of the event listing for a YYYYMM bucket
func (c *Client) Events(ctx context.Context, month string, group, limit, page int) (map[string]any, error) {
	params := url.Values{
		"dates":  {month},
		"groups": {strconv.Itoa(group)},
		"limit":  {strconv.Itoa(limit)},
		"page":   {strconv.Itoa(page)},
	}
	data, err := c.getJSON(ctx, "events", c.coreBaseURL+"/events", params, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %s page %d: %w", month, page, err)
	}
	return data, nil
}

// Summary fetches the site API game summary (header, boxscore, game info)
func (c *Client) Summary(ctx context.Context, eventID string) (map[string]any, error) {
	params := url.Values{"event": {eventID}, "limit": {"250"}}
	data, err := c.getJSON(ctx, "summary", c.siteBaseURL+"/summary", params, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary for %s: %w", eventID, err)
	}
	return data, nil
}

// Odds fetches the per-provider odds collection of a game
func (c *Client) Odds(ctx context.Context, eventID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/events/%s/competitions/%s/odds", c.coreBaseURL, eventID, eventID)
	data, err := c.getJSON(ctx, "odds", u, localized(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds for %s: %w", eventID, err)
	}
	return data, nil
}

// Predictor fetches the win-probability projection of a game
func (c *Client) Predictor(ctx context.Context, eventID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/events/%s/competitions/%s/predictor", c.coreBaseURL, eventID, eventID)
	data, err := c.getJSON(ctx, "predictor", u, localized(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch predictor for %s: %w", eventID, err)
	}
	return data, nil
}

// Seasons fetches the season listing
func (c *Client) Seasons(ctx context.Context) (map[string]any, error) {
	params := localized()
	params.Set("limit", "1000")
	data, err := c.getJSON(ctx, "seasons", c.coreBaseURL+"/seasons", params, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seasons: %w", err)
	}
	return data, nil
}

// Teams fetches the site API listing of current teams
func (c *Client) Teams(ctx context.Context) (map[string]any, error) {
	params := url.Values{"limit": {"1000"}}
	data, err := c.getJSON(ctx, "teams", c.siteBaseURL+"/teams", params, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return data, nil
}

// ConferenceChildren lists the sub-groups of a group for a season
func (c *Client) ConferenceChildren(ctx context.Context, season int, parent string) (map[string]any, error) {
	u := fmt.Sprintf("%s/seasons/%d/types/2/groups/%s/children", c.coreBaseURL, season, parent)
	params := localized()
	params.Set("limit", "100")
	data, err := c.getJSON(ctx, "conferences", u, params, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch children of group %s for %d: %w", parent, season, err)
	}
	return data, nil
}

// ConferenceTeams lists the teams of a conference for a season
func (c *Client) ConferenceTeams(ctx context.Context, season int, conferenceID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/seasons/%d/types/2/groups/%s/teams", c.coreBaseURL, season, conferenceID)
	params := localized()
	params.Set("limit", "100")
	data, err := c.getJSON(ctx, "conference_teams", u, params, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams of conference %s for %d: %w", conferenceID, season, err)
	}
	return data, nil
}

// TeamAthletes lists a team's roster for a season
func (c *Client) TeamAthletes(ctx context.Context, season int, teamID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/seasons/%d/teams/%s/athletes", c.coreBaseURL, season, teamID)
	params := localized()
	params.Set("limit", "150")
	data, err := c.getJSON(ctx, "athletes", u, params, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster of team %s for %d: %w", teamID, season, err)
	}
	return data, nil
}

// TeamCoaches lists a team's coaches for a season
func (c *Client) TeamCoaches(ctx context.Context, season int, teamID string) (map[string]any, error) {
	u := fmt.Sprintf("%s/seasons/%d/teams/%s/coaches", c.coreBaseURL, season, teamID)
	data, err := c.getJSON(ctx, "coaches", u, localized(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coaches of team %s for %d: %w", teamID, season, err)
	}
	return data, nil
}

// Rankings lists the poll providers of a season
func (c *Client) Rankings(ctx context.Context, season int) (map[string]any, error) {
	u := fmt.Sprintf("%s/seasons/%d/rankings", c.coreBaseURL, season)
	data, err := c.getJSON(ctx, "rankings", u, localized(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rankings for %d: %w", season, err)
	}
	return data, nil
}

// GetRef follows a $ref link returned by the core API
func (c *Client) GetRef(ctx context.Context, ref string) (map[string]any, error) {
	data, err := c.getJSON(ctx, "ref", ref, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %s: %w", ref, err)
	}
	return data, nil
}

// GetRefCached follows a $ref link to a reference document through the response cache
func (c *Client) GetRefCached(ctx context.Context, ref string) (map[string]any, error) {
	data, err := c.getJSON(ctx, "ref", ref, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to follow %s: %w", ref, err)
	}
	return data, nil
}
