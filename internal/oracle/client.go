package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"insurance-ledger/internal/config"
	"insurance-ledger/internal/database/redis"
)

// weatherResponse mirrors the provider's past-weather JSON: one entry per
// day, each with hourly readings. Only the first hourly entry's code per day
// is used.
type weatherResponse struct {
	Data struct {
		Weather []struct {
			Date   string `json:"date"`
			Hourly []struct {
				WeatherCode string `json:"weatherCode"`
			} `json:"hourly"`
		} `json:"weather"`
	} `json:"data"`
}

// Client is the weather oracle adapter: it fetches the daily code series for
// a location and date range and reduces it to the two run counters. Fetched
// series are cached in Redis so verification within the TTL re-derives from
// the same observed data.
type Client struct {
	httpClient *http.Client
	cache      *redis.Client
	cfg        config.WeatherConfig
}

func NewClient(cfg config.WeatherConfig, cache *redis.Client) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		cfg:        cfg,
	}
}

// FetchRuns returns the longest counted rain and drought runs for the range.
// Network and parse failures surface as *UnavailableError.
func (c *Client) FetchRuns(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time) (RunReport, error) {
	codes, err := c.fetchDailyCodes(ctx, latitude, longitude, startDate, endDate)
	if err != nil {
		return RunReport{}, err
	}
	return ComputeRuns(codes), nil
}

// Verify re-fetches the series and re-computes the runs, returning whether
// they match the claimed pair. A transient fetch failure is returned as an
// error, never as a false verdict.
func (c *Client) Verify(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time, claimed RunReport) (bool, error) {
	report, err := c.FetchRuns(ctx, latitude, longitude, startDate, endDate)
	if err != nil {
		return false, err
	}
	return report == claimed, nil
}

func (c *Client) fetchDailyCodes(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time) ([]int, error) {
	cacheKey := fmt.Sprintf("weather:%.4f:%.4f:%s:%s",
		latitude, longitude, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	if codes, ok := c.cachedCodes(ctx, cacheKey); ok {
		return codes, nil
	}

	requestURL, err := c.buildURL(latitude, longitude, startDate, endDate)
	if err != nil {
		return nil, &UnavailableError{Op: "build request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &UnavailableError{Op: "build request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Op: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{Op: "fetch", Err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}

	var report weatherResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, &UnavailableError{Op: "parse response", Err: err}
	}

	codes := make([]int, 0, len(report.Data.Weather))
	for _, day := range report.Data.Weather {
		if len(day.Hourly) == 0 {
			return nil, &UnavailableError{Op: "parse response", Err: fmt.Errorf("day %s has no hourly entries", day.Date)}
		}
		code, err := strconv.Atoi(day.Hourly[0].WeatherCode)
		if err != nil {
			return nil, &UnavailableError{Op: "parse response", Err: fmt.Errorf("day %s has invalid weather code %q", day.Date, day.Hourly[0].WeatherCode)}
		}
		codes = append(codes, code)
	}

	c.storeCodes(ctx, cacheKey, codes)
	return codes, nil
}

func (c *Client) buildURL(latitude, longitude float64, startDate, endDate time.Time) (string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}

	query := base.Query()
	query.Set("q", fmt.Sprintf("%f,%f", latitude, longitude))
	query.Set("date", startDate.Format("2006-01-02"))
	query.Set("enddate", endDate.Format("2006-01-02"))
	query.Set("tp", "24")
	query.Set("format", "json")
	query.Set("key", c.cfg.APIKey)
	base.RawQuery = query.Encode()

	return base.String(), nil
}

// cachedCodes is best-effort: a cache failure falls through to a live fetch.
func (c *Client) cachedCodes(ctx context.Context, key string) ([]int, bool) {
	if c.cache == nil {
		return nil, false
	}

	raw, err := c.cache.GetClient().Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var codes []int
	if err := json.Unmarshal(raw, &codes); err != nil {
		slog.Warn("discarding corrupt cached weather series", "key", key, "error", err)
		return nil, false
	}
	return codes, true
}

func (c *Client) storeCodes(ctx context.Context, key string, codes []int) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(codes)
	if err != nil {
		return
	}
	if err := c.cache.GetClient().Set(ctx, key, raw, c.cfg.CacheTTL).Err(); err != nil {
		slog.Warn("failed to cache weather series", "key", key, "error", err)
	}
}
