package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"insurance-ledger/internal/config"

	"github.com/stretchr/testify/assert"
)

func weatherJSON(codes []int) string {
	body := `{"data":{"weather":[`
	for i, code := range codes {
		if i > 0 {
			body += ","
		}
		day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		body += fmt.Sprintf(`{"date":%q,"hourly":[{"weatherCode":"%d"}]}`, day.Format("2006-01-02"), code)
	}
	return body + `]}}`
}

func newTestClient(serverURL string) *Client {
	return NewClient(config.WeatherConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, nil)
}

func TestFetchRuns_CountsFromProviderSeries(t *testing.T) {
	codes := []int{320, 320, 320, 320, 320, 100, 100, 100, 100, 100, 100}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "24", r.URL.Query().Get("tp"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("date"))
		fmt.Fprint(w, weatherJSON(codes))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, len(codes)-1)

	report, err := client.FetchRuns(context.Background(), 10.5, 106.25, start, end)

	assert.NoError(t, err)
	assert.Equal(t, RunReport{RainDays: 5, DroughtDays: 6}, report)
}

func TestFetchRuns_ProviderErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchRuns(context.Background(), 10.5, 106.25, start, start.AddDate(0, 0, 7))

	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable), "provider failure must surface as UnavailableError")
}

func TestFetchRuns_MalformedCodeIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"weather":[{"date":"2026-03-01","hourly":[{"weatherCode":"cloudy"}]}]}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.FetchRuns(context.Background(), 10.5, 106.25, start, start)

	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestVerify_MatchingReport(t *testing.T) {
	codes := []int{320, 320, 320, 320, 320, 320, 200, 200}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, weatherJSON(codes))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, len(codes)-1)

	verified, err := client.Verify(context.Background(), 10.5, 106.25, start, end, RunReport{RainDays: 6})
	assert.NoError(t, err)
	assert.True(t, verified)

	verified, err = client.Verify(context.Background(), 10.5, 106.25, start, end, RunReport{RainDays: 9})
	assert.NoError(t, err)
	assert.False(t, verified, "a definitive mismatch is a false verdict, not an error")
}

func TestVerify_TransientFailureIsNeverAFalseVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	verified, err := client.Verify(context.Background(), 10.5, 106.25, start, start.AddDate(0, 0, 7), RunReport{RainDays: 6})

	assert.Error(t, err)
	assert.False(t, verified)

	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}
