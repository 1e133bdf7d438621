package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "fightcal/internal/log"
)

// FetchError reports a network or HTTP-level failure retrieving the feed.
// It is not retried within a single ingestion run; the next scheduled cycle
// retries naturally.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the ICS feed over HTTP.
type Fetcher struct {
	client *http.Client
	url    string
}

// NewFetcher creates a Fetcher for the given feed URL with a bounded client
// timeout.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

// Fetch performs a single GET of the feed and returns the raw ICS body.
// Any non-2xx status is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}

	appLog.Debug("feed fetch start", "url", f.url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: f.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}

	appLog.Info("feed fetch success", "url", f.url, "bytes", len(body))
	return body, nil
}
