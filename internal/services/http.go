package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// HTTPSource fetches a catalog document with a GET request.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	headers    *shared.CurlHeaders
	timeout    time.Duration
}

// NewHTTPSource creates a source for the document at url. The client defaults to [http.DefaultClient].
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, httpClient: client}
}

// WithHeaders sends the captured headers with every fetch.
func (h *HTTPSource) WithHeaders(headers *shared.CurlHeaders) *HTTPSource {
	h.headers = headers
	return h
}

// WithTimeout bounds each fetch; zero leaves only the caller's context in charge.
func (h *HTTPSource) WithTimeout(d time.Duration) *HTTPSource {
	h.timeout = d
	return h
}

func (h *HTTPSource) Name() string { return h.url }

// Fetch downloads and decodes the document. Transport failures and non-2xx statuses wrap [shared.ErrSourceUnavailable].
func (h *HTTPSource) Fetch(ctx context.Context) ([]models.RawSong, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.headers != nil {
		h.headers.Apply(req)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", shared.ErrSourceUnavailable, h.url, resp.StatusCode)
	}

	return DecodeDocument(body)
}
