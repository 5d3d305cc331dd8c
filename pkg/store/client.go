package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/journeykit/journeymap/pkg/errors"
	"github.com/journeykit/journeymap/pkg/httputil"
	"github.com/journeykit/journeymap/pkg/journey"
)

// ClientStore talks to a journeymap API server over HTTP. Transient
// failures (network errors, 5xx responses) are retried with exponential
// backoff; 4xx responses fail immediately.
type ClientStore struct {
	base   string
	client *http.Client
}

// NewClientStore creates a client store for the given base URL
// (e.g. "http://localhost:8080").
func NewClientStore(baseURL string, client *http.Client) *ClientStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ClientStore{base: baseURL, client: client}
}

// GetJourney implements Store via GET /journeys/{id}/structure.
func (c *ClientStore) GetJourney(ctx context.Context, id string, includeDescendants bool) (*journey.Journey, error) {
	u := fmt.Sprintf("%s/journeys/%s/structure?include_subjourneys=%s",
		c.base, url.PathEscape(id), strconv.FormatBool(includeDescendants))

	var j journey.Journey
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.getJSON(ctx, u, &j)
	})
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// ReorderJourneys implements Store via POST /journeys/reorder.
func (c *ClientStore) ReorderJourneys(ctx context.Context, orderedIDs []string) error {
	body, err := json.Marshal(map[string][]string{"ordered_ids": orderedIDs})
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	return httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/journeys/reorder", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()
		return checkStatus(resp)
	})
}

func (c *ClientStore) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", resp.Request.URL.Path, ErrNotFound)
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{
			Err: apperrors.New(apperrors.ErrCodeNetwork, "server error: %s", resp.Status),
		}
	case resp.StatusCode >= 400:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "request rejected: %s", resp.Status)
	default:
		return nil
	}
}

var _ Store = (*ClientStore)(nil)
