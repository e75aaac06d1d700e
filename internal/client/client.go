// Package client talks to the Campus Reveal HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campus-reveal-backend/internal/model"
)

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("not found")

// APIError carries a non-2xx answer and its error body.
type APIError struct {
	Status  int
	Message string `json:"message"`
	Detail  string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %d: %s: %s", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Client is an HTTP client for /api/colleges.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API served at baseURL, e.g. http://localhost:5000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListColleges fetches every college, or those whose name contains name.
func (c *Client) ListColleges(ctx context.Context, name string) ([]model.College, error) {
	path := "/api/colleges"
	if name != "" {
		path += "?" + url.Values{"name": {name}}.Encode()
	}
	var colleges []model.College
	if err := c.do(ctx, http.MethodGet, path, nil, &colleges); err != nil {
		return nil, err
	}
	return colleges, nil
}

// GetCollege fetches one college.
func (c *Client) GetCollege(ctx context.Context, id string) (*model.College, error) {
	var college model.College
	if err := c.do(ctx, http.MethodGet, "/api/colleges/"+url.PathEscape(id), nil, &college); err != nil {
		return nil, err
	}
	return &college, nil
}

// ListReviews fetches the reviews of one college, oldest first.
func (c *Client) ListReviews(ctx context.Context, collegeID string) ([]model.Review, error) {
	var reviews []model.Review
	if err := c.do(ctx, http.MethodGet, "/api/colleges/"+url.PathEscape(collegeID)+"/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AddReview submits a review and returns it as stored.
func (c *Client) AddReview(ctx context.Context, collegeID, text string, rating int) (*model.Review, error) {
	body := map[string]any{"review": text, "rating": rating}
	var review model.Review
	if err := c.do(ctx, http.MethodPost, "/api/colleges/"+url.PathEscape(collegeID)+"/reviews", body, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// RequestCollege asks an administrator to add a college and returns the
// server's confirmation.
func (c *Client) RequestCollege(ctx context.Context, req model.CollegeRequest) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/colleges/request-college", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
