// Package client talks to a running LifeNote server over its REST API.
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
	"strconv"
	"strings"
	"time"

	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/models"
)

// Client implements the note repository against a remote server.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the API mounted at baseURL (for example
// "http://localhost:8080/api"). A zero timeout means no timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type createRequest struct {
	Content string       `json:"content"`
	Topic   models.Topic `json:"topic,omitempty"`
}

type listResponse struct {
	Year  int           `json:"year"`
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Append creates a note on the server.
func (c *Client) Append(ctx context.Context, d models.Draft) (*models.Note, error) {
	// Blank drafts never leave the process.
	if err := d.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(createRequest{Content: d.Content, Topic: d.Topic})
	if err != nil {
		return nil, fmt.Errorf("%w: error JSON-encoding note: %w", apperr.ErrWrite, err)
	}

	body, err := c.invoke(ctx, http.MethodPost, "/notes", nil, bytes.NewReader(payload))
	if err != nil {
		return nil, wrap(apperr.ErrWrite, err)
	}

	var note models.Note
	if err := json.Unmarshal(body, &note); err != nil {
		return nil, fmt.Errorf("%w: error JSON-decoding response body: %w", apperr.ErrWrite, err)
	}
	return &note, nil
}

// ListForYear fetches the notes of year, most recent first.
func (c *Client) ListForYear(ctx context.Context, year int) ([]models.Note, error) {
	q := url.Values{"year": []string{strconv.Itoa(year)}}
	body, err := c.invoke(ctx, http.MethodGet, "/notes", q, nil)
	if err != nil {
		return nil, wrap(apperr.ErrRead, err)
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: error JSON-decoding response body: %w", apperr.ErrRead, err)
	}
	return resp.Notes, nil
}

// Topics fetches the topic list.
func (c *Client) Topics(ctx context.Context) ([]models.TopicInfo, error) {
	body, err := c.invoke(ctx, http.MethodGet, "/topics", nil, nil)
	if err != nil {
		return nil, wrap(apperr.ErrRead, err)
	}
	var resp struct {
		Topics []models.TopicInfo `json:"topics"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: error JSON-decoding response body: %w", apperr.ErrRead, err)
	}
	return resp.Topics, nil
}

func wrap(kind, err error) error {
	if errors.Is(err, apperr.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	requestURL, err := url.JoinPath(c.base, path)
	if err != nil {
		return nil, fmt.Errorf("error building URL path: %w", err)
	}
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("error building API request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error invoking API: %w", err)
	}
	defer resp.Body.Close()

	return validateResponse(resp)
}

// validateResponse reads the body and turns error statuses into errors. A
// 400 carries a user-facing message and becomes a validation error.
func validateResponse(resp *http.Response) ([]byte, error) {
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 400 {
		return respBytes, nil
	}

	msg := strings.TrimSpace(string(respBytes))
	var er errorResponse
	if json.Unmarshal(respBytes, &er) == nil && er.Error != "" {
		msg = er.Error
	}
	if resp.StatusCode == http.StatusBadRequest {
		return nil, apperr.Validation(er.Field, msg)
	}
	return nil, fmt.Errorf("invalid status code: %d (response: %s)", resp.StatusCode, msg)
}
