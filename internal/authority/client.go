// Package authority is the client for the remote REST authority: a set of
// independent flat collections queryable by exact-match parameters and
// addressable by id for single-record operations.
package authority

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

	"github.com/rs/zerolog"

	"eventhound/internal/models"
)

// Doer is the interface for performing HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is a non-success response from the authority.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("authority: %s - %s", e.Status, e.Body)
	}
	return fmt.Sprintf("authority: %s", e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to one authority instance.
type Client struct {
	base   string
	client Doer
	log    zerolog.Logger
}

// New creates a Client for the authority at baseURL. A nil Doer gets a
// default http.Client with a 30 second timeout.
func New(baseURL string, client Doer, log zerolog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
		log:    log,
	}
}

// List fetches all records of a collection matching the query parameters and
// decodes them into out.
func (c *Client) List(ctx context.Context, collection string, query url.Values, out any) error {
	endpoint := c.base + "/" + collection
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// Create posts a new record to a collection and decodes the stored record,
// including its server-assigned id, into out when out is non-nil.
func (c *Client) Create(ctx context.Context, collection string, body, out any) error {
	return c.do(ctx, http.MethodPost, c.base+"/"+collection, body, out)
}

// Update replaces the record with the given id.
func (c *Client) Update(ctx context.Context, collection string, id models.ID, body, out any) error {
	return c.do(ctx, http.MethodPut, c.base+"/"+collection+"/"+url.PathEscape(id.String()), body, out)
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, collection string, id models.ID) error {
	return c.do(ctx, http.MethodDelete, c.base+"/"+collection+"/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Debug().
			Str("method", method).
			Str("url", endpoint).
			Int("status", resp.StatusCode).
			Msg("authority request failed")
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
