// Package client is the consumer side of the item API: an HTTP client and
// the Client State that mirrors the server's item list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Item is an item as reported by the server.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIError is a non-2xx response. ItemAge and RequiredAge are set only when
// the server refused a deletion because the item is too young.
type APIError struct {
	Status      int
	Message     string
	ItemAge     *int
	RequiredAge *int
}

func (e *APIError) Error() string {
	return e.Message
}

// TooYoung reports whether the server refused a deletion on age.
func (e *APIError) TooYoung() bool {
	return e.ItemAge != nil && e.RequiredAge != nil
}

type errorBody struct {
	Error       string `json:"error"`
	ItemAge     *int   `json:"itemAge"`
	RequiredAge *int   `json:"requiredAge"`
}

type deleteBody struct {
	Message     string `json:"message"`
	DeletedItem Item   `json:"deletedItem"`
}

// Client talks to the item HTTP API rooted at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the API at baseURL (for example
// "http://localhost:8080/api"). A nil httpClient uses a client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// List fetches every item, newest first.
func (c *Client) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := c.do(ctx, http.MethodGet, "/items", nil, &items, "Network response was not ok"); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Create adds an item named name and returns it as stored.
func (c *Client) Create(ctx context.Context, name string) (*Item, error) {
	var it Item
	if err := c.do(ctx, http.MethodPost, "/items", map[string]string{"name": name}, &it, "Failed to add item"); err != nil {
		return nil, err
	}
	return &it, nil
}

// Delete removes the item with the given id and returns its last state.
func (c *Client) Delete(ctx context.Context, id int64) (*Item, error) {
	var body deleteBody
	path := "/items/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, &body, "Failed to delete item"); err != nil {
		return nil, err
	}
	return &body.DeletedItem, nil
}

// do sends the request and decodes a 2xx body into out. Error responses
// become *APIError, using fallback when the body carries no message.
func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			if eb.Error != "" {
				apiErr.Message = eb.Error
			}
			apiErr.ItemAge = eb.ItemAge
			apiErr.RequiredAge = eb.RequiredAge
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
