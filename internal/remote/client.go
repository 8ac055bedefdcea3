// Package remote is the HTTP client for the dashboard's bookmark API. All
// mutations go through here during sync replay; reads feed the startup
// merge. Endpoints mirror the dashboard backend:
//
//	GET    /api/bookmarks                  -> {"categories": [...]}
//	POST   /api/bookmarks                  -> {"bookmark": {...}} (server-assigned id)
//	PUT    /api/bookmarks/{id}             update bookmark
//	DELETE /api/bookmarks/{id}             delete bookmark
//	POST   /api/bookmarks/category         -> {"category": {...}} (server-assigned id)
//	PUT    /api/bookmarks/category/{id}    update category
//	DELETE /api/bookmarks/category/{id}    delete category
//
// Entity responses arrive wrapped in the keyed envelopes shown above.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/opsdeck/opsdeck/internal/domain"
	"github.com/opsdeck/opsdeck/internal/utils"
)

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("api returned %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Options configures the client.
type Options struct {
	BaseURL string
	Token   string // optional bearer token
	Timeout time.Duration

	// CategoryUpdateViaPost switches category updates to the legacy
	// POST /api/bookmarks/category/{id} route for older backends.
	CategoryUpdateViaPost bool
}

// Client talks to the remote bookmark API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	categoryUpdateMethod string
}

// New creates a Client. A zero timeout falls back to 10 seconds.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	method := http.MethodPut
	if opts.CategoryUpdateViaPost {
		method = http.MethodPost
	}
	// Session-cookie backends work without a token; the jar keeps the
	// cookie across replay requests.
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:              opts.BaseURL,
		token:                opts.Token,
		http:                 &http.Client{Timeout: timeout, Jar: jar},
		categoryUpdateMethod: method,
	}
}

// Response envelopes. The API wraps every entity payload in a keyed object.
type categoriesEnvelope struct {
	Categories []*domain.Category `json:"categories"`
}

type bookmarkEnvelope struct {
	Bookmark *domain.Bookmark `json:"bookmark"`
}

type categoryEnvelope struct {
	Category *domain.Category `json:"category"`
}

// FetchAll retrieves every category with its bookmarks.
func (c *Client) FetchAll(ctx context.Context) ([]*domain.Category, error) {
	var out categoriesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/bookmarks", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch bookmarks: %w", err)
	}
	return out.Categories, nil
}

// CreateBookmark creates a bookmark and returns the server's copy,
// including the id it assigned.
func (c *Client) CreateBookmark(ctx context.Context, b *domain.Bookmark) (*domain.Bookmark, error) {
	var out bookmarkEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/bookmarks", b, &out); err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}
	if out.Bookmark == nil {
		return nil, fmt.Errorf("api response missing bookmark")
	}
	return out.Bookmark, nil
}

// UpdateBookmark updates a bookmark in place.
func (c *Client) UpdateBookmark(ctx context.Context, b *domain.Bookmark) error {
	if err := c.do(ctx, http.MethodPut, "/api/bookmarks/"+b.ID, b, nil); err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes a bookmark by id.
func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/bookmarks/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}

// CreateCategory creates a category and returns the server's copy.
func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	var out categoryEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/bookmarks/category", cat, &out); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if out.Category == nil {
		return nil, fmt.Errorf("api response missing category")
	}
	return out.Category, nil
}

// UpdateCategory updates a category in place.
func (c *Client) UpdateCategory(ctx context.Context, cat *domain.Category) error {
	if err := c.do(ctx, c.categoryUpdateMethod, "/api/bookmarks/category/"+cat.ID, cat, nil); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category by id.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/bookmarks/category/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// Ping probes connectivity with a HEAD request, so the periodic liveness
// check never downloads the category payload. Any HTTP response counts as
// reachable; only a transport-level failure reports offline.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/bookmarks", nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	utils.Close(resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
