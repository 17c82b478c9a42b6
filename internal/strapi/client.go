// Package strapi is a small JSON client for the Strapi-style REST backend
// that stores locations, equipment catalogs and BOQ records.
package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Pagination is the meta.pagination block of list responses.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type Meta struct {
	Pagination Pagination `json:"pagination"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  Meta            `json:"meta"`
	Error *APIError       `json:"error"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for baseURL (e.g. http://host:1337/api).
// token is the fallback bearer used when the context carries none.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type tokenKey struct{}

// WithToken attaches a caller's bearer token so requests are made on their behalf.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) tokenFor(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok && tok != "" {
		return tok
	}
	return c.token
}

// List reads one page of a collection into out (a pointer to a slice).
func (c *Client) List(ctx context.Context, collection string, q Query, out any) (*Meta, error) {
	env, err := c.do(ctx, http.MethodGet, "/"+collection, q.Values(), nil)
	if err != nil {
		return nil, err
	}
	if err := decodeData(env.Data, out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return &env.Meta, nil
}

// Create posts {data: data} and decodes the created entry into out (may be nil).
func (c *Client) Create(ctx context.Context, collection string, data any, out any) error {
	env, err := c.do(ctx, http.MethodPost, "/"+collection, nil, map[string]any{"data": data})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := decodeData(env.Data, out); err != nil {
		return fmt.Errorf("decode created %s: %w", collection, err)
	}
	return nil
}

// Update puts {data: data} to /{collection}/{id}.
func (c *Client) Update(ctx context.Context, collection, id string, data any, out any) error {
	env, err := c.do(ctx, http.MethodPut, "/"+collection+"/"+url.PathEscape(id), nil, map[string]any{"data": data})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeData(env.Data, out)
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/"+collection+"/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokenFor(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		if env.Error != nil {
			if env.Error.Status == 0 {
				env.Error.Status = resp.StatusCode
			}
			return nil, env.Error
		}
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	return &env, nil
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, out)
}
