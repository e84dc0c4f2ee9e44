// Package apiclient is a typed HTTP client for the pingpanel server API.
package apiclient

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

	"github.com/pingpanel/pingpanel/pkg/protocol"
)

// APIError is a non-2xx response. Message and Field come from the server's
// JSON body when it has one.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// Client talks to one pingpanel server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for baseURL. A nil httpClient uses a client with a
// 10 second timeout.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// SetToken replaces the bearer token used for later requests.
func (c *Client) SetToken(token string) { c.token = token }

// Login exchanges credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*protocol.LoginResponse, error) {
	var out protocol.LoginResponse
	req := protocol.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, protocol.PathLogin, req, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// AuthConfig reports which auth provider the server uses.
func (c *Client) AuthConfig(ctx context.Context) (*protocol.AuthConfigResponse, error) {
	var out protocol.AuthConfigResponse
	if err := c.do(ctx, http.MethodGet, protocol.PathAuthConfig, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*protocol.UserInfo, error) {
	var out protocol.UserInfo
	if err := c.do(ctx, http.MethodGet, protocol.PathMe, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Usage returns the caller's plan and category usage.
func (c *Client) Usage(ctx context.Context) (*protocol.UsageResponse, error) {
	var out protocol.UsageResponse
	if err := c.do(ctx, http.MethodGet, protocol.PathUsage, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Options returns the color and emoji presets.
func (c *Client) Options(ctx context.Context) (*protocol.OptionsResponse, error) {
	var out protocol.OptionsResponse
	if err := c.do(ctx, http.MethodGet, protocol.PathCategoryOptions, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns the caller's categories.
func (c *Client) ListCategories(ctx context.Context) ([]protocol.Category, error) {
	var out protocol.CategoryList
	if err := c.do(ctx, http.MethodGet, protocol.PathCategories, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CreateCategory submits a new category and returns the server's message.
func (c *Client) CreateCategory(ctx context.Context, req protocol.CreateCategoryRequest) (string, error) {
	var out protocol.MessageResponse
	if err := c.do(ctx, http.MethodPost, protocol.PathCategories, req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg protocol.MessageResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
			apiErr.Field = msg.Field
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
