// Package client is a typed HTTP client for the Cadence API, used by the CLI.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "Cadence-CLI/0.1.0"

// Client talks to one Cadence API server
type Client struct {
	http *resty.Client
}

// New creates a client for baseURL. An empty token sends unauthenticated requests.
func New(baseURL, token string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	if token != "" {
		http.SetAuthToken(token)
	}
	return &Client{http: http}
}

// ResponseInfo describes a completed request, for logging
type ResponseInfo struct {
	Method   string
	URL      string
	Status   int
	Duration time.Duration
}

// OnResponse registers fn to run after every response
func (c *Client) OnResponse(fn func(ResponseInfo)) {
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		fn(ResponseInfo{
			Method:   resp.Request.Method,
			URL:      resp.Request.URL,
			Status:   resp.StatusCode(),
			Duration: resp.Time(),
		})
		return nil
	})
}

// SetToken replaces the bearer token used for later requests
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// Register creates an account and returns its token
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password,
	}
	if err := c.do(c.request(ctx).SetBody(body).SetResult(&out), resty.MethodPost, "/api/v1/auth/register"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(c.request(ctx).SetBody(body).SetResult(&out), resty.MethodPost, "/api/v1/auth/login"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search ranks the catalog against a free-text query
func (c *Client) Search(ctx context.Context, query string) (*Ranking, error) {
	var out Ranking
	req := c.request(ctx).SetQueryParam("input", query).SetResult(&out)
	if err := c.do(req, resty.MethodGet, "/api/v1/songs"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommend ranks the catalog for the authenticated listener
func (c *Client) Recommend(ctx context.Context) (*Ranking, error) {
	var out Ranking
	if err := c.do(c.request(ctx).SetResult(&out), resty.MethodGet, "/api/v1/songs"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleLike likes or unlikes a song and reports the new state
func (c *Client) ToggleLike(ctx context.Context, songID string) (bool, error) {
	var out struct {
		Liked bool `json:"liked"`
	}
	req := c.request(ctx).SetPathParam("id", songID).SetResult(&out)
	if err := c.do(req, resty.MethodPost, "/api/v1/songs/{id}/like"); err != nil {
		return false, err
	}
	return out.Liked, nil
}

// Playlist returns the listener's playlist in order
func (c *Client) Playlist(ctx context.Context) (*SongList, error) {
	return c.songList(ctx, "/api/v1/playlist")
}

// AddToPlaylist appends a song to the playlist
func (c *Client) AddToPlaylist(ctx context.Context, songID string) error {
	return c.do(c.request(ctx).SetPathParam("id", songID), resty.MethodPost, "/api/v1/playlist/{id}")
}

// RemoveFromPlaylist removes a song from the playlist
func (c *Client) RemoveFromPlaylist(ctx context.Context, songID string) error {
	return c.do(c.request(ctx).SetPathParam("id", songID), resty.MethodDelete, "/api/v1/playlist/{id}")
}

// History returns viewed songs, most recent first
func (c *Client) History(ctx context.Context) (*SongList, error) {
	return c.songList(ctx, "/api/v1/history")
}

// Liked returns liked songs, most recent first
func (c *Client) Liked(ctx context.Context) (*SongList, error) {
	return c.songList(ctx, "/api/v1/liked")
}

// Channel returns the listener's uploads
func (c *Client) Channel(ctx context.Context) (*SongList, error) {
	return c.songList(ctx, "/api/v1/channel")
}

func (c *Client) songList(ctx context.Context, path string) (*SongList, error) {
	var out SongList
	if err := c.do(c.request(ctx).SetResult(&out), resty.MethodGet, path); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&ErrorResponse{})
}

func (c *Client) do(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return parseError(resp)
	}
	return nil
}
