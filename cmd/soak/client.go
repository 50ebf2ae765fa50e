package main

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

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string {
	return c.sessionID
}

// UseSession switches the client to an existing session
func (c *Client) UseSession(id string) {
	c.sessionID = id
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetState(ctx context.Context) (*service.PuzzleView, error) {
	var view service.PuzzleView
	if err := c.do(ctx, http.MethodGet, c.sessionPath("state"), nil, &view); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &view, nil
}

func (c *Client) Shuffle(ctx context.Context, opts service.ShuffleOptions) (*service.PuzzleView, error) {
	var view service.PuzzleView
	if err := c.do(ctx, http.MethodPost, c.sessionPath("shuffle"), opts, &view); err != nil {
		return nil, fmt.Errorf("shuffle: %w", err)
	}
	return &view, nil
}

func (c *Client) Move(ctx context.Context, pos engine.Position) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("move"), pos, &result); err != nil {
		return nil, fmt.Errorf("move %s: %w", pos, err)
	}
	return &result, nil
}

func (c *Client) DeleteSession(ctx context.Context) error {
	path := fmt.Sprintf("/api/sessions/%s", url.PathEscape(c.sessionID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(action string) string {
	return fmt.Sprintf("/api/sessions/%s/%s", url.PathEscape(c.sessionID), action)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
