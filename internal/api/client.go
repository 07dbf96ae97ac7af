// Package api is the dashboard's HTTP client for the chat backend.
// Every failure, whatever its cause, surfaces as a *RequestError that
// matches ErrRequestFailed.
package api

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

	"github.com/umar/nexttalk-dash/internal/models"
)

var ErrRequestFailed = errors.New("request failed")

type RequestError struct {
	Op     string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %v (status %d)", e.Op, ErrRequestFailed, e.Status)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrRequestFailed, e.Err)
}

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

func (e *RequestError) Unwrap() error { return e.Err }

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Token() string { return c.token }

// LiveURL derives the websocket endpoint from the API base URL:
// http://host:8080/api becomes ws://host:8080/ws.
func (c *Client) LiveURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api") + "/ws"
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) Rooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.do(ctx, "list rooms", http.MethodGet, "/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) Messages(ctx context.Context, roomID string) ([]models.Message, error) {
	var messages []models.Message
	path := "/rooms/" + url.PathEscape(roomID) + "/messages"
	if err := c.do(ctx, "list messages", http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, roomID, content string) (*models.Message, error) {
	var msg models.Message
	body := models.MessageCreate{RoomID: roomID, Content: content}
	if err := c.do(ctx, "send message", http.MethodPost, "/messages", body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) AddReaction(ctx context.Context, messageID, emoji string) error {
	body := models.ReactionCreate{MessageID: messageID, Emoji: emoji}
	return c.do(ctx, "add reaction", http.MethodPost, "/reactions", body, nil)
}

func (c *Client) MarkRead(ctx context.Context, roomID string) error {
	path := "/rooms/" + url.PathEscape(roomID) + "/mark-read"
	return c.do(ctx, "mark read", http.MethodPost, path, nil, nil)
}

func (c *Client) Summary(ctx context.Context, roomID string) (*models.Summary, error) {
	var s models.Summary
	if err := c.do(ctx, "get summary", http.MethodGet, "/summary/"+url.PathEscape(roomID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, "get viewer", http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Op: op, Err: err}
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
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		return &RequestError{Op: op, Status: resp.StatusCode, Err: errors.New(apiErr.Error)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
