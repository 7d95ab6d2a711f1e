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
)

// ErrNotFound matches any *APIError with status 404.
var ErrNotFound = errors.New("not found")

// ErrExportFailed is returned when the server answers an export request
// with success=false.
var ErrExportFailed = errors.New("export failed")

// APIError is a non-2xx response from the chat API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API %d", e.StatusCode)
	}
	return fmt.Sprintf("API %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the chat session API. HTTPClient serves ordinary
// request/response calls; StreamHTTPClient has no timeout because a
// streamed reply may take arbitrarily long.
type Client struct {
	BaseURL          string
	HTTPClient       *http.Client
	StreamHTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 300 * time.Second,
		},
		StreamHTTPClient: &http.Client{Timeout: 0},
	}
}

// SetTimeout changes the request/response timeout. Zero disables it.
func (c *Client) SetTimeout(d time.Duration) {
	c.HTTPClient.Timeout = d
}

func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := c.do(ctx, c.HTTPClient, http.MethodGet, "/sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, fmt.Errorf("list sessions: %w", c.parseError(resp))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	// The API returns a bare array; some deployments wrap it.
	var sessions []SessionInfo
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Sessions []SessionInfo `json:"sessions"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode sessions: %w", err)
		}
		sessions = wrapper.Sessions
	} else if err := json.Unmarshal(trimmed, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*SessionDetail, error) {
	resp, err := c.do(ctx, c.HTTPClient, http.MethodGet, "/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, fmt.Errorf("get session: %w", c.parseError(resp))
	}
	var result SessionDetail
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &result, nil
}

func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionDetail, error) {
	resp, err := c.do(ctx, c.HTTPClient, http.MethodPost, "/sessions", req)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, fmt.Errorf("create session: %w", c.parseError(resp))
	}
	var result SessionDetail
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &result, nil
}

func (c *Client) ClearSession(ctx context.Context, id string) (*ClearResponse, error) {
	resp, err := c.do(ctx, c.HTTPClient, http.MethodDelete, "/sessions/"+url.PathEscape(id)+"/clear", nil)
	if err != nil {
		return nil, fmt.Errorf("clear session: %w", err)
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, fmt.Errorf("clear session: %w", c.parseError(resp))
	}
	var result ClearResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode clear: %w", err)
	}
	return &result, nil
}

func (c *Client) ExportSession(ctx context.Context, id string) (*ExportResponse, error) {
	resp, err := c.do(ctx, c.HTTPClient, http.MethodGet, "/sessions/"+url.PathEscape(id)+"/export", nil)
	if err != nil {
		return nil, fmt.Errorf("export session: %w", err)
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, fmt.Errorf("export session: %w", c.parseError(resp))
	}
	var result ExportResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("export session: %w", ErrExportFailed)
	}
	return &result, nil
}

// SendMessage is the non-streaming send. It blocks until the full reply is
// available.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	resp, err := c.do(ctx, c.HTTPClient, http.MethodPost, "/messages/send", req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if !ok(resp) {
		return nil, fmt.Errorf("send message: %w", c.parseError(resp))
	}
	var result SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode send: %w", err)
	}
	return &result, nil
}

// SendMessageStream opens the streamed send and returns the response body
// for a FrameReader. The caller must close it. A non-2xx status is returned
// as an error and the body is already closed.
func (c *Client) SendMessageStream(ctx context.Context, req SendMessageRequest) (io.ReadCloser, error) {
	resp, err := c.do(ctx, c.StreamHTTPClient, http.MethodPost, "/messages/send/stream", req)
	if err != nil {
		return nil, fmt.Errorf("send stream: %w", err)
	}
	if !ok(resp) {
		defer resp.Body.Close()
		return nil, fmt.Errorf("send stream: %w", c.parseError(resp))
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if hc == c.StreamHTTPClient {
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	return hc.Do(req)
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil {
		switch d := er.Detail.(type) {
		case string:
			apiErr.Message = d
		case nil:
			apiErr.Message = er.Error
		default:
			raw, _ := json.Marshal(d)
			apiErr.Message = string(raw)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
