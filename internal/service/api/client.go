package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/metrics"
	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/model/session"
)

const (
	verifyPath = "/api/users/verify"
	postsPath  = "/api/posts"

	opVerify = "verify"
	opList   = "list"
	opCreate = "create"

	// maxErrorBody bounds how much of a failed response is drained.
	maxErrorBody = 4 << 10
)

// Client talks to the external notes API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for per-call debug entries.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify exchanges a token for the current user's profile.
func (c *Client) Verify(ctx context.Context, token string) (*session.User, error) {
	var payload struct {
		User *session.User `json:"user"`
	}
	if err := c.do(ctx, opVerify, http.MethodGet, verifyPath, token, nil, &payload); err != nil {
		return nil, err
	}
	if payload.User == nil {
		return nil, &RequestError{Op: opVerify, StatusCode: http.StatusOK, Err: fmt.Errorf("response has no user")}
	}
	return payload.User, nil
}

// ListNotes fetches every note of the token's owner, in server order.
func (c *Client) ListNotes(ctx context.Context, token string) ([]note.Note, error) {
	var payload struct {
		Posts []note.Note `json:"posts"`
	}
	if err := c.do(ctx, opList, http.MethodGet, postsPath, token, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Posts == nil {
		payload.Posts = []note.Note{}
	}
	return payload.Posts, nil
}

// CreateNote submits a new note. The response body is ignored.
func (c *Client) CreateNote(ctx context.Context, token string, draft note.Draft) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return c.do(ctx, opCreate, http.MethodPost, postsPath, token, body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body []byte, out any) error {
	if token == "" {
		return ErrMissingToken
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := middleware.GetReqID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	entry := c.log.WithFields(logrus.Fields{
		"operation":  op,
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(op, "error", started)
		entry.WithError(err).Warn("notes api request failed")
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.ObserveAPI(op, status, started)
		entry.WithField("status", resp.StatusCode).Warn("notes api returned error status")
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.ObserveAPI(op, "decode_error", started)
			entry.WithError(err).Warn("notes api response could not be decoded")
			return &RequestError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	c.metrics.ObserveAPI(op, status, started)
	entry.WithField("status", resp.StatusCode).Debug("notes api request completed")
	return nil
}
