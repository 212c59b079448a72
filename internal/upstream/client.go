// Package upstream is the HTTP client for the remote captives registry
// API. It owns the credential plumbing (session cookies plus the
// X-CSRFToken header on mutating calls) and converts every non-success
// outcome into the typed error taxonomy, so callers never see raw
// transport errors.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/models"
	"github.com/poshuk/captives-gateway/pkg/config"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

const csrfHeader = "X-CSRFToken"

// MetricsRecorder receives upstream call observations. A nil recorder
// disables instrumentation.
type MetricsRecorder interface {
	ObserveUpstreamRequest(endpoint string, duration time.Duration)
	RecordUpstreamError(endpoint, code string)
}

// Client talks to the upstream registry on behalf of one caller session
// per request. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics MetricsRecorder
}

// New constructs a registry client from configuration.
func New(cfg config.UpstreamConfig, logger *zap.Logger, metrics MetricsRecorder) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// newRequest builds a request carrying the caller's cookies; mutating
// methods additionally carry the anti-forgery token, read fresh from the
// session on every call.
func (c *Client) newRequest(ctx context.Context, session *models.Session, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if session != nil {
		for _, cookie := range session.Cookies {
			req.AddCookie(cookie)
		}
		if session.CSRFToken != "" && method != http.MethodGet && method != http.MethodHead {
			req.Header.Set(csrfHeader, session.CSRFToken)
		}
	}
	return req, nil
}

// do executes the request and maps non-2xx statuses onto typed errors.
// The body is read in full here, so callers get bytes and never a handle
// to close.
func (c *Client) do(req *http.Request) ([]byte, []*http.Cookie, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.ObserveUpstreamRequest(req.URL.Path, time.Since(start))
	}
	if err != nil {
		c.logger.Warn("upstream request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		c.recordError(req.URL.Path, appErrors.ErrUpstream.Code)
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordError(req.URL.Path, appErrors.ErrUpstream.Code)
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read upstream response")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, resp.Cookies(), nil
	}
	statusErr := statusError(resp.StatusCode, body)
	c.recordError(req.URL.Path, appErrors.FromError(statusErr).Code)
	return nil, resp.Cookies(), statusErr
}

func (c *Client) recordError(endpoint, code string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamError(endpoint, code)
	}
}

// statusError translates an upstream failure status into the gateway
// taxonomy, keeping the upstream's own message when it sent one.
func statusError(status int, body []byte) error {
	message := upstreamMessage(body)
	switch status {
	case http.StatusBadRequest:
		return appErrors.Clone(appErrors.ErrValidation, message)
	case http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	default:
		return appErrors.Wrap(fmt.Errorf("upstream status %d", status),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
}

// upstreamMessage digs the human-readable message out of the upstream's
// error payloads, which use either {"error": …} or {"detail": …}.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Detail
}

func (c *Client) getJSON(ctx context.Context, session *models.Session, path string, dest interface{}) error {
	req, err := c.newRequest(ctx, session, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	body, _, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(body, dest)
}

func (c *Client) postJSON(ctx context.Context, session *models.Session, path string, payload interface{}, dest interface{}) ([]*http.Cookie, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
	}
	req, err := c.newRequest(ctx, session, http.MethodPost, path, bytes.NewReader(raw), "application/json")
	if err != nil {
		return nil, err
	}
	body, cookies, err := c.do(req)
	if err != nil {
		return cookies, err
	}
	if dest != nil {
		if err := decode(body, dest); err != nil {
			return cookies, err
		}
	}
	return cookies, nil
}

func (c *Client) patchJSON(ctx context.Context, session *models.Session, path string, payload interface{}, dest interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
	}
	req, err := c.newRequest(ctx, session, http.MethodPatch, path, bytes.NewReader(raw), "application/json")
	if err != nil {
		return err
	}
	body, _, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(body, dest)
}

func decode(body []byte, dest interface{}) error {
	if dest == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected upstream payload")
	}
	return nil
}
