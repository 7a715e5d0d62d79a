// Package receiptapi talks to the spreadsheet-backed receipt store.
package receiptapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sangkips/receipt-viewer/internal/domain/entity"
	"github.com/sangkips/receipt-viewer/internal/domain/schema"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
)

// Config carries the process-wide endpoint and shared credential.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client issues lookup and ping requests. It holds no per-lookup state.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a Client for the configured endpoint.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("receiptapi: base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("receiptapi: invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("receiptapi: base URL %q must be absolute", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchReceipt performs exactly one lookup round trip for refCode.
// Results are never cached.
func (c *Client) FetchReceipt(ctx context.Context, refCode string) (*entity.Receipt, error) {
	refCode = strings.TrimSpace(refCode)
	if refCode == "" {
		return nil, ErrEmptyRefCode
	}

	body, status, err := c.get(ctx, url.Values{
		"action": {"get"},
		"ref":    {refCode},
		"token":  {c.token},
	})
	if err != nil {
		c.logger.Warn("receipt lookup transport failure", zap.String("ref", refCode), zap.Error(err))
		return nil, &LookupError{Kind: KindConnection, RefCode: refCode, Err: err}
	}
	if status < 200 || status > 299 {
		c.logger.Warn("receipt lookup rejected", zap.String("ref", refCode), zap.Int("status", status))
		return nil, &LookupError{
			Kind:       KindConnection,
			RefCode:    refCode,
			StatusCode: status,
			Err:        fmt.Errorf("unexpected status %d", status),
		}
	}

	env, err := schema.DecodeEnvelope(body)
	if err != nil {
		c.logger.Warn("receipt lookup returned malformed body", zap.String("ref", refCode), zap.Error(err))
		return nil, &LookupError{Kind: KindMalformedResponse, RefCode: refCode, Err: err}
	}

	receipt, err := env.Outcome()
	if err != nil {
		var remote *entity.RemoteFailure
		if errors.As(err, &remote) {
			msg := remote.Message
			if msg == "" {
				msg = DefaultRemoteMessage
			}
			return nil, &LookupError{Kind: KindRemote, RefCode: refCode, Message: msg, Err: err}
		}
		return nil, &LookupError{Kind: KindNotFound, RefCode: refCode, Err: err}
	}

	c.logger.Debug("receipt lookup succeeded", zap.String("ref", refCode), zap.Int("items", len(receipt.Items)))
	return receipt, nil
}

// Ping reports whether the store answers a ping with a truthy pong marker.
// It never returns an error; every failure reads as unreachable.
func (c *Client) Ping(ctx context.Context) bool {
	body, status, err := c.get(ctx, url.Values{
		"action": {"ping"},
		"token":  {c.token},
	})
	if err != nil {
		c.logger.Debug("receipt store ping failed", zap.Error(err))
		return false
	}
	if status < 200 || status > 299 {
		c.logger.Debug("receipt store ping rejected", zap.Int("status", status))
		return false
	}

	var resp struct {
		OK   bool `json:"ok"`
		Data *struct {
			Pong any `json:"pong"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Debug("receipt store ping returned invalid JSON", zap.Error(err))
		return false
	}
	return resp.OK && resp.Data != nil && truthy(resp.Data.Pong)
}

func (c *Client) get(ctx context.Context, query url.Values) ([]byte, int, error) {
	endpoint := *c.baseURL
	q := endpoint.Query()
	for k, vs := range query {
		q[k] = vs
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
