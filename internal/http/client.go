// Package http is the transport boundary: a resty client bound to one base
// URL, owned by one API client and released by Close.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"kiwoom/pkg/core"
)

// ContentTypeJSON is sent with every request.
const ContentTypeJSON = "application/json;charset=UTF-8"

type Client struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

type Config struct {
	BaseURL string            `validate:"required,url"`
	Timeout time.Duration     `validate:"min=1ms"`
	Headers map[string]string `validate:"omitempty"`
	Logger  zerolog.Logger    `validate:"-"`
}

// Response is the raw outcome of a call that reached the server.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	Header     http.Header
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type RequestOption func(*resty.Request)

func NewClient(config *Config) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(0)
	client.SetHeader("Content-Type", ContentTypeJSON)
	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder("application/json", func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	logger := config.Logger

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Close releases the underlying connections. Calls made after Close fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Do sends one request. A returned error means no response was received;
// any HTTP status, including 4xx and 5xx, is returned as a Response.
func (c *Client) Do(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	req := c.client.R().SetContext(ctx)
	for _, opt := range opts {
		opt(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", method).
			Str("path", path).
			Msg("http request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       resp.Bytes(),
		Header:     resp.Header(),
	}, nil
}

func WithHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) {
		r.SetHeaders(headers)
	}
}

func WithQueryParams(params map[string]string) RequestOption {
	return func(r *resty.Request) {
		r.SetQueryParams(params)
	}
}

// WithBody sets a pre-encoded JSON body.
func WithBody(body []byte) RequestOption {
	return func(r *resty.Request) {
		r.SetBody(body)
	}
}
