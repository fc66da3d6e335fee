package kiwoom

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	httpClient "kiwoom/internal/http"
	"kiwoom/internal/ratelimit"
	"kiwoom/pkg/core"
	"kiwoom/pkg/stockinfo"
)

// Client is the brokerage API client. It owns one HTTP transport for its
// lifetime and holds the access token used by every authenticated call.
// Clients are safe for concurrent use.
type Client struct {
	config      *core.Config
	httpClient  *httpClient.Client
	rateLimiter *ratelimit.RateLimiter
	logger      zerolog.Logger
	token       atomic.Pointer[core.Token]

	// StockInfo groups the stock information endpoints.
	StockInfo *stockinfo.Client
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger zerolog.Logger
}

// WithLogger returns an option that sets the logger for the client.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// New validates config and opens the client's transport. The client keeps
// its own copy of config; changing config afterwards has no effect on it.
// The returned client must be released with Close.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, core.NewConfigurationError("config is required", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.Clone()

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.Logger.With().Str("component", "kiwoom").Logger()

	hc, err := httpClient.NewClient(&httpClient.Config{
		BaseURL: config.ResolvedBaseURL(),
		Timeout: config.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, core.NewConfigurationError("create http client", err)
	}

	var rl *ratelimit.RateLimiter
	if config.RateLimitRequests > 0 || len(config.APIRateLimits) > 0 {
		rl = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
		for id, l := range config.APIRateLimits {
			rl.SetBucketLimit(id.String(), l.Requests, l.Period)
		}
	}

	c := &Client{
		config:      config,
		httpClient:  hc,
		rateLimiter: rl,
		logger:      logger,
	}
	if config.AccessToken != "" {
		c.SetToken(core.Token{AccessToken: config.AccessToken})
	}
	c.StockInfo = stockinfo.New(c)

	return c, nil
}

// Name returns the client identifier "kiwoom".
func (c *Client) Name() string {
	return "kiwoom"
}

// ServerType returns the environment the client talks to.
func (c *Client) ServerType() core.ServerType {
	return c.config.ServerType
}

// Close releases the transport. Calls made afterwards fail with ErrClientClosed.
func (c *Client) Close() error {
	if c.httpClient != nil {
		return c.httpClient.Close()
	}
	return nil
}

// Execute performs req and returns its payload once both the HTTP status and
// the embedded return code signal success. A non-2xx status is a transport
// error and the body is not decoded; a nonzero return code is an API error
// even under HTTP 200.
func (c *Client) Execute(ctx context.Context, req *core.Request) (core.Payload, error) {
	if c.httpClient.Closed() {
		return nil, core.NewNetworkError(core.ErrClientClosed)
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, req.APIID().String()); err != nil {
			return nil, core.NewNetworkError(fmt.Errorf("rate limit: %w", err))
		}
	}

	opts := []httpClient.RequestOption{httpClient.WithHeaders(req.Headers)}
	if len(req.Query) > 0 {
		opts = append(opts, httpClient.WithQueryParams(paramsToStringMap(req.Query)))
	}
	if req.Body != nil {
		body, err := sonic.Marshal(req.Body)
		if err != nil {
			return nil, core.NewConfigurationError("encode request body", err)
		}
		opts = append(opts, httpClient.WithBody(body))
	}

	resp, err := c.httpClient.Do(ctx, req.Method, req.Path, opts...)
	if err != nil {
		return nil, core.NewNetworkError(err)
	}

	if !resp.IsSuccess() {
		c.logger.Warn().
			Str("api_id", req.APIID().String()).
			Int("status", resp.StatusCode).
			Msg("http error")
		return nil, core.NewTransportError(resp.StatusCode, statusMessage(resp), resp.Body)
	}

	payload, err := core.ParsePayload(resp.Body)
	if err != nil {
		return nil, err
	}

	// The status check runs before any schema: a failure body need not match the success shape.
	d := core.NewDecoder(payload)
	code := d.Int(core.KeyReturnCode)
	msg := d.OptString(core.KeyReturnMsg)
	if err := d.Err(); err != nil {
		return nil, err
	}
	if code != 0 {
		c.logger.Warn().
			Str("api_id", req.APIID().String()).
			Int("code", code).
			Str("message", msg.OrElse("")).
			Msg("api error")
		return nil, core.NewAPIError(resp.StatusCode, code, msg.OrElse(""))
	}

	return payload, nil
}

func statusMessage(resp *httpClient.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

func paramsToStringMap(params core.Params) map[string]string {
	result := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case string:
			result[k] = val
		case int:
			result[k] = strconv.Itoa(val)
		case int64:
			result[k] = strconv.FormatInt(val, 10)
		case float64:
			result[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			result[k] = strconv.FormatBool(val)
		default:
			result[k] = fmt.Sprintf("%v", val)
		}
	}
	return result
}

var _ core.Executor = (*Client)(nil)
