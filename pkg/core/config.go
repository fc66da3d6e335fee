package core

import (
	"errors"
	"maps"
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds the app key pair issued by the brokerage.
type Credentials struct {
	// AppKey is the public application key.
	AppKey string `json:"app_key" validate:"required"`
	// SecretKey is the application secret.
	SecretKey string `json:"secret_key" validate:"required"`
}

// Config contains all configuration options for a client.
// It is immutable after the client is constructed.
type Config struct {
	Credentials *Credentials `json:"credentials" validate:"required"`
	ServerType  ServerType   `json:"server_type" validate:"oneof=0 1"`

	// AccessToken is an externally issued token published at construction.
	AccessToken string `json:"access_token,omitempty"`

	// BaseURL and WebSocketURL override the environment URLs when set.
	BaseURL      string `json:"base_url,omitempty" validate:"omitempty,url"`
	WebSocketURL string `json:"websocket_url,omitempty" validate:"omitempty,url"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	// RateLimitRequests per RateLimitPeriod paces outgoing calls. Zero disables pacing.
	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=0"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=0"`

	// APIRateLimits paces individual API ids on top of the global limit.
	APIRateLimits map[APIID]RateLimit `json:"api_rate_limits,omitempty" validate:"omitempty,dive"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// RateLimit allows Requests calls per Period.
type RateLimit struct {
	Requests int           `json:"requests" validate:"min=1"`
	Period   time.Duration `json:"period" validate:"min=1ms"`
}

// DefaultConfig returns a Config initialized with sensible defaults.
// Default values: production server, 10s timeout, 5 requests per second.
func DefaultConfig() *Config {
	return &Config{
		ServerType: ServerProduction,
		Timeout:    10 * time.Second,

		RateLimitRequests: 5,
		RateLimitPeriod:   time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks the configuration and returns a configuration error describing the first problem.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return NewConfigurationError("invalid config", err)
	}
	if c.RateLimitRequests > 0 && c.RateLimitPeriod <= 0 {
		return NewConfigurationError("invalid config",
			errors.New("RateLimitPeriod must be positive when RateLimitRequests is set"))
	}
	return nil
}

// Clone returns a deep copy, so later changes to c do not reach a client built from the copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Credentials != nil {
		creds := *c.Credentials
		cp.Credentials = &creds
	}
	cp.APIRateLimits = maps.Clone(c.APIRateLimits)
	return &cp
}

// ResolvedBaseURL returns the REST base URL, honouring the override.
func (c *Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return c.ServerType.BaseURL()
}

// ResolvedWebSocketURL returns the websocket URL, honouring the override.
func (c *Config) ResolvedWebSocketURL() string {
	if c.WebSocketURL != "" {
		return c.WebSocketURL
	}
	return c.ServerType.WebSocketURL()
}

// WithCredentials sets the app key pair and returns the config for chaining.
func (c *Config) WithCredentials(appKey, secretKey string) *Config {
	c.Credentials = &Credentials{AppKey: appKey, SecretKey: secretKey}
	return c
}

// WithServerType sets the environment and returns the config for chaining.
func (c *Config) WithServerType(serverType ServerType) *Config {
	c.ServerType = serverType
	return c
}

// WithAccessToken sets an externally issued token and returns the config for chaining.
func (c *Config) WithAccessToken(token string) *Config {
	c.AccessToken = token
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the pacing parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// WithAPIRateLimit paces one API id separately and returns the config for chaining.
func (c *Config) WithAPIRateLimit(id APIID, requests int, period time.Duration) *Config {
	if c.APIRateLimits == nil {
		c.APIRateLimits = make(map[APIID]RateLimit)
	}
	c.APIRateLimits[id] = RateLimit{Requests: requests, Period: period}
	return c
}
