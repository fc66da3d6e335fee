// Package stockinfo implements the stock information endpoints.
package stockinfo

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"kiwoom/pkg/core"
)

var validate = validator.New()

// Client calls the stock information endpoints through an Executor.
// It holds no state of its own and is safe for concurrent use.
type Client struct {
	ex core.Executor
}

// New returns a Client calling through ex.
func New(ex core.Executor) *Client {
	return &Client{ex: ex}
}

// BasicInfoRequest is the ka10001 request body.
type BasicInfoRequest struct {
	StockCode string `json:"stk_cd" validate:"required"`
}

// Validate rejects a request before it reaches the network with a configuration error.
func (r BasicInfoRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return core.NewConfigurationError("invalid basic info request", err)
	}
	return nil
}

// Encode returns the wire body.
func (r BasicInfoRequest) Encode() core.Payload {
	return core.Payload{"stk_cd": r.StockCode}
}

// BasicInfoRequestSchema decodes a ka10001 request body.
func BasicInfoRequestSchema(p core.Payload) (BasicInfoRequest, error) {
	d := core.NewDecoder(p)
	r := BasicInfoRequest{StockCode: d.String("stk_cd")}
	return r, d.Err()
}

// GetBasicInfo fetches basic information for one stock code (ka10001).
func (c *Client) GetBasicInfo(ctx context.Context, stockCode string) (*StockInfo, error) {
	body := BasicInfoRequest{StockCode: strings.TrimSpace(stockCode)}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	headers, err := c.ex.AuthHeaders()
	if err != nil {
		return nil, err
	}

	req := core.NewRequest(http.MethodPost, core.PathStockInfo).
		SetHeaders(headers).
		SetAPIID(core.APIIDStockBasicInfo).
		SetBody(body.Encode())

	info, err := core.Call(ctx, c.ex, req, StockInfoSchema)
	if err != nil {
		return nil, err
	}
	if !info.OK() {
		return nil, info.Err(http.StatusOK)
	}
	return info, nil
}
