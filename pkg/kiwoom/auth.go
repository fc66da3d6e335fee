package kiwoom

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"kiwoom/pkg/core"
)

const grantTypeClientCredentials = "client_credentials"

var errEmptyToken = errors.New("empty access token")

// Authenticate exchanges the configured credentials for an access token and
// publishes it for subsequent calls. On any failure the previously held token,
// if one exists, stays in place and an authentication error is returned.
func (c *Client) Authenticate(ctx context.Context) error {
	creds := c.config.Credentials

	req := core.NewRequest(http.MethodPost, core.PathIssueToken).
		SetAPIID(core.APIIDIssueToken).
		SetBody(map[string]string{
			"grant_type": grantTypeClientCredentials,
			"appkey":     creds.AppKey,
			"secretkey":  creds.SecretKey,
		})

	payload, err := c.Execute(ctx, req)
	if err != nil {
		if apiErr, ok := core.AsError(err); ok && apiErr.Type == core.ErrorTypeAPI {
			return core.NewAuthenticationError(apiErr.Message, err)
		}
		return core.NewAuthenticationError("token exchange failed", err)
	}

	// A success envelope without a usable token still carries the server's message.
	msg := core.NewDecoder(payload).OptString(core.KeyReturnMsg).OrElse("token exchange returned no token")
	tok, err := core.TokenSchema(payload)
	if err == nil && strings.TrimSpace(tok.AccessToken) == "" {
		err = errEmptyToken
	}
	if err != nil {
		return core.NewAuthenticationError(msg, err)
	}

	c.token.Store(&tok)
	c.logger.Info().
		Str("token", core.MaskSecret(tok.AccessToken)).
		Str("server", c.config.ServerType.String()).
		Msg("access token issued")

	return nil
}

// Revoke invalidates the held token on the server and forgets it locally.
func (c *Client) Revoke(ctx context.Context) error {
	tok := c.token.Load()
	if tok == nil {
		return core.NewAuthenticationError("revoke", core.ErrNotAuthenticated)
	}
	creds := c.config.Credentials

	req := core.NewRequest(http.MethodPost, core.PathRevokeToken).
		SetAPIID(core.APIIDRevokeToken).
		SetBody(map[string]string{
			"appkey":    creds.AppKey,
			"secretkey": creds.SecretKey,
			"token":     tok.AccessToken,
		})

	if _, err := c.Execute(ctx, req); err != nil {
		return err
	}

	// Only clear the token that was revoked; a concurrent Authenticate wins.
	c.token.CompareAndSwap(tok, nil)
	c.logger.Info().Msg("access token revoked")
	return nil
}

// AuthHeaders returns the header set every authenticated call must carry.
// It fails with an authentication error while no token is held.
func (c *Client) AuthHeaders() (map[string]string, error) {
	tok := c.token.Load()
	if tok == nil || tok.AccessToken == "" {
		return nil, core.NewAuthenticationError("authenticated call without a token", core.ErrNotAuthenticated)
	}
	creds := c.config.Credentials
	return map[string]string{
		"authorization": "Bearer " + tok.AccessToken,
		"appkey":        creds.AppKey,
		"appsecret":     creds.SecretKey,
	}, nil
}

// Token returns the held token, if any.
func (c *Client) Token() (core.Token, bool) {
	tok := c.token.Load()
	if tok == nil {
		return core.Token{}, false
	}
	return *tok, true
}

// SetToken publishes a token obtained elsewhere. An empty access token
// returns the client to the unauthenticated state.
func (c *Client) SetToken(tok core.Token) {
	if tok.AccessToken == "" {
		c.token.Store(nil)
		return
	}
	c.token.Store(&tok)
}
