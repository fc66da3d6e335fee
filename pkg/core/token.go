package core

import (
	"fmt"
	"time"
)

// ExpiryLayout is the wire layout of expires_dt, expressed in Korea Standard Time.
const ExpiryLayout = "20060102150405"

// KST is the zone of every brokerage timestamp.
var KST = time.FixedZone("KST", 9*60*60)

// Token is an issued access token and its optional metadata.
// Tokens are published whole and never modified in place.
type Token struct {
	AccessToken string              `json:"-"`
	Type        Optional[string]    `json:"token_type"`
	ExpiresAt   Optional[time.Time] `json:"expires_at"`
}

// Expired reports whether the token's expiry, if known, is at or before now.
// Nothing refreshes tokens automatically.
func (t Token) Expired(now time.Time) bool {
	exp, ok := t.ExpiresAt.Get()
	return ok && !now.Before(exp)
}

// String returns a representation safe for logs.
func (t Token) String() string {
	exp := "unknown"
	if e, ok := t.ExpiresAt.Get(); ok {
		exp = e.Format(time.RFC3339)
	}
	return fmt.Sprintf("Token{Type:%s, Token:%s, ExpiresAt:%s}",
		t.Type.OrElse("bearer"), MaskSecret(t.AccessToken), exp)
}

// TokenSchema decodes the token exchange response. The token itself is
// required; token_type and expires_dt are optional.
func TokenSchema(p Payload) (Token, error) {
	d := NewDecoder(p)
	tok := Token{
		AccessToken: d.String("token"),
		Type:        d.OptString("token_type"),
		ExpiresAt:   d.OptTime("expires_dt", ExpiryLayout, KST),
	}
	return tok, d.Err()
}

// MaskSecret hides all but the edges of a secret.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
