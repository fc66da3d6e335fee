package core

// APIID identifies a brokerage operation. It is sent in the api-id header.
type APIID string

// Operation ids used by this client.
const (
	// APIIDIssueToken exchanges the app key pair for an access token.
	APIIDIssueToken APIID = "au10001"
	// APIIDRevokeToken invalidates an access token.
	APIIDRevokeToken APIID = "au10002"
	// APIIDStockBasicInfo fetches basic stock information.
	APIIDStockBasicInfo APIID = "ka10001"
)

// Paths of the endpoints above.
const (
	PathIssueToken  = "/oauth2/token"
	PathRevokeToken = "/oauth2/revoke"
	PathStockInfo   = "/api/dostk/stkinfo"
)

// String returns the operation id.
func (id APIID) String() string {
	return string(id)
}
