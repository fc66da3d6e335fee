package core

import (
	"fmt"
	"strings"
)

// ServerType selects the brokerage environment.
type ServerType int

// Server type constants define the available environments.
const (
	// ServerProduction is the live trading environment.
	ServerProduction ServerType = iota
	// ServerSandbox is the mock trading environment.
	ServerSandbox
)

// String returns the string representation of the server type ("production" or "sandbox").
func (s ServerType) String() string {
	return [...]string{
		"production",
		"sandbox",
	}[s]
}

// BaseURL returns the REST base URL of the environment.
func (s ServerType) BaseURL() string {
	if s == ServerSandbox {
		return "https://mockapi.kiwoom.com"
	}
	return "https://api.kiwoom.com"
}

// WebSocketURL returns the websocket URL of the environment.
func (s ServerType) WebSocketURL() string {
	if s == ServerSandbox {
		return "wss://mockapi.kiwoom.com:10000"
	}
	return "wss://api.kiwoom.com:10000"
}

// ParseServerType parses an environment selector. "real" and "mock" are
// accepted as aliases of "production" and "sandbox".
func ParseServerType(s string) (ServerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "real", "":
		return ServerProduction, nil
	case "sandbox", "mock":
		return ServerSandbox, nil
	default:
		return 0, NewConfigurationError(
			fmt.Sprintf("unrecognized server type %q, want production or sandbox", s), nil)
	}
}
