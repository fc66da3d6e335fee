package kiwoom

import (
	"context"
	"net/http"

	"kiwoom/internal/ws"
	"kiwoom/pkg/core"
)

// Handler receives each inbound websocket frame in arrival order.
// Returning an error ends the stream with that error.
type Handler func(data []byte) error

// Stream is a live websocket connection opened with the client's credentials.
type Stream struct {
	conn *ws.Conn
}

// ConnectWebSocket opens the client's websocket connection. The handshake
// carries the authenticated header set, so a token must be held.
func (c *Client) ConnectWebSocket(ctx context.Context, handler Handler) (*Stream, error) {
	if handler == nil {
		return nil, core.NewConfigurationError("websocket handler is required", nil)
	}
	if c.httpClient.Closed() {
		return nil, core.NewWebSocketError("connect", core.ErrClientClosed)
	}

	headers, err := c.AuthHeaders()
	if err != nil {
		return nil, err
	}
	header := make(http.Header, len(headers))
	for k, v := range headers {
		header.Set(k, v)
	}

	conn, err := ws.Dial(ctx, ws.Config{
		URL:              c.config.ResolvedWebSocketURL(),
		Header:           header,
		HandshakeTimeout: c.config.Timeout,
	}, ws.Handler(handler), c.logger)
	if err != nil {
		return nil, err
	}
	return &Stream{conn: conn}, nil
}

// Stream connects and delivers frames to handler until the server closes the
// connection, the handler fails, or ctx is done. A server close is reported
// as a websocket error wrapping ErrConnectionClosed.
func (c *Client) Stream(ctx context.Context, handler Handler) error {
	s, err := c.ConnectWebSocket(ctx, handler)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Wait(ctx)
}

// SendJSON encodes v and sends it as a text frame.
func (s *Stream) SendJSON(v any) error {
	return s.conn.SendJSON(v)
}

// Send sends a raw text frame.
func (s *Stream) Send(data []byte) error {
	return s.conn.WriteMessage(data)
}

// Wait blocks until the stream ends or ctx is done.
func (s *Stream) Wait(ctx context.Context) error {
	return s.conn.Wait(ctx)
}

// Done is closed once the stream has ended.
func (s *Stream) Done() <-chan struct{} {
	return s.conn.Done()
}

// Connected reports whether frames can still be sent.
func (s *Stream) Connected() bool {
	return s.conn.State() == ws.StateConnected
}

// Close ends the stream. Wait then returns nil.
func (s *Stream) Close() error {
	return s.conn.Close()
}
