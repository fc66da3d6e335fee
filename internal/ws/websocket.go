package ws

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"

	"kiwoom/pkg/core"
)

// Handler is invoked once per inbound frame, in arrival order.
// Returning an error ends the connection with that error.
type Handler func(data []byte) error

// Config holds configuration options for a websocket connection.
type Config struct {
	// URL is the websocket server endpoint to connect to.
	URL string
	// Header is sent with the opening handshake.
	Header http.Header
	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration
	// PingInterval is the duration between ping frames sent to keep the connection alive.
	PingInterval time.Duration
	// PongWait is how long past a ping interval the connection may stay silent before it is considered dead.
	PongWait time.Duration
}

// Conn is one websocket connection. It is never reconnected: once the peer
// closes it, or the handler fails, it stays closed and Wait reports why.
type Conn struct {
	config  Config
	state   *State
	conn    *gws.Conn
	handler Handler
	logger  zerolog.Logger

	userClosed atomic.Bool
	finishOnce sync.Once
	done       chan struct{}
	err        error
	wg         sync.WaitGroup
}

type eventHandler struct {
	c *Conn
}

// Dial opens a connection and starts delivering frames to handler.
// Default values are applied for any zero-valued configuration fields.
func Dial(ctx context.Context, config Config, handler Handler, logger zerolog.Logger) (*Conn, error) {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		config.HandshakeTimeout = min(config.HandshakeTimeout, time.Until(deadline))
	}
	if config.PingInterval == 0 {
		config.PingInterval = 10 * time.Second
	}
	if config.PongWait == 0 {
		config.PongWait = 20 * time.Second
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &Conn{
		config:  config,
		state:   &State{},
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
	c.state.Advance(StateConnecting)

	socket, _, err := gws.NewClient(&eventHandler{c: c}, &gws.ClientOption{
		Addr:             config.URL,
		RequestHeader:    config.Header,
		HandshakeTimeout: config.HandshakeTimeout,
	})
	if err != nil {
		c.state.Advance(StateClosed)
		return nil, core.NewWebSocketError("connect "+config.URL, err)
	}
	c.conn = socket
	c.state.Advance(StateConnected)

	c.wg.Go(func() {
		socket.ReadLoop()
	})
	c.wg.Go(c.pingLoop)

	return c, nil
}

func (h *eventHandler) OnOpen(socket *gws.Conn) {
	h.c.logger.Info().
		Str("url", h.c.config.URL).
		Msg("websocket connected")
	h.c.extendDeadline(socket)
}

func (h *eventHandler) OnClose(socket *gws.Conn, err error) {
	if h.c.userClosed.Load() {
		h.c.finish(nil)
		return
	}

	h.c.logger.Warn().
		Err(err).
		Str("url", h.c.config.URL).
		Msg("websocket disconnected")

	wsErr := core.NewWebSocketError("connection closed", core.ErrConnectionClosed)
	if err != nil {
		wsErr.Message = fmt.Sprintf("connection closed (%v)", err)
	}
	h.c.finish(wsErr)
}

func (h *eventHandler) OnPing(socket *gws.Conn, payload []byte) {
	h.c.extendDeadline(socket)
	_ = socket.WritePong(payload)
}

func (h *eventHandler) OnPong(socket *gws.Conn, payload []byte) {
	h.c.extendDeadline(socket)
}

func (h *eventHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	data := bytes.Clone(message.Bytes())
	message.Close()

	h.c.extendDeadline(socket)
	if len(data) == 0 {
		return
	}

	h.c.logger.Debug().Int("size", len(data)).Msg("received websocket message")

	if err := h.c.handler(data); err != nil {
		h.c.logger.Error().Err(err).Msg("websocket handler failed")
		h.c.finish(fmt.Errorf("handle message: %w", err))
		_ = socket.NetConn().Close()
	}
}

func (c *Conn) extendDeadline(socket *gws.Conn) {
	_ = socket.SetReadDeadline(time.Now().Add(c.config.PingInterval + c.config.PongWait))
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.conn.WritePing(nil); err != nil {
				c.logger.Debug().Err(err).Msg("websocket ping failed")
			}
		}
	}
}

// finish records the terminal outcome. Only the first call has effect.
func (c *Conn) finish(err error) {
	c.finishOnce.Do(func() {
		c.err = err
		c.state.Advance(StateClosed)
		close(c.done)
	})
}

// Close shuts the connection down and waits for its goroutines to exit.
// A connection closed this way reports a nil error from Wait.
func (c *Conn) Close() error {
	if c.userClosed.Swap(true) {
		c.wg.Wait()
		return nil
	}
	_ = c.conn.NetConn().Close()
	c.finish(nil)
	c.wg.Wait()
	return nil
}

// Done is closed when the connection has ended.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the terminal error once Done is closed.
func (c *Conn) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the connection ends or ctx is done.
func (c *Conn) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current connection state.
func (c *Conn) State() ConnState {
	return c.state.Load()
}

// WriteMessage sends a text frame.
// It returns an error if the connection is not active.
func (c *Conn) WriteMessage(data []byte) error {
	if c.state.Load() != StateConnected {
		return core.NewWebSocketError("websocket not connected", core.ErrConnectionClosed)
	}
	return c.conn.WriteMessage(gws.OpcodeText, data)
}

// SendJSON marshals v and sends it as a text frame.
func (c *Conn) SendJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return core.NewWebSocketError("marshal json", err)
	}
	return c.WriteMessage(data)
}
