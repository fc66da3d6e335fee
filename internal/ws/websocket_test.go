package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lxzan/gws"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiwoom/pkg/core"
)

type echoServer struct {
	gws.BuiltinEventHandler
	greeting []string
	closeNow bool

	mu      sync.Mutex
	headers http.Header
}

func (s *echoServer) OnOpen(socket *gws.Conn) {
	for _, g := range s.greeting {
		_ = socket.WriteString(g)
	}
	if s.closeNow {
		socket.WriteClose(1000, []byte("bye"))
	}
}

func (s *echoServer) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	_ = socket.WriteMessage(message.Opcode, message.Bytes())
}

func startServer(t *testing.T, s *echoServer) string {
	t.Helper()
	upgrader := gws.NewUpgrader(s, &gws.ServerOption{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.headers = r.Header.Clone()
		s.mu.Unlock()

		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			return
		}
		go socket.ReadLoop()
	}))
	t.Cleanup(srv.Close)
	return "ws://" + strings.TrimPrefix(srv.URL, "http://")
}

type collector struct {
	mu     sync.Mutex
	frames []string
}

func (c *collector) handle(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, string(data))
	return nil
}

func (c *collector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.frames...)
}

func TestDial_SendsHeaderAndReceivesFrames(t *testing.T) {
	srv := &echoServer{greeting: []string{"hello"}}
	url := startServer(t, srv)

	var got collector
	conn, err := Dial(context.Background(), Config{
		URL:    url,
		Header: http.Header{"Authorization": []string{"Bearer abc"}},
	}, got.handle, zerolog.Nop())
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, StateConnected, conn.State())

	srv.mu.Lock()
	assert.Equal(t, "Bearer abc", srv.headers.Get("Authorization"))
	srv.mu.Unlock()

	require.NoError(t, conn.WriteMessage([]byte("ping-1")))
	require.NoError(t, conn.SendJSON(map[string]int{"n": 2}))

	assert.Eventually(t, func() bool {
		return len(got.all()) == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"hello", "ping-1", `{"n":2}`}, got.all())
}

func TestConn_PeerCloseIsTerminal(t *testing.T) {
	srv := &echoServer{greeting: []string{"a", "b"}, closeNow: true}
	url := startServer(t, srv)

	var got collector
	conn, err := Dial(context.Background(), Config{URL: url}, got.handle, zerolog.Nop())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = conn.Wait(ctx)
	require.Error(t, err)
	assert.True(t, core.IsWebSocketError(err))
	assert.True(t, errors.Is(err, core.ErrConnectionClosed))
	assert.Equal(t, []string{"a", "b"}, got.all())
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, err, conn.Err())

	assert.Error(t, conn.WriteMessage([]byte("after close")))
}

func TestConn_UserCloseReportsNil(t *testing.T) {
	url := startServer(t, &echoServer{})

	conn, err := Dial(context.Background(), Config{URL: url}, func([]byte) error { return nil }, zerolog.Nop())
	require.NoError(t, err)

	assert.Nil(t, conn.Err())
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	select {
	case <-conn.Done():
	default:
		t.Fatal("done not closed after Close")
	}
	assert.NoError(t, conn.Wait(context.Background()))
	assert.Equal(t, StateClosed, conn.State())
}

func TestConn_HandlerError(t *testing.T) {
	url := startServer(t, &echoServer{greeting: []string{"bad frame"}})
	boom := errors.New("boom")

	conn, err := Dial(context.Background(), Config{URL: url}, func([]byte) error { return boom }, zerolog.Nop())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.ErrorIs(t, conn.Wait(ctx), boom)
}

func TestDial_Failure(t *testing.T) {
	_, err := Dial(context.Background(), Config{URL: "ws://127.0.0.1:1", HandshakeTimeout: time.Second},
		func([]byte) error { return nil }, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, core.IsWebSocketError(err))
}

func TestDial_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, Config{URL: "ws://127.0.0.1:1"}, func([]byte) error { return nil }, zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}
