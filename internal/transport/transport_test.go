package transport

import (
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	apperrors "codeberg.org/rwein/barpoll/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	written   []byte
	failWrite bool
	closed    bool
}

func (c *fakeConn) Read(_ []byte) (int, error) { return 0, errors.New("not readable") }

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.failWrite {
		return 0, errors.New("broken pipe")
	}
	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *fakeConn) Close() error                     { c.closed = true; return nil }
func (c *fakeConn) LocalAddr() net.Addr              { return nil }
func (c *fakeConn) RemoteAddr() net.Addr             { return nil }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func TestNewClientBarName(t *testing.T) {
	t.Setenv("BAR_NAME", "")
	c := NewClient("")
	assert.Contains(t, c.SocketPath(), socketPrefix+DefaultBarName)

	t.Setenv("BAR_NAME", "custombar")
	c = NewClient("")
	assert.Contains(t, c.SocketPath(), socketPrefix+"custombar")

	// Explicit name wins over the environment.
	c = NewClient("explicit")
	assert.Contains(t, c.SocketPath(), socketPrefix+"explicit")
}

func TestPublishWritesFormattedPayload(t *testing.T) {
	conn := &fakeConn{}
	c := &Client{
		path: "test",
		dial: func(string) (net.Conn, error) { return conn, nil },
	}

	err := c.Publish("--trigger 'demo' label='two words'")
	require.NoError(t, err)
	assert.Equal(t, []byte("--trigger demo label=two words\x00"), conn.written)
}

func TestPublishReusesConnection(t *testing.T) {
	dials := 0
	conn := &fakeConn{}
	c := &Client{
		path: "test",
		dial: func(string) (net.Conn, error) {
			dials++
			return conn, nil
		},
	}

	require.NoError(t, c.Publish("--trigger 'a'"))
	require.NoError(t, c.Publish("--trigger 'b'"))
	assert.Equal(t, 1, dials, "connection must be cached across publishes")
}

func TestPublishRetriesOnce(t *testing.T) {
	bad := &fakeConn{failWrite: true}
	good := &fakeConn{}
	conns := []net.Conn{bad, good}
	c := &Client{
		path: "test",
		dial: func(string) (net.Conn, error) {
			conn := conns[0]
			conns = conns[1:]
			return conn, nil
		},
	}

	err := c.Publish("--trigger 'demo'")
	require.NoError(t, err)
	assert.True(t, bad.closed, "failed connection must be dropped")
	assert.Equal(t, []byte("--trigger demo\x00"), good.written)
}

func TestPublishHostGone(t *testing.T) {
	c := &Client{
		path: "test",
		dial: func(string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		},
	}

	err := c.Publish("--trigger 'demo'")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, ErrHostGone))
}

func TestPublishEmptyMessage(t *testing.T) {
	c := NewClient("unused")
	err := c.Publish("")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, ErrEmptyMessage))
}

func TestPublishOverUnixSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "bar.socket")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 512)
		n, _ := conn.Read(buf)
		received <- buf[:n]
	}()

	c := NewClient("ignored")
	c.path = sock
	defer c.Close()

	require.NoError(t, c.AddEvent("cpu_update"))

	select {
	case payload := <-received:
		assert.Equal(t, []byte("--add event cpu_update\x00"), payload)
	case <-time.After(2 * time.Second):
		t.Fatal("host never received the payload")
	}
}
