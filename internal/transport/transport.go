// Package transport delivers formatted command strings to the status-bar
// host over its well-known Unix domain socket. The endpoint is resolved
// lazily, the connection is cached, and a failed send is retried exactly
// once against a freshly resolved endpoint before giving up.
package transport

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/rwein/barpoll/internal/errors"
)

const (
	// DefaultBarName is used when neither the config nor the BAR_NAME
	// environment variable selects a bar instance.
	DefaultBarName = "sketchybar"

	socketPrefix = "git.felix."
	sendTimeout  = 2 * time.Second
)

// Publisher is the one-method surface the daemon drivers depend on.
type Publisher interface {
	Publish(message string) error
}

// Client implements Publisher against the host's Unix domain socket.
type Client struct {
	path string
	dial func(path string) (net.Conn, error)
	conn net.Conn
}

// NewClient creates a client for the named bar. An empty barName falls back
// to the BAR_NAME environment variable, then to DefaultBarName.
func NewClient(barName string) *Client {
	if barName == "" {
		barName = os.Getenv("BAR_NAME")
	}
	if barName == "" {
		barName = DefaultBarName
	}

	return &Client{
		path: filepath.Join(os.TempDir(), socketPrefix+barName+".socket"),
		dial: func(path string) (net.Conn, error) {
			return net.DialTimeout("unix", path, sendTimeout)
		},
	}
}

// SocketPath returns the resolved endpoint path, mostly for diagnostics.
func (c *Client) SocketPath() string {
	return c.path
}

// Publish formats message and sends it to the host. On a send failure the
// endpoint is re-resolved once and the send retried; a second failure yields
// ErrHostGone.
func (c *Client) Publish(message string) error {
	errFactory := errors.New()

	if message == "" {
		return errFactory.New(ErrEmptyMessage)
	}

	payload := FormatMessage(message)

	if err := c.send(payload); err != nil {
		c.reset()
		if err := c.send(payload); err != nil {
			c.reset()
			return errFactory.Wrap(ErrHostGone, err).WithMessage("Status-bar host unreachable")
		}
	}

	return nil
}

// AddEvent registers a named event with the host. Fire-and-forget: no
// acknowledgment is awaited.
func (c *Client) AddEvent(event string) error {
	return c.Publish(AddEventCommand(event))
}

// Trigger fires a named event with the given fields attached.
func (c *Client) Trigger(event string, fields []Field) error {
	return c.Publish(TriggerCommand(event, fields))
}

// Close releases the cached connection, if any.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil

	return err
}

func (c *Client) send(payload []byte) error {
	if c.conn == nil {
		conn, err := c.dial(c.path)
		if err != nil {
			return err
		}
		c.conn = conn
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(sendTimeout)); err != nil {
		return err
	}

	_, err := c.conn.Write(payload)

	return err
}

func (c *Client) reset() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
