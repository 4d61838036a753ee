package discord

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/mcsr-tools/splitwatch/internal/log"
	"github.com/mcsr-tools/splitwatch/internal/model"
	"github.com/mcsr-tools/splitwatch/internal/presence"
)

// ClientConfig is the configuration for the Discord presence client.
type ClientConfig struct {
	// ClientID is the Discord application client ID.
	ClientID string
	Logger   log.Logger

	// Dial overrides the transport connection, used in tests.
	Dial func() (net.Conn, error)
}

func (c *ClientConfig) defaults() error {
	if c.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "presence.Discord"})
	if c.Dial == nil {
		c.Dial = dialSocket
	}
	return nil
}

// Client publishes run status over Discord's local IPC socket. It
// connects lazily and drops the connection on any transport error so
// the next publish retries from scratch. Identical consecutive renders
// are deduplicated.
type Client struct {
	clientID string
	logger   log.Logger
	dial     func() (net.Conn, error)

	mu          sync.Mutex
	conn        net.Conn
	lastPayload string
}

var _ presence.Publisher = (*Client)(nil)

// NewClient creates a new Discord presence client. It does not connect,
// the first publish does.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		clientID: cfg.ClientID,
		logger:   cfg.Logger,
		dial:     cfg.Dial,
	}, nil
}

// Publish renders the status as a Discord activity.
func (c *Client) Publish(ctx context.Context, s model.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(); err != nil {
		return err
	}

	args := newActivityArgs(presence.BuildActivity(s))
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("could not marshal activity: %w", err)
	}
	if string(payload) == c.lastPayload {
		c.logger.Debugf("Skipping identical presence render")
		return nil
	}

	if err := c.command("SET_ACTIVITY", args); err != nil {
		return err
	}
	c.lastPayload = string(payload)

	c.logger.Infof("Presence updated: %s", s.Milestone)
	return nil
}

// Clear removes the presence. A no-op when never connected.
func (c *Client) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastPayload = ""
	if c.conn == nil {
		return nil
	}

	if err := c.command("SET_ACTIVITY", activityArgs{PID: os.Getpid()}); err != nil {
		return err
	}

	c.logger.Infof("Presence cleared")
	return nil
}

// Close sends the close opcode and tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	_ = writeFrame(c.conn, opClose, nil)
	err := c.conn.Close()
	c.conn = nil
	return err
}

// ensureConnected dials and handshakes if needed. Callers hold the lock.
func (c *Client) ensureConnected() error {
	if c.conn != nil {
		return nil
	}

	conn, err := c.dial()
	if err != nil {
		return err
	}

	hs, err := json.Marshal(handshake{V: 1, ClientID: c.clientID})
	if err != nil {
		conn.Close()
		return fmt.Errorf("could not marshal handshake: %w", err)
	}
	if err := writeFrame(conn, opHandshake, hs); err != nil {
		conn.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	_, payload, err := readFrame(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}
	var ready struct {
		Evt string `json:"evt"`
	}
	if err := json.Unmarshal(payload, &ready); err != nil || ready.Evt != "READY" {
		conn.Close()
		return fmt.Errorf("unexpected handshake response: %s", payload)
	}

	c.conn = conn
	c.logger.Infof("Connected to Discord IPC")
	return nil
}

// command sends one command frame and consumes its response. Any
// transport error drops the connection so the next publish reconnects.
// Callers hold the lock.
func (c *Client) command(cmd string, args any) error {
	body, err := json.Marshal(command{Cmd: cmd, Args: args, Nonce: newNonce()})
	if err != nil {
		return fmt.Errorf("could not marshal command: %w", err)
	}

	if err := writeFrame(c.conn, opFrame, body); err != nil {
		c.drop()
		return err
	}

	_, payload, err := readFrame(c.conn)
	if err != nil {
		c.drop()
		return err
	}

	var resp struct {
		Evt string `json:"evt"`
	}
	if err := json.Unmarshal(payload, &resp); err == nil && resp.Evt == "ERROR" {
		return fmt.Errorf("discord rejected %s: %s", cmd, payload)
	}
	return nil
}

func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.lastPayload = ""
}

func newNonce() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Wire types.

type handshake struct {
	V        int    `json:"v"`
	ClientID string `json:"client_id"`
}

type command struct {
	Cmd   string `json:"cmd"`
	Args  any    `json:"args"`
	Nonce string `json:"nonce"`
}

type activityArgs struct {
	PID      int       `json:"pid"`
	Activity *activity `json:"activity,omitempty"`
}

type activity struct {
	State      string      `json:"state,omitempty"`
	Details    string      `json:"details,omitempty"`
	Timestamps *timestamps `json:"timestamps,omitempty"`
	Assets     *assets     `json:"assets,omitempty"`
}

type timestamps struct {
	Start int64 `json:"start,omitempty"`
}

type assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

func newActivityArgs(a presence.Activity) activityArgs {
	act := &activity{
		State:   a.State,
		Details: a.Details,
		Assets: &assets{
			LargeImage: a.LargeImage,
			LargeText:  a.LargeText,
			SmallImage: a.SmallImage,
			SmallText:  a.SmallText,
		},
	}
	if !a.Start.IsZero() {
		act.Timestamps = &timestamps{Start: a.Start.Unix()}
	}
	return activityArgs{PID: os.Getpid(), Activity: act}
}
