package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultRequestTimeout bounds a control request when the context has no
// deadline.
const DefaultRequestTimeout = 2 * time.Second

// ErrRejected wraps the error text of a reply whose Code is negative.
var ErrRejected = errors.New("LED command rejected")

// CommandClient sends control requests to a running bridge.
type CommandClient struct {
	conn    *nats.Conn
	timeout time.Duration
	logger  *slog.Logger
}

// Dial connects to the broker at url.
func Dial(url string, logger *slog.Logger) (*CommandClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("ledbridge-client"),
		nats.Timeout(DefaultRequestTimeout),
		nats.NoReconnect(),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	logger.Debug("Connected to NATS", "url", url)
	return &CommandClient{
		conn:    conn,
		timeout: DefaultRequestTimeout,
		logger:  logger.With("component", "nats-client"),
	}, nil
}

// SetMode asks the bridge to apply mode.
func (c *CommandClient) SetMode(ctx context.Context, mode string) (CommandReply, error) {
	return c.request(ctx, SubjectControlMode, ModeRequest{Mode: mode})
}

// SendCommand asks the bridge to write command unchanged.
func (c *CommandClient) SendCommand(ctx context.Context, command string) (CommandReply, error) {
	return c.request(ctx, SubjectControlCommand, CommandRequest{Command: command})
}

// request returns the decoded reply even when the bridge reports a failure,
// alongside an error wrapping ErrRejected.
func (c *CommandClient) request(ctx context.Context, subject string, req any) (CommandReply, error) {
	data, err := Marshal(req)
	if err != nil {
		return CommandReply{}, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg, err := c.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return CommandReply{}, fmt.Errorf("request %s: %w", subject, err)
	}

	reply, err := Unmarshal[CommandReply](msg.Data)
	if err != nil {
		return CommandReply{}, fmt.Errorf("decode reply: %w", err)
	}
	c.logger.Debug("Control reply", "subject", subject, "code", reply.Code)

	if reply.Code < 0 {
		return reply, fmt.Errorf("%w: %s", ErrRejected, reply.Error)
	}
	return reply, nil
}

// Close drains and closes the connection.
func (c *CommandClient) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
