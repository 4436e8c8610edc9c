package nats

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/smazurov/ledbridge/internal/device"
	"github.com/smazurov/ledbridge/internal/events"
	"github.com/smazurov/ledbridge/internal/led"
)

// Commander applies LED control requests. *led.Manager satisfies it.
type Commander interface {
	ApplyMode(source, name string) led.Result
	WriteCommand(source, command string) led.Result
}

// Bridge serves LED control requests from NATS and mirrors LED activity
// from the event bus onto NATS subjects.
type Bridge struct {
	url       string
	commander Commander
	eventBus  *events.Bus
	logger    *slog.Logger

	mu     sync.Mutex
	conn   *nats.Conn
	subs   []*nats.Subscription
	unsubs []func()
}

// NewBridge creates a bridge. eventBus may be nil to serve control only.
func NewBridge(url string, commander Commander, eventBus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		url:       url,
		commander: commander,
		eventBus:  eventBus,
		logger:    logger.With("component", "nats-bridge"),
	}
}

// Start connects, subscribes to the control subjects and begins mirroring
// bus events.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		return errors.New("NATS bridge already started")
	}

	conn, err := nats.Connect(b.url,
		nats.Name("ledbridge-bridge"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS bridge disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.logger.Info("NATS bridge reconnected")
		}),
	)
	if err != nil {
		return err
	}
	b.conn = conn
	b.logger.Info("NATS bridge connected", "url", b.url)

	for subject, handler := range map[string]nats.MsgHandler{
		SubjectControlMode:    b.handleMode,
		SubjectControlCommand: b.handleCommand,
	} {
		sub, err := conn.QueueSubscribe(subject, controlQueue, handler)
		if err != nil {
			b.cleanup()
			return err
		}
		b.subs = append(b.subs, sub)
	}
	if err := conn.Flush(); err != nil {
		b.cleanup()
		return err
	}

	if b.eventBus != nil {
		b.unsubs = append(b.unsubs,
			b.eventBus.Subscribe(b.publishState),
			b.eventBus.Subscribe(b.publishCommand),
			b.eventBus.Subscribe(b.publishClicks),
		)
	}

	b.logger.Info("NATS bridge subscribed to control subjects")
	return nil
}

func (b *Bridge) handleMode(msg *nats.Msg) {
	req, err := decodeModeRequest(msg.Data)
	if err != nil {
		b.logger.Warn("Failed to decode mode request", "error", err, "subject", msg.Subject)
		b.reply(msg, errorReply(err))
		return
	}

	res := b.commander.ApplyMode(led.SourceNATS, req.Mode)
	b.reply(msg, replyFor(res))
}

func (b *Bridge) handleCommand(msg *nats.Msg) {
	req, err := decodeCommandRequest(msg.Data)
	if err != nil {
		b.logger.Warn("Failed to decode command request", "error", err, "subject", msg.Subject)
		b.reply(msg, errorReply(err))
		return
	}

	res := b.commander.WriteCommand(led.SourceNATS, req.Command)
	b.reply(msg, replyFor(res))
}

func (b *Bridge) reply(msg *nats.Msg, reply CommandReply) {
	if msg.Reply == "" {
		return
	}
	data, err := Marshal(reply)
	if err != nil {
		b.logger.Warn("Failed to marshal reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		b.logger.Warn("Failed to send reply", "error", err, "subject", msg.Subject)
	}
}

func replyFor(res led.Result) CommandReply {
	r := CommandReply{
		Mode:    string(res.Mode),
		Command: res.Command,
		Written: res.Written,
		Code:    res.Code(),
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}

func errorReply(err error) CommandReply {
	return CommandReply{
		Code:  device.Code(0, err),
		Error: err.Error(),
	}
}

func (b *Bridge) publishState(e events.LEDStateChangedEvent) {
	b.publish(SubjectLEDState, StateMessage{
		Raw:         e.Raw,
		Mode:        e.Mode,
		DisplayMode: e.DisplayMode,
		Level:       e.Level,
		DelayOn:     e.DelayOn,
		DelayOff:    e.DelayOff,
		Fallback:    e.Fallback,
		Timestamp:   e.Timestamp,
	})
}

func (b *Bridge) publishCommand(e events.LEDCommandEvent) {
	b.publish(SubjectLEDCommands, CommandMessage{
		Command:   e.Command,
		Mode:      e.Mode,
		Source:    e.Source,
		Code:      e.Code,
		Error:     e.Error,
		Timestamp: e.Timestamp,
	})
}

func (b *Bridge) publishClicks(e events.PhysicalClicksEvent) {
	b.publish(SubjectLEDClicks, ClicksMessage{
		Count:     e.Count,
		Timestamp: e.Timestamp,
	})
}

func (b *Bridge) publish(subject string, msg any) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return
	}

	data, err := Marshal(msg)
	if err != nil {
		b.logger.Warn("Failed to marshal message", "error", err, "subject", subject)
		return
	}
	if err := conn.Publish(subject, data); err != nil {
		b.logger.Debug("Failed to publish", "error", err, "subject", subject)
	}
}

// cleanup drops subscriptions and the connection. Must hold b.mu.
func (b *Bridge) cleanup() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil

	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// Stop closes the bridge connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cleanup()
	b.logger.Info("NATS bridge stopped")
}

// IsConnected reports whether the bridge holds a live connection.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}
