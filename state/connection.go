package state

import (
	"time"

	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
)

// ConnectionState is where the connection gate thinks the transport is.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	// StateTimedOut behaves like StateDisconnected, it only remembers why.
	StateTimedOut
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

const (
	// BusyWindow is how long a connect attempt keeps the gate busy.
	BusyWindow = 5 * time.Second

	// ReconnectInterval is how often the gate considers reconnecting.
	ReconnectInterval = 1 * time.Second
)

// Connection is the lifecycle gate. It sends CONNECT/DISCONNECT to the
// transport, follows the transport's events, tells the other components when
// a new session starts and reconnects after clean disconnects.
type Connection struct {
	*Publisher

	bus      bus.Bus
	settings SettingsSource
	sched    Scheduler
	log      *zap.Logger

	state ConnectionState
	busy  bool

	// disconnected is true once a session ended without us asking for it.
	disconnected bool

	// dontReconnect is latched by Disconnect and cleared by Connect.
	dontReconnect bool
}

func NewConnection(b bus.Bus, settings SettingsSource, sched Scheduler, log *zap.Logger) *Connection {
	c := &Connection{
		Publisher:     NewPublisher("connection"),
		bus:           b,
		settings:      settings,
		sched:         sched,
		log:           log,
		dontReconnect: true,
	}

	bus.OnSocket(b, c.handleSocket)
	sched.Every(ReconnectInterval, c.pollReconnect)

	return c
}

// Connect asks the transport to connect. It lifts the latch Disconnect set,
// so a failed attempt is retried.
func (c *Connection) Connect() {
	c.busy = true
	c.dontReconnect = false
	if c.state != StateConnected {
		c.state = StateConnecting
	}

	c.publish(EventBusy, c.busy)
	c.bus.Send(bus.SocketMessage{Signal: bus.SocketConnect})

	c.sched.After(BusyWindow, func() {
		c.busy = false
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.publish(EventBusy, c.busy)
	})
}

// Disconnect asks the transport to disconnect and stops auto-reconnect until
// the next Connect.
func (c *Connection) Disconnect() {
	c.busy = true
	c.dontReconnect = true

	c.publish(EventBusy, c.busy)
	c.bus.Send(bus.SocketMessage{Signal: bus.SocketDisconnect})
}

func (c *Connection) handleSocket(m bus.SocketMessage) {
	switch m.Signal {
	case bus.SocketConnected:
		c.busy = false

		if c.state != StateConnected {
			c.state = StateConnected
			c.disconnected = false
			c.dontReconnect = false

			c.log.Info("Connected")
			c.publish(EventConnected, true)
			c.publish(EventNotice, "Connected!")
		}

	case bus.SocketDisconnected:
		c.busy = false

		if c.state == StateConnected {
			c.state = StateDisconnected
			c.disconnected = true

			c.log.Info("Disconnected")
			c.publish(EventConnected, false)
			c.publish(EventNotice, "Disconnected!")
		}

	case bus.SocketTimeout:
		c.busy = false
		c.state = StateTimedOut
		c.disconnected = true

		c.log.Warn("Connection timed out")
		c.publish(EventConnected, false)
		c.publish(EventNotice, "Connection timed out!")

	default:
		// our own CONNECT/DISCONNECT commands
		return
	}

	c.publish(EventBusy, c.busy)
}

func (c *Connection) pollReconnect() {
	if !c.shouldReconnect() {
		return
	}

	c.log.Info("Reconnecting")
	c.publish(EventNotice, "Connecting...")
	c.Connect()
}

func (c *Connection) shouldReconnect() bool {
	return !c.dontReconnect &&
		!c.busy &&
		c.disconnected &&
		!c.IsConnected() &&
		c.settings.Settings().AutoReconnect
}

func (c *Connection) IsConnected() bool {
	return c.state == StateConnected
}

func (c *Connection) IsBusy() bool {
	return c.busy
}

func (c *Connection) State() ConnectionState {
	if c.state == StateTimedOut {
		return StateDisconnected
	}

	return c.state
}

// OnConnected subscribes to connected/disconnected transitions.
func (c *Connection) OnConnected(fn func(connected bool)) {
	c.Subscribe(EventConnected, func(v interface{}) { fn(v.(bool)) })
}

// OnNotice subscribes to the human readable lifecycle notices.
func (c *Connection) OnNotice(fn func(message string)) {
	c.Subscribe(EventNotice, func(v interface{}) { fn(v.(string)) })
}

var _ ConnectionEvents = (*Connection)(nil)
