package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/internal/metrics"
	"github.com/luma/warchat/protocol"
)

const readBufferSize = 4096

var (
	ErrNoServer = errors.New("profile has no server to connect to")
)

// TCP connects to the chat server on request of the connection gate. It
// follows CONNECT and DISCONNECT on the socket channel, writes chat commands
// and reports CONNECTED, DISCONNECTED and TIMEOUT back.
//
// Bus handlers run on the session loop. Everything the network goroutines
// want to tell the session is posted to that loop.
type TCP struct {
	ctx        context.Context
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	bus         bus.Bus
	loop        Loop
	profile     ProfileSource
	receive     func(block string)
	defaultPort int
	dialTimeout time.Duration

	mu            sync.Mutex
	active        bool
	cancelSession context.CancelFunc
	conn          *TCPConn

	log   *zap.Logger
	trace bool
}

func NewTCP(b bus.Bus, options Options) *TCP {
	defaultPort := options.DefaultPort
	if defaultPort == 0 {
		defaultPort = DefaultPort
	}

	dialTimeout := options.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = DefaultDialTimeout
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	t := &TCP{
		bus:         b,
		loop:        options.Loop,
		profile:     options.Profile,
		receive:     options.Receive,
		defaultPort: defaultPort,
		dialTimeout: dialTimeout,
		log:         log,
		trace:       options.Trace,
	}

	bus.OnSocket(b, t.handleSocket)
	bus.OnChat(b, t.handleChat)

	return t
}

// Start makes the transport ready to connect. Sessions end when ctx does.
func (t *TCP) Start(parentCtx context.Context) error {
	t.ctx, t.cancel = context.WithCancel(parentCtx)
	return nil
}

// Close drops the current session and waits for its goroutines.
func (t *TCP) Close() (err error) {
	t.log.Info("Stopping TCP transport")

	if t.cancel != nil {
		t.cancel()
	}

	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		err = multierr.Append(err, conn.Close())
	}

	t.stopWaiter.Wait()
	t.log.Info("TCP transport stopped")

	return err
}

// IsConnected reports whether a logged in session is running.
func (t *TCP) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn != nil
}

func (t *TCP) handleSocket(m bus.SocketMessage) {
	switch m.Signal {
	case bus.SocketConnect:
		t.connect()

	case bus.SocketDisconnect:
		t.disconnect()
	}
}

func (t *TCP) handleChat(cmd bus.ChatCommand) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		t.log.Debug("Not connected, dropping command", zap.String("command", cmd.Text))
		return
	}

	if err := conn.Write(cmd.Text); err != nil {
		metrics.ObserveTransportError("write")
		t.log.Warn("Failed to queue command", zap.String("command", cmd.Text), zap.Error(err))
	}
}

func (t *TCP) connect() {
	if t.ctx == nil {
		t.log.Error("Connect before Start")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		t.log.Debug("Already connecting or connected")
		return
	}

	ctx, cancel := context.WithCancel(t.ctx)
	t.active = true
	t.cancelSession = cancel

	profile := t.profile.Profile()

	t.stopWaiter.Add(1)
	go func() {
		defer t.stopWaiter.Done()
		t.run(ctx, profile)
	}()
}

func (t *TCP) disconnect() {
	t.mu.Lock()
	cancel := t.cancelSession
	active := t.active
	t.mu.Unlock()

	if !active || cancel == nil {
		// Nothing to tear down, tell the gate so it stops being busy. We are
		// on the loop already.
		t.bus.Send(bus.SocketMessage{Signal: bus.SocketDisconnected})
		return
	}

	cancel()
}

func (t *TCP) run(ctx context.Context, profile bus.Profile) {
	log := t.log.With(zap.String("server", profile.Server), zap.Bool("init6", profile.Init6))

	defer func() {
		t.mu.Lock()
		t.active = false
		t.conn = nil
		t.cancelSession = nil
		t.mu.Unlock()
	}()

	netConn, err := t.dial(ctx, profile.Server)
	if err != nil {
		metrics.ObserveTransportError("dial")
		log.Warn("Failed to connect", zap.Error(err))

		if isTimeout(err) {
			t.postSignal(bus.SocketTimeout)
		} else {
			t.postSignal(bus.SocketDisconnected)
		}
		return
	}

	if err := login(netConn, profile); err != nil {
		metrics.ObserveTransportError("login")
		log.Warn("Failed to log in", zap.Error(err))

		netConn.Close()
		t.postSignal(bus.SocketDisconnected)
		return
	}

	conn := NewTCPConn(ctx, netConn, t.trace, log.Named("conn"))

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	log.Info("Connected")
	t.postSignal(bus.SocketConnected)

	err = conn.Start(func(block string) {
		t.loop.Post(func() { t.receive(block) })
	})
	if err != nil {
		metrics.ObserveTransportError("read")
		log.Warn("Connection lost", zap.Error(err))
	}

	log.Info("Disconnected")
	t.postSignal(bus.SocketDisconnected)
}

func (t *TCP) dial(ctx context.Context, server string) (net.Conn, error) {
	if strings.TrimSpace(server) == "" {
		return nil, ErrNoServer
	}

	addr := server
	if _, _, err := net.SplitHostPort(server); err != nil {
		addr = net.JoinHostPort(server, strconv.Itoa(t.defaultPort))
	}

	dialer := net.Dialer{Timeout: t.dialTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	return conn, nil
}

func (t *TCP) postSignal(signal bus.SocketSignal) {
	t.loop.Post(func() {
		t.bus.Send(bus.SocketMessage{Signal: signal})
	})
}

func login(w io.Writer, profile bus.Profile) error {
	if profile.Init6 {
		return protocol.WriteInit6Login(w, profile.Username, profile.Password, profile.Home)
	}

	return protocol.WriteClassicLogin(w, profile.Username, profile.Password)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
