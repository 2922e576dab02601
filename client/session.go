// Package client runs a chat session: the state engine, its persistence and
// the transport, all driven by a single event loop.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/state"
	"github.com/luma/warchat/storage"
	"github.com/luma/warchat/transport"
)

const eventChanSize = 128

var (
	ErrSessionClosed = errors.New("session is closed")
)

type Options struct {
	// Profile and Settings apply until stored ones are loaded.
	Profile  bus.Profile
	Settings bus.Settings

	// Store persists the profile, settings and app identity. Nil means an
	// in-memory store.
	Store storage.Store

	// Offline sessions have no transport, blocks are fed with Receive.
	Offline bool

	DialTimeout time.Duration
	Trace       bool

	Log *zap.Logger
}

// Session owns the bus and everything on it. Bus handlers, timers and
// transport callbacks all run on the goroutine that calls Run, so state is
// never touched concurrently.
type Session struct {
	events    chan func()
	done      chan struct{}
	closeOnce sync.Once

	// timers holds one-shot timers until they fire, so Close can stop them
	timersMu sync.Mutex
	timers   map[*time.Timer]struct{}
	tickers  []*time.Ticker

	bus    *bus.Local
	store  storage.Store
	engine *state.Engine
	tcp    *transport.TCP

	log *zap.Logger
}

func New(opts Options) *Session {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	store := opts.Store
	if store == nil {
		store = storage.NewInmemoryStore()
	}

	s := &Session{
		events: make(chan func(), eventChanSize),
		done:   make(chan struct{}),
		timers: make(map[*time.Timer]struct{}),
		bus:    bus.NewLocal(log.Named("bus")),
		store:  store,
		log:    log,
	}

	// The persister has to listen before the managers ask for their values
	storage.NewPersister(s.bus, store, log.Named("persister"))

	s.engine = state.NewEngine(s.bus, state.Options{
		Profile:  opts.Profile,
		Settings: opts.Settings,
		Sched:    s,
		Log:      log.Named("state"),
	})

	if !opts.Offline {
		s.tcp = transport.NewTCP(s.bus, transport.Options{
			DialTimeout: opts.DialTimeout,
			Trace:       opts.Trace,
			Profile:     s.engine.Profile,
			Loop:        s,
			Receive:     s.engine.Receive,
			Log:         log.Named("transport"),
		})
	}

	return s
}

// Run processes events until ctx is cancelled or Close is called.
func (s *Session) Run(ctx context.Context) error {
	if s.tcp != nil {
		if err := s.tcp.Start(ctx); err != nil {
			return err
		}
	}

	s.log.Info("Session started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Session stopping", zap.Error(ctx.Err()))
			return s.Close()

		case <-s.done:
			return nil

		case fn := <-s.events:
			fn()
		}
	}
}

// Post queues fn for the event loop. Events posted after Close are dropped.
func (s *Session) Post(fn func()) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// Do runs fn on the event loop and waits for it to finish.
func (s *Session) Do(ctx context.Context, fn func(e *state.Engine)) error {
	finished := make(chan struct{})

	s.Post(func() {
		defer close(finished)
		fn(s.engine)
	})

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot copies every model from the event loop.
func (s *Session) Snapshot(ctx context.Context) (snap state.Snapshot, err error) {
	err = s.Do(ctx, func(e *state.Engine) {
		snap = e.Snapshot()
	})

	return snap, err
}

// Receive feeds an inbound block as if the transport had read it.
func (s *Session) Receive(block string) {
	s.Post(func() { s.engine.Receive(block) })
}

// Signal injects a socket signal as if the transport had sent it. Offline
// sessions use it to start and end a replay.
func (s *Session) Signal(signal bus.SocketSignal) {
	s.Post(func() { s.bus.Send(bus.SocketMessage{Signal: signal}) })
}

// After implements state.Scheduler on the event loop.
func (s *Session) After(d time.Duration, fn func()) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	// The callback cannot take the lock before timer is assigned
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.timersMu.Lock()
		delete(s.timers, timer)
		s.timersMu.Unlock()

		s.Post(fn)
	})

	s.timers[timer] = struct{}{}
}

// PendingTimers counts the one-shot timers that have not fired yet.
func (s *Session) PendingTimers() int {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	return len(s.timers)
}

// Every implements state.Scheduler on the event loop.
func (s *Session) Every(d time.Duration, fn func()) {
	ticker := time.NewTicker(d)

	s.timersMu.Lock()
	s.tickers = append(s.tickers, ticker)
	s.timersMu.Unlock()

	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.Post(fn)
			}
		}
	}()
}

// Close stops the loop, the transport and every timer. It is safe to call
// more than once.
func (s *Session) Close() (err error) {
	s.closeOnce.Do(func() {
		close(s.done)

		s.timersMu.Lock()
		for t := range s.timers {
			t.Stop()
		}
		for _, t := range s.tickers {
			t.Stop()
		}
		s.timersMu.Unlock()

		if s.tcp != nil {
			err = multierr.Append(err, s.tcp.Close())
		}

		s.log.Info("Session closed")
	})

	return err
}

// Done is closed once the session is.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

var (
	_ state.Scheduler = (*Session)(nil)
	_ transport.Loop  = (*Session)(nil)
)
