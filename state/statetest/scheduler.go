// Package statetest has test doubles for the state package.
package statetest

import (
	"sort"
	"time"

	"github.com/luma/warchat/bus"
)

type timer struct {
	at       time.Duration
	every    time.Duration
	fn       func()
	sequence int
}

// Scheduler is a manual clock. Callbacks only run when Advance moves the
// clock past their deadline.
type Scheduler struct {
	now      time.Duration
	sequence int
	timers   []*timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) After(d time.Duration, fn func()) {
	s.add(&timer{at: s.now + d, fn: fn})
}

func (s *Scheduler) Every(d time.Duration, fn func()) {
	s.add(&timer{at: s.now + d, every: d, fn: fn})
}

func (s *Scheduler) add(t *timer) {
	s.sequence++
	t.sequence = s.sequence
	s.timers = append(s.timers, t)
}

// Advance moves the clock forward by d and runs every callback that falls
// due, in deadline order.
func (s *Scheduler) Advance(d time.Duration) {
	until := s.now + d

	for {
		next := s.next(until)
		if next == nil {
			break
		}

		s.now = next.at
		if next.every > 0 {
			next.at += next.every
		} else {
			s.remove(next)
		}

		next.fn()
	}

	s.now = until
}

// Pending counts the callbacks waiting to run.
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

func (s *Scheduler) next(until time.Duration) *timer {
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at == s.timers[j].at {
			return s.timers[i].sequence < s.timers[j].sequence
		}
		return s.timers[i].at < s.timers[j].at
	})

	if len(s.timers) == 0 || s.timers[0].at > until {
		return nil
	}

	return s.timers[0]
}

func (s *Scheduler) remove(t *timer) {
	for i, candidate := range s.timers {
		if candidate == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// Recorder keeps every message sent on the channels it listens to.
type Recorder struct {
	Messages []bus.Message
}

func NewRecorder(b bus.Bus, channels ...bus.Channel) *Recorder {
	r := &Recorder{}

	for _, ch := range channels {
		b.On(ch, func(m bus.Message) {
			r.Messages = append(r.Messages, m)
		})
	}

	return r
}

// Chat returns the text of every recorded chat command.
func (r *Recorder) Chat() []string {
	var texts []string

	for _, m := range r.Messages {
		if cmd, ok := m.(bus.ChatCommand); ok {
			texts = append(texts, cmd.Text)
		}
	}

	return texts
}

// Commands returns the CONNECT and DISCONNECT signals sent to the
// transport.
func (r *Recorder) Commands() []bus.SocketSignal {
	var signals []bus.SocketSignal

	for _, m := range r.Messages {
		sm, ok := m.(bus.SocketMessage)
		if !ok {
			continue
		}

		switch sm.Signal {
		case bus.SocketConnect, bus.SocketDisconnect:
			signals = append(signals, sm.Signal)
		}
	}

	return signals
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.Messages = nil
}
