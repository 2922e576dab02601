package state

import (
	"strings"
	"time"

	"github.com/luma/warchat/internal/metrics"
)

// Event names published by the components. Names are matched
// case-insensitively.
const (
	EventCurrent   = "current"
	EventList      = "list"
	EventChats     = "chats"
	EventWhispers  = "whispers"
	EventResult    = "result"
	EventMotd      = "motd"
	EventUsers     = "users"
	EventConnected = "connected"
	EventBusy      = "busy"
	EventNotice    = "notice"
	EventProfile   = "profile"
	EventSettings  = "settings"
)

// Subscription receives the value of a published event.
type Subscription func(value interface{})

// Publisher fans events out to subscribers by name.
type Publisher struct {
	component   string
	subscribers map[string][]Subscription
}

func NewPublisher(component string) *Publisher {
	return &Publisher{
		component:   component,
		subscribers: make(map[string][]Subscription),
	}
}

// Subscribe registers fn for event.
func (p *Publisher) Subscribe(event string, fn Subscription) {
	event = strings.ToLower(event)
	p.subscribers[event] = append(p.subscribers[event], fn)
}

func (p *Publisher) publish(event string, value interface{}) {
	event = strings.ToLower(event)
	metrics.ObserveEvent(p.component, event)

	for _, fn := range p.subscribers[event] {
		fn(value)
	}
}

// Scheduler runs callbacks later on the session loop. Callbacks never run
// concurrently with each other or with bus handlers.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func())

	// Every runs fn every d until the session ends.
	Every(d time.Duration, fn func())
}

// Clock returns the current time. Tests swap it for a fixed one.
type Clock func() time.Time
