package bus

import (
	"go.uber.org/zap"
)

// Local is an in-process Bus. Handlers run synchronously, in registration
// order, on the goroutine that calls Send.
//
// Local is not safe for concurrent use. The session event loop is the only
// goroutine that touches it.
//
// A Send issued while a handler is running is queued and delivered after the
// current message has reached every handler, so handlers are never re-entered.
type Local struct {
	handlers map[Channel][]Handler

	dispatching bool
	queue       []Message

	log *zap.Logger
}

func NewLocal(log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}

	return &Local{
		handlers: make(map[Channel][]Handler),
		log:      log,
	}
}

func (l *Local) On(channel Channel, handler Handler) {
	l.handlers[channel] = append(l.handlers[channel], handler)
}

func (l *Local) Send(message Message) {
	l.queue = append(l.queue, message)

	if l.dispatching {
		return
	}

	l.dispatching = true
	defer func() { l.dispatching = false }()

	for len(l.queue) > 0 {
		next := l.queue[0]
		l.queue = l.queue[1:]

		handlers := l.handlers[next.Channel()]
		if len(handlers) == 0 {
			l.log.Debug("No handlers for message", zap.String("channel", string(next.Channel())))
			continue
		}

		for _, h := range handlers {
			h(next)
		}
	}
}

var _ Bus = (*Local)(nil)

// OnSocket registers fn for socket messages.
func OnSocket(b Bus, fn func(SocketMessage)) {
	b.On(ChannelSocket, func(m Message) {
		if msg, ok := m.(SocketMessage); ok {
			fn(msg)
		}
	})
}

// OnMessages registers fn for inbound blocks.
func OnMessages(b Bus, fn func(InboundBlock)) {
	b.On(ChannelMessages, func(m Message) {
		if msg, ok := m.(InboundBlock); ok {
			fn(msg)
		}
	})
}

// OnChat registers fn for outbound chat commands.
func OnChat(b Bus, fn func(ChatCommand)) {
	b.On(ChannelChat, func(m Message) {
		if msg, ok := m.(ChatCommand); ok {
			fn(msg)
		}
	})
}

// OnProfile registers fn for profile round-trip messages.
func OnProfile(b Bus, fn func(ProfileMessage)) {
	b.On(ChannelProfile, func(m Message) {
		if msg, ok := m.(ProfileMessage); ok {
			fn(msg)
		}
	})
}

// OnSettings registers fn for settings round-trip messages.
func OnSettings(b Bus, fn func(SettingsMessage)) {
	b.On(ChannelSettings, func(m Message) {
		if msg, ok := m.(SettingsMessage); ok {
			fn(msg)
		}
	})
}

// OnApp registers fn for app identity messages.
func OnApp(b Bus, fn func(AppMessage)) {
	b.On(ChannelApp, func(m Message) {
		if msg, ok := m.(AppMessage); ok {
			fn(msg)
		}
	})
}

// SendChat is shorthand for sending a ChatCommand.
func SendChat(b Bus, text string) {
	b.Send(ChatCommand{Text: text})
}
