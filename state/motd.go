package state

import (
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/protocol"
)

// Motd collects the message of the day. The server sends it between login
// and the first channel join.
type Motd struct {
	*Publisher

	log *zap.Logger

	lines   []string
	reading bool
}

func NewMotd(b bus.Bus, conn ConnectionEvents, log *zap.Logger) *Motd {
	m := &Motd{
		Publisher: NewPublisher("motd"),
		log:       log,
		reading:   true,
	}

	conn.OnConnected(func(connected bool) {
		if connected {
			m.lines = nil
			m.reading = true
			m.publishMotd()
		}
	})

	bus.OnMessages(b, func(block bus.InboundBlock) {
		for _, line := range block.Lines {
			m.handleLine(line)
		}
	})

	return m
}

func (m *Motd) handleLine(line protocol.Line) {
	switch line.Kind {
	case protocol.KindChannel:
		if m.reading {
			m.log.Debug("MOTD done", zap.Int("lines", len(m.lines)))
		}
		m.reading = false

	case protocol.KindInfo, protocol.KindTopic:
		if !m.reading {
			return
		}

		message := line.Payload()
		if protocol.IsListing(message) || IsFriendsMessage(message) {
			return
		}

		m.lines = append(m.lines, message)
		m.publishMotd()
	}
}

// Reading reports whether we are still before the first channel join.
func (m *Motd) Reading() bool {
	return m.reading
}

// Lines returns a copy of the message of the day.
func (m *Motd) Lines() []string {
	return append([]string{}, m.lines...)
}

// OnMotd subscribes to changes of the message of the day.
func (m *Motd) OnMotd(fn func(lines []string)) {
	m.Subscribe(EventMotd, func(v interface{}) { fn(v.([]string)) })
}

func (m *Motd) publishMotd() {
	m.publish(EventMotd, m.Lines())
}

var _ MotdState = (*Motd)(nil)
