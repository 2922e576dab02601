package state

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/protocol"
)

const cmdChannels = "/channels"

// ChannelsPollInterval is how often init6 profiles refresh the directory.
const ChannelsPollInterval = 60 * time.Second

// Channels tracks the channel we are in and the channel directory.
type Channels struct {
	*Publisher

	bus     bus.Bus
	profile ProfileSource
	listing ListingState
	log     *zap.Logger

	current   Channel
	directory []Channel
}

// NewChannels follows roster size changes through users so the current
// channel's user count stays right.
func NewChannels(b bus.Bus, profile ProfileSource, listing ListingState, users *Roster, conn ConnectionEvents, sched Scheduler, log *zap.Logger) *Channels {
	c := &Channels{
		Publisher: NewPublisher("channels"),
		bus:       b,
		profile:   profile,
		listing:   listing,
		log:       log,
	}

	conn.OnConnected(func(connected bool) {
		if connected {
			c.directory = nil
			c.publishList()
		}
	})

	users.OnUsers(func(u []User) {
		c.OnRosterSizeChanged(len(u))
	})

	bus.OnMessages(b, func(block bus.InboundBlock) {
		for _, line := range block.Lines {
			c.handleLine(line)
		}
	})

	sched.Every(ChannelsPollInterval, c.poll)

	return c
}

// poll refreshes the directory of init6 servers, which never push it.
func (c *Channels) poll() {
	if !c.profile.Profile().Init6 || c.listing.IsListingChannels() {
		return
	}

	bus.SendChat(c.bus, cmdChannels)
}

func (c *Channels) handleLine(line protocol.Line) {
	switch line.Kind {
	case protocol.KindChannel:
		c.OnJoin(line.Payload())

	case protocol.KindInfo:
		message := line.Payload()

		switch {
		case protocol.IsListingHeader(message):
			c.OnListingStart()
		case protocol.IsListingEntry(message):
			c.OnListingLine(message)
		}
	}
}

// OnJoin makes name the current channel. Landing in the home channel asks
// for the channel listing unless one is already on its way.
func (c *Channels) OnJoin(name string) {
	c.log.Debug("Joined channel", zap.String("channel", name))

	c.current = Channel{Name: name}
	c.publishCurrent()

	home := c.profile.Profile().Home
	if home == "" || strings.ToLower(name) != strings.ToLower(home) {
		return
	}

	if !c.listing.IsListingChannels() {
		bus.SendChat(c.bus, cmdChannels)
	}
}

// OnListingStart clears the directory for a new listing.
func (c *Channels) OnListingStart() {
	c.directory = nil
	c.publishList()
}

// OnListingLine adds one `name | users | x | topic` row to the directory.
// Rows for channels already listed are ignored.
func (c *Channels) OnListingLine(raw string) {
	entry, ok := parseListingEntry(raw)
	if !ok {
		return
	}

	if c.indexOf(entry.Name) >= 0 {
		return
	}

	c.directory = append(c.directory, entry)
	c.publishList()
}

// OnRosterSizeChanged keeps the user count of the current channel, and of its
// directory row, in line with the roster.
func (c *Channels) OnRosterSizeChanged(count int) {
	if c.current.Name == "" {
		return
	}

	c.current.Users = count
	if i := c.indexOf(c.current.Name); i >= 0 {
		c.directory[i].Users = count
	}

	c.publishCurrent()
	c.publishList()
}

func parseListingEntry(raw string) (Channel, bool) {
	if !protocol.IsListingEntry(raw) {
		return Channel{}, false
	}

	tokens := strings.Split(raw, "|")
	if len(tokens) < 4 {
		return Channel{}, false
	}

	users, err := strconv.Atoi(strings.TrimSpace(tokens[1]))
	if err != nil {
		users = 0
	}

	return Channel{
		Name:  strings.TrimSpace(tokens[0]),
		Users: users,
		Topic: strings.TrimSpace(strings.Join(tokens[3:], "|")),
	}, true
}

// Current returns the channel we are in.
func (c *Channels) Current() Channel {
	return c.current
}

// Directory returns a copy of the channel directory.
func (c *Channels) Directory() []Channel {
	return append([]Channel{}, c.directory...)
}

// OnCurrent subscribes to changes of the current channel.
func (c *Channels) OnCurrent(fn func(current Channel)) {
	c.Subscribe(EventCurrent, func(v interface{}) { fn(v.(Channel)) })
}

// OnList subscribes to changes of the directory.
func (c *Channels) OnList(fn func(directory []Channel)) {
	c.Subscribe(EventList, func(v interface{}) { fn(v.([]Channel)) })
}

func (c *Channels) indexOf(name string) int {
	for i, ch := range c.directory {
		if ch.Name == name {
			return i
		}
	}

	return -1
}

func (c *Channels) publishCurrent() {
	c.publish(EventCurrent, c.current)
}

func (c *Channels) publishList() {
	c.publish(EventList, c.Directory())
}
