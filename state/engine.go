package state

import (
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/internal/metrics"
	"github.com/luma/warchat/protocol"
)

// Options configure an Engine.
type Options struct {
	// Profile and Settings are used until the persistence layer answers.
	Profile  bus.Profile
	Settings bus.Settings

	Sched Scheduler
	Clock Clock
	Log   *zap.Logger
}

// Engine wires every state component onto one bus.
//
// Components are registered in dependency order, so for any inbound line the
// connection gate, roster, friends list and MOTD reader have already seen it
// when the chat log and the channel state get it.
type Engine struct {
	bus bus.Bus
	log *zap.Logger

	Profile    *ProfileManager
	Settings   *SettingsManager
	App        *AppManager
	Connection *Connection
	Users      *Roster
	Friends    *Friends
	Motd       *Motd
	Chats      *ChatLog
	Channels   *Channels
}

func NewEngine(b bus.Bus, opts Options) *Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		bus: b,
		log: log,
	}

	e.Profile = NewProfileManager(b, opts.Profile)
	e.Settings = NewSettingsManager(b, opts.Settings)
	e.App = NewAppManager(b)
	e.Connection = NewConnection(b, e.Settings, opts.Sched, log.Named("connection"))
	e.Users = NewRoster(b, e.Profile, e.Connection, log.Named("users"))
	e.Friends = NewFriends(b, e.Profile, e.Connection, opts.Sched, log.Named("friends"))
	e.Motd = NewMotd(b, e.Connection, log.Named("motd"))
	e.Chats = NewChatLog(b, ChatLogDeps{
		Users:    e.Users,
		Friends:  e.Friends,
		Motd:     e.Motd,
		Settings: e.Settings,
		Conn:     e.Connection,
		Sched:    opts.Sched,
		Clock:    opts.Clock,
		Log:      log.Named("chats"),
	})
	e.Channels = NewChannels(b, e.Profile, e.Chats, e.Users, e.Connection, opts.Sched, log.Named("channels"))

	return e
}

// Receive classifies an inbound block and hands it to the components one
// line at a time.
func (e *Engine) Receive(raw string) {
	for _, line := range protocol.Decode(raw) {
		metrics.ObserveLine(line.Dialect.String(), line.Kind.String())

		if !line.Known() {
			e.log.Debug("Unknown line", zap.String("line", line.Raw))
			continue
		}

		e.bus.Send(bus.InboundBlock{Raw: line.Raw, Lines: []protocol.Line{line}})
	}
}

// Say sends text to the server, either chat or a slash command.
func (e *Engine) Say(text string) {
	bus.SendChat(e.bus, text)
}

// Snapshot is a copy of every model at one point in time.
type Snapshot struct {
	Connection string    `json:"connection"`
	Busy       bool      `json:"busy"`
	Self       string    `json:"self"`
	Current    Channel   `json:"current"`
	Channels   []Channel `json:"channels"`
	Users      []User    `json:"users"`
	Bots       []User    `json:"bots,omitempty"`
	Friends    []Friend  `json:"friends"`
	Motd       []string  `json:"motd"`
	Chats      []Chat    `json:"chats"`
	Whispers   []Chat    `json:"whispers"`
}

// Snapshot lists bots apart from Users when the SeparateBots setting is on.
func (e *Engine) Snapshot() Snapshot {
	users, bots := e.Users.Users(), []User(nil)
	if e.Settings.Settings().SeparateBots {
		users, bots = e.Users.Split()
	}

	return Snapshot{
		Connection: e.Connection.State().String(),
		Busy:       e.Connection.IsBusy(),
		Self:       e.Users.Self(),
		Current:    e.Channels.Current(),
		Channels:   e.Channels.Directory(),
		Users:      users,
		Bots:       bots,
		Friends:    e.Friends.Friends(),
		Motd:       e.Motd.Lines(),
		Chats:      e.Chats.Chats(),
		Whispers:   e.Chats.Whispers(),
	}
}
