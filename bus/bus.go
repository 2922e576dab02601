// Package bus carries typed messages between the transport, the state
// components and the persistence layer.
//
// Every channel has a closed set of message types, decoded once when they
// enter the bus. Handlers receive the concrete type through the typed On*
// helpers instead of re-interpreting positional arguments.
package bus

import (
	"strings"

	"github.com/luma/warchat/protocol"
)

// Channel names a stream of messages.
type Channel string

const (
	ChannelSocket   Channel = "socket"
	ChannelMessages Channel = "messages"
	ChannelChat     Channel = "chat"
	ChannelProfile  Channel = "profile"
	ChannelSettings Channel = "settings"
	ChannelApp      Channel = "app"
)

// Message is implemented by every type that travels on the bus.
type Message interface {
	Channel() Channel
}

// Handler receives messages of the channel it was registered on.
type Handler func(Message)

// Bus is the narrow publish/subscribe contract every component depends on.
type Bus interface {
	On(channel Channel, handler Handler)
	Send(message Message)
}

// SocketSignal is a lifecycle command or event of the transport.
type SocketSignal string

const (
	// Commands, sent by the connection gate to the transport
	SocketConnect    SocketSignal = "CONNECT"
	SocketDisconnect SocketSignal = "DISCONNECT"

	// Events, sent by the transport
	SocketConnected    SocketSignal = "CONNECTED"
	SocketDisconnected SocketSignal = "DISCONNECTED"
	SocketTimeout      SocketSignal = "TIMEOUT"
)

// SocketMessage travels on ChannelSocket.
type SocketMessage struct {
	Signal SocketSignal
}

func (SocketMessage) Channel() Channel { return ChannelSocket }

// InboundBlock travels on ChannelMessages. Lines holds the classified lines
// of Raw, in order.
type InboundBlock struct {
	Raw   string
	Lines []protocol.Line
}

func (InboundBlock) Channel() Channel { return ChannelMessages }

// NewInboundBlock classifies raw once so no consumer has to.
func NewInboundBlock(raw string) InboundBlock {
	return InboundBlock{Raw: raw, Lines: protocol.Decode(raw)}
}

// ChatCommand travels on ChannelChat: a line the user or a component wants
// sent to the server, e.g. "/friends list".
type ChatCommand struct {
	Text string
}

func (ChatCommand) Channel() Channel { return ChannelChat }

// IsSlash reports whether the command is a slash command rather than text to
// say in the channel.
func (c ChatCommand) IsSlash() bool {
	return strings.HasPrefix(strings.TrimSpace(c.Text), "/")
}

// Op is the verb of a persistence round-trip.
type Op string

const (
	// OpRead asks the persistence layer for the stored value.
	OpRead Op = "READ"

	// OpSave asks the persistence layer to store the attached value.
	OpSave Op = "SAVE"

	// OpLoaded carries a stored value back to its manager.
	OpLoaded Op = "LOADED"
)

// Profile is the account a session logs in with.
type Profile struct {
	Server   string `json:"server" yaml:"server"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Home     string `json:"home" yaml:"home"`
	Init6    bool   `json:"init6" yaml:"init6"`
}

// Settings are the user's client preferences.
type Settings struct {
	AutoReconnect bool `json:"autoReconnect" yaml:"autoReconnect"`
	IgnoreEmotes  bool `json:"ignoreEmotes" yaml:"ignoreEmotes"`
	SeparateBots  bool `json:"separateBots" yaml:"separateBots"`
}

// DefaultSettings mirror what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		AutoReconnect: true,
		SeparateBots:  true,
	}
}

// ProfileMessage travels on ChannelProfile.
type ProfileMessage struct {
	Op      Op
	Profile Profile
}

func (ProfileMessage) Channel() Channel { return ChannelProfile }

// SettingsMessage travels on ChannelSettings.
type SettingsMessage struct {
	Op       Op
	Settings Settings
}

func (SettingsMessage) Channel() Channel { return ChannelSettings }

// AppMessage travels on ChannelApp and carries the application identifier.
type AppMessage struct {
	Op         Op
	Identifier string
}

func (AppMessage) Channel() Channel { return ChannelApp }
