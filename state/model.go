package state

import (
	"strings"
	"time"

	"github.com/luma/warchat/bus"
)

// User is somebody in the current channel, or one of the synthetic users
// chats are attributed to.
type User struct {
	Name   string `json:"name"`
	Client string `json:"client"`
	Flags  string `json:"flags"`
	Bot    bool   `json:"bot"`
}

// Is compares names the way the server does, ignoring case.
func (u User) Is(name string) bool {
	return strings.EqualFold(u.Name, name)
}

const (
	// AllFriends is the pseudo counterpart of whispers sent to every friend.
	AllFriends = "All Friends"

	clientNone = "[NONE]"
)

var (
	ServerUser  = User{Name: "Server", Client: "[SERV]"}
	WarChatUser = User{Name: "WarChat", Client: "[WCHT]"}
)

// Channel is either the channel we are in or one row of the channel
// directory.
type Channel struct {
	Name  string `json:"name"`
	Topic string `json:"topic"`
	Users int    `json:"users"`
}

type ChatKind string

const (
	ChatTalk      ChatKind = "talk"
	ChatEmote     ChatKind = "emote"
	ChatWhisper   ChatKind = "whisper"
	ChatInfo      ChatKind = "info"
	ChatError     ChatKind = "error"
	ChatBroadcast ChatKind = "broadcast"
	ChatChannel   ChatKind = "channel"
)

type Direction string

const (
	DirectionFrom Direction = "from"
	DirectionTo   Direction = "to"
)

// Chat is one entry of the chat log. Message is empty for channel changes,
// Channel is only set for them.
type Chat struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      ChatKind  `json:"event"`
	User      User      `json:"user"`
	Direction Direction `json:"direction"`
	Message   string    `json:"message,omitempty"`
	Channel   string    `json:"channel,omitempty"`
}

// Whispers is the payload of the whispers event. New is the entry that caused
// the event, so a subscriber can append instead of replacing its view.
type Whispers struct {
	All []Chat `json:"all"`
	New Chat   `json:"new"`
}

// Friend is one row of the friends list. Server, Client and Channel are only
// known while the friend is online.
type Friend struct {
	Name     string `json:"name"`
	Online   bool   `json:"online"`
	Server   string `json:"server,omitempty"`
	Client   string `json:"client,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Position int    `json:"position"`
}

type FriendAction string

const (
	FriendAdd    FriendAction = "add"
	FriendRemove FriendAction = "remove"
	FriendList   FriendAction = "list"
)

type FriendError string

const (
	FriendErrMaximum  FriendError = "maximum"
	FriendErrEmpty    FriendError = "empty"
	FriendErrUsername FriendError = "username"
	FriendErrYourself FriendError = "yourself"
	FriendErrMissing  FriendError = "missing"
)

// FriendResult is the outcome of a friends operation as reported by the
// server.
type FriendResult struct {
	Action  FriendAction `json:"action"`
	Success bool         `json:"success"`
	User    string       `json:"user,omitempty"`
	Error   FriendError  `json:"error,omitempty"`
}

// UserDirectory is what other components may ask of the roster.
type UserDirectory interface {
	Lookup(name string) (User, bool)
	ConnectedUser() User
	MarkBot(name string)
}

// FriendLookup is what other components may ask of the friends list.
type FriendLookup interface {
	HasFriend(name string) bool
	IsPolling() bool
}

// ListingState tells whether the user just asked for a channel listing.
type ListingState interface {
	IsListingChannels() bool
}

// MotdState tells whether the message of the day is still being read.
type MotdState interface {
	Reading() bool
}

// ProfileSource provides the active profile.
type ProfileSource interface {
	Profile() bus.Profile
}

// SettingsSource provides the active settings.
type SettingsSource interface {
	Settings() bus.Settings
}

// ConnectionEvents lets components follow the connection lifecycle.
type ConnectionEvents interface {
	OnConnected(fn func(connected bool))
	OnNotice(fn func(message string))
}
