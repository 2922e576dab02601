package state

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/protocol"
)

// ListingWindow is how long after a channel listing request listing lines
// are shown in the chat log.
const ListingWindow = 1 * time.Second

// channelChat is the lobby every session lands in first. Joining it is not
// worth a chat entry.
const channelChat = "Chat"

// yourFriendsWire is how the server names the target of a whisper to all
// friends. The space is a non-breaking one.
const yourFriendsWire = "your\u00A0friends"

var antiIdles = []string{
	"Apathy3 - Unstable and damn near unusable",
	"Apathy2 - Unstable and damn near unusable",
	"Its Hammer Time :) - DC v1.2.",
	"Its Hammer Time :) - DC v1.3b1 [Private Edition]",
	":+:~EwR 4 LyFe~:+: - Ghost 3.02",
	"-[ +|{W+ ]-[ Subaru Version 1.3.5 MoonGlade Series ]-",
}

// IsAntiIdle reports whether message is the idle banner of a known bot.
func IsAntiIdle(message string) bool {
	if strings.HasPrefix(message, "starts with: is a SphtBot - Bot") {
		return true
	}

	for _, banner := range antiIdles {
		if message == banner {
			return true
		}
	}

	return false
}

// IsListingCommand reports whether text asks the server for the channel
// listing.
func IsListingCommand(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "/channels", "/chs", "/list":
		return true
	}

	return false
}

// ChatLog is the append-only log of everything said and shown, plus an index
// of whispers.
type ChatLog struct {
	*Publisher

	users    UserDirectory
	friends  FriendLookup
	motd     MotdState
	settings SettingsSource
	sched    Scheduler
	now      Clock
	log      *zap.Logger

	chats    []Chat
	whispers []Chat

	listing bool
	// listingGen invalidates the timer of an earlier listing request.
	listingGen int
}

type ChatLogDeps struct {
	Users    UserDirectory
	Friends  FriendLookup
	Motd     MotdState
	Settings SettingsSource
	Conn     ConnectionEvents
	Sched    Scheduler
	Clock    Clock
	Log      *zap.Logger
}

func NewChatLog(b bus.Bus, deps ChatLogDeps) *ChatLog {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	c := &ChatLog{
		Publisher: NewPublisher("chats"),
		users:     deps.Users,
		friends:   deps.Friends,
		motd:      deps.Motd,
		settings:  deps.Settings,
		sched:     deps.Sched,
		now:       now,
		log:       deps.Log,
	}

	deps.Conn.OnConnected(func(connected bool) {
		if connected {
			c.listing = false
			c.listingGen++
		}
	})
	deps.Conn.OnNotice(c.addBotChat)

	bus.OnMessages(b, func(block bus.InboundBlock) {
		for _, line := range block.Lines {
			c.handleLine(line)
		}
	})

	bus.OnChat(b, c.handleOutbound)

	return c
}

func (c *ChatLog) handleOutbound(cmd bus.ChatCommand) {
	if IsListingCommand(cmd.Text) {
		c.openListingWindow()
		return
	}

	if !cmd.IsSlash() && strings.TrimSpace(cmd.Text) != "" {
		c.add(c.chat(ChatTalk, c.users.ConnectedUser(), cmd.Text))
	}
}

func (c *ChatLog) openListingWindow() {
	c.listing = true
	c.listingGen++
	gen := c.listingGen

	c.sched.After(ListingWindow, func() {
		if c.listingGen == gen {
			c.listing = false
		}
	})
}

func (c *ChatLog) handleLine(line protocol.Line) {
	switch line.Kind {
	case protocol.KindWhisperIn:
		c.addWhisper(c.chatWith(ChatWhisper, whisperUser(line.Name()), DirectionFrom, line.Payload()))

	case protocol.KindWhisperOut:
		name := line.Name()
		if name == yourFriendsWire {
			name = AllFriends
		}
		c.addWhisper(c.chatWith(ChatWhisper, whisperUser(name), DirectionTo, line.Payload()))

	case protocol.KindTalk:
		message := line.Payload()
		if IsAntiIdle(message) {
			c.log.Debug("Anti-idle banner", zap.String("user", line.Name()))
			c.users.MarkBot(line.Name())
		}
		c.add(c.chat(ChatTalk, c.lookup(line.Name()), message))

	case protocol.KindEmote:
		if c.settings.Settings().IgnoreEmotes {
			return
		}
		c.add(c.chat(ChatEmote, c.lookup(line.Name()), line.Payload()))

	case protocol.KindBroadcast:
		c.add(c.chat(ChatBroadcast, ServerUser, line.Payload()))

	case protocol.KindChannel:
		channel := line.Payload()
		if channel == channelChat {
			return
		}

		chat := c.chat(ChatChannel, WarChatUser, "")
		chat.Channel = channel
		c.add(chat)

	case protocol.KindInfo, protocol.KindTopic:
		message := line.Payload()
		if c.suppressInfo(message) {
			return
		}
		c.add(c.chat(ChatInfo, ServerUser, message))

	case protocol.KindError:
		c.add(c.chat(ChatError, ServerUser, line.Payload()))
	}
}

// suppressInfo decides whether an info line stays out of the log.
func (c *ChatLog) suppressInfo(message string) bool {
	if c.motd.Reading() {
		return true
	}

	if protocol.IsListing(message) && !c.listing {
		return true
	}

	return c.friends.IsPolling() && isFriendsListing(message)
}

func (c *ChatLog) addBotChat(message string) {
	c.add(c.chat(ChatInfo, WarChatUser, message))
}

func (c *ChatLog) lookup(name string) User {
	if u, ok := c.users.Lookup(name); ok {
		return u
	}

	return User{Name: name, Client: clientNone}
}

func whisperUser(name string) User {
	return User{Name: name, Client: clientNone}
}

func (c *ChatLog) chat(kind ChatKind, user User, message string) Chat {
	return c.chatWith(kind, user, DirectionFrom, message)
}

func (c *ChatLog) chatWith(kind ChatKind, user User, dir Direction, message string) Chat {
	return Chat{
		Timestamp: c.now(),
		Kind:      kind,
		User:      user,
		Direction: dir,
		Message:   message,
	}
}

func (c *ChatLog) add(chat Chat) {
	c.chats = append(c.chats, chat)
	c.publish(EventChats, c.Chats())
}

func (c *ChatLog) addWhisper(chat Chat) {
	c.whispers = append(c.whispers, chat)
	c.add(chat)
	c.publish(EventWhispers, Whispers{All: c.Whispers(), New: chat})
}

// Chats returns a copy of the log.
func (c *ChatLog) Chats() []Chat {
	return append([]Chat{}, c.chats...)
}

// Whispers returns a copy of every whisper, in and out.
func (c *ChatLog) Whispers() []Chat {
	return append([]Chat{}, c.whispers...)
}

// WhispersFor returns the whisper thread with counterpart. The AllFriends
// thread holds every whisper exchanged with somebody on the friends list.
func (c *ChatLog) WhispersFor(counterpart string) []Chat {
	var thread []Chat

	for _, w := range c.whispers {
		if counterpart == AllFriends {
			if c.friends.HasFriend(w.User.Name) {
				thread = append(thread, w)
			}
			continue
		}

		if w.User.Is(counterpart) {
			thread = append(thread, w)
		}
	}

	return thread
}

// IsListingChannels reports whether a channel listing request is in flight.
func (c *ChatLog) IsListingChannels() bool {
	return c.listing
}

// OnChats subscribes to the chat log.
func (c *ChatLog) OnChats(fn func(chats []Chat)) {
	c.Subscribe(EventChats, func(v interface{}) { fn(v.([]Chat)) })
}

// OnWhispers subscribes to the whisper index.
func (c *ChatLog) OnWhispers(fn func(w Whispers)) {
	c.Subscribe(EventWhispers, func(v interface{}) { fn(v.(Whispers)) })
}

var _ ListingState = (*ChatLog)(nil)
