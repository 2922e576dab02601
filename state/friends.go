package state

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/protocol"
)

const (
	// FriendsPollInterval is how often the friends list is requested.
	FriendsPollInterval = 60 * time.Second

	// FriendsPollWindow is how long the answer to a poll is kept out of the
	// chat log.
	FriendsPollWindow = 1 * time.Second

	cmdFriendsList   = "/friends list"
	cmdFriendsAdd    = "/friends add "
	cmdFriendsRemove = "/friends remove "
)

// Friends keeps the friends list in sync with the server and reports the
// outcome of add and remove requests.
type Friends struct {
	*Publisher

	bus     bus.Bus
	profile ProfileSource
	sched   Scheduler
	log     *zap.Logger

	friends []Friend

	polling bool
	pollGen int
}

func NewFriends(b bus.Bus, profile ProfileSource, conn ConnectionEvents, sched Scheduler, log *zap.Logger) *Friends {
	f := &Friends{
		Publisher: NewPublisher("friends"),
		bus:       b,
		profile:   profile,
		sched:     sched,
		log:       log,
	}

	conn.OnConnected(func(connected bool) {
		if connected {
			f.polling = false
			f.pollGen++
			f.reset()
		}
	})

	bus.OnMessages(b, func(block bus.InboundBlock) {
		for _, line := range block.Lines {
			f.handleLine(line)
		}
	})

	sched.Every(FriendsPollInterval, f.poll)

	return f
}

// poll lists the friends without the answer showing up in the chat log.
func (f *Friends) poll() {
	f.polling = true
	f.pollGen++
	gen := f.pollGen

	f.sched.After(FriendsPollWindow, func() {
		if f.pollGen == gen {
			f.polling = false
		}
	})

	f.ListFriends()
}

// IsPolling is true while the answer to a periodic poll is expected.
func (f *Friends) IsPolling() bool {
	return f.polling
}

// ListFriends asks the server for the friends list.
func (f *Friends) ListFriends() {
	bus.SendChat(f.bus, cmdFriendsList)
}

// AddFriend asks the server to add name to the friends list.
func (f *Friends) AddFriend(name string) {
	bus.SendChat(f.bus, cmdFriendsAdd+name)
}

// RemoveFriend asks the server to remove name from the friends list.
func (f *Friends) RemoveFriend(name string) {
	bus.SendChat(f.bus, cmdFriendsRemove+name)
}

func (f *Friends) handleLine(line protocol.Line) {
	switch line.Kind {
	case protocol.KindInfo, protocol.KindError:
		f.handleMessage(strings.TrimSpace(line.Payload()))

	case protocol.KindChannel:
		home := f.profile.Profile().Home
		if home != "" && strings.EqualFold(line.Payload(), home) {
			f.ListFriends()
		}
	}
}

func (f *Friends) handleMessage(message string) {
	switch classifyFriendMessage(message) {
	case friendHeader:
		f.friends = nil
		f.publishList()

	case friendEntry:
		friend, ok := parseFriend(message)
		if !ok {
			f.log.Debug("Unparsable friend line", zap.String("line", message))
			return
		}
		f.insert(friend)

	case friendAdded:
		f.publishResult(FriendResult{Action: FriendAdd, Success: true, User: secondWord(message)})
		f.ListFriends()

	case friendRemoved:
		f.publishResult(FriendResult{Action: FriendRemove, Success: true, User: secondWord(message)})
		f.ListFriends()

	case friendAddMaximum:
		f.publishResult(FriendResult{Action: FriendAdd, Error: FriendErrMaximum})

	case friendAddNoUsername:
		f.publishResult(FriendResult{Action: FriendAdd, Error: FriendErrUsername})

	case friendAddYourself:
		f.publishResult(FriendResult{Action: FriendAdd, Error: FriendErrYourself})

	case friendNoFriends:
		f.publishResult(FriendResult{Action: FriendList, Error: FriendErrEmpty})

	case friendRemoveNoUsername:
		f.publishResult(FriendResult{Action: FriendRemove, Error: FriendErrUsername})

	case friendRemoveNotAdded:
		f.publishResult(FriendResult{Action: FriendRemove, Error: FriendErrMissing})
	}
}

func (f *Friends) insert(friend Friend) {
	if f.indexOf(friend.Name) >= 0 {
		return
	}

	f.friends = append(f.friends, friend)
	f.publishList()
}

func (f *Friends) reset() {
	f.friends = nil
	f.publishList()
}

// HasFriend reports whether name is on the friends list. The AllFriends
// pseudo user is always a friend.
func (f *Friends) HasFriend(name string) bool {
	if name == AllFriends {
		return true
	}

	return f.indexOf(name) >= 0
}

// Friends returns a copy of the friends list.
func (f *Friends) Friends() []Friend {
	return append([]Friend{}, f.friends...)
}

// OnList subscribes to friends list changes.
func (f *Friends) OnList(fn func(friends []Friend)) {
	f.Subscribe(EventList, func(v interface{}) { fn(v.([]Friend)) })
}

// OnResult subscribes to the outcome of friends operations.
func (f *Friends) OnResult(fn func(result FriendResult)) {
	f.Subscribe(EventResult, func(v interface{}) { fn(v.(FriendResult)) })
}

func (f *Friends) indexOf(name string) int {
	for i, friend := range f.friends {
		if strings.EqualFold(friend.Name, name) {
			return i
		}
	}

	return -1
}

func (f *Friends) publishList() {
	f.publish(EventList, f.Friends())
}

func (f *Friends) publishResult(result FriendResult) {
	f.log.Debug("Friends result",
		zap.String("action", string(result.Action)),
		zap.Bool("success", result.Success),
		zap.String("error", string(result.Error)))

	f.publish(EventResult, result)
}

// secondWord returns the account name of "Added NAME to ..." style
// confirmations.
func secondWord(message string) string {
	fields := strings.Fields(message)
	if len(fields) < 2 {
		return ""
	}

	return fields[1]
}

var _ FriendLookup = (*Friends)(nil)
