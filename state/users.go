package state

import (
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/protocol"
)

// Roster tracks the users of the current channel.
type Roster struct {
	*Publisher

	profile ProfileSource
	log     *zap.Logger

	self  string
	users []User
}

func NewRoster(b bus.Bus, profile ProfileSource, conn ConnectionEvents, log *zap.Logger) *Roster {
	r := &Roster{
		Publisher: NewPublisher("users"),
		profile:   profile,
		log:       log,
	}

	conn.OnConnected(func(connected bool) {
		if connected {
			r.Reset()
		}
	})

	bus.OnMessages(b, func(block bus.InboundBlock) {
		for _, line := range block.Lines {
			r.handleLine(line)
		}
	})

	return r
}

func (r *Roster) handleLine(line protocol.Line) {
	switch line.Kind {
	case protocol.KindUser, protocol.KindJoin:
		r.Add(User{
			Name:   line.Name(),
			Flags:  line.Flags(),
			Client: line.Client(),
		})

	case protocol.KindLeave:
		r.Remove(line.Name())

	case protocol.KindUpdate:
		r.Update(line.Name(), line.Flags(), line.Client())

	case protocol.KindName:
		r.self = line.Name()

	case protocol.KindChannel:
		if line.Dialect == protocol.DialectInit6 {
			r.self = r.profile.Profile().Username
		}
		r.Reset()
	}
}

// Add puts u in the roster. A user already present under the same name, in
// any case, is replaced in place.
func (r *Roster) Add(u User) {
	if u.Name == "" {
		return
	}

	if i := r.indexOf(u.Name); i >= 0 {
		r.users[i] = u
	} else {
		r.users = append(r.users, u)
	}

	r.publishUsers()
}

// Remove drops the user called name, ignoring case.
func (r *Roster) Remove(name string) {
	i := r.indexOf(name)
	if i < 0 {
		return
	}

	r.users = append(r.users[:i], r.users[i+1:]...)
	r.publishUsers()
}

// Update changes the flags and client of a user in place. Updates for users
// we never saw join are dropped.
func (r *Roster) Update(name, flags, client string) {
	i := r.indexOf(name)
	if i < 0 {
		r.log.Debug("Update for unknown user", zap.String("name", name))
		return
	}

	r.users[i].Flags = flags
	r.users[i].Client = client
	r.publishUsers()
}

// MarkBot flags the user as a bot.
func (r *Roster) MarkBot(name string) {
	i := r.indexOf(name)
	if i < 0 || r.users[i].Bot {
		return
	}

	r.users[i].Bot = true
	r.publishUsers()
}

// Reset empties the roster.
func (r *Roster) Reset() {
	r.users = nil
	r.publishUsers()
}

// Lookup finds a user by name, ignoring case.
func (r *Roster) Lookup(name string) (User, bool) {
	i := r.indexOf(name)
	if i < 0 {
		return User{}, false
	}

	return r.users[i], true
}

// Self is our own name as last reported by the server.
func (r *Roster) Self() string {
	return r.self
}

// ConnectedUser is our own roster entry, or a synthetic one named after the
// profile when we are not in the roster.
func (r *Roster) ConnectedUser() User {
	name := r.profile.Profile().Username

	if u, ok := r.Lookup(name); ok {
		return u
	}

	return User{Name: name, Client: clientNone}
}

// ServerUser is who server notices are attributed to.
func (r *Roster) ServerUser() User {
	return ServerUser
}

// WarChatUser is who the client's own notices are attributed to.
func (r *Roster) WarChatUser() User {
	return WarChatUser
}

// Users returns a copy of the roster.
func (r *Roster) Users() []User {
	return append([]User{}, r.users...)
}

// Split divides the roster into people and bots, each in roster order.
func (r *Roster) Split() (people, bots []User) {
	people = []User{}
	for _, u := range r.users {
		if u.Bot {
			bots = append(bots, u)
		} else {
			people = append(people, u)
		}
	}

	return people, bots
}

func (r *Roster) Len() int {
	return len(r.users)
}

// OnUsers subscribes to roster changes.
func (r *Roster) OnUsers(fn func(users []User)) {
	r.Subscribe(EventUsers, func(v interface{}) { fn(v.([]User)) })
}

func (r *Roster) indexOf(name string) int {
	for i, u := range r.users {
		if u.Is(name) {
			return i
		}
	}

	return -1
}

func (r *Roster) publishUsers() {
	r.publish(EventUsers, r.Users())
}

var _ UserDirectory = (*Roster)(nil)
