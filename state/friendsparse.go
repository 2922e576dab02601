package state

import (
	"regexp"
	"strconv"
	"strings"
)

// friendMessage is what a friends related info line turned out to be.
type friendMessage int

const (
	friendNone friendMessage = iota
	friendHeader
	friendEntry
	friendAdded
	friendRemoved
	friendAddMaximum
	friendAddNoUsername
	friendAddYourself
	friendNoFriends
	friendRemoveNoUsername
	friendRemoveNotAdded
)

const (
	msgFriendsHeader      = "Your friends are:"
	msgAddMaximum         = "You already have the maximum number of friends in your list. You will need to remove some of your friends before adding more."
	msgAddNoUsername      = "You need to supply the account name of the friend you wish to add to your list."
	msgAddYourself        = "You can't add yourself to your friends list."
	msgNoFriends          = "You don't have any friends in your list. Use /friends add USERNAME to add a friend to your list."
	msgRemoveNoUsername   = "You need to supply the account name of the friend you wish to remove from your list."
	suffixRemoveNotAdded  = " was not in your friends list."
	prefixAdded           = "Added "
	suffixAdded           = " to your friends list."
	prefixRemoved         = "Removed "
	suffixRemoved         = " from your friends list."
	markerFriendInChannel = " in the channel "
	suffixFriendOffline   = ", offline."
)

// classifyFriendMessage checks message against the friends vocabulary in
// priority order.
func classifyFriendMessage(message string) friendMessage {
	switch {
	case message == msgFriendsHeader:
		return friendHeader
	case strings.Contains(message, markerFriendInChannel) || strings.HasSuffix(message, suffixFriendOffline):
		return friendEntry
	case strings.HasPrefix(message, prefixAdded) && strings.HasSuffix(message, suffixAdded):
		return friendAdded
	case strings.HasPrefix(message, prefixRemoved) && strings.HasSuffix(message, suffixRemoved):
		return friendRemoved
	case message == msgAddMaximum:
		return friendAddMaximum
	case message == msgAddNoUsername:
		return friendAddNoUsername
	case message == msgAddYourself:
		return friendAddYourself
	case message == msgNoFriends:
		return friendNoFriends
	case message == msgRemoveNoUsername:
		return friendRemoveNoUsername
	case strings.HasSuffix(message, suffixRemoveNotAdded):
		return friendRemoveNotAdded
	}

	return friendNone
}

// IsFriendsMessage reports whether message belongs to the friends
// vocabulary.
func IsFriendsMessage(message string) bool {
	return classifyFriendMessage(strings.TrimSpace(message)) != friendNone
}

// isFriendsListing reports whether message is output of a friends listing,
// the header or one entry, as opposed to the outcome of an add or remove.
func isFriendsListing(message string) bool {
	switch classifyFriendMessage(strings.TrimSpace(message)) {
	case friendHeader, friendEntry:
		return true
	}

	return false
}

var (
	onlineFriend  = regexp.MustCompile(`^(\d+): (.+), using ([\w ]+) in the channel (.+) on server (.+)$`)
	offlineFriend = regexp.MustCompile(`^(\d+): (.+), offline\.$`)
)

// parseFriend parses one entry of a friends listing. ok is false when the
// line matches neither shape.
func parseFriend(message string) (Friend, bool) {
	if m := onlineFriend.FindStringSubmatch(message); m != nil {
		return Friend{
			Position: atoi(m[1]),
			Name:     m[2],
			Online:   true,
			Client:   parseClient(m[3]),
			Channel:  m[4],
			Server:   m[5],
		}, true
	}

	if m := offlineFriend.FindStringSubmatch(message); m != nil {
		return Friend{
			Position: atoi(m[1]),
			Name:     m[2],
		}, true
	}

	return Friend{}, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}

var clientTags = map[string]string{
	"a Chat Client":                  "[CHAT]",
	"Diablo":                         "[DRTL]",
	"Diablo Shareware":               "[DSHR]",
	"Diablo II":                      "[D2DV]",
	"Diablo II Lord of Destruction":  "[D2XP]",
	"Starcraft":                      "[STAR]",
	"Starcraft Broodwar":             "[SEXP]",
	"Starcraft Japanese":             "[JSTR]",
	"Starcraft Shareware":            "[SSHR]",
	"Warcraft II":                    "[W2BN]",
	"Warcraft III":                   "[WAR3]",
	"Warcraft III The Frozen Throne": "[W3XP]",
}

// parseClient maps the product name of a friends listing to a client tag.
// Unknown products have no tag.
func parseClient(name string) string {
	return clientTags[name]
}
