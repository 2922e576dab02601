package protocol

// Code is the leading numeric token of a classic line.
type Code string

const (
	CodeUser       Code = "1001"
	CodeJoin       Code = "1002"
	CodeLeave      Code = "1003"
	CodeWhisperIn  Code = "1004"
	CodeTalk       Code = "1005"
	CodeBroadcast  Code = "1006"
	CodeChannel    Code = "1007"
	CodeUpdate     Code = "1009"
	CodeWhisperOut Code = "1010"
	CodeInfo       Code = "1018"
	CodeError      Code = "1019"
	CodeEmote      Code = "1023"
	CodeName       Code = "2010"
)

// Command is the leading token of an init6 line.
type Command string

const (
	CmdUser    Command = "USER"
	CmdChannel Command = "CHANNEL"
	CmdServer  Command = "SERVER"
)

// Event is the second token of an init6 line.
type Event string

const (
	EventIn        Event = "IN"
	EventJoin      Event = "JOIN"
	EventLeave     Event = "LEAVE"
	EventUpdate    Event = "UPDATE"
	EventTalk      Event = "TALK"
	EventEmote     Event = "EMOTE"
	EventWhisper   Event = "WHISPER"
	EventInfo      Event = "INFO"
	EventTopic     Event = "TOPIC"
	EventError     Event = "ERROR"
	EventBroadcast Event = "BROADCAST"
)

// Direction qualifies init6 whispers.
type Direction string

const (
	DirTo   Direction = "TO"
	DirFrom Direction = "FROM"
)

// Dialect tells which of the two framings a line uses.
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectClassic
	DialectInit6
)

func (d Dialect) String() string {
	switch d {
	case DialectClassic:
		return "classic"
	case DialectInit6:
		return "init6"
	default:
		return "unknown"
	}
}

// Kind is the dialect independent meaning of a line.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUser is a user already present when we entered the channel.
	KindUser
	KindJoin
	KindLeave
	KindUpdate
	// KindName carries our own name as the server sees it.
	KindName
	// KindChannel is us entering a channel.
	KindChannel
	KindInfo
	KindTopic
	KindError
	KindTalk
	KindEmote
	KindWhisperIn
	KindWhisperOut
	KindBroadcast
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindUser:       "user",
	KindJoin:       "join",
	KindLeave:      "leave",
	KindUpdate:     "update",
	KindName:       "name",
	KindChannel:    "channel",
	KindInfo:       "info",
	KindTopic:      "topic",
	KindError:      "error",
	KindTalk:       "talk",
	KindEmote:      "emote",
	KindWhisperIn:  "whisper_in",
	KindWhisperOut: "whisper_out",
	KindBroadcast:  "broadcast",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var classicKinds = map[Code]Kind{
	CodeUser:       KindUser,
	CodeJoin:       KindJoin,
	CodeLeave:      KindLeave,
	CodeWhisperIn:  KindWhisperIn,
	CodeTalk:       KindTalk,
	CodeBroadcast:  KindBroadcast,
	CodeChannel:    KindChannel,
	CodeUpdate:     KindUpdate,
	CodeWhisperOut: KindWhisperOut,
	CodeInfo:       KindInfo,
	CodeError:      KindError,
	CodeEmote:      KindEmote,
	CodeName:       KindName,
}

const (
	// ColumnServer is where CHANNEL and SERVER payloads start.
	ColumnServer = 6

	// ColumnUser is where USER payloads start.
	ColumnUser = 8

	// DefaultClient is the classic client tag used when the column is absent.
	DefaultClient = "[CHAT]"
)
