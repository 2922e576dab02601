package protocol

import (
	"strings"
)

var (
	// Terminal separates lines inside a block
	Terminal = "\r\n"
)

// Line is one classified line of an inbound block.
type Line struct {
	// Raw is the line as received, without its terminator.
	Raw string

	// Fields is Raw split on single spaces.
	Fields []string

	Dialect Dialect
	Kind    Kind

	// Code is set for classic lines.
	Code Code

	// Command, Event and Direction are set for init6 lines. Direction is
	// only meaningful for whispers.
	Command   Command
	Event     Event
	Direction Direction
}

// SplitBlock splits an inbound block into its non-empty lines.
func SplitBlock(block string) []string {
	parts := strings.Split(block, Terminal)
	lines := make([]string, 0, len(parts))

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}

		lines = append(lines, part)
	}

	return lines
}

// Decode splits block into lines and classifies each of them.
func Decode(block string) []Line {
	raw := SplitBlock(block)
	lines := make([]Line, 0, len(raw))

	for _, r := range raw {
		lines = append(lines, Classify(r))
	}

	return lines
}

// Classify works out the dialect and kind of a single raw line.
//
// The classic table is consulted first. Classic codes are numeric and init6
// commands are words, so a line never matches both.
func Classify(raw string) Line {
	line := Line{Raw: raw, Fields: strings.Split(raw, " ")}
	head := line.Field(0)

	if kind, ok := classicKinds[Code(head)]; ok {
		line.Dialect = DialectClassic
		line.Code = Code(head)
		line.Kind = kind
		return line
	}

	line.Command = Command(head)
	line.Event = Event(line.Field(1))
	line.Direction = Direction(line.Field(2))

	switch line.Command {
	case CmdUser:
		line.Dialect = DialectInit6

		switch line.Event {
		case EventIn:
			line.Kind = KindUser
		case EventJoin:
			line.Kind = KindJoin
		case EventLeave:
			line.Kind = KindLeave
		case EventUpdate:
			line.Kind = KindUpdate
		case EventTalk:
			line.Kind = KindTalk
		case EventEmote:
			line.Kind = KindEmote
		case EventWhisper:
			switch line.Direction {
			case DirFrom:
				line.Kind = KindWhisperIn
			case DirTo:
				line.Kind = KindWhisperOut
			}
		}

	case CmdChannel:
		line.Dialect = DialectInit6

		if line.Event == EventJoin {
			line.Kind = KindChannel
		}

	case CmdServer:
		line.Dialect = DialectInit6

		switch line.Event {
		case EventInfo:
			line.Kind = KindInfo
		case EventTopic:
			line.Kind = KindTopic
		case EventError:
			line.Kind = KindError
		case EventBroadcast:
			line.Kind = KindBroadcast
		}
	}

	return line
}

// Field returns the i'th token or "" when the line is too short.
func (l Line) Field(i int) string {
	if i < 0 || i >= len(l.Fields) {
		return ""
	}

	return l.Fields[i]
}

// Payload returns the free text of the line: the quoted part for classic
// lines, everything from the dialect's payload column for init6 lines.
func (l Line) Payload() string {
	switch l.Dialect {
	case DialectClassic:
		return Quoted(l.Raw)

	case DialectInit6:
		if l.Command == CmdUser {
			return Column(l.Raw, ColumnUser)
		}

		return Column(l.Raw, ColumnServer)
	}

	return ""
}

// Name returns the user the line is about.
func (l Line) Name() string {
	if l.Dialect == DialectInit6 {
		return l.Field(6)
	}

	return l.Field(2)
}

// Flags returns the user's flags column.
func (l Line) Flags() string {
	if l.Dialect == DialectInit6 {
		return l.Field(4)
	}

	return l.Field(3)
}

// Client returns the bracketed client tag of the user the line is about.
func (l Line) Client() string {
	if l.Dialect == DialectInit6 {
		return ReverseClient(l.Field(7))
	}

	if len(l.Fields) > 4 {
		return l.Field(4)
	}

	return DefaultClient
}

// Known reports whether the line classified into something consumers handle.
func (l Line) Known() bool {
	return l.Kind != KindUnknown
}
