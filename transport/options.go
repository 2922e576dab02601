package transport

import (
	"time"

	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
)

const (
	// DefaultPort is the chat gateway port of both server families.
	DefaultPort = 6112

	DefaultDialTimeout = 10 * time.Second

	WriteQueueSize = 127
)

// Loop runs callbacks on the goroutine that owns the bus.
type Loop interface {
	Post(fn func())
}

// ProfileSource provides the account to log in with.
type ProfileSource interface {
	Profile() bus.Profile
}

type Options struct {
	// DefaultPort is used when the profile's server has no port. Zero means
	// DefaultPort.
	DefaultPort int

	// DialTimeout bounds connecting to the server. Zero means
	// DefaultDialTimeout.
	DialTimeout time.Duration

	// Trace logs every line read and written at debug level. This is only
	// useful in local debugging.
	Trace bool

	Profile ProfileSource

	// Loop is where socket events and inbound blocks are delivered.
	Loop Loop

	// Receive is handed every inbound block, on Loop.
	Receive func(block string)

	Log *zap.Logger
}
