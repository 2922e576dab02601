package env

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

// envValue remembers whether a variable was set, so WARCHAT_INIT6=false can
// switch off what the config file switched on.
type envValue struct {
	raw string
	set bool
}

func (v *envValue) EnvDecode(val string) error {
	v.raw, v.set = val, val != ""
	return nil
}

func (v envValue) setString(into *string) {
	if v.set {
		*into = v.raw
	}
}

func (v envValue) setBool(name string, into *bool) error {
	if !v.set {
		return nil
	}

	b, err := strconv.ParseBool(v.raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*into = b
	return nil
}

func (v envValue) setDuration(name string, into *time.Duration) error {
	if !v.set {
		return nil
	}

	d, err := time.ParseDuration(v.raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*into = d
	return nil
}

// environment holds the WARCHAT_* variables as they were found.
type environment struct {
	Server   envValue `env:"WARCHAT_SERVER"`
	Username envValue `env:"WARCHAT_USERNAME"`
	Password envValue `env:"WARCHAT_PASSWORD"`
	Home     envValue `env:"WARCHAT_HOME"`
	Init6    envValue `env:"WARCHAT_INIT6"`

	AutoReconnect envValue `env:"WARCHAT_AUTO_RECONNECT"`
	IgnoreEmotes  envValue `env:"WARCHAT_IGNORE_EMOTES"`
	SeparateBots  envValue `env:"WARCHAT_SEPARATE_BOTS"`

	HTTPAddr    envValue `env:"WARCHAT_HTTP_ADDR"`
	StateFile   envValue `env:"WARCHAT_STATE_FILE"`
	DialTimeout envValue `env:"WARCHAT_DIAL_TIMEOUT"`
	AutoConnect envValue `env:"WARCHAT_AUTO_CONNECT"`

	Debug     envValue `env:"WARCHAT_DEBUG"`
	DebugHTTP envValue `env:"WARCHAT_DEBUG_HTTP"`
	Trace     envValue `env:"WARCHAT_TRACE"`
}

// apply writes every variable that was set over c.
func (e *environment) apply(c *Config) (err error) {
	e.Server.setString(&c.Profile.Server)
	e.Username.setString(&c.Profile.Username)
	e.Password.setString(&c.Profile.Password)
	e.Home.setString(&c.Profile.Home)
	e.HTTPAddr.setString(&c.HTTPAddr)
	e.StateFile.setString(&c.StateFile)

	err = multierr.Append(err, e.Init6.setBool("WARCHAT_INIT6", &c.Profile.Init6))
	err = multierr.Append(err, e.AutoReconnect.setBool("WARCHAT_AUTO_RECONNECT", &c.Settings.AutoReconnect))
	err = multierr.Append(err, e.IgnoreEmotes.setBool("WARCHAT_IGNORE_EMOTES", &c.Settings.IgnoreEmotes))
	err = multierr.Append(err, e.SeparateBots.setBool("WARCHAT_SEPARATE_BOTS", &c.Settings.SeparateBots))
	err = multierr.Append(err, e.DialTimeout.setDuration("WARCHAT_DIAL_TIMEOUT", &c.DialTimeout))
	err = multierr.Append(err, e.AutoConnect.setBool("WARCHAT_AUTO_CONNECT", &c.AutoConnect))
	err = multierr.Append(err, e.Debug.setBool("WARCHAT_DEBUG", &c.Debug))
	err = multierr.Append(err, e.DebugHTTP.setBool("WARCHAT_DEBUG_HTTP", &c.DebugHTTP))
	err = multierr.Append(err, e.Trace.setBool("WARCHAT_TRACE", &c.Trace))

	return err
}
