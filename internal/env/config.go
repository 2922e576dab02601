package env

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/luma/warchat/bus"
)

const DefaultHTTPAddr = "127.0.0.1:7362"

// ConfigPaths are tried in order when no config file is named.
var ConfigPaths = []string{"./warchat.yaml", "config/warchat.yaml"}

var (
	ErrNoUsername    = errors.New("a server is configured without a username")
	ErrInvalidName   = errors.New("usernames cannot contain spaces")
	ErrInvalidAddr   = errors.New("http address must be host:port")
	ErrNegativeValue = errors.New("dial timeout cannot be negative")
)

type ProfileConfig struct {
	Server   string `yaml:"server"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Home     string `yaml:"home"`
	Init6    bool   `yaml:"init6"`
}

type SettingsConfig struct {
	AutoReconnect bool `yaml:"autoReconnect"`
	IgnoreEmotes  bool `yaml:"ignoreEmotes"`
	SeparateBots  bool `yaml:"separateBots"`
}

// Config is read from defaults, then a YAML file, then WARCHAT_* variables.
// Later sources win, see environment.
type Config struct {
	Profile  ProfileConfig  `yaml:"profile"`
	Settings SettingsConfig `yaml:"settings"`

	HTTPAddr    string        `yaml:"httpAddr"`
	StateFile   string        `yaml:"stateFile"`
	DialTimeout time.Duration `yaml:"dialTimeout"`

	// AutoConnect connects as soon as the session starts.
	AutoConnect bool `yaml:"autoConnect"`

	Debug     bool `yaml:"debug"`
	DebugHTTP bool `yaml:"debugHTTP"`
	Trace     bool `yaml:"trace"`
}

func DefaultConfig() Config {
	defaults := bus.DefaultSettings()

	return Config{
		Settings: SettingsConfig{
			AutoReconnect: defaults.AutoReconnect,
			IgnoreEmotes:  defaults.IgnoreEmotes,
			SeparateBots:  defaults.SeparateBots,
		},
		HTTPAddr:  DefaultHTTPAddr,
		StateFile: defaultStateFile(),
	}
}

// LoadConfig builds the config. path names a YAML file, when empty the
// ConfigPaths are tried and a missing file is fine.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	config := DefaultConfig()

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	if err := loadFile(&config, path); err != nil {
		return nil, err
	}

	var vars environment
	if err := envconfig.Process(ctx, &vars); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := vars.apply(&config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func loadFile(config *Config, path string) error {
	paths := ConfigPaths
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) && path == "" {
				continue
			}

			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", p, err)
		}

		return nil
	}

	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() (err error) {
	if c.Profile.Server != "" && c.Profile.Username == "" {
		err = multierr.Append(err, ErrNoUsername)
	}

	if strings.ContainsAny(c.Profile.Username, " \t") {
		err = multierr.Append(err, ErrInvalidName)
	}

	if _, _, splitErr := net.SplitHostPort(c.HTTPAddr); splitErr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %s", ErrInvalidAddr, c.HTTPAddr))
	}

	if c.DialTimeout < 0 {
		err = multierr.Append(err, ErrNegativeValue)
	}

	return err
}

func (c *Config) BusProfile() bus.Profile {
	return bus.Profile{
		Server:   c.Profile.Server,
		Username: c.Profile.Username,
		Password: c.Profile.Password,
		Home:     c.Profile.Home,
		Init6:    c.Profile.Init6,
	}
}

func (c *Config) BusSettings() bus.Settings {
	return bus.Settings{
		AutoReconnect: c.Settings.AutoReconnect,
		IgnoreEmotes:  c.Settings.IgnoreEmotes,
		SeparateBots:  c.Settings.SeparateBots,
	}
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "warchat.json"
	}

	return filepath.Join(dir, "warchat", "state.json")
}
