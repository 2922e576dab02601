package state

import (
	"github.com/luma/warchat/bus"
)

// ProfileManager holds the active profile and round-trips it through the
// persistence layer on the profile channel.
type ProfileManager struct {
	*Publisher

	bus     bus.Bus
	profile bus.Profile
}

// NewProfileManager starts with fallback and asks the persistence layer for
// the stored profile.
func NewProfileManager(b bus.Bus, fallback bus.Profile) *ProfileManager {
	p := &ProfileManager{
		Publisher: NewPublisher("profile"),
		bus:       b,
		profile:   fallback,
	}

	bus.OnProfile(b, func(m bus.ProfileMessage) {
		if m.Op != bus.OpLoaded {
			return
		}

		p.profile = m.Profile
		p.publish(EventProfile, p.profile)
	})

	b.Send(bus.ProfileMessage{Op: bus.OpRead})

	return p
}

func (p *ProfileManager) Profile() bus.Profile {
	return p.profile
}

// SetProfile replaces the profile and asks for it to be stored.
func (p *ProfileManager) SetProfile(profile bus.Profile) {
	p.profile = profile
	p.publish(EventProfile, p.profile)
	p.bus.Send(bus.ProfileMessage{Op: bus.OpSave, Profile: profile})
}

// SettingsManager holds the active settings, like ProfileManager does for the
// profile.
type SettingsManager struct {
	*Publisher

	bus      bus.Bus
	settings bus.Settings
}

func NewSettingsManager(b bus.Bus, fallback bus.Settings) *SettingsManager {
	s := &SettingsManager{
		Publisher: NewPublisher("settings"),
		bus:       b,
		settings:  fallback,
	}

	bus.OnSettings(b, func(m bus.SettingsMessage) {
		if m.Op != bus.OpLoaded {
			return
		}

		s.settings = m.Settings
		s.publish(EventSettings, s.settings)
	})

	b.Send(bus.SettingsMessage{Op: bus.OpRead})

	return s
}

func (s *SettingsManager) Settings() bus.Settings {
	return s.settings
}

func (s *SettingsManager) SetSettings(settings bus.Settings) {
	s.settings = settings
	s.publish(EventSettings, s.settings)
	s.bus.Send(bus.SettingsMessage{Op: bus.OpSave, Settings: settings})
}

// AppManager remembers the identifier the host application hands us.
type AppManager struct {
	identifier string
}

func NewAppManager(b bus.Bus) *AppManager {
	a := &AppManager{}

	bus.OnApp(b, func(m bus.AppMessage) {
		if m.Op == bus.OpLoaded {
			a.identifier = m.Identifier
		}
	})

	b.Send(bus.AppMessage{Op: bus.OpRead})

	return a
}

func (a *AppManager) Identifier() string {
	return a.identifier
}

var (
	_ ProfileSource  = (*ProfileManager)(nil)
	_ SettingsSource = (*SettingsManager)(nil)
)
