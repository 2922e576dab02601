package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
)

// Keys the persister stores values under.
const (
	KeyProfile       = "profile"
	KeySettings      = "settings"
	KeyAppIdentifier = "app.identifier"
)

const persistTimeout = 3 * time.Second

// Persister answers the profile, settings and app round-trips on a bus from a
// Store. Reads for values that were never saved go unanswered, so managers
// keep their defaults.
type Persister struct {
	bus   bus.Bus
	store Store
	log   *zap.Logger
}

func NewPersister(b bus.Bus, store Store, log *zap.Logger) *Persister {
	p := &Persister{
		bus:   b,
		store: store,
		log:   log,
	}

	bus.OnProfile(b, p.handleProfile)
	bus.OnSettings(b, p.handleSettings)
	bus.OnApp(b, p.handleApp)

	return p
}

func (p *Persister) handleProfile(m bus.ProfileMessage) {
	switch m.Op {
	case bus.OpRead:
		var profile bus.Profile
		if p.load(KeyProfile, &profile) {
			p.bus.Send(bus.ProfileMessage{Op: bus.OpLoaded, Profile: profile})
		}

	case bus.OpSave:
		p.save(KeyProfile, m.Profile)
	}
}

func (p *Persister) handleSettings(m bus.SettingsMessage) {
	switch m.Op {
	case bus.OpRead:
		var settings bus.Settings
		if p.load(KeySettings, &settings) {
			p.bus.Send(bus.SettingsMessage{Op: bus.OpLoaded, Settings: settings})
		}

	case bus.OpSave:
		p.save(KeySettings, m.Settings)
	}
}

// handleApp hands out the installation identifier, minting one on first use.
func (p *Persister) handleApp(m bus.AppMessage) {
	if m.Op != bus.OpRead {
		return
	}

	var identifier string
	if !p.load(KeyAppIdentifier, &identifier) || identifier == "" {
		identifier = uuid.New().String()
		p.save(KeyAppIdentifier, identifier)
	}

	p.bus.Send(bus.AppMessage{Op: bus.OpLoaded, Identifier: identifier})
}

func (p *Persister) load(key string, into interface{}) bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	raw, err := p.store.Get(ctx, []byte(key))
	if err != nil {
		p.log.Warn("Failed to read", zap.String("key", key), zap.Error(err))
		return false
	}

	if raw == nil {
		return false
	}

	if err := json.Unmarshal(raw, into); err != nil {
		p.log.Warn("Stored value is unreadable", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (p *Persister) save(key string, value interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := p.store.Set(ctx, []byte(key), value); err != nil {
		p.log.Warn("Failed to save", zap.String("key", key), zap.Error(err))
	}
}
