package playback

import (
	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/filesystem"
)

// Preferences survive restarts.
type Preferences struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// PreferenceStore persists Preferences to a json file on the swappable filesystem.
type PreferenceStore struct {
	cacher *gache.Cache[*Preferences]
}

func NewPreferenceStore(path string) *PreferenceStore {
	return &PreferenceStore{
		cacher: gache.New[*Preferences](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Load returns the saved preferences, if any.
func (p *PreferenceStore) Load() mo.Option[Preferences] {
	prefs, expired, err := p.cacher.Get()
	if err != nil || expired || prefs == nil {
		return mo.None[Preferences]()
	}
	return mo.Some(*prefs)
}

func (p *PreferenceStore) Save(prefs Preferences) error {
	return p.cacher.Set(&prefs)
}
