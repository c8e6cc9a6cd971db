package colors

import (
	"context"

	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/prefs"
)

// Store holds the theme selection, resolves it, and writes it through to a preference
// store. It is owned by the panel's event loop and is not safe for concurrent use.
type Store struct {
	prefs    prefs.Store
	os       OSPreference
	log      pslog.Logger
	presetID string
	mode     ThemeMode
	current  Resolved
}

// NewStore returns a store on the default preset in auto mode.
func NewStore(p prefs.Store, osPref OSPreference, log pslog.Logger) *Store {
	s := &Store{
		prefs:    p,
		os:       osPref,
		log:      log,
		presetID: DefaultPresetID,
		mode:     ThemeModeAuto,
	}
	s.resolve()
	return s
}

// Load restores the saved selection. A missing or unreadable record keeps the current
// selection.
func (s *Store) Load(ctx context.Context) Resolved {
	rec, ok, err := s.prefs.Get(ctx, prefs.ThemeKey)
	if err != nil {
		s.log.Debug("theme preference unreadable", "err", err)
	}
	if err == nil && ok {
		s.presetID = rec.PresetID
		if s.presetID == "" {
			s.presetID = DefaultPresetID
		}
		mode, err := ParseThemeMode(rec.Mode)
		if err != nil {
			mode = ThemeModeAuto
		}
		s.mode = mode
	}
	return s.Apply("", "")
}

// Apply changes only the given fields (empty means unchanged) and re-resolves. It does
// not persist.
func (s *Store) Apply(presetID string, mode ThemeMode) Resolved {
	if presetID != "" {
		s.presetID = presetID
	}
	if mode != "" {
		s.mode = mode
	}
	s.resolve()
	return s.current
}

// SetPreset selects a preset and persists the selection.
func (s *Store) SetPreset(ctx context.Context, presetID string) Resolved {
	s.Apply(presetID, "")
	s.save(ctx)
	return s.current
}

// SetMode selects a mode and persists the selection.
func (s *Store) SetMode(ctx context.Context, mode ThemeMode) Resolved {
	s.Apply("", mode)
	s.save(ctx)
	return s.current
}

// OSPreferenceChanged re-resolves after the OS color scheme changed. It does nothing
// unless the mode is auto.
func (s *Store) OSPreferenceChanged() (Resolved, bool) {
	if s.mode != ThemeModeAuto {
		return s.current, false
	}
	s.resolve()
	return s.current, true
}

// Current returns the last resolved theme.
func (s *Store) Current() Resolved {
	return s.current
}

// Selection returns the selected preset id and mode.
func (s *Store) Selection() (string, ThemeMode) {
	return s.presetID, s.mode
}

func (s *Store) resolve() {
	if _, ok := GetPreset(s.presetID); !ok {
		s.presetID = DefaultPresetID
	}
	s.current = Resolve(s.presetID, s.mode, s.os.PrefersDark())
}

func (s *Store) save(ctx context.Context) {
	rec := prefs.Record{PresetID: s.presetID, Mode: string(s.mode)}
	if err := s.prefs.Set(ctx, prefs.ThemeKey, rec); err != nil {
		s.log.Debug("theme preference not saved", "err", err)
	}
}
