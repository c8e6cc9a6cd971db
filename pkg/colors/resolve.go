package colors

// Resolved is the effective appearance for one preset and mode.
type Resolved struct {
	PresetID string
	Label    string
	Mode     ThemeMode
	Dark     bool

	// CSS values, as a browser host would apply them.
	Gradient      string
	TextPrimary   string
	TextSecondary string
	TabHover      string
	TabActive     string
	Divider       string
	Accent        string

	// Flat hex colors for the terminal panel, composited over the gradient's middle stop.
	Palette Palette
}

// Palette is the terminal rendition of a Resolved theme.
type Palette struct {
	Background string
	Foreground string
	Muted      string
	Hover      string
	Active     string
	Divider    string
	Accent     string
	// AccentText is legible on Accent.
	AccentText string
}

// Effective returns "dark" or "light".
func (r Resolved) Effective() string {
	if r.Dark {
		return string(ThemeModeDark)
	}
	return string(ThemeModeLight)
}

// CSSVars returns the style variables keyed by CSS custom property name.
func (r Resolved) CSSVars() map[string]string {
	return map[string]string{
		"--bg-gradient":    r.Gradient,
		"--text-primary":   r.TextPrimary,
		"--text-secondary": r.TextSecondary,
		"--tab-hover":      r.TabHover,
		"--tab-active":     r.TabActive,
		"--divider-color":  r.Divider,
		"--accent-color":   r.Accent,
	}
}

// IsDark resolves a mode against the OS preference. Unknown modes follow the OS.
func IsDark(mode ThemeMode, osPrefersDark bool) bool {
	switch mode {
	case ThemeModeDark:
		return true
	case ThemeModeLight:
		return false
	default:
		return osPrefersDark
	}
}

// Resolve computes the appearance of presetID under mode. Presets that are always dark
// ignore light mode's overrides but still report the effective mode.
func Resolve(presetID string, mode ThemeMode, osPrefersDark bool) Resolved {
	preset, _ := GetPreset(presetID)
	dark := IsDark(mode, osPrefersDark)

	r := Resolved{
		PresetID:      preset.ID,
		Label:         preset.Label,
		Mode:          mode,
		Dark:          dark,
		Gradient:      preset.Gradient,
		TextPrimary:   preset.TextPrimary,
		TextSecondary: preset.TextSecondary,
		TabHover:      preset.TabHover,
		TabActive:     preset.TabActive,
		Divider:       preset.Divider,
		Accent:        preset.Accent,
	}

	if !dark && !preset.AlwaysDark {
		if g, ok := LightGradients[preset.ID]; ok {
			r.Gradient = g
		}
		r.TextPrimary = LightOverrides.TextPrimary
		r.TextSecondary = LightOverrides.TextSecondary
		r.TabHover = LightOverrides.TabHover
		r.TabActive = LightOverrides.TabActive
		r.Divider = LightOverrides.Divider
	}

	base := GradientBase(r.Gradient)
	r.Palette = Palette{
		Background: base,
		Foreground: Blend(r.TextPrimary, base),
		Muted:      Blend(r.TextSecondary, base),
		Hover:      Blend(r.TabHover, base),
		Active:     Blend(r.TabActive, base),
		Divider:    Blend(r.Divider, base),
		Accent:     r.Accent,
		AccentText: DeriveTextColor(r.Accent),
	}
	return r
}
