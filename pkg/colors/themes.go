package colors

// Preset is one built-in panel theme. Color values are CSS strings: hex, rgba() or a
// linear-gradient().
type Preset struct {
	ID            string
	Label         string
	Gradient      string
	Accent        string
	TabHover      string
	TabActive     string
	TextPrimary   string
	TextSecondary string
	Divider       string
	Swatch        string
	// AlwaysDark presets keep their own palette in light mode.
	AlwaysDark bool
}

// DefaultPresetID is used when nothing is saved or a saved id is unknown.
const DefaultPresetID = "teal-forest"

var whiteOnDark = Preset{
	TabHover:      "rgba(255,255,255,0.08)",
	TabActive:     "rgba(255,255,255,0.15)",
	TextPrimary:   "rgba(255,255,255,0.85)",
	TextSecondary: "rgba(255,255,255,0.5)",
	Divider:       "rgba(255,255,255,0.15)",
}

func withWhiteText(p Preset) Preset {
	p.TabHover = whiteOnDark.TabHover
	p.TabActive = whiteOnDark.TabActive
	p.TextPrimary = whiteOnDark.TextPrimary
	p.TextSecondary = whiteOnDark.TextSecondary
	if p.Divider == "" {
		p.Divider = whiteOnDark.Divider
	}
	return p
}

// Presets lists the built-in themes in display order.
var Presets = []Preset{
	withWhiteText(Preset{
		ID:       "teal-forest",
		Label:    "Teal Forest",
		Gradient: "linear-gradient(135deg, #89CDA8, #6BA5A0, #4A8C8C)",
		Accent:   "#89CDA8",
		Swatch:   "#6BA5A0",
	}),
	withWhiteText(Preset{
		ID:       "ocean-blue",
		Label:    "Ocean Blue",
		Gradient: "linear-gradient(135deg, #7BB4D4, #5A8FB4, #3D6E94)",
		Accent:   "#7BB4D4",
		Swatch:   "#5A8FB4",
	}),
	withWhiteText(Preset{
		ID:       "sunset-coral",
		Label:    "Sunset Coral",
		Gradient: "linear-gradient(135deg, #F4A1A1, #E87C7C, #D45757)",
		Accent:   "#F4A1A1",
		Swatch:   "#E87C7C",
	}),
	withWhiteText(Preset{
		ID:       "lavender",
		Label:    "Lavender",
		Gradient: "linear-gradient(135deg, #B8A9E8, #9B89D4, #7E6ABF)",
		Accent:   "#B8A9E8",
		Swatch:   "#9B89D4",
	}),
	withWhiteText(Preset{
		ID:       "rose-pink",
		Label:    "Rose Pink",
		Gradient: "linear-gradient(135deg, #F2B5D4, #E494B8, #D4739D)",
		Accent:   "#F2B5D4",
		Swatch:   "#E494B8",
	}),
	withWhiteText(Preset{
		ID:         "midnight",
		Label:      "Midnight",
		Gradient:   "linear-gradient(135deg, #2D3748, #1A2332, #0F1923)",
		Accent:     "#5A9BCF",
		Divider:    "rgba(255,255,255,0.12)",
		Swatch:     "#1A2332",
		AlwaysDark: true,
	}),
	{
		ID:            "warm-sand",
		Label:         "Warm Sand",
		Gradient:      "linear-gradient(135deg, #E8D5B7, #D4B896, #BF9B74)",
		Accent:        "#BF9B74",
		TabHover:      "rgba(0,0,0,0.06)",
		TabActive:     "rgba(0,0,0,0.10)",
		TextPrimary:   "rgba(0,0,0,0.80)",
		TextSecondary: "rgba(0,0,0,0.45)",
		Divider:       "rgba(0,0,0,0.10)",
		Swatch:        "#D4B896",
	},
	{
		ID:            "pure-dark",
		Label:         "Pure Dark",
		Gradient:      "#1e1e2e",
		Accent:        "#89B4FA",
		TabHover:      "rgba(255,255,255,0.06)",
		TabActive:     "rgba(255,255,255,0.12)",
		TextPrimary:   "rgba(255,255,255,0.85)",
		TextSecondary: "rgba(255,255,255,0.45)",
		Divider:       "rgba(255,255,255,0.10)",
		Swatch:        "#1e1e2e",
		AlwaysDark:    true,
	},
}

// LightOverrides replace a preset's text and surface colors in light mode.
var LightOverrides = struct {
	TabHover      string
	TabActive     string
	TextPrimary   string
	TextSecondary string
	Divider       string
}{
	TabHover:      "rgba(0,0,0,0.06)",
	TabActive:     "rgba(0,0,0,0.10)",
	TextPrimary:   "rgba(0,0,0,0.80)",
	TextSecondary: "rgba(0,0,0,0.45)",
	Divider:       "rgba(0,0,0,0.10)",
}

// LightGradients replace a preset's background in light mode.
var LightGradients = map[string]string{
	"teal-forest":  "linear-gradient(135deg, #E0F5EC, #CCE8E0, #B8DBD5)",
	"ocean-blue":   "linear-gradient(135deg, #DEEDF6, #C8DDE8, #B0CCDA)",
	"sunset-coral": "linear-gradient(135deg, #FCDEDE, #F5CACA, #EEB6B6)",
	"lavender":     "linear-gradient(135deg, #EDE8F8, #DDD5F0, #CCC2E8)",
	"rose-pink":    "linear-gradient(135deg, #FCE8F0, #F5D6E2, #EDC4D4)",
	"midnight":     "linear-gradient(135deg, #E8EBF0, #D8DCE5, #C8CDD8)",
	"warm-sand":    "linear-gradient(135deg, #F8F0E4, #F0E4D0, #E8D8BC)",
	"pure-dark":    "linear-gradient(135deg, #F0F0F4, #E8E8EE, #E0E0E8)",
}

// GetPreset returns a preset by id, or the default preset if not found. The second
// result reports whether id was known.
func GetPreset(id string) (Preset, bool) {
	for _, p := range Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Presets[0], false
}

// ListPresets returns all preset ids in display order.
func ListPresets() []string {
	ids := make([]string, 0, len(Presets))
	for _, p := range Presets {
		ids = append(ids, p.ID)
	}
	return ids
}
