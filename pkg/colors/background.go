package colors

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

// ThemeMode selects light, dark or OS-following appearance.
type ThemeMode string

const (
	ThemeModeAuto  ThemeMode = "auto"
	ThemeModeDark  ThemeMode = "dark"
	ThemeModeLight ThemeMode = "light"
)

// ParseThemeMode validates a mode name.
func ParseThemeMode(s string) (ThemeMode, error) {
	switch m := ThemeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ThemeModeAuto, ThemeModeDark, ThemeModeLight:
		return m, nil
	default:
		return "", fmt.Errorf("unknown theme mode %q (want light, dark or auto)", s)
	}
}

// OSPreference reports the host's color-scheme preference.
type OSPreference interface {
	PrefersDark() bool
}

// FixedPreference is an OSPreference that never changes. Tests flip it by pointer.
type FixedPreference struct {
	Dark bool
}

func (p *FixedPreference) PrefersDark() bool {
	return p.Dark
}

// BackgroundDetector reads the dark preference from the terminal the panel runs in.
// The answer is cached until Refresh.
type BackgroundDetector struct {
	cachedIsDark  *bool
	detectedColor string
	getenv        func(string) string
	query         func() (bool, string, bool)
}

// NewBackgroundDetector creates a detector that reads the process environment and the
// terminal.
func NewBackgroundDetector() *BackgroundDetector {
	return &BackgroundDetector{getenv: os.Getenv, query: queryTermenv}
}

// PrefersDark returns true if the background is dark
func (d *BackgroundDetector) PrefersDark() bool {
	if d.cachedIsDark != nil {
		return *d.cachedIsDark
	}
	isDark := d.detectDarkBackground()
	d.cachedIsDark = &isDark
	return isDark
}

// Refresh drops the cached answer, re-detects, and reports whether it changed.
func (d *BackgroundDetector) Refresh() bool {
	var before *bool
	if d.cachedIsDark != nil {
		v := *d.cachedIsDark
		before = &v
	}
	d.cachedIsDark = nil
	now := d.PrefersDark()
	return before == nil || *before != now
}

// DetectedColor returns the detected background color hex if available
func (d *BackgroundDetector) DetectedColor() string {
	return d.detectedColor
}

func (d *BackgroundDetector) detectDarkBackground() bool {
	// Explicit override, then COLORFGBG, then an OSC query, then terminal hints.
	if isDark, ok := d.checkOverride(); ok {
		return isDark
	}
	if isDark, ok := d.checkCOLORFGBG(); ok {
		return isDark
	}
	if d.query != nil {
		if isDark, color, ok := d.query(); ok {
			d.detectedColor = color
			return isDark
		}
	}
	if isDark, ok := d.checkTerminalHints(); ok {
		return isDark
	}
	return true
}

// checkOverride honours VTABS_COLOR_SCHEME=dark|light, which a host can set to pass
// the desktop preference through.
func (d *BackgroundDetector) checkOverride() (bool, bool) {
	switch strings.ToLower(d.getenv("VTABS_COLOR_SCHEME")) {
	case "dark":
		return true, true
	case "light":
		return false, true
	}
	return false, false
}

// checkCOLORFGBG checks the COLORFGBG environment variable
// Format is typically "foreground;background" where values are ANSI color codes
// Values 0-7 are considered dark, 8-15 are light
func (d *BackgroundDetector) checkCOLORFGBG() (bool, bool) {
	parts := strings.Split(d.getenv("COLORFGBG"), ";")
	if len(parts) < 2 {
		return false, false
	}
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return false, false
	}
	return bg < 8 || bg == 16, true
}

// queryTermenv asks the terminal for its background color. tmux and screen do not
// answer OSC queries.
func queryTermenv() (bool, string, bool) {
	output := termenv.NewOutput(os.Stdout)
	bgColor := output.BackgroundColor()
	if bgColor == nil {
		return false, "", false
	}
	if _, ok := bgColor.(termenv.NoColor); ok {
		return false, "", false
	}
	rgb := termenv.ConvertToRGB(bgColor)
	return output.HasDarkBackground(), rgb.Hex(), true
}

func (d *BackgroundDetector) checkTerminalHints() (bool, bool) {
	// iTerm2 sets this variable
	profile := strings.ToLower(d.getenv("ITERM_PROFILE"))
	switch {
	case strings.Contains(profile, "light"):
		return false, true
	case strings.Contains(profile, "dark"):
		return true, true
	}
	return false, false
}
