package colors

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// GetLuminance calculates the relative luminance of a color per WCAG formula
// Returns a value between 0 (black) and 1 (white)
func GetLuminance(hexColor string) float64 {
	r, g, b := hexToRGB(hexColor)
	if r < 0 {
		return 0
	}
	return 0.2126*gammaSRGB(float64(r)/255) +
		0.7152*gammaSRGB(float64(g)/255) +
		0.0722*gammaSRGB(float64(b)/255)
}

func gammaSRGB(val float64) float64 {
	if val <= 0.03928 {
		return val / 12.92
	}
	return math.Pow((val+0.055)/1.055, 2.4)
}

// GetContrastRatio calculates the WCAG contrast ratio between two colors
// Returns a value between 1 (no contrast) and 21 (maximum contrast)
func GetContrastRatio(fg, bg string) float64 {
	l1 := GetLuminance(fg)
	l2 := GetLuminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// IsLightColor returns true if the color is closer to white than black
func IsLightColor(hexColor string) bool {
	return GetLuminance(hexColor) > 0.5
}

// DeriveTextColor picks white or black text for a background, preferring white
// whenever it reaches the 3:1 large-text ratio.
func DeriveTextColor(bgColor string) string {
	if GetContrastRatio("#ffffff", bgColor) >= 3.0 {
		return "#ffffff"
	}
	if GetContrastRatio("#000000", bgColor) >= 3.0 {
		return "#000000"
	}
	if IsLightColor(bgColor) {
		return "#000000"
	}
	return "#ffffff"
}

// hexToRGB converts hex color to RGB values (0-255)
// Returns -1, -1, -1 for invalid colors
func hexToRGB(hexColor string) (int64, int64, int64) {
	hex := strings.TrimPrefix(hexColor, "#")
	if len(hex) != 6 {
		return -1, -1, -1
	}

	r, errR := strconv.ParseInt(hex[0:2], 16, 64)
	g, errG := strconv.ParseInt(hex[2:4], 16, 64)
	b, errB := strconv.ParseInt(hex[4:6], 16, 64)
	if errR != nil || errG != nil || errB != nil {
		return -1, -1, -1
	}
	return r, g, b
}

func clampByte(v int64) int64 {
	return max(0, min(255, v))
}

// rgbToHex converts RGB values to hex color string, clamping each channel.
func rgbToHex(r, g, b int64) string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b))
}

var (
	rgbaPattern = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([0-9.]+)\s*)?\)$`)
	hexPattern  = regexp.MustCompile(`#[0-9A-Fa-f]{6}`)
)

// RGBA is a parsed CSS color with straight alpha.
type RGBA struct {
	R, G, B int64
	A       float64
}

// ParseCSSColor reads "#rrggbb", "rgb(r,g,b)" or "rgba(r,g,b,a)".
func ParseCSSColor(css string) (RGBA, bool) {
	css = strings.TrimSpace(css)
	if r, g, b := hexToRGB(css); r >= 0 && strings.HasPrefix(css, "#") {
		return RGBA{R: r, G: g, B: b, A: 1}, true
	}
	m := rgbaPattern.FindStringSubmatch(css)
	if m == nil {
		return RGBA{}, false
	}
	var c RGBA
	c.R, _ = strconv.ParseInt(m[1], 10, 64)
	c.G, _ = strconv.ParseInt(m[2], 10, 64)
	c.B, _ = strconv.ParseInt(m[3], 10, 64)
	c.A = 1
	if m[4] != "" {
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return RGBA{}, false
		}
		c.A = math.Max(0, math.Min(1, a))
	}
	return c, true
}

// Blend composites a CSS color over an opaque hex base and returns the hex result.
// Unparseable colors return base.
func Blend(css, base string) string {
	c, ok := ParseCSSColor(css)
	if !ok {
		return base
	}
	br, bg, bb := hexToRGB(base)
	if br < 0 {
		return rgbToHex(c.R, c.G, c.B)
	}
	mix := func(fg, bg int64) int64 {
		return int64(math.Round(float64(fg)*c.A + float64(bg)*(1-c.A)))
	}
	return rgbToHex(mix(c.R, br), mix(c.G, bg), mix(c.B, bb))
}

// GradientStops returns the hex stops of a CSS gradient, or the color itself when the
// value is a plain hex color.
func GradientStops(css string) []string {
	return hexPattern.FindAllString(css, -1)
}

// GradientBase returns the middle stop of a gradient, used as the flat terminal
// background.
func GradientBase(css string) string {
	stops := GradientStops(css)
	if len(stops) == 0 {
		return "#000000"
	}
	return stops[len(stops)/2]
}
