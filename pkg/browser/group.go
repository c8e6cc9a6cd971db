package browser

// Color is a tab group color from the browser's fixed palette.
type Color string

const (
	ColorGrey   Color = "grey"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorPurple Color = "purple"
	ColorCyan   Color = "cyan"
	ColorOrange Color = "orange"
)

// GroupColors maps each palette color to its display hex value.
var GroupColors = map[Color]string{
	ColorGrey:   "#5F6368",
	ColorBlue:   "#1A73E8",
	ColorRed:    "#D93025",
	ColorYellow: "#F9AB00",
	ColorGreen:  "#188038",
	ColorPink:   "#D01884",
	ColorPurple: "#A142F4",
	ColorCyan:   "#007B83",
	ColorOrange: "#FA903E",
}

// Hex returns the display color, grey for anything outside the palette.
func (c Color) Hex() string {
	if hex, ok := GroupColors[c]; ok {
		return hex
	}
	return GroupColors[ColorGrey]
}

// Group is a tab group in a window. Collapse state is not part of it: the panel keeps
// its own collapsed set.
type Group struct {
	ID       GroupID  `json:"id"`
	WindowID WindowID `json:"windowId"`
	Title    string   `json:"title,omitempty"`
	Color    Color    `json:"color"`
}

// PlaceholderGroup stands in for a group a tab references but the cache has not seen.
func PlaceholderGroup(id GroupID) Group {
	return Group{ID: id, Color: ColorGrey}
}
