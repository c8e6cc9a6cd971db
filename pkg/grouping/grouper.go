package grouping

import (
	"fmt"
	"strconv"

	"github.com/b/vertical-tabs/pkg/browser"
)

// GroupedTabs is one group's run of tabs, ordered by index.
type GroupedTabs struct {
	ID   browser.GroupID
	Tabs []browser.Tab
}

// Partition splits an unpinned tab list into groups and the ungrouped remainder.
type Partition struct {
	Groups    []GroupedTabs
	Ungrouped []browser.Tab
}

// ShowUngroupedLabel reports whether the ungrouped section gets its own label. It only
// does when at least one group is shown above it.
func (p Partition) ShowUngroupedLabel() bool {
	return len(p.Groups) > 0 && len(p.Ungrouped) > 0
}

// Len returns the number of tabs in the partition.
func (p Partition) Len() int {
	n := len(p.Ungrouped)
	for _, g := range p.Groups {
		n += len(g.Tabs)
	}
	return n
}

// GroupTabs partitions tabs, which must already be sorted by index. Groups come out in
// order of their lowest-index tab.
func GroupTabs(tabs []browser.Tab) Partition {
	var part Partition
	pos := make(map[browser.GroupID]int)

	for _, tab := range tabs {
		id, ok := tab.Group.ID()
		if !ok {
			part.Ungrouped = append(part.Ungrouped, tab)
			continue
		}
		i, seen := pos[id]
		if !seen {
			i = len(part.Groups)
			pos[id] = i
			part.Groups = append(part.Groups, GroupedTabs{ID: id})
		}
		part.Groups[i].Tabs = append(part.Groups[i].Tabs, tab)
	}

	return part
}

// HeaderColors returns the background and foreground for a group header. Collapsed
// headers are shaded darker; light mode lightens the group color.
func HeaderColors(color browser.Color, collapsed, dark bool) (bg, fg string) {
	bg = color.Hex()
	fg = "#FFFFFF"
	if !dark {
		bg = LightenColor(bg, 0.55)
		fg = ShadeColorByIndex(color.Hex(), 5)
	}
	if collapsed {
		bg = ShadeColorByIndex(bg, 2)
	}
	return bg, fg
}

func parseHex(color string) (r, g, b int64, ok bool) {
	hex := color
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}

	r, errR := strconv.ParseInt(hex[0:2], 16, 64)
	g, errG := strconv.ParseInt(hex[2:4], 16, 64)
	b, errB := strconv.ParseInt(hex[4:6], 16, 64)
	if errR != nil || errG != nil || errB != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}

// ShadeColorByIndex darkens a hex color by 10% per step, up to 50%.
func ShadeColorByIndex(baseColor string, index int) string {
	r, g, b, ok := parseHex(baseColor)
	if !ok {
		return baseColor
	}

	shadeAmount := float64(index) * 0.1
	if shadeAmount > 0.5 {
		shadeAmount = 0.5
	}

	nr := int64(float64(r) * (1.0 - shadeAmount))
	ng := int64(float64(g) * (1.0 - shadeAmount))
	nb := int64(float64(b) * (1.0 - shadeAmount))

	return fmt.Sprintf("#%02x%02x%02x", nr, ng, nb)
}

// LightenColor lightens a hex color by the given amount (0.0 to 1.0)
func LightenColor(baseColor string, amount float64) string {
	r, g, b, ok := parseHex(baseColor)
	if !ok {
		return baseColor
	}

	// Lighten by moving towards white (255)
	nr := min(r+int64(float64(255-r)*amount), 255)
	ng := min(g+int64(float64(255-g)*amount), 255)
	nb := min(b+int64(float64(255-b)*amount), 255)

	return fmt.Sprintf("#%02x%02x%02x", nr, ng, nb)
}
