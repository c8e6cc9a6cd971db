package grouping

import (
	"testing"

	"github.com/b/vertical-tabs/pkg/browser"
)

func TestGroupTabs(t *testing.T) {
	tabs := []browser.Tab{
		{ID: 10, Index: 0, Group: browser.InGroup(2)},
		{ID: 11, Index: 1},
		{ID: 12, Index: 2, Group: browser.InGroup(1)},
		{ID: 13, Index: 3, Group: browser.InGroup(2)},
		{ID: 14, Index: 4},
	}

	result := GroupTabs(tabs)

	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Groups))
	}
	if result.Groups[0].ID != 2 || result.Groups[1].ID != 1 {
		t.Fatalf("expected groups in first-appearance order [2 1], got [%d %d]", result.Groups[0].ID, result.Groups[1].ID)
	}
	if len(result.Groups[0].Tabs) != 2 || result.Groups[0].Tabs[1].ID != 13 {
		t.Fatalf("expected group 2 to hold tabs 10 and 13, got %+v", result.Groups[0].Tabs)
	}
	if len(result.Ungrouped) != 2 {
		t.Fatalf("expected 2 ungrouped tabs, got %d", len(result.Ungrouped))
	}
	if result.Len() != 5 {
		t.Fatalf("expected 5 tabs in partition, got %d", result.Len())
	}
	if !result.ShowUngroupedLabel() {
		t.Fatal("expected ungrouped label when groups exist")
	}
}

func TestGroupTabsWithoutGroups(t *testing.T) {
	result := GroupTabs([]browser.Tab{{ID: 1}, {ID: 2, Index: 1}})

	if len(result.Groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(result.Groups))
	}
	if result.ShowUngroupedLabel() {
		t.Fatal("expected no ungrouped label without groups")
	}
}

func TestGroupTabsGroupZero(t *testing.T) {
	result := GroupTabs([]browser.Tab{{ID: 1, Group: browser.InGroup(0)}})

	if len(result.Groups) != 1 || len(result.Ungrouped) != 0 {
		t.Fatalf("expected group id 0 to be a real group, got %+v", result)
	}
}

func TestShadeColorByIndex(t *testing.T) {
	if got := ShadeColorByIndex("#ffffff", 0); got != "#ffffff" {
		t.Fatalf("expected #ffffff, got %s", got)
	}
	if got := ShadeColorByIndex("#ffffff", 10); got != "#7f7f7f" {
		t.Fatalf("expected shade capped at 50%%, got %s", got)
	}
	if got := ShadeColorByIndex("nope", 2); got != "nope" {
		t.Fatalf("expected invalid color returned unchanged, got %s", got)
	}
}

func TestLightenColor(t *testing.T) {
	if got := LightenColor("#000000", 1); got != "#ffffff" {
		t.Fatalf("expected #ffffff, got %s", got)
	}
	if got := LightenColor("#000000", 0.5); got != "#7f7f7f" {
		t.Fatalf("expected #7f7f7f, got %s", got)
	}
}

func TestHeaderColors(t *testing.T) {
	bg, fg := HeaderColors(browser.ColorBlue, false, true)
	if bg != "#1A73E8" || fg != "#FFFFFF" {
		t.Fatalf("expected raw group color in dark mode, got %s on %s", fg, bg)
	}

	collapsed, _ := HeaderColors(browser.ColorBlue, true, true)
	if collapsed == bg {
		t.Fatal("expected collapsed header to be shaded")
	}

	light, lightFg := HeaderColors(browser.ColorBlue, false, false)
	if light == bg || lightFg == "#FFFFFF" {
		t.Fatalf("expected light variant, got %s on %s", lightFg, light)
	}
}
