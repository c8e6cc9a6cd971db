package browser

import (
	"context"
	"math/rand/v2"
	"time"
)

// NewDemo returns a Memory directory filled with a believable window of tabs, for
// trying the panel without a browser.
func NewDemo() *Memory {
	m := NewMemory(1)
	m.Seed([]Tab{
		{ID: 1, Index: 0, Title: "Inbox (3)", URL: "https://mail.example.com/", Pinned: true},
		{ID: 2, Index: 1, Title: "Calendar", URL: "https://calendar.example.com/", Pinned: true},
		{ID: 3, Index: 2, Title: "golang/go: The Go programming language", URL: "https://github.com/golang/go", Group: InGroup(1)},
		{ID: 4, Index: 3, Title: "Effective Go", URL: "https://go.dev/doc/effective_go", Group: InGroup(1), Active: true},
		{ID: 5, Index: 4, Title: "bubbletea package", URL: "https://pkg.go.dev/github.com/charmbracelet/bubbletea", Group: InGroup(1)},
		{ID: 6, Index: 5, Title: "Weekly planning", URL: "https://docs.example.com/d/planning", Group: InGroup(2)},
		{ID: 7, Index: 6, Title: "Lo-fi beats", URL: "https://music.example.com/live", Audible: true},
		{ID: 8, Index: 7, Title: "", URL: "chrome://newtab/"},
	}, []Group{
		{ID: 1, Title: "Go", Color: ColorCyan},
		{ID: 2, Title: "Work", Color: ColorOrange},
	})
	return m
}

// RunActivity flips loading and audio state on random tabs until ctx is done, so the
// demo shows in-place updates.
func (m *Memory) RunActivity(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		win := m.window(m.current)
		var t Tab
		if len(win) > 0 {
			t = *win[rand.IntN(len(win))]
		}
		m.mu.Unlock()
		if t.ID == 0 {
			continue
		}

		switch rand.IntN(3) {
		case 0:
			loading := StatusLoading
			m.SetTab(t.ID, TabChange{Status: &loading})
			complete := StatusComplete
			time.AfterFunc(every/2, func() { m.SetTab(t.ID, TabChange{Status: &complete}) })
		case 1:
			m.SetTab(t.ID, TabChange{Audible: Bool(!t.Audible)})
		default:
			m.SetTab(t.ID, TabChange{Title: String(t.Title)})
		}
	}
}
