package tmux

import (
	"errors"
	"strings"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	got := SplitArgs("%3", SplitOptions{Width: 40, Left: true, Command: "vtabs panel"})
	want := "split-window -d -h -f -t %3 -b -l 40 vtabs panel"
	if strings.Join(got, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(got, " "))
	}

	got = SplitArgs("", SplitOptions{Command: "vtabs panel"})
	if strings.Join(got, " ") != "split-window -d -h -f vtabs panel" {
		t.Fatalf("unexpected args for right side without width: %v", got)
	}
}

func TestParsePanes(t *testing.T) {
	out := "%1\x1f0\x1f1\x1fzsh\x1f\n%2\x1f1\x1f0\x1fvtabs\x1fvtabs panel\n%3\x1fx\x1f0\x1fzsh\x1f\n"
	panes := ParsePanes(out)
	if len(panes) != 2 {
		t.Fatalf("expected 2 panes, got %d", len(panes))
	}
	if !panes[0].Active || panes[0].IsPanel() {
		t.Fatalf("expected first pane active shell, got %+v", panes[0])
	}
	if !panes[1].IsPanel() {
		t.Fatalf("expected second pane to be the panel, got %+v", panes[1])
	}
}

type recorder struct {
	calls [][]string
	panes string
	fail  bool
}

func (r *recorder) run(args ...string) ([]byte, error) {
	r.calls = append(r.calls, args)
	switch args[0] {
	case "list-panes":
		return []byte(r.panes), nil
	case "split-window":
		if r.fail {
			return nil, errors.New("no space for new pane")
		}
		return []byte("%9\n"), nil
	}
	return nil, nil
}

func TestOpenSidePaneSplitsActivePane(t *testing.T) {
	r := &recorder{panes: "%1\x1f0\x1f0\x1fzsh\x1f\n%4\x1f1\x1f1\x1fvim\x1f\n"}
	id, created, err := NewClientWithRunner(r.run).OpenSidePane(SplitOptions{Width: 30, Left: true, Command: "vtabs panel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "%9" || !created {
		t.Fatalf("expected new pane %%9, got %q created=%v", id, created)
	}
	split := strings.Join(r.calls[1], " ")
	if split != "split-window -P -F #{pane_id} -d -h -f -t %4 -b -l 30 vtabs panel" {
		t.Fatalf("unexpected split command %q", split)
	}
}

func TestOpenSidePaneReusesExistingPanel(t *testing.T) {
	r := &recorder{panes: "%1\x1f0\x1f1\x1fzsh\x1f\n%2\x1f1\x1f0\x1fzsh\x1fvtabs panel --source demo\n"}
	id, created, err := NewClientWithRunner(r.run).OpenSidePane(SplitOptions{Command: "vtabs panel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "%2" || created {
		t.Fatalf("expected existing pane %%2, got %q created=%v", id, created)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected only list-panes, got %v", r.calls)
	}
}

func TestOpenSidePaneSplitFailure(t *testing.T) {
	r := &recorder{panes: "%1\x1f0\x1f1\x1fzsh\x1f\n", fail: true}
	if _, _, err := NewClientWithRunner(r.run).OpenSidePane(SplitOptions{Command: "vtabs panel"}); err == nil {
		t.Fatal("expected split failure to be returned")
	}
}

func TestInSession(t *testing.T) {
	t.Setenv("TMUX", "")
	if InSession() {
		t.Fatal("expected no session without TMUX")
	}
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")
	if !InSession() {
		t.Fatal("expected session with TMUX set")
	}
}

func TestResizePane(t *testing.T) {
	r := &recorder{}
	c := NewClientWithRunner(r.run)
	if err := c.ResizePane("%2", 32); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if err := c.ResizePane("%2", 0); err != nil {
		t.Fatalf("zero width should be a no-op: %v", err)
	}
	if len(r.calls) != 1 || strings.Join(r.calls[0], " ") != "resize-pane -t %2 -x 32" {
		t.Fatalf("unexpected calls %v", r.calls)
	}
}
