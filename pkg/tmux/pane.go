// Package tmux opens the tab panel as a side pane of the current tmux window.
package tmux

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// PaneCommand names the panel process so an existing panel pane can be recognized.
const PaneCommand = "vtabs"

var ErrNotInSession = errors.New("not inside a tmux session")

// ansiEscapeRegex matches ANSI escape sequences
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|\x1b\].*?(?:\x07|\x1b\\)`)

func stripANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

type Pane struct {
	ID           string
	Index        int
	Active       bool
	Command      string // Current command running in pane
	StartCommand string
}

// IsPanel reports whether the pane runs the panel. After split-window the current
// command can still be the shell, so the start command is checked too.
func (p Pane) IsPanel() bool {
	return p.Command == PaneCommand || strings.Contains(p.StartCommand, PaneCommand+" panel")
}

// InSession reports whether the process runs inside tmux.
func InSession() bool {
	return os.Getenv("TMUX") != ""
}

// Runner executes a tmux command and returns its stdout.
type Runner func(args ...string) ([]byte, error)

func execRunner(args ...string) ([]byte, error) {
	return exec.Command("tmux", args...).Output()
}

// SplitOptions places the panel pane.
type SplitOptions struct {
	Width int
	Left  bool
	// Command is the shell command the pane runs.
	Command string
}

// SplitArgs builds the split-window arguments for a full-height side pane that does not
// take focus.
func SplitArgs(target string, opts SplitOptions) []string {
	args := []string{"split-window", "-d", "-h", "-f"}
	if target != "" {
		args = append(args, "-t", target)
	}
	if opts.Left {
		args = append(args, "-b")
	}
	if opts.Width > 0 {
		args = append(args, "-l", strconv.Itoa(opts.Width))
	}
	return append(args, opts.Command)
}

// ParsePanes reads list-panes output produced with the format in ListPanes.
func ParsePanes(out string) []Pane {
	var panes []Pane
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x1f")
		if len(parts) < 5 {
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		panes = append(panes, Pane{
			ID:           parts[0],
			Index:        index,
			Active:       parts[2] == "1",
			Command:      stripANSI(parts[3]),
			StartCommand: stripANSI(parts[4]),
		})
	}
	return panes
}

// Client drives tmux through a Runner.
type Client struct {
	run Runner
}

// NewClient returns a client running the tmux binary.
func NewClient() *Client {
	return &Client{run: execRunner}
}

// NewClientWithRunner returns a client that sends commands to run.
func NewClientWithRunner(run Runner) *Client {
	return &Client{run: run}
}

// ListPanes returns the panes of the current window.
func (c *Client) ListPanes() ([]Pane, error) {
	out, err := c.run("list-panes", "-F",
		"#{pane_id}\x1f#{pane_index}\x1f#{pane_active}\x1f#{pane_current_command}\x1f#{pane_start_command}")
	if err != nil {
		return nil, fmt.Errorf("tmux list-panes failed: %w", err)
	}
	return ParsePanes(string(out)), nil
}

// OpenSidePane splits a panel pane into the current window unless one is already there.
// It returns the pane id and whether a new pane was created.
func (c *Client) OpenSidePane(opts SplitOptions) (string, bool, error) {
	panes, err := c.ListPanes()
	if err != nil {
		return "", false, err
	}
	target := ""
	for _, p := range panes {
		if p.IsPanel() {
			return p.ID, false, nil
		}
		if p.Active {
			target = p.ID
		}
	}
	out, err := c.run(insertPrint(SplitArgs(target, opts))...)
	if err != nil {
		return "", false, fmt.Errorf("tmux split-window failed: %w", err)
	}
	return strings.TrimSpace(string(out)), true, nil
}

// insertPrint asks split-window to print the new pane id.
func insertPrint(args []string) []string {
	return append([]string{args[0], "-P", "-F", "#{pane_id}"}, args[1:]...)
}

// ResizePane sets the width of pane id.
func (c *Client) ResizePane(id string, width int) error {
	if width <= 0 {
		return nil
	}
	if _, err := c.run("resize-pane", "-t", id, "-x", strconv.Itoa(width)); err != nil {
		return fmt.Errorf("tmux resize-pane failed: %w", err)
	}
	return nil
}

// CurrentPane is the pane id tmux gave this process, empty outside tmux.
func CurrentPane() string {
	return os.Getenv("TMUX_PANE")
}
