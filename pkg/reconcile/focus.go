package reconcile

import "github.com/b/vertical-tabs/pkg/browser"

// MoveFocus moves keyboard focus by delta over the visible unpinned tabs, clamped to
// the ends of the list. It returns the focused tab.
func (r *Reconciler) MoveFocus(delta int) (browser.TabID, bool) {
	if len(r.visible) == 0 {
		r.focus = -1
		return 0, false
	}
	r.focus = max(0, min(len(r.visible)-1, r.focus+delta))
	return r.visible[r.focus], true
}

// FocusIndex returns the focus position, or -1 when nothing is focused.
func (r *Reconciler) FocusIndex() int {
	return r.focus
}

// Focused returns the focused tab.
func (r *Reconciler) Focused() (browser.TabID, bool) {
	if r.focus < 0 || r.focus >= len(r.visible) {
		return 0, false
	}
	return r.visible[r.focus], true
}

// ClearFocus drops keyboard focus.
func (r *Reconciler) ClearFocus() {
	r.focus = -1
}

// Visible returns the focusable tab sequence.
func (r *Reconciler) Visible() []browser.TabID {
	return r.visible
}
