package reconcile

import "github.com/b/vertical-tabs/pkg/browser"

// DropKind says what a dragged tab is hovering over.
type DropKind int

const (
	DropNone DropKind = iota
	DropOnTab
	DropOnGroup
)

// DropTarget is the element under a dragged tab.
type DropTarget struct {
	Kind    DropKind
	TabID   browser.TabID
	GroupID browser.GroupID
}

// DragSession tracks the one tab being dragged.
type DragSession struct {
	Active bool
	TabID  browser.TabID
	Target DropTarget
}

// BeginDrag starts dragging id, replacing any session in progress. Only rendered tabs
// can be dragged.
func (r *Reconciler) BeginDrag(id browser.TabID) bool {
	if !r.Rendered(id) {
		return false
	}
	r.drag = DragSession{Active: true, TabID: id}
	return true
}

// DragOver records the current drop target. Hovering the dragged tab itself clears it.
func (r *Reconciler) DragOver(target DropTarget) {
	if !r.drag.Active {
		return
	}
	if target.Kind == DropOnTab && target.TabID == r.drag.TabID {
		target = DropTarget{}
	}
	r.drag.Target = target
}

// Drag returns the session in progress.
func (r *Reconciler) Drag() DragSession {
	return r.drag
}

// EndDrag clears the session and returns it as it was at the drop. Drag affordances are
// cleared whether or not the drop does anything.
func (r *Reconciler) EndDrag() DragSession {
	s := r.drag
	r.drag = DragSession{}
	return s
}
