package browser

// Event is a notification from a directory service. The concrete types below are the
// only implementations.
type Event interface {
	event()
}

type TabCreated struct {
	Tab Tab
}

type TabRemoved struct {
	TabID    TabID
	WindowID WindowID
}

// TabUpdated carries both the partial change and the full tab after the change.
type TabUpdated struct {
	TabID  TabID
	Change TabChange
	Tab    Tab
}

type TabActivated struct {
	TabID    TabID
	WindowID WindowID
}

type TabMoved struct {
	TabID     TabID
	WindowID  WindowID
	FromIndex int
	ToIndex   int
}

type TabDetached struct {
	TabID       TabID
	OldWindowID WindowID
}

type TabAttached struct {
	TabID       TabID
	NewWindowID WindowID
}

type GroupCreated struct{ Group Group }
type GroupUpdated struct{ Group Group }
type GroupRemoved struct{ Group Group }
type GroupMoved struct{ Group Group }

// WindowReset reports that events for a window may have been lost, for example while a
// source reconnected. The window has to be queried again.
type WindowReset struct {
	WindowID WindowID
}

// IconFailed reports that the host could not load an icon source.
type IconFailed struct {
	Src string
}

func (TabCreated) event()   {}
func (TabRemoved) event()   {}
func (TabUpdated) event()   {}
func (TabActivated) event() {}
func (TabMoved) event()     {}
func (TabDetached) event()  {}
func (TabAttached) event()  {}
func (GroupCreated) event() {}
func (GroupUpdated) event() {}
func (GroupRemoved) event() {}
func (GroupMoved) event()   {}
func (WindowReset) event()  {}
func (IconFailed) event()   {}
