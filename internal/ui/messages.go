package ui

// View represents the current active view
type View int

const (
	ViewList View = iota
	ViewProgress
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewList:
		return "List"
	case ViewProgress:
		return "Progress"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// LoadedMsg reports the outcome of loading the source and persisted state
type LoadedMsg struct {
	Err error
}

// SourceChangedMsg is sent when the watched source file settles after a change
type SourceChangedMsg struct{}

// watchErrMsg carries an error from the source watcher
type watchErrMsg struct {
	err error
}
