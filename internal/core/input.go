package core

// Action represents a semantic input action, abstracted from physical key presses
// and mouse events.
type Action int

const (
	ActionNone       Action = iota
	ActionPress             // Mouse press or first key nudge - touch began
	ActionRelease           // Mouse release, Space, Enter - touch ended
	ActionRestart           // R key - new game after game over
	ActionBack              // B, Escape - go back to menu
	ActionQuit              // Q, Ctrl+C - exit game/session
	ActionScreenshot        // Ctrl+S - save screen to a text file
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionPress:
		return "Press"
	case ActionRelease:
		return "Release"
	case ActionRestart:
		return "Restart"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	case ActionScreenshot:
		return "Screenshot"
	default:
		return "Unknown"
	}
}

// InputFrame collects the input received between two simulation ticks.
// Drag deltas accumulate into Move; discrete actions are flags.
type InputFrame struct {
	Actions map[Action]bool
	Move    Point
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// AddMove accumulates a drag delta.
func (f *InputFrame) AddMove(delta Point) {
	f.Move = f.Move.Add(delta)
}

// HasMove returns true if any drag delta was received this frame.
func (f InputFrame) HasMove() bool {
	return f.Move != (Point{})
}

// Clear resets all input for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
	f.Move = Point{}
}
