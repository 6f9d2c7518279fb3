package pipeline

type State int

const (
	StateIdle State = iota
	StateFetching
	StateReady
	StateNotesPending
	StateNotesReady
	StateTestPending
	StateTestReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateNotesPending:
		return "notes-pending"
	case StateNotesReady:
		return "notes-ready"
	case StateTestPending:
		return "test-pending"
	case StateTestReady:
		return "test-ready"
	default:
		return "unknown"
	}
}

// Busy reports whether a command of this session is waiting on an external call.
func (s State) Busy() bool {
	return s == StateFetching || s == StateNotesPending || s == StateTestPending
}
