package game

// Phase represents the lifecycle stage of a room.
//
// Rooms move strictly forward: Created, Waiting, InProgress, Revealing,
// then Completed. Canceled is reachable from any non-terminal phase via
// the administrative cancel path. No transition skips a stage and the
// terminal phases admit no further mutation.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseWaiting
	PhaseInProgress
	PhaseRevealing
	PhaseCompleted
	PhaseCanceled
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return [...]string{"created", "waiting", "in_progress", "revealing", "completed", "canceled"}[p]
}

// Terminal returns true if no further transitions are possible
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseCanceled
}

// Joinable returns true if the room still accepts players
func (p Phase) Joinable() bool {
	return p == PhaseCreated || p == PhaseWaiting
}
