package events

const (
	// KindInputRequested identifies a suspend-for-user-input marker.
	KindInputRequested Kind = "session.input_requested"
	// KindDebateCompleted identifies the end of the intake debate phase.
	KindDebateCompleted Kind = "session.debate_completed"
	// KindSessionCompleted identifies the end of the discussion.
	KindSessionCompleted Kind = "session.completed"
)

// InputRequested suspends the session until the user answers. The state is
// echoed back verbatim when the session is resumed.
type InputRequested struct {
	Base
	SpeakersSoFar []string
	TurnsUsed     int
}

// NewInputRequested creates an input requested event.
func NewInputRequested(speakersSoFar []string, turnsUsed int) InputRequested {
	return InputRequested{Base: NewBase(KindInputRequested), SpeakersSoFar: speakersSoFar, TurnsUsed: turnsUsed}
}

// DebateCompleted marks the end of the intake debate phase.
type DebateCompleted struct{ Base }

// NewDebateCompleted creates a debate completed event.
func NewDebateCompleted() DebateCompleted {
	return DebateCompleted{Base: NewBase(KindDebateCompleted)}
}

// SessionCompleted marks the end of the discussion.
type SessionCompleted struct{ Base }

// NewSessionCompleted creates a session completed event.
func NewSessionCompleted() SessionCompleted {
	return SessionCompleted{Base: NewBase(KindSessionCompleted)}
}
