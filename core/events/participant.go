package events

const (
	// KindParticipantStarted identifies the start of a participant turn.
	KindParticipantStarted Kind = "participant.started"
	// KindParticipantInterrupted identifies a participant being cut off.
	KindParticipantInterrupted Kind = "participant.interrupted"
	// KindParticipantCompleted identifies the completion of a participant turn.
	KindParticipantCompleted Kind = "participant.completed"
)

// ParticipantStarted marks the start of a participant turn.
type ParticipantStarted struct {
	Base
	ParticipantID string
	// Fallback is the identity sent inline with the frame. It is only meant to
	// be used when the participant cannot be resolved otherwise.
	Fallback Identity
}

// NewParticipantStarted creates a participant started event.
func NewParticipantStarted(participantID string, fallback Identity) ParticipantStarted {
	return ParticipantStarted{
		Base:          NewBase(KindParticipantStarted),
		ParticipantID: participantID,
		Fallback:      fallback,
	}
}

// ParticipantInterrupted marks the open participant turn as interrupted.
type ParticipantInterrupted struct{ Base }

// NewParticipantInterrupted creates a participant interrupted event.
func NewParticipantInterrupted() ParticipantInterrupted {
	return ParticipantInterrupted{Base: NewBase(KindParticipantInterrupted)}
}

// ParticipantCompleted marks the completion of a participant turn.
type ParticipantCompleted struct {
	Base
	ParticipantID string
	Name          string
	Raw           string
	HTML          string
}

// NewParticipantCompleted creates a participant completed event.
func NewParticipantCompleted(participantID, name, raw, html string) ParticipantCompleted {
	return ParticipantCompleted{
		Base:          NewBase(KindParticipantCompleted),
		ParticipantID: participantID,
		Name:          name,
		Raw:           raw,
		HTML:          html,
	}
}
