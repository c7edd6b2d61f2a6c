package events

const (
	// KindModeratorStarted identifies the start of a moderator turn.
	KindModeratorStarted Kind = "moderator.started"
	// KindModeratorCompleted identifies the completion of a moderator turn.
	KindModeratorCompleted Kind = "moderator.completed"
)

// ModeratorSpeakerID addresses text chunks to the moderator channel.
const ModeratorSpeakerID = "__moderator__"

// ModeratorStarted marks the start of a moderator turn.
type ModeratorStarted struct {
	Base
	Phase string
}

// NewModeratorStarted creates a moderator started event.
func NewModeratorStarted(phase string) ModeratorStarted {
	return ModeratorStarted{Base: NewBase(KindModeratorStarted), Phase: phase}
}

// ModeratorCompleted marks the completion of a moderator turn.
type ModeratorCompleted struct {
	Base
	Raw  string
	HTML string
}

// NewModeratorCompleted creates a moderator completed event.
func NewModeratorCompleted(raw, html string) ModeratorCompleted {
	return ModeratorCompleted{Base: NewBase(KindModeratorCompleted), Raw: raw, HTML: html}
}
