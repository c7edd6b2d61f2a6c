package events

const (
	// KindTextChunk identifies a streamed piece of turn text.
	KindTextChunk Kind = "text.chunk"
	// KindAnswerCompleted identifies the completion of a single answer.
	KindAnswerCompleted Kind = "answer.completed"
)

// TextChunk carries a streamed piece of text for one speaker channel.
type TextChunk struct {
	Base
	Text string
	// SpeakerID is ModeratorSpeakerID for the moderator channel, a
	// participant ID or empty otherwise.
	SpeakerID string
}

// NewTextChunk creates a text chunk event.
func NewTextChunk(text, speakerID string) TextChunk {
	return TextChunk{Base: NewBase(KindTextChunk), Text: text, SpeakerID: speakerID}
}

// IsModerator reports whether the chunk is addressed to the moderator.
func (e TextChunk) IsModerator() bool {
	return e.SpeakerID == ModeratorSpeakerID
}

// AnswerCompleted marks the completion of a single-answer response.
type AnswerCompleted struct {
	Base
	Raw  string
	HTML string
}

// NewAnswerCompleted creates an answer completed event.
func NewAnswerCompleted(raw, html string) AnswerCompleted {
	return AnswerCompleted{Base: NewBase(KindAnswerCompleted), Raw: raw, HTML: html}
}
