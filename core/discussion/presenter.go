package discussion

import (
	"context"
	"time"

	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/core/transcript"
)

// SpeakerKind tells a presenter what kind of turn a view is opened for.
type SpeakerKind string

const (
	SpeakerModerator   SpeakerKind = "moderator"
	SpeakerParticipant SpeakerKind = "participant"
	SpeakerSynthesis   SpeakerKind = "synthesis"
)

// SpeakerView renders one streamed turn.
type SpeakerView interface {
	Append(chunk string)
	// Finish renders the final form of the turn. No further calls follow.
	Finish(html string)
	// Interrupt marks the turn as cut off by the moderator. The turn may still
	// complete afterwards.
	Interrupt()
}

// Presenter is the user-facing side of a discussion.
//
// All methods except RequestInput and RequestIntakeAnswers are called from
// the goroutine running [Coordinator.Run] and should return quickly.
type Presenter interface {
	RenderNarrator(text string)
	RenderUser(text string)
	RenderSystem(text string)
	OpenSpeaker(identity events.Identity, kind SpeakerKind, phase string) SpeakerView
	RenderNomination(nomination events.Nomination)

	// RequestInput blocks until the user answers a question of the moderator.
	RequestInput(ctx context.Context) (string, error)
	// RequestIntakeAnswers blocks until the user answered the intake
	// questions. Answers are matched to questions by index, missing answers
	// are treated as empty.
	RequestIntakeAnswers(ctx context.Context, questions []string) ([]string, error)

	// ShowCancel offers the user a way to stop the discussion. The returned
	// function removes the affordance again.
	ShowCancel(cancel func()) (remove func())
	DiscussionComplete(handoff Handoff)
}

// Handoff is what a finished discussion passes on to audio and journal
// collaborators.
type Handoff struct {
	SessionID string
	Mode      Mode
	Question  string
	Reason    Reason
	Duration  time.Duration

	// Transcript is the finalized transcript.
	Transcript string
	Segments   []transcript.Segment
}

// Directory resolves participant identities.
type Directory interface {
	Lookup(participantID string) (events.Identity, bool)
}

// Roster is a static Directory.
type Roster map[string]events.Identity

func (r Roster) Lookup(participantID string) (events.Identity, bool) {
	identity, ok := r[participantID]
	return identity, ok
}

func NewRoster(identities ...events.Identity) Roster {
	roster := make(Roster, len(identities))
	for _, identity := range identities {
		roster[identity.ID] = identity
	}
	return roster
}
