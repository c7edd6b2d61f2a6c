package discussion

import (
	"context"

	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/core/transcript"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type handler func(r *router, s *Session, event events.Event) []effect

type router struct {
	presenter Presenter
	directory Directory
	// enrich starts enrichment for a nominee, nil when enrichment is off.
	enrich func(ctx context.Context, nomination events.Nomination) error
	// cancel is offered to the user once the discussion may be stopped.
	cancel func()
}

var moderatorIdentity = events.Identity{ID: events.ModeratorSpeakerID, Name: "Moderator"}
var synthesisIdentity = events.Identity{Name: "Synthesis"}

var handlers = map[events.Kind]handler{
	events.KindModeratorStarted:       handleModeratorStarted,
	events.KindParticipantStarted:     handleParticipantStarted,
	events.KindSynthesisStarted:       handleSynthesisStarted,
	events.KindTextChunk:              handleTextChunk,
	events.KindParticipantInterrupted: handleParticipantInterrupted,
	events.KindModeratorCompleted:     handleModeratorCompleted,
	events.KindParticipantCompleted:   handleParticipantCompleted,
	events.KindSynthesisCompleted:     handleSynthesisCompleted,
	events.KindAnswerCompleted:        handleAnswerCompleted,
	events.KindNomination:             handleNomination,
	events.KindInputRequested:         handleInputRequested,
	events.KindDebateCompleted:        handleDebateCompleted,
	events.KindSessionCompleted:       handleSessionCompleted,
}

// dispatch applies event to s according to the table of the session's mode.
// Kinds the mode does not accept are ignored.
func (r *router) dispatch(ctx context.Context, s *Session, event events.Event) []effect {
	mode := s.Mode()
	if !modes[mode].accepts(event.Kind()) {
		logger.DebugContext(ctx, "ignored event", "kind", event.Kind(), "mode", mode)
		return nil
	}

	handle, ok := handlers[event.Kind()]
	if !ok {
		return nil
	}
	eventCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event.kind", string(event.Kind()))))
	return handle(r, s, event)
}

func (r *router) open(kind SpeakerKind, identity events.Identity, phase string) *speakerHandle {
	return &speakerHandle{
		kind:     kind,
		identity: identity,
		view:     r.presenter.OpenSpeaker(identity, kind, phase),
	}
}

func handleModeratorStarted(r *router, s *Session, event events.Event) []effect {
	started := event.(events.ModeratorStarted)
	// The moderator takes the floor, whatever the participant did not finish
	// is dropped.
	s.participant = nil
	s.moderator = r.open(SpeakerModerator, moderatorIdentity, started.Phase)
	return nil
}

func handleParticipantStarted(r *router, s *Session, event events.Event) []effect {
	started := event.(events.ParticipantStarted)
	identity := s.resolve(r.directory, started.ParticipantID, started.Fallback)
	s.participant = r.open(SpeakerParticipant, identity, "")
	return nil
}

func handleSynthesisStarted(r *router, s *Session, _ events.Event) []effect {
	s.participant = r.open(SpeakerSynthesis, synthesisIdentity, "")
	return nil
}

func handleTextChunk(_ *router, s *Session, event events.Event) []effect {
	chunk := event.(events.TextChunk)
	handle := s.participant
	if chunk.IsModerator() {
		handle = s.moderator
	}
	if handle == nil {
		return nil
	}
	handle.text.WriteString(chunk.Text)
	handle.view.Append(chunk.Text)
	return nil
}

func handleParticipantInterrupted(_ *router, s *Session, _ events.Event) []effect {
	if s.participant != nil {
		s.participant.view.Interrupt()
	}
	return nil
}

func handleModeratorCompleted(_ *router, s *Session, event events.Event) []effect {
	completed := event.(events.ModeratorCompleted)
	if s.moderator == nil {
		return nil
	}
	s.moderator.view.Finish(completed.HTML)
	s.moderator = nil

	s.record(HistoryEntry{Role: RoleModerator, Text: completed.Raw}, transcript.Narrator(completed.Raw))
	return nil
}

func handleParticipantCompleted(r *router, s *Session, event events.Event) []effect {
	completed := event.(events.ParticipantCompleted)
	handle := s.participant
	if handle == nil || handle.kind != SpeakerParticipant {
		return nil
	}
	handle.view.Finish(completed.HTML)
	s.participant = nil

	participantID := completed.ParticipantID
	if participantID == "" {
		participantID = handle.identity.ID
	}
	name := completed.Name
	if name == "" {
		name = handle.identity.Name
	}
	s.record(
		HistoryEntry{Role: RoleParticipant, Text: completed.Raw, ParticipantID: participantID, Name: name},
		transcript.Participant(participantID, name, completed.Raw),
	)

	s.turnsCompleted++
	if s.turnsCompleted == 1 && s.removeCancel == nil && modes[s.Mode()].stoppable && r.cancel != nil {
		s.removeCancel = r.presenter.ShowCancel(r.cancel)
	}
	return nil
}

func handleSynthesisCompleted(_ *router, s *Session, event events.Event) []effect {
	completed := event.(events.SynthesisCompleted)
	if s.participant == nil || s.participant.kind != SpeakerSynthesis {
		return nil
	}
	s.participant.view.Finish(completed.HTML)
	s.participant = nil

	s.transcript.Append(transcript.Narrator(synthesisPrefix + completed.Raw))
	s.intakeQuestions = ParseIntakeQuestions(completed.Raw)
	return nil
}

func handleAnswerCompleted(_ *router, s *Session, event events.Event) []effect {
	completed := event.(events.AnswerCompleted)
	handle := s.participant
	if handle == nil {
		return nil
	}
	handle.view.Finish(completed.HTML)
	s.participant = nil

	s.record(
		HistoryEntry{Role: RoleParticipant, Text: completed.Raw, ParticipantID: handle.identity.ID, Name: handle.identity.Name},
		transcript.Participant(handle.identity.ID, handle.identity.Name, completed.Raw),
	)
	s.turnsCompleted++
	complete(s)
	return nil
}

func handleNomination(r *router, s *Session, event events.Event) []effect {
	nomination := event.(events.Nomination)
	s.nominees[nomination.GuestID] = nomination.Identity()
	s.transcript.Append(transcript.Narrator(nomination.Announcement()))
	r.presenter.RenderNomination(nomination)

	if r.enrich == nil {
		return nil
	}
	enrich := r.enrich
	return []effect{{
		name: "enrich nominee",
		run: func(ctx context.Context) error {
			return enrich(ctx, nomination)
		},
	}}
}

func handleInputRequested(_ *router, s *Session, event events.Event) []effect {
	requested := event.(events.InputRequested)
	if err := s.transition(PhaseAwaitingInput); err != nil {
		logger.Warn("failed to suspend discussion", "error", err)
		return nil
	}
	s.continuation = newContinuationContext(s.history, requested.SpeakersSoFar, requested.TurnsUsed)
	s.pending = pendingAnswer
	return nil
}

func handleDebateCompleted(_ *router, s *Session, _ events.Event) []effect {
	if err := s.transition(PhaseAwaitingInput); err != nil {
		logger.Warn("failed to end intake debate", "error", err)
		return nil
	}
	s.pending = pendingIntake
	return nil
}

func handleSessionCompleted(_ *router, s *Session, _ events.Event) []effect {
	complete(s)
	return nil
}

func complete(s *Session) {
	if err := s.transition(PhaseComplete); err != nil {
		logger.Warn("failed to complete discussion", "error", err)
		return
	}
	if s.removeCancel != nil {
		s.removeCancel()
		s.removeCancel = nil
	}
}
