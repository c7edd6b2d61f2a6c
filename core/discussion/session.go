package discussion

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/core/transcript"
)

// History roles as understood by the continuation endpoints.
const (
	RoleUser        = "user"
	RoleModerator   = "moderator"
	RoleParticipant = "elder"
)

// HistoryEntry is one role-tagged entry of what was said so far.
type HistoryEntry struct {
	Role          string
	Text          string
	ParticipantID string
	Name          string
}

type pendingInput int

const (
	pendingNone pendingInput = iota
	// pendingAnswer waits for an answer to the moderator.
	pendingAnswer
	// pendingIntake waits for answers to the intake questions.
	pendingIntake
)

type speakerHandle struct {
	kind     SpeakerKind
	identity events.Identity
	text     strings.Builder
	view     SpeakerView
}

// Session is the state of one discussion. It is owned by a single
// [Coordinator] and only mutated by its router. Phase and the transcript
// may be read from other goroutines.
type Session struct {
	ID        string
	Question  string
	StartedAt time.Time

	mu           sync.RWMutex
	mode         Mode
	participants []string
	phase        Phase
	reason       Reason

	autoSelected     bool
	modeAutoSelected bool

	moderator   *speakerHandle
	participant *speakerHandle

	nominees     map[string]events.Identity
	history      []HistoryEntry
	transcript   *transcript.Accumulator
	continuation *ContinuationContext
	pending      pendingInput

	followUps       int
	turnsCompleted  int
	intakeQuestions []string
	removeCancel    func()
}

func newSession(question string, mode Mode, participants []string) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Question:     question,
		StartedAt:    time.Now(),
		mode:         mode,
		participants: slices.Clone(participants),
		phase:        PhaseIdle,
		nominees:     map[string]events.Identity{},
		history:      []HistoryEntry{{Role: RoleUser, Text: question}},
		transcript:   transcript.New(),
	}
}

func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

func (s *Session) Reason() Reason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Session) Participants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.participants)
}

func (s *Session) Transcript() *transcript.Accumulator {
	return s.transcript
}

// History returns a copy of the role-tagged history.
func (s *Session) History() []HistoryEntry {
	return slices.Clone(s.history)
}

// Nominees returns a copy of the identities nominated during the session.
func (s *Session) Nominees() map[string]events.Identity {
	return maps.Clone(s.nominees)
}

func (s *Session) FollowUps() int {
	return s.followUps
}

func (s *Session) transition(to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.canTransition(to) {
		return transitionError(s.phase, to)
	}
	s.phase = to
	return nil
}

// abort ends the session. Open speaker handles are dropped without flushing
// their text.
func (s *Session) abort(reason Reason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Terminal() {
		return
	}
	s.phase = PhaseAborted
	s.reason = reason
	s.moderator = nil
	s.participant = nil
}

func (s *Session) setMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

func (s *Session) setParticipants(participants []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants = slices.Clone(participants)
}

func (s *Session) record(entry HistoryEntry, segment transcript.Segment) {
	s.history = append(s.history, entry)
	s.transcript.Append(segment)
}

// resolve finds the identity of a participant: the directory first, then the
// nominations of this session, then the fallback sent with the frame.
func (s *Session) resolve(directory Directory, participantID string, fallback events.Identity) events.Identity {
	if directory != nil {
		if identity, ok := directory.Lookup(participantID); ok {
			return identity
		}
	}
	if identity, ok := s.nominees[participantID]; ok {
		return identity
	}
	if fallback.ID == "" {
		fallback.ID = participantID
	}
	if fallback.Name == "" {
		fallback.Name = participantID
	}
	return fallback
}

func (s *Session) handoff() Handoff {
	return Handoff{
		SessionID:  s.ID,
		Mode:       s.Mode(),
		Question:   s.Question,
		Reason:     s.Reason(),
		Duration:   time.Since(s.StartedAt),
		Transcript: s.transcript.Finalize(),
		Segments:   s.transcript.Segments(),
	}
}
