package discussion

import (
	"errors"
	"testing"
)

func TestPhaseTransitions(t *testing.T) {
	testCases := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{from: PhaseIdle, to: PhaseSelectingParticipants, allowed: true},
		{from: PhaseIdle, to: PhaseResolvingMode, allowed: true},
		{from: PhaseIdle, to: PhaseStreaming, allowed: true},
		{from: PhaseSelectingParticipants, to: PhaseResolvingMode, allowed: true},
		{from: PhaseResolvingMode, to: PhaseStreaming, allowed: true},
		{from: PhaseStreaming, to: PhaseAwaitingInput, allowed: true},
		{from: PhaseAwaitingInput, to: PhaseStreaming, allowed: true},
		{from: PhaseStreaming, to: PhaseComplete, allowed: true},
		{from: PhaseStreaming, to: PhaseAborted, allowed: true},
		{from: PhaseAwaitingInput, to: PhaseAborted, allowed: true},
		{from: PhaseIdle, to: PhaseComplete, allowed: false},
		{from: PhaseIdle, to: PhaseAwaitingInput, allowed: false},
		{from: PhaseAwaitingInput, to: PhaseComplete, allowed: false},
		{from: PhaseComplete, to: PhaseStreaming, allowed: false},
		{from: PhaseAborted, to: PhaseStreaming, allowed: false},
		{from: PhaseStreaming, to: PhaseIdle, allowed: false},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.from)+"->"+string(testCase.to), func(t *testing.T) {
			if got := testCase.from.canTransition(testCase.to); got != testCase.allowed {
				t.Fatalf("expected %v, got %v", testCase.allowed, got)
			}
		})
	}
}

func TestSessionRejectsInvalidTransition(t *testing.T) {
	s := newSession("q", ModePanel, nil)

	err := s.transition(PhaseComplete)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if s.Phase() != PhaseIdle {
		t.Fatalf("expected phase to stay %q, got %q", PhaseIdle, s.Phase())
	}
}

func TestAbortDropsOpenHandles(t *testing.T) {
	s := newSession("q", ModePanel, nil)
	if err := s.transition(PhaseStreaming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.moderator = &speakerHandle{kind: SpeakerModerator}
	s.participant = &speakerHandle{kind: SpeakerParticipant}

	s.abort(ReasonCancelled)
	s.abort(ReasonFailed)

	if s.Phase() != PhaseAborted || s.Reason() != ReasonCancelled {
		t.Fatalf("expected first abort to win, got %q/%q", s.Phase(), s.Reason())
	}
	if s.moderator != nil || s.participant != nil {
		t.Fatalf("expected handles to be dropped")
	}
	if s.Transcript().Len() != 0 {
		t.Fatalf("expected nothing to be flushed")
	}
}
