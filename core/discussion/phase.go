package discussion

import (
	"errors"
	"fmt"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseSelectingParticipants Phase = "selecting-participants"
	PhaseResolvingMode         Phase = "resolving-mode"
	PhaseStreaming             Phase = "streaming"
	// PhaseAwaitingInput is the only non-terminal phase without an open
	// stream.
	PhaseAwaitingInput Phase = "awaiting-input"
	PhaseComplete      Phase = "complete"
	PhaseAborted       Phase = "aborted"
)

var ErrInvalidTransition = errors.New("invalid phase transition")

var transitions = map[Phase][]Phase{
	PhaseIdle:                  {PhaseSelectingParticipants, PhaseResolvingMode, PhaseStreaming, PhaseAborted},
	PhaseSelectingParticipants: {PhaseResolvingMode, PhaseStreaming, PhaseAborted},
	PhaseResolvingMode:         {PhaseStreaming, PhaseAborted},
	PhaseStreaming:             {PhaseAwaitingInput, PhaseComplete, PhaseAborted},
	PhaseAwaitingInput:         {PhaseStreaming, PhaseAborted},
}

func (p Phase) canTransition(to Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseAborted
}

func transitionError(from, to Phase) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Reason explains how a session reached its terminal phase.
type Reason string

const (
	ReasonNone Reason = ""
	// ReasonCancelled is a user-initiated stop. The transcript collected so
	// far is still handed off.
	ReasonCancelled Reason = "cancelled"
	// ReasonFailed is a transport or backend failure.
	ReasonFailed Reason = "failed"
	// ReasonRejected means the session never started streaming, e.g. because
	// not enough participants were available.
	ReasonRejected Reason = "rejected"
)
