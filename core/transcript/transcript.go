// Package transcript accumulates the ordered record of a discussion.
package transcript

import (
	"strings"
	"sync"
)

// Kind identifies who a segment is attributed to. Values match the wire
// format expected by audio and journal services.
type Kind string

const (
	KindNarrator    Kind = "narrator"
	KindUser        Kind = "user"
	KindParticipant Kind = "elder"
)

// MinReadySegments is the number of segments a transcript needs before it is
// worth handing off: the opening narration, the question and one response.
const MinReadySegments = 3

// Segment is one immutable unit of the transcript.
type Segment struct {
	Kind          Kind   `json:"type"`
	ParticipantID string `json:"elder_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Text          string `json:"text"`
}

func Narrator(text string) Segment {
	return Segment{Kind: KindNarrator, Text: text}
}

func User(text string) Segment {
	return Segment{Kind: KindUser, Text: text}
}

func Participant(id, name, text string) Segment {
	return Segment{Kind: KindParticipant, ParticipantID: id, Name: name, Text: text}
}

// Render returns the segment as it appears in a finalized transcript.
func (s Segment) Render() string {
	if s.Name != "" {
		return s.Name + ": " + s.Text
	}
	return s.Text
}

// Accumulator is an append-only, ordered log of segments. It is safe to read
// from other goroutines while the owner appends.
type Accumulator struct {
	mu       sync.RWMutex
	segments []Segment
}

// New creates an accumulator seeded with the given segments.
func New(seed ...Segment) *Accumulator {
	a := &Accumulator{}
	a.segments = append(a.segments, seed...)
	return a
}

// Append adds a segment and returns the new segment count.
func (a *Accumulator) Append(segment Segment) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.segments = append(a.segments, segment)
	return len(a.segments)
}

func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.segments)
}

// Segments returns a point-in-time copy of all segments, oldest first.
func (a *Accumulator) Segments() []Segment {
	a.mu.RLock()
	defer a.mu.RUnlock()

	segments := make([]Segment, len(a.segments))
	copy(segments, a.segments)
	return segments
}

// Ready reports whether the transcript holds enough to be handed off.
func (a *Accumulator) Ready() bool {
	return a.Len() >= MinReadySegments
}

// Finalize renders narrator and participant segments separated by blank
// lines. User segments are left out. It does not modify the accumulator and
// may be called any number of times.
func (a *Accumulator) Finalize() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rendered := make([]string, 0, len(a.segments))
	for _, segment := range a.segments {
		if segment.Kind == KindUser {
			continue
		}
		rendered = append(rendered, segment.Render())
	}
	return strings.Join(rendered, "\n\n")
}
