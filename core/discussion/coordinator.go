// Package discussion drives discussions with the council backend.
//
// A [Coordinator] owns one [Session] at a time. It opens the discussion
// stream, dispatches the decoded events through the table of the session's
// mode, suspends when the backend asks the user something and resumes on the
// continuation endpoint, and finally hands the transcript off.
package discussion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/koscakluka/ema-council/core/backend"
	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/core/frames"
	"github.com/koscakluka/ema-council/core/transcript"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var ErrSessionActive = errors.New("a discussion is already running")

// Backend is the part of the backend client a coordinator needs.
type Backend interface {
	Stream(ctx context.Context, endpoint string, body any) (io.ReadCloser, error)
	SelectParticipants(ctx context.Context, question string, limit int) ([]string, error)
	SelectMode(ctx context.Context, question string) (string, error)
	StartEnrichment(ctx context.Context, participantID, name, expertise string) (string, error)
	SendFeedback(ctx context.Context, feedback backend.Feedback) error
}

// Request starts a discussion. Without participants, they are selected by the
// backend when the mode allows it.
type Request struct {
	Mode         Mode
	Question     string
	Participants []string
}

// SessionError is returned when a discussion could not be completed.
type SessionError struct {
	// Phase is the phase the session was in when it failed.
	Phase  Phase
	Reason Reason
	Err    error
}

func (e *SessionError) Error() string {
	return e.Err.Error()
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

type Coordinator struct {
	backend   Backend
	presenter Presenter
	directory Directory
	gate      *Gate
	settings  Settings

	enrichment    bool
	feedback      bool
	onEffectError func(name string, err error)

	running atomic.Bool
	mu      sync.RWMutex
	session *Session
	effects sync.WaitGroup
}

func NewCoordinator(client Backend, presenter Presenter, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		backend:    client,
		presenter:  presenter,
		gate:       DefaultGate,
		settings:   DefaultSettings(),
		enrichment: true,
		feedback:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current or last session, nil before the first run.
func (c *Coordinator) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Cancel stops the open stream of the running discussion. The discussion
// ends as cancelled and whatever was said so far is still handed off.
func (c *Coordinator) Cancel() {
	c.gate.Cancel()
}

// Wait blocks until background effects of past discussions finished.
func (c *Coordinator) Wait() {
	c.effects.Wait()
}

// Run runs a discussion to its end and returns the finished session.
//
// A discussion stopped by the user is not an error, the returned session
// reports ReasonCancelled. Failures are returned as *SessionError alongside
// the aborted session. Only one discussion may run at a time.
func (c *Coordinator) Run(ctx context.Context, request Request) (*Session, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}
	defer c.running.Store(false)

	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	mode := request.Mode
	if mode == "" {
		mode = ModePanel
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	s := newSession(question, mode, request.Participants)
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "run discussion", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("session.mode", string(mode)),
	))
	defer span.End()

	r := &router{
		presenter: c.presenter,
		directory: c.directory,
		cancel:    c.gate.Cancel,
	}
	if c.enrichment {
		r.enrich = func(ctx context.Context, nomination events.Nomination) error {
			_, err := c.backend.StartEnrichment(ctx, nomination.GuestID, nomination.GuestName, nomination.Expertise)
			return err
		}
	}

	err := c.run(ctx, s, r)
	if s.removeCancel != nil {
		s.removeCancel()
		s.removeCancel = nil
	}

	switch {
	case err == nil:
		c.handoff(ctx, s)

	case errors.Is(err, ErrCancelled):
		logger.InfoContext(ctx, "discussion cancelled", "session", s.ID, "phase", s.Phase())
		s.abort(ReasonCancelled)
		c.handoff(ctx, s)
		err = nil

	default:
		reason := ReasonFailed
		if errors.Is(err, ErrNotEnoughParticipants) || errors.Is(err, ErrParticipantSelection) {
			reason = ReasonRejected
		}
		phase := s.Phase()
		s.abort(reason)
		err = &SessionError{Phase: phase, Reason: reason, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(
		attribute.String("session.phase", string(s.Phase())),
		attribute.String("session.reason", string(s.Reason())),
		attribute.Int("session.segments", s.transcript.Len()),
	)
	sessionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("session.mode", string(s.Mode())),
		attribute.String("session.phase", string(s.Phase())),
		attribute.String("session.reason", string(s.Reason())),
	))
	return s, err
}

func (c *Coordinator) run(ctx context.Context, s *Session, r *router) error {
	c.presenter.RenderUser(s.Question)

	if err := c.selectParticipants(ctx, s); err != nil {
		return err
	}
	if err := c.resolveMode(ctx, s); err != nil {
		return err
	}
	if err := checkParticipants(s.Mode(), s.participants); err != nil {
		return err
	}

	entry := modes[s.Mode()]
	s.transcript.Append(transcript.Narrator(entry.opening))
	s.transcript.Append(transcript.User(s.Question))
	if entry.announcement != "" {
		c.presenter.RenderSystem(entry.announcement)
	}

	endpoint, body := entry.endpoint, entry.request(s, c.settings)
	for {
		if err := c.stream(ctx, s, r, endpoint, body); err != nil {
			return err
		}
		if s.Phase() != PhaseAwaitingInput {
			return nil
		}

		var err error
		if endpoint, body, err = c.resume(ctx, s); err != nil {
			return err
		}
	}
}

func (c *Coordinator) selectParticipants(ctx context.Context, s *Session) error {
	if len(s.participants) > 0 {
		return nil
	}
	if !c.settings.AutoSelect || !autoSelects(s.Mode()) {
		if s.Mode() == ModeSingleAnswer {
			return fmt.Errorf("%w: please select an elder", ErrNotEnoughParticipants)
		}
		return fmt.Errorf("%w: please select elders or enable auto-select", ErrNotEnoughParticipants)
	}

	if err := s.transition(PhaseSelectingParticipants); err != nil {
		return err
	}
	c.presenter.RenderSystem("Selecting the best elders for your question...")

	ids, err := c.backend.SelectParticipants(ctx, s.Question, clampAutoSelectLimit(c.settings.AutoSelectLimit))
	if err != nil {
		if cancelled(ctx) {
			return ErrCancelled
		}
		return fmt.Errorf("%w: auto-select failed, please choose elders manually: %w", ErrParticipantSelection, err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: could not auto-select elders, please choose manually", ErrParticipantSelection)
	}

	s.setParticipants(ids)
	s.autoSelected = true

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = s.resolve(c.directory, id, events.Identity{}).Name
	}
	c.presenter.RenderSystem("Selected: " + strings.Join(names, ", "))
	return nil
}

// resolveMode asks the backend for a mode when the backend is meant to pick
// one. It falls back to a panel when the backend cannot help.
func (c *Coordinator) resolveMode(ctx context.Context, s *Session) error {
	if s.Mode() != ModeAutoPick {
		return nil
	}
	if err := s.transition(PhaseResolvingMode); err != nil {
		return err
	}
	c.presenter.RenderSystem("Choosing discussion format...")

	resolved := ModePanel
	name, err := c.backend.SelectMode(ctx, s.Question)
	switch {
	case cancelled(ctx):
		return ErrCancelled
	case err != nil:
		logger.WarnContext(ctx, "mode selection failed, falling back to panel", "error", err)
	default:
		if mode, err := ParseMode(name); err == nil && mode != ModeAutoPick {
			resolved = mode
		} else if name != "" {
			logger.WarnContext(ctx, "backend selected unknown mode, falling back to panel", "mode", name)
		}
	}

	s.setMode(resolved)
	s.modeAutoSelected = true
	c.presenter.RenderSystem(fmt.Sprintf("Starting a %s discussion...", resolved.Label()))
	return nil
}

// stream opens one stream and dispatches its events until the stream ends or
// the session leaves the streaming phase.
func (c *Coordinator) stream(ctx context.Context, s *Session, r *router, endpoint string, body backend.DiscussionRequest) error {
	if err := s.transition(PhaseStreaming); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "process discussion stream", trace.WithAttributes(
		attribute.String("request.endpoint", endpoint),
	))
	defer span.End()

	streamCtx, token := c.gate.Arm(ctx)
	defer c.gate.Release(token)

	if modes[s.Mode()].preopen && s.participant == nil {
		id := s.participants[0]
		s.participant = r.open(SpeakerParticipant, s.resolve(c.directory, id, events.Identity{}), "")
	}

	responseBody, err := c.backend.Stream(streamCtx, endpoint, body)
	if err != nil {
		return streamError(streamCtx, span, err)
	}

	dispatched := 0
	defer func() { span.SetAttributes(attribute.Int("events.dispatched", dispatched)) }()

records:
	for record, err := range frames.Records[events.Record](streamCtx, responseBody) {
		if err != nil {
			return streamError(streamCtx, span, err)
		}

		for _, event := range events.Classify(record) {
			c.runEffects(ctx, r.dispatch(streamCtx, s, event))
			dispatched++

			// Anything after a suspension or completion marker is ignored.
			if s.Phase() != PhaseStreaming {
				break records
			}
		}
	}

	if s.Phase() != PhaseStreaming {
		return nil
	}
	if cancelled(streamCtx) {
		return ErrCancelled
	}
	// The stream ended without a completion marker.
	complete(s)
	return nil
}

func streamError(ctx context.Context, span trace.Span, err error) error {
	if cancelled(ctx) {
		span.AddEvent("stream cancelled")
		return ErrCancelled
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// resume collects the user's input for a suspended session and builds the
// request that continues it.
func (c *Coordinator) resume(ctx context.Context, s *Session) (string, backend.DiscussionRequest, error) {
	pending := s.pending
	s.pending = pendingNone

	if pending == pendingIntake {
		return c.resumeIntake(ctx, s)
	}

	answer, err := c.presenter.RequestInput(ctx)
	if err != nil {
		if cancelled(ctx) {
			return "", backend.DiscussionRequest{}, ErrCancelled
		}
		return "", backend.DiscussionRequest{}, fmt.Errorf("failed to get user input: %w", err)
	}
	answer = strings.TrimSpace(answer)

	s.followUps++
	c.presenter.RenderUser(answer)
	s.record(HistoryEntry{Role: RoleUser, Text: answer}, transcript.User(answer))

	continuation := s.continuation
	s.continuation = nil
	if continuation == nil {
		continuation = newContinuationContext(s.history[:len(s.history)-1], nil, 0)
	}
	payload, err := continuation.payload(answer)
	if err != nil {
		return "", backend.DiscussionRequest{}, err
	}

	entry := modes[s.Mode()]
	body := entry.request(s, c.settings)
	body.AllowNominations = nil
	body.Continuation = payload

	if entry.resumed != "" {
		c.presenter.RenderSystem(entry.resumed)
	}
	return entry.continueEndpoint, body, nil
}

func (c *Coordinator) resumeIntake(ctx context.Context, s *Session) (string, backend.DiscussionRequest, error) {
	questions := s.intakeQuestions
	if len(questions) == 0 {
		return modes[ModeRoundtable].endpoint, roundtableRequest(s, c.settings), nil
	}

	answers, err := c.presenter.RequestIntakeAnswers(ctx, questions)
	if err != nil {
		if cancelled(ctx) {
			return "", backend.DiscussionRequest{}, ErrCancelled
		}
		return "", backend.DiscussionRequest{}, fmt.Errorf("failed to get intake answers: %w", err)
	}

	paired, summary := intakeAnswers(questions, answers)
	c.presenter.RenderUser(summary)
	s.record(HistoryEntry{Role: RoleUser, Text: summary}, transcript.User(summary))
	s.transcript.Append(transcript.Narrator(intakeAnsweredTxt))
	c.presenter.RenderNarrator(intakeAnsweredTxt)

	entry := modes[ModeIntake]
	c.presenter.RenderSystem(entry.resumed)

	body := roundtableRequest(s, c.settings)
	body.IntakeAnswers = paired
	return entry.continueEndpoint, body, nil
}

// handoff passes a finished transcript on, once it holds at least one
// response.
func (c *Coordinator) handoff(ctx context.Context, s *Session) {
	if !s.transcript.Ready() {
		return
	}

	handoff := s.handoff()
	c.presenter.DiscussionComplete(handoff)

	if !c.feedback {
		return
	}
	feedback := backend.Feedback{
		Question:            s.Question,
		Mode:                string(handoff.Mode),
		ParticipantIDs:      s.Participants(),
		WasAutoSelected:     s.autoSelected,
		WasModeAutoSelected: s.modeAutoSelected,
		FollowUpCount:       s.followUps,
		DurationSeconds:     int(handoff.Duration.Round(time.Second) / time.Second),
		Settings: backend.FeedbackSettings{
			DialecticTension: c.settings.DialecticTension,
			ResponseLength:   c.settings.ResponseLength,
			DiscussionLength: c.settings.DiscussionLength,
		},
	}
	c.runEffects(ctx, []effect{{
		name: "session feedback",
		run: func(ctx context.Context) error {
			return c.backend.SendFeedback(ctx, feedback)
		},
	}})
}
