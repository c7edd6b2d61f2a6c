package discussion

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing/iotest"

	"github.com/koscakluka/ema-council/core/backend"
	"github.com/koscakluka/ema-council/core/events"
)

func frame(payload string) string {
	return "data: " + payload + "\n\n"
}

func script(payloads ...string) string {
	var builder strings.Builder
	for _, payload := range payloads {
		builder.WriteString(frame(payload))
	}
	return builder.String()
}

type streamRequest struct {
	endpoint string
	body     backend.DiscussionRequest
}

type fakeBackend struct {
	mu sync.Mutex

	streams   map[string][]string
	streamErr map[string]error
	// readErr fails reading a stream once its scripted frames are consumed.
	readErr map[string]error
	// fragment delivers every stream one byte per read.
	fragment bool
	requests []streamRequest

	selected  []string
	selectErr error
	limit     int

	mode    string
	modeErr error

	enrichments chan events.Identity
	feedback    chan backend.Feedback
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		streams:     map[string][]string{},
		streamErr:   map[string]error{},
		readErr:     map[string]error{},
		enrichments: make(chan events.Identity, 10),
		feedback:    make(chan backend.Feedback, 10),
	}
}

func (f *fakeBackend) enqueue(endpoint string, body string) *fakeBackend {
	f.streams[endpoint] = append(f.streams[endpoint], body)
	return f
}

func (f *fakeBackend) Stream(ctx context.Context, endpoint string, body any) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	request, _ := body.(backend.DiscussionRequest)
	f.requests = append(f.requests, streamRequest{endpoint: endpoint, body: request})

	if err := f.streamErr[endpoint]; err != nil {
		return nil, err
	}
	queue := f.streams[endpoint]
	if len(queue) == 0 {
		return nil, &backend.StatusError{StatusCode: 404, Message: "no stream for " + endpoint}
	}
	f.streams[endpoint] = queue[1:]

	var reader io.Reader = strings.NewReader(queue[0])
	if err := f.readErr[endpoint]; err != nil {
		reader = io.MultiReader(reader, iotest.ErrReader(err))
	}
	if f.fragment {
		reader = iotest.OneByteReader(reader)
	}
	return io.NopCloser(reader), nil
}

func (f *fakeBackend) SelectParticipants(ctx context.Context, question string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	return f.selected, f.selectErr
}

func (f *fakeBackend) SelectMode(ctx context.Context, question string) (string, error) {
	return f.mode, f.modeErr
}

func (f *fakeBackend) StartEnrichment(ctx context.Context, participantID, name, expertise string) (string, error) {
	f.enrichments <- events.Identity{ID: participantID, Name: name, Title: expertise}
	return "task-" + participantID, nil
}

func (f *fakeBackend) SendFeedback(ctx context.Context, feedback backend.Feedback) error {
	f.feedback <- feedback
	return nil
}

func (f *fakeBackend) sent() []streamRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]streamRequest(nil), f.requests...)
}

type recordingView struct {
	identity    events.Identity
	kind        SpeakerKind
	phase       string
	text        strings.Builder
	html        string
	finished    bool
	interrupted bool
}

func (v *recordingView) Append(chunk string) { v.text.WriteString(chunk) }
func (v *recordingView) Finish(html string) {
	v.html = html
	v.finished = true
}
func (v *recordingView) Interrupt() { v.interrupted = true }

// recordingPresenter records every call. It is only used from the goroutine
// running the coordinator.
type recordingPresenter struct {
	narrations  []string
	users       []string
	system      []string
	views       []*recordingView
	nominations []events.Nomination
	handoffs    []Handoff

	answers       []string
	intakeAnswers []string
	inputErr      error
	onInput       func()
	questions     []string

	onShowCancel  func(cancel func())
	cancelShown   int
	cancelRemoved int
}

func (p *recordingPresenter) RenderNarrator(text string) { p.narrations = append(p.narrations, text) }
func (p *recordingPresenter) RenderUser(text string)     { p.users = append(p.users, text) }
func (p *recordingPresenter) RenderSystem(text string)   { p.system = append(p.system, text) }

func (p *recordingPresenter) OpenSpeaker(identity events.Identity, kind SpeakerKind, phase string) SpeakerView {
	view := &recordingView{identity: identity, kind: kind, phase: phase}
	p.views = append(p.views, view)
	return view
}

func (p *recordingPresenter) RenderNomination(nomination events.Nomination) {
	p.nominations = append(p.nominations, nomination)
}

func (p *recordingPresenter) RequestInput(ctx context.Context) (string, error) {
	if p.onInput != nil {
		p.onInput()
	}
	if p.inputErr != nil {
		return "", p.inputErr
	}
	if len(p.answers) == 0 {
		return "", errors.New("no answer prepared")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func (p *recordingPresenter) RequestIntakeAnswers(ctx context.Context, questions []string) ([]string, error) {
	p.questions = questions
	return p.intakeAnswers, nil
}

func (p *recordingPresenter) ShowCancel(cancel func()) func() {
	p.cancelShown++
	if p.onShowCancel != nil {
		p.onShowCancel(cancel)
	}
	return func() { p.cancelRemoved++ }
}

func (p *recordingPresenter) DiscussionComplete(handoff Handoff) {
	p.handoffs = append(p.handoffs, handoff)
}

func (p *recordingPresenter) viewsOf(kind SpeakerKind) []*recordingView {
	var views []*recordingView
	for _, view := range p.views {
		if view.kind == kind {
			views = append(views, view)
		}
	}
	return views
}
