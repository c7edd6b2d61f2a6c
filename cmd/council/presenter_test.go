package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/ema-council/core/discussion"
	"github.com/koscakluka/ema-council/core/events"
)

type sink struct {
	mu   sync.Mutex
	msgs []tea.Msg
	seen chan tea.Msg
}

func newSink() *sink {
	return &sink{seen: make(chan tea.Msg, 64)}
}

func (s *sink) send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.seen <- msg
}

func (s *sink) all() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func TestPresenterSpeakerViewsCarryTheirID(t *testing.T) {
	out := newSink()
	p := newPresenter()
	p.send = out.send

	first := p.OpenSpeaker(events.Identity{ID: "id1", Name: "Aristotle"}, discussion.SpeakerParticipant, "")
	second := p.OpenSpeaker(events.Identity{Name: "Moderator"}, discussion.SpeakerModerator, "")
	first.Append("Hello")
	second.Interrupt()
	first.Finish("<p>Hello</p>")

	msgs := out.all()
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	opened := msgs[0].(speakerOpenedMsg)
	if opened.identity.Name != "Aristotle" || opened.kind != discussion.SpeakerParticipant {
		t.Errorf("unexpected open message %+v", opened)
	}
	if chunk := msgs[2].(speakerChunkMsg); chunk.id != opened.id || chunk.chunk != "Hello" {
		t.Errorf("chunk routed to %d, expected %d", chunk.id, opened.id)
	}
	if interrupted := msgs[3].(speakerInterruptedMsg); interrupted.id == opened.id {
		t.Error("interrupt routed to the wrong view")
	}
	if finished := msgs[4].(speakerFinishedMsg); finished.id != opened.id || finished.html != "<p>Hello</p>" {
		t.Errorf("unexpected finish message %+v", finished)
	}
}

func TestPresenterRequestIntakeAnswers(t *testing.T) {
	out := newSink()
	p := newPresenter()
	p.send = out.send

	go func() {
		for msg := range out.seen {
			if _, ok := msg.(inputRequestedMsg); ok {
				p.answers <- "answer"
			}
		}
	}()

	answers, err := p.RequestIntakeAnswers(context.Background(), []string{"Why?", "How?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answers) != 2 || answers[0] != "answer" || answers[1] != "answer" {
		t.Errorf("unexpected answers %q", answers)
	}

	var prompts []string
	for _, msg := range out.all() {
		if requested, ok := msg.(inputRequestedMsg); ok {
			prompts = append(prompts, requested.prompt)
		}
	}
	if len(prompts) != 2 || prompts[0] != "Q1: Why?" || prompts[1] != "Q2: How?" {
		t.Errorf("unexpected prompts %q", prompts)
	}
}

func TestPresenterRequestInputHonoursContext(t *testing.T) {
	out := newSink()
	p := newPresenter()
	p.send = out.send

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.RequestInput(ctx)
		done <- err
	}()

	select {
	case <-out.seen:
	case <-time.After(time.Second):
		t.Fatal("input was never requested")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RequestInput did not return after cancellation")
	}
}

func TestPresenterShowCancel(t *testing.T) {
	out := newSink()
	p := newPresenter()
	p.send = out.send

	called := false
	remove := p.ShowCancel(func() { called = true })
	remove()

	msgs := out.all()
	shown, ok := msgs[0].(cancelShownMsg)
	if !ok {
		t.Fatalf("expected cancelShownMsg, got %T", msgs[0])
	}
	shown.cancel()
	if !called {
		t.Error("cancel callback was not passed through")
	}
	if _, ok := msgs[1].(cancelRemovedMsg); !ok {
		t.Errorf("expected cancelRemovedMsg, got %T", msgs[1])
	}
}
