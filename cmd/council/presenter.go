package main

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/ema-council/core/discussion"
	"github.com/koscakluka/ema-council/core/events"
)

type (
	narratorMsg struct{ text string }
	userMsg     struct{ text string }
	systemMsg   struct{ text string }

	speakerOpenedMsg struct {
		id       int64
		identity events.Identity
		kind     discussion.SpeakerKind
		phase    string
	}
	speakerChunkMsg struct {
		id    int64
		chunk string
	}
	speakerFinishedMsg struct {
		id   int64
		html string
	}
	speakerInterruptedMsg struct{ id int64 }

	nominationMsg struct{ nomination events.Nomination }

	// inputRequestedMsg asks the model to collect one answer and pass it on
	// through the presenter.
	inputRequestedMsg struct{ prompt string }

	cancelShownMsg   struct{ cancel func() }
	cancelRemovedMsg struct{}

	handoffMsg struct{ handoff discussion.Handoff }
)

// presenter turns coordinator calls into bubbletea messages. It is called from
// the goroutine running the discussion while the model runs on the program's
// goroutine.
type presenter struct {
	send    func(tea.Msg)
	answers chan string
	views   atomic.Int64
}

func newPresenter() *presenter {
	return &presenter{answers: make(chan string)}
}

func (p *presenter) RenderNarrator(text string) { p.send(narratorMsg{text: text}) }
func (p *presenter) RenderUser(text string)     { p.send(userMsg{text: text}) }
func (p *presenter) RenderSystem(text string)   { p.send(systemMsg{text: text}) }

func (p *presenter) OpenSpeaker(identity events.Identity, kind discussion.SpeakerKind, phase string) discussion.SpeakerView {
	id := p.views.Add(1)
	p.send(speakerOpenedMsg{id: id, identity: identity, kind: kind, phase: phase})
	return &speakerView{id: id, send: p.send}
}

func (p *presenter) RenderNomination(nomination events.Nomination) {
	p.send(nominationMsg{nomination: nomination})
}

func (p *presenter) RequestInput(ctx context.Context) (string, error) {
	return p.ask(ctx, "The moderator would like to hear from you")
}

func (p *presenter) RequestIntakeAnswers(ctx context.Context, questions []string) ([]string, error) {
	answers := make([]string, len(questions))
	for i, question := range questions {
		answer, err := p.ask(ctx, fmt.Sprintf("Q%d: %s", i+1, question))
		if err != nil {
			return nil, err
		}
		answers[i] = answer
	}
	return answers, nil
}

func (p *presenter) ask(ctx context.Context, prompt string) (string, error) {
	p.send(inputRequestedMsg{prompt: prompt})
	select {
	case answer := <-p.answers:
		return answer, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *presenter) ShowCancel(cancel func()) func() {
	p.send(cancelShownMsg{cancel: cancel})
	return func() { p.send(cancelRemovedMsg{}) }
}

func (p *presenter) DiscussionComplete(handoff discussion.Handoff) {
	p.send(handoffMsg{handoff: handoff})
}

type speakerView struct {
	id   int64
	send func(tea.Msg)
}

func (v *speakerView) Append(chunk string) { v.send(speakerChunkMsg{id: v.id, chunk: chunk}) }
func (v *speakerView) Finish(html string)  { v.send(speakerFinishedMsg{id: v.id, html: html}) }
func (v *speakerView) Interrupt()          { v.send(speakerInterruptedMsg{id: v.id}) }
