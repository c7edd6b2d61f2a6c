package main

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/koscakluka/ema-council/core/backend"
	"github.com/koscakluka/ema-council/core/discussion"
	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/core/transcript"
)

type state int

const (
	stateQuestion state = iota
	stateRunning
	stateAnswering
	stateDone
)

type (
	discussionDoneMsg struct {
		session *discussion.Session
		err     error
	}
	audioProgressMsg struct{ progress backend.AudioProgress }
	audioDoneMsg     struct{ err error }
)

type runner interface {
	Run(ctx context.Context, request discussion.Request) (*discussion.Session, error)
}

type audioRenderer interface {
	GenerateAudio(ctx context.Context, segments []transcript.Segment, mode string) iter.Seq2[backend.AudioProgress, error]
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	narratorStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	systemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	speakerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	moderatorName = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type block struct {
	style lipgloss.Style
	title string
	text  strings.Builder

	interrupted bool
}

type model struct {
	ctx    context.Context
	quit   context.CancelFunc
	runner runner
	audio  audioRenderer
	pres   *presenter

	request discussion.Request

	state    state
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	width    int
	ready    bool

	blocks   []*block
	speakers map[int64]*block
	prompt   string
	status   string
	cancel   func()
	handoff  *discussion.Handoff
	audioURL string
}

func newModel(ctx context.Context, quit context.CancelFunc, r runner, audio audioRenderer, pres *presenter, request discussion.Request) *model {
	input := textinput.New()
	input.Placeholder = "Ask the council a question"
	input.CharLimit = 2000
	input.Focus()

	m := &model{
		ctx:      ctx,
		quit:     quit,
		runner:   r,
		audio:    audio,
		pres:     pres,
		request:  request,
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		speakers: map[int64]*block{},
		width:    80,
	}
	return m
}

func (m *model) Init() tea.Cmd {
	if m.request.Question != "" {
		return m.start()
	}
	return textinput.Blink
}

func (m *model) start() tea.Cmd {
	m.state = stateRunning
	m.input.Blur()
	m.status = "The council is gathering"
	request := m.request
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		session, err := m.runner.Run(m.ctx, request)
		return discussionDoneMsg{session: session, err: err}
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := max(msg.Height-4, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.key(msg)

	case spinner.TickMsg:
		if m.state != stateRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case narratorMsg:
		m.add(narratorStyle, "", msg.text)
	case userMsg:
		m.add(userStyle, "You", msg.text)
	case systemMsg:
		m.add(systemStyle, "", msg.text)
		m.status = msg.text

	case speakerOpenedMsg:
		style := speakerStyle
		if msg.kind != discussion.SpeakerParticipant {
			style = moderatorName
		}
		title := msg.identity.Name
		if msg.identity.Title != "" {
			title += " · " + msg.identity.Title
		}
		m.speakers[msg.id] = m.add(style, title, "")
		m.status = msg.identity.Name + " is speaking"
	case speakerChunkMsg:
		if b, ok := m.speakers[msg.id]; ok {
			b.text.WriteString(msg.chunk)
		}
	case speakerFinishedMsg:
		if b, ok := m.speakers[msg.id]; ok {
			b.text.Reset()
			b.text.WriteString(plainText(msg.html))
			delete(m.speakers, msg.id)
		}
	case speakerInterruptedMsg:
		if b, ok := m.speakers[msg.id]; ok {
			b.interrupted = true
		}

	case nominationMsg:
		m.add(speakerStyle, nominationTitle(msg.nomination), nominationText(msg.nomination))

	case inputRequestedMsg:
		m.state = stateAnswering
		m.prompt = msg.prompt
		m.input.Placeholder = "Your answer"
		m.input.SetValue("")
		m.input.Focus()
		m.refresh()
		return m, textinput.Blink

	case cancelShownMsg:
		m.cancel = msg.cancel
	case cancelRemovedMsg:
		m.cancel = nil

	case handoffMsg:
		m.handoff = &msg.handoff

	case discussionDoneMsg:
		m.state = stateDone
		m.cancel = nil
		m.status = ""
		m.input.Blur()
		switch {
		case msg.err != nil:
			m.add(errorStyle, "", "The discussion failed: "+msg.err.Error())
		case msg.session != nil && msg.session.Reason() == discussion.ReasonCancelled:
			m.add(systemStyle, "", "Discussion stopped.")
		default:
			m.add(systemStyle, "", "The council has concluded.")
		}

	case audioProgressMsg:
		p := msg.progress
		if p.Done {
			m.audioURL = p.DownloadURL
			m.status = "Audio ready: " + p.DownloadURL
		} else {
			m.status = fmt.Sprintf("Rendering audio %d/%d, about %s left", p.Current, p.Total, p.Remaining.Round(time.Second))
		}
	case audioDoneMsg:
		if msg.err != nil {
			m.status = "Audio failed: " + msg.err.Error()
		}
	}

	m.refresh()
	return m, nil
}

func (m *model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quit()
		return m, tea.Quit

	case tea.KeyEsc:
		if m.state == stateRunning && m.cancel != nil {
			m.cancel()
			m.cancel = nil
			m.status = "Stopping the discussion"
		}
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		switch m.state {
		case stateQuestion:
			if value == "" {
				return m, nil
			}
			m.request.Question = value
			m.input.SetValue("")
			return m, m.start()
		case stateAnswering:
			m.state = stateRunning
			m.prompt = ""
			m.input.SetValue("")
			m.input.Blur()
			return m, tea.Batch(m.spinner.Tick, m.answer(value))
		}
		return m, nil
	}

	switch m.state {
	case stateQuestion, stateAnswering:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case stateDone:
		switch msg.String() {
		case "q":
			m.quit()
			return m, tea.Quit
		case "a":
			if m.handoff != nil && m.audio != nil {
				return m, m.renderAudio(*m.handoff)
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) answer(value string) tea.Cmd {
	answers := m.pres.answers
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case answers <- value:
		case <-ctx.Done():
		}
		return nil
	}
}

func (m *model) renderAudio(handoff discussion.Handoff) tea.Cmd {
	m.status = "Requesting audio"
	send := m.pres.send
	audio := m.audio
	ctx := m.ctx
	return func() tea.Msg {
		for progress, err := range audio.GenerateAudio(ctx, handoff.Segments, string(handoff.Mode)) {
			if err != nil {
				return audioDoneMsg{err: err}
			}
			send(audioProgressMsg{progress: progress})
		}
		return audioDoneMsg{}
	}
}

func nominationTitle(n events.Nomination) string {
	if n.IsExisting {
		return "Panel Member"
	}
	return "Guest Expert"
}

func nominationText(n events.Nomination) string {
	text := fmt.Sprintf("%s, %s\nnominated by %s", n.GuestName, n.Expertise, n.NominatedBy)
	if n.Biography != nil && n.Biography.Summary != "" {
		text += "\n\n" + n.Biography.Summary
	}
	return text
}

func (m *model) add(style lipgloss.Style, title, text string) *block {
	b := &block{style: style, title: title}
	b.text.WriteString(text)
	m.blocks = append(m.blocks, b)
	return b
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m *model) render() string {
	width := max(m.width-2, 20)
	var out strings.Builder
	for _, b := range m.blocks {
		if b.title != "" {
			title := b.title
			if b.interrupted {
				title += " (interrupted)"
			}
			out.WriteString(b.style.Render(title))
			out.WriteString("\n")
			out.WriteString(wordwrap.String(b.text.String(), width))
		} else {
			out.WriteString(b.style.Render(wordwrap.String(b.text.String(), width)))
		}
		out.WriteString("\n\n")
	}
	return out.String()
}

func (m *model) View() string {
	header := titleStyle.Render("Council of Elders")
	if m.request.Mode != "" {
		header += systemStyle.Render(" · " + m.request.Mode.Label())
	}

	body := m.render()
	if m.ready {
		body = m.viewport.View()
	}

	var footer string
	switch m.state {
	case stateQuestion:
		footer = m.input.View()
	case stateAnswering:
		footer = userStyle.Render(m.prompt) + "\n" + m.input.View()
	case stateRunning:
		footer = m.spinner.View() + " " + m.status
		if m.cancel != nil {
			footer += helpStyle.Render("  esc: stop")
		}
	case stateDone:
		footer = m.status + "\n" + helpStyle.Render("a: render audio · q: quit")
	}

	return header + "\n" + body + "\n" + footer
}
