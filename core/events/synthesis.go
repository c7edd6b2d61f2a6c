package events

const (
	KindSynthesisStarted   Kind = "synthesis.started"
	KindSynthesisCompleted Kind = "synthesis.completed"
)

type SynthesisStarted struct{ Base }

func NewSynthesisStarted() SynthesisStarted {
	return SynthesisStarted{Base: NewBase(KindSynthesisStarted)}
}

type SynthesisCompleted struct {
	Base
	Raw  string
	HTML string
}

func NewSynthesisCompleted(raw, html string) SynthesisCompleted {
	return SynthesisCompleted{Base: NewBase(KindSynthesisCompleted), Raw: raw, HTML: html}
}
