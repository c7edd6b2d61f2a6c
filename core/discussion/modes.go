package discussion

import (
	"errors"
	"fmt"
	"slices"

	"github.com/koscakluka/ema-council/core/backend"
	"github.com/koscakluka/ema-council/core/events"
	"github.com/koscakluka/ema-council/internal/utils"
)

// Mode is a discussion format. Values are the wire names the backend uses.
type Mode string

const (
	ModeSingleAnswer Mode = "ask"
	ModeRoundtable   Mode = "roundtable"
	ModePanel        Mode = "panel"
	ModeSalon        Mode = "salon"
	ModeIntake       Mode = "intake"
	ModePairedDebate Mode = "rap"
	ModePerformance  Mode = "poetry"
	// ModeAutoPick lets the backend choose one of the other modes.
	ModeAutoPick Mode = "council"
)

var (
	ErrUnknownMode           = errors.New("unknown discussion mode")
	ErrNotEnoughParticipants = errors.New("not enough participants")
	ErrParticipantSelection  = errors.New("participant selection failed")
	ErrEmptyQuestion         = errors.New("question is empty")
)

// ParseMode parses a mode wire name.
func ParseMode(name string) (Mode, error) {
	mode := Mode(name)
	if mode == ModeAutoPick {
		return mode, nil
	}
	if _, ok := modes[mode]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return mode, nil
}

// Label is the human readable name of the mode.
func (m Mode) Label() string {
	if m == ModeAutoPick {
		return "Council"
	}
	if entry, ok := modes[m]; ok {
		return entry.label
	}
	return string(m)
}

// Settings are the tuning parameters of a discussion.
type Settings struct {
	DiscussionLength string
	// DialecticTension ranges from 0 (collaborative) to 100 (debate).
	DialecticTension int
	ResponseLength   string
	PoetryForm       string

	AutoSelect      bool
	AutoSelectLimit int
}

func DefaultSettings() Settings {
	return Settings{
		DiscussionLength: "quick",
		DialecticTension: 50,
		ResponseLength:   "moderate",
		PoetryForm:       "spoken_word",
		AutoSelect:       true,
		AutoSelectLimit:  5,
	}
}

var discussionTurns = map[string]int{
	"lightning": 2,
	"quick":     4,
	"short":     8,
	"medium":    12,
	"long":      18,
	"extended":  24,
}

const defaultDiscussionTurns = 12

// ValidDiscussionLength reports whether length is a known discussion length.
func ValidDiscussionLength(length string) bool {
	_, ok := discussionTurns[length]
	return ok
}

// MaxTurns is the turn budget for a moderated discussion. Every participant
// gets at least one turn.
func MaxTurns(length string, participants int) int {
	turns, ok := discussionTurns[length]
	if !ok {
		turns = defaultDiscussionTurns
	}
	return max(turns, participants)
}

// clampAutoSelectLimit keeps the auto selection within 3 to 7 participants.
func clampAutoSelectLimit(limit int) int {
	return min(max(limit, 3), 7)
}

const (
	intakeDebateParticipants = 4
	intakeQuestionCount      = 3
	pairedDebateRounds       = 3
)

type modeSpec struct {
	label string
	// endpoint opens the discussion, continueEndpoint resumes it after the
	// moderator asked the user something.
	endpoint         string
	continueEndpoint string

	opening      string
	announcement string
	resumed      string

	minParticipants int
	// autoSelect allows selecting participants when none were given.
	autoSelect bool
	// stoppable shows the cancel affordance after the first participant
	// finished speaking.
	stoppable bool
	// preopen opens the participant view before the stream starts; the stream
	// addresses its chunks to no one in particular.
	preopen bool

	kinds   []events.Kind
	request func(s *Session, settings Settings) backend.DiscussionRequest
}

func (m modeSpec) accepts(kind events.Kind) bool {
	return slices.Contains(m.kinds, kind)
}

var (
	turnKinds = []events.Kind{
		events.KindParticipantStarted,
		events.KindTextChunk,
		events.KindParticipantCompleted,
	}
	moderatorKinds = []events.Kind{
		events.KindModeratorStarted,
		events.KindModeratorCompleted,
	}
)

func kinds(groups ...[]events.Kind) []events.Kind {
	return slices.Concat(groups...)
}

func moderatedRequest(s *Session, settings Settings) backend.DiscussionRequest {
	return backend.DiscussionRequest{
		Question:         s.Question,
		Elders:           s.participants,
		MaxTurns:         utils.Ptr(MaxTurns(settings.DiscussionLength, len(s.participants))),
		DialecticTension: utils.Ptr(settings.DialecticTension),
		AllowNominations: utils.Ptr(s.autoSelected),
		ResponseLength:   settings.ResponseLength,
	}
}

func roundtableRequest(s *Session, _ Settings) backend.DiscussionRequest {
	return backend.DiscussionRequest{
		Question: s.Question,
		Elders:   s.participants,
		Turns:    utils.Ptr(1),
	}
}

var modes = map[Mode]modeSpec{
	ModeSingleAnswer: {
		label:           "Ask",
		endpoint:        "/api/ask",
		opening:         "The question posed to the council.",
		minParticipants: 1,
		preopen:         true,
		kinds:           []events.Kind{events.KindTextChunk, events.KindAnswerCompleted},
		request: func(s *Session, _ Settings) backend.DiscussionRequest {
			return backend.DiscussionRequest{Question: s.Question, ElderID: s.participants[0]}
		},
	},
	ModeRoundtable: {
		label:           "Roundtable",
		endpoint:        "/api/roundtable",
		opening:         "A question has been brought before the Council of Elders.",
		announcement:    "The council is deliberating...",
		minParticipants: 1,
		autoSelect:      true,
		kinds:           kinds(turnKinds, []events.Kind{events.KindNomination, events.KindSessionCompleted}),
		request:         roundtableRequest,
	},
	ModePanel: {
		label:            "Panel",
		endpoint:         "/api/panel",
		continueEndpoint: "/api/panel-continue",
		opening:          "An expert panel has been convened to discuss the following question.",
		announcement:     "The moderator is convening the panel...",
		resumed:          "The panel continues with your clarification...",
		minParticipants:  2,
		autoSelect:       true,
		stoppable:        true,
		kinds: kinds(turnKinds, moderatorKinds, []events.Kind{
			events.KindNomination,
			events.KindInputRequested,
			events.KindSessionCompleted,
		}),
		request: moderatedRequest,
	},
	ModeSalon: {
		label:            "Salon",
		endpoint:         "/api/salon",
		continueEndpoint: "/api/salon-continue",
		opening:          "A salon discussion has been convened to explore the following question.",
		announcement:     "The moderator is opening the salon...",
		resumed:          "The salon continues with your clarification...",
		minParticipants:  2,
		autoSelect:       true,
		stoppable:        true,
		kinds: kinds(turnKinds, moderatorKinds, []events.Kind{
			events.KindParticipantInterrupted,
			events.KindNomination,
			events.KindInputRequested,
			events.KindSessionCompleted,
		}),
		request: moderatedRequest,
	},
	ModeIntake: {
		label:            "Intake",
		endpoint:         "/api/intake-debate",
		continueEndpoint: "/api/roundtable-with-context",
		opening:          "A question has been brought before the Council of Elders. The elders will first deliberate on what to ask.",
		announcement:     "The elders are debating what to ask you...",
		resumed:          "The council is now deliberating with your answers...",
		minParticipants:  1,
		autoSelect:       true,
		kinds: kinds(turnKinds, []events.Kind{
			events.KindSynthesisStarted,
			events.KindSynthesisCompleted,
			events.KindDebateCompleted,
			events.KindNomination,
			events.KindSessionCompleted,
		}),
		request: func(s *Session, _ Settings) backend.DiscussionRequest {
			return backend.DiscussionRequest{
				Question:     s.Question,
				Elders:       s.participants[:min(len(s.participants), intakeDebateParticipants)],
				NumQuestions: utils.Ptr(intakeQuestionCount),
			}
		},
	},
	ModePairedDebate: {
		label:           "Rap Battle",
		endpoint:        "/api/rap-battle",
		opening:         "A rap battle has been called. Two elders will trade bars on the following topic.",
		announcement:    "The Battle Host is setting up the arena...",
		minParticipants: 2,
		autoSelect:      true,
		kinds:           kinds(turnKinds, moderatorKinds, []events.Kind{events.KindSessionCompleted}),
		request: func(s *Session, settings Settings) backend.DiscussionRequest {
			return backend.DiscussionRequest{
				Question:       s.Question,
				Elders:         s.participants,
				Rounds:         utils.Ptr(pairedDebateRounds),
				ResponseLength: settings.ResponseLength,
			}
		},
	},
	ModePerformance: {
		label:           "Poetry Slam",
		endpoint:        "/api/poetry-slam",
		opening:         "A poetry slam has been called. The elders will perform spoken-word poetry on the following theme.",
		announcement:    "The Slam MC is preparing the stage...",
		minParticipants: 2,
		autoSelect:      true,
		kinds:           kinds(turnKinds, moderatorKinds, []events.Kind{events.KindSessionCompleted}),
		request: func(s *Session, settings Settings) backend.DiscussionRequest {
			return backend.DiscussionRequest{
				Question:       s.Question,
				Elders:         s.participants,
				ResponseLength: settings.ResponseLength,
				PoetryForm:     settings.PoetryForm,
			}
		},
	},
}

// autoSelects reports whether participants may be selected automatically for
// mode.
func autoSelects(mode Mode) bool {
	if mode == ModeAutoPick {
		return true
	}
	return modes[mode].autoSelect
}

func checkParticipants(mode Mode, participants []string) error {
	entry := modes[mode]
	if len(participants) >= entry.minParticipants {
		return nil
	}
	if entry.minParticipants == 1 {
		return fmt.Errorf("%w: %s mode needs a participant", ErrNotEnoughParticipants, entry.label)
	}
	return fmt.Errorf("%w: %s mode requires at least %d participants", ErrNotEnoughParticipants, entry.label, entry.minParticipants)
}
