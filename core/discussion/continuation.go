package discussion

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-council/core/backend"
)

// ContinuationContext is captured when the backend suspends a discussion and
// consumed once when the discussion resumes.
type ContinuationContext struct {
	History       []HistoryEntry
	SpeakersSoFar []string
	TurnsUsed     int
}

func newContinuationContext(history []HistoryEntry, speakersSoFar []string, turnsUsed int) *ContinuationContext {
	return &ContinuationContext{
		History:       slices.Clone(history),
		SpeakersSoFar: slices.Clone(speakersSoFar),
		TurnsUsed:     turnsUsed,
	}
}

// payload builds the wire continuation from the history captured at suspension
// followed by the user's answer.
func (c *ContinuationContext) payload(answer string) (*backend.Continuation, error) {
	history := append(slices.Clone(c.History), HistoryEntry{Role: RoleUser, Text: answer})

	continuation := &backend.Continuation{
		UserAnswer:    answer,
		SpeakersSoFar: c.SpeakersSoFar,
		TurnsUsed:     c.TurnsUsed,
	}
	if continuation.SpeakersSoFar == nil {
		continuation.SpeakersSoFar = []string{}
	}
	if err := copier.Copy(&continuation.History, history); err != nil {
		return nil, fmt.Errorf("failed to copy history: %w", err)
	}
	return continuation, nil
}

const (
	synthesisPrefix   = "The synthesis of the elders' deliberation: "
	intakeAnsweredTxt = "The questioner has provided their answers. The council now deliberates with this additional context."
	noAnswer          = "(no answer)"

	minQuestionLength         = 10
	minFallbackQuestionLength = 20
	maxFallbackQuestions      = 3
)

var (
	numberedItem   = regexp.MustCompile(`\d+\.\s*([^\n]+)`)
	numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

// ParseIntakeQuestions extracts the questions the elders want to ask from the
// synthesis text.
//
// Numbered items are preferred. Without any, lines that look like a question
// are used instead, at most three of them.
func ParseIntakeQuestions(text string) []string {
	questions := numberedItems(text)
	if len(questions) > 0 {
		return questions
	}

	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= minFallbackQuestionLength {
			continue
		}
		if !strings.Contains(line, "?") && !numberedPrefix.MatchString(line) {
			continue
		}
		questions = append(questions, strings.TrimSpace(numberedPrefix.ReplaceAllString(line, "")))
		if len(questions) == maxFallbackQuestions {
			break
		}
	}
	return questions
}

// numberedItems returns the first line of every numbered item. An item runs
// until the next line that starts with a number, so numbers inside its
// follow-up lines do not start new items. Items of up to ten characters are
// dropped.
func numberedItems(text string) []string {
	var items []string
	for pos := 0; pos < len(text); {
		match := numberedItem.FindStringSubmatchIndex(text[pos:])
		if match == nil {
			break
		}
		item := strings.TrimSpace(text[pos+match[2] : pos+match[3]])
		if utf8.RuneCountInString(item) > minQuestionLength {
			items = append(items, item)
		}

		pos += match[1]
		for pos < len(text) && text[pos] == '\n' {
			rest := text[pos+1:]
			if numberedPrefix.MatchString(rest) {
				pos++
				break
			}
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				pos = len(text)
				break
			}
			pos += 1 + end
		}
	}
	return items
}

// intakeAnswers pairs answers with their questions and renders the summary
// shown as the user's message.
func intakeAnswers(questions, answers []string) ([]backend.IntakeAnswer, string) {
	paired := make([]backend.IntakeAnswer, len(questions))
	summary := make([]string, len(questions))
	for i, question := range questions {
		var answer string
		if i < len(answers) {
			answer = strings.TrimSpace(answers[i])
		}
		paired[i] = backend.IntakeAnswer{Question: question, Answer: answer}

		if answer == "" {
			answer = noAnswer
		}
		summary[i] = fmt.Sprintf("Q%d: %s", i+1, answer)
	}
	return paired, strings.Join(summary, "\n")
}
