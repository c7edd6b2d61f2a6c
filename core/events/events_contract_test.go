package events

import (
	"encoding/json"
	"testing"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "moderator started", event: NewModeratorStarted("opening"), expected: KindModeratorStarted},
		{name: "moderator completed", event: NewModeratorCompleted("raw", "<p>raw</p>"), expected: KindModeratorCompleted},
		{name: "participant started", event: NewParticipantStarted("id1", Identity{}), expected: KindParticipantStarted},
		{name: "participant interrupted", event: NewParticipantInterrupted(), expected: KindParticipantInterrupted},
		{name: "participant completed", event: NewParticipantCompleted("id1", "Name", "raw", "html"), expected: KindParticipantCompleted},
		{name: "synthesis started", event: NewSynthesisStarted(), expected: KindSynthesisStarted},
		{name: "synthesis completed", event: NewSynthesisCompleted("raw", "html"), expected: KindSynthesisCompleted},
		{name: "text chunk", event: NewTextChunk("text", "id1"), expected: KindTextChunk},
		{name: "answer completed", event: NewAnswerCompleted("raw", "html"), expected: KindAnswerCompleted},
		{name: "nomination", event: NewNomination("g", "Guest", "ethics", "Aristotle"), expected: KindNomination},
		{name: "input requested", event: NewInputRequested(nil, 0), expected: KindInputRequested},
		{name: "debate completed", event: NewDebateCompleted(), expected: KindDebateCompleted},
		{name: "session completed", event: NewSessionCompleted(), expected: KindSessionCompleted},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func kinds(classified []Event) []Kind {
	var result []Kind
	for _, event := range classified {
		result = append(result, event.Kind())
	}
	return result
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		frame    string
		expected []Kind
	}{
		{name: "empty", frame: `{}`, expected: nil},
		{name: "unknown fields", frame: `{"progress":true,"current":1}`, expected: nil},
		{name: "moderator start", frame: `{"moderator_start":true,"phase":"opening"}`, expected: []Kind{KindModeratorStarted}},
		{name: "elder start", frame: `{"elder_start":true,"elder_id":"id1","name":"A"}`, expected: []Kind{KindParticipantStarted}},
		{name: "chunk", frame: `{"chunk":"Hello","elder_id":"__moderator__"}`, expected: []Kind{KindTextChunk}},
		{name: "empty chunk", frame: `{"chunk":""}`, expected: nil},
		{name: "elder done", frame: `{"elder_done":true,"elder_id":"id1","raw":"x","html":"<p>x</p>"}`, expected: []Kind{KindParticipantCompleted}},
		{name: "answer done", frame: `{"done":true,"raw":"x","html":"<p>x</p>"}`, expected: []Kind{KindAnswerCompleted}},
		{name: "ask user", frame: `{"ask_user":true,"state":{"speakers_so_far":["id1"],"turns_used":2}}`, expected: []Kind{KindInputRequested}},
		{name: "panel done", frame: `{"panel_done":true}`, expected: []Kind{KindSessionCompleted}},
		{name: "roundtable done", frame: `{"roundtable_done":true}`, expected: []Kind{KindSessionCompleted}},
		{name: "debate done", frame: `{"debate_done":true}`, expected: []Kind{KindDebateCompleted}},
		{
			name:  "combined markers follow priority order",
			frame: `{"panel_done":true,"ask_user":true,"nomination":true,"elder_done":true,"moderator_done":true,"chunk":"c","elder_start":true,"moderator_start":true}`,
			expected: []Kind{
				KindModeratorStarted,
				KindParticipantStarted,
				KindTextChunk,
				KindModeratorCompleted,
				KindParticipantCompleted,
				KindNomination,
				KindInputRequested,
				KindSessionCompleted,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var record Record
			if err := json.Unmarshal([]byte(testCase.frame), &record); err != nil {
				t.Fatalf("failed to decode frame: %v", err)
			}

			got := kinds(Classify(record))
			if len(got) != len(testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, got)
			}
			for i := range got {
				if got[i] != testCase.expected[i] {
					t.Fatalf("expected %v, got %v", testCase.expected, got)
				}
			}
		})
	}
}

func TestClassifyCarriesPayload(t *testing.T) {
	var record Record
	frame := `{"ask_user":true,"state":{"speakers_so_far":["id1","id2"],"turns_used":3}}`
	if err := json.Unmarshal([]byte(frame), &record); err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}

	classified := Classify(record)
	requested, ok := classified[0].(InputRequested)
	if !ok {
		t.Fatalf("expected InputRequested, got %T", classified[0])
	}
	if requested.TurnsUsed != 3 || len(requested.SpeakersSoFar) != 2 || requested.SpeakersSoFar[0] != "id1" {
		t.Fatalf("unexpected payload %+v", requested)
	}
}

func TestClassifyAskUserWithoutState(t *testing.T) {
	classified := Classify(Record{AskUser: true})
	requested := classified[0].(InputRequested)
	if requested.SpeakersSoFar != nil || requested.TurnsUsed != 0 {
		t.Fatalf("expected empty state, got %+v", requested)
	}
}

func TestClassifyParticipantStartedFallback(t *testing.T) {
	classified := Classify(Record{ElderStart: true, ElderID: "guest", Name: "Guest", Title: "Ethicist", Era: "Modern"})
	started := classified[0].(ParticipantStarted)
	if started.Fallback.Name != "Guest" || started.Fallback.Title != "Ethicist" || started.Fallback.Era != "Modern" {
		t.Fatalf("unexpected fallback identity %+v", started.Fallback)
	}
}

func TestNominationAnnouncement(t *testing.T) {
	nomination := NewNomination("g1", "Hannah Arendt", "political theory", "Aristotle")
	expected := "Aristotle nominates Hannah Arendt, an expert in political theory."
	if got := nomination.Announcement(); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestRecordSchemaListsWireFields(t *testing.T) {
	schema := RecordSchema()
	for _, field := range []string{"moderator_start", "elder_start", "chunk", "elder_done", "nomination", "ask_user", "panel_done"} {
		if _, ok := schema.Properties.Get(field); !ok {
			t.Fatalf("expected schema property %q", field)
		}
	}
}
