package backend

// HistoryEntry is one role-tagged entry of the discussion so far.
type HistoryEntry struct {
	Role          string `json:"role"`
	Text          string `json:"text"`
	ParticipantID string `json:"elder_id,omitempty"`
	Name          string `json:"name,omitempty"`
}

// Continuation resumes a suspended discussion. SpeakersSoFar and TurnsUsed
// are echoed back verbatim from the suspend marker.
type Continuation struct {
	UserAnswer    string         `json:"user_answer"`
	History       []HistoryEntry `json:"history"`
	SpeakersSoFar []string       `json:"speakers_so_far"`
	TurnsUsed     int            `json:"turns_used"`
}

// IntakeAnswer is the user's answer to one intake question.
type IntakeAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DiscussionRequest is the body of every discussion stream request. Which
// fields are set depends on the discussion mode.
type DiscussionRequest struct {
	Question string   `json:"question"`
	ElderID  string   `json:"elder_id,omitempty"`
	Elders   []string `json:"elders,omitempty"`

	Turns            *int   `json:"turns,omitempty"`
	Rounds           *int   `json:"rounds,omitempty"`
	MaxTurns         *int   `json:"max_turns,omitempty"`
	NumQuestions     *int   `json:"num_questions,omitempty"`
	DialecticTension *int   `json:"dialectic_tension,omitempty"`
	AllowNominations *bool  `json:"allow_nominations,omitempty"`
	ResponseLength   string `json:"response_length,omitempty"`
	PoetryForm       string `json:"poetry_form,omitempty"`

	IntakeAnswers []IntakeAnswer `json:"intake_answers,omitempty"`
	Continuation  *Continuation  `json:"continuation,omitempty"`
}

// Feedback is the implicit session feedback used by the adaptive profile.
type Feedback struct {
	Question            string           `json:"question"`
	Mode                string           `json:"mode"`
	ParticipantIDs      []string         `json:"elder_ids"`
	WasAutoSelected     bool             `json:"was_auto_selected"`
	WasModeAutoSelected bool             `json:"was_mode_auto_selected"`
	FollowUpCount       int              `json:"follow_up_count"`
	PodcastGenerated    bool             `json:"podcast_generated"`
	JournalSaved        bool             `json:"journal_saved"`
	DurationSeconds     int              `json:"duration_sec"`
	OverrideCount       int              `json:"override_count"`
	Settings            FeedbackSettings `json:"settings"`
}

type FeedbackSettings struct {
	DialecticTension int    `json:"dialectic_tension"`
	ResponseLength   string `json:"response_length"`
	DiscussionLength string `json:"discussion_length"`
}
