package events

// Record is one decoded frame exactly as emitted by the backend. Fields are
// optional and their presence decides the meaning of the frame; use
// [Classify] instead of inspecting them directly.
type Record struct {
	ModeratorStart bool   `json:"moderator_start,omitempty"`
	ModeratorDone  bool   `json:"moderator_done,omitempty"`
	Phase          string `json:"phase,omitempty"`

	ElderStart       bool   `json:"elder_start,omitempty"`
	ElderDone        bool   `json:"elder_done,omitempty"`
	ElderInterrupted bool   `json:"elder_interrupted,omitempty"`
	ElderID          string `json:"elder_id,omitempty"`
	Name             string `json:"name,omitempty"`
	Title            string `json:"title,omitempty"`
	Era              string `json:"era,omitempty"`

	SynthesisStart bool `json:"synthesis_start,omitempty"`
	SynthesisDone  bool `json:"synthesis_done,omitempty"`

	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Raw   string `json:"raw,omitempty"`
	HTML  string `json:"html,omitempty"`

	Nomination      bool       `json:"nomination,omitempty"`
	GuestID         string     `json:"guest_id,omitempty"`
	GuestName       string     `json:"guest_name,omitempty"`
	Expertise       string     `json:"expertise,omitempty"`
	NominatedBy     string     `json:"nominated_by,omitempty"`
	IsExistingElder bool       `json:"is_existing_elder,omitempty"`
	Biography       *Biography `json:"biography,omitempty"`

	AskUser bool          `json:"ask_user,omitempty"`
	State   *SuspendState `json:"state,omitempty"`

	PanelDone      bool `json:"panel_done,omitempty"`
	RoundtableDone bool `json:"roundtable_done,omitempty"`
	DebateDone     bool `json:"debate_done,omitempty"`
}

// SuspendState is the producer state attached to an ask_user frame.
type SuspendState struct {
	SpeakersSoFar []string `json:"speakers_so_far"`
	TurnsUsed     int      `json:"turns_used"`
}
