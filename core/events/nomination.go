package events

import "fmt"

// KindNomination identifies a guest nomination.
const KindNomination Kind = "nomination.received"

// Biography is the short biography sent along with a nomination.
type Biography struct {
	Summary   string `json:"summary,omitempty"`
	Source    string `json:"source,omitempty"`
	URL       string `json:"url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Nomination carries a guest nominated mid-discussion.
type Nomination struct {
	Base
	GuestID     string
	GuestName   string
	Expertise   string
	NominatedBy string
	// IsExisting is true when the guest is a known participant rather than a
	// newly invented one.
	IsExisting bool
	Biography  *Biography
}

// NewNomination creates a nomination event.
func NewNomination(guestID, guestName, expertise, nominatedBy string) Nomination {
	return Nomination{
		Base:        NewBase(KindNomination),
		GuestID:     guestID,
		GuestName:   guestName,
		Expertise:   expertise,
		NominatedBy: nominatedBy,
	}
}

// Identity returns how the nominee is presented once it starts speaking.
func (e Nomination) Identity() Identity {
	return Identity{ID: e.GuestID, Name: e.GuestName, Title: e.Expertise}
}

// Announcement is the narration of the nomination.
func (e Nomination) Announcement() string {
	return fmt.Sprintf("%s nominates %s, an expert in %s.", e.NominatedBy, e.GuestName, e.Expertise)
}
