package events

// Classify converts a record into typed events.
//
// A single record may carry several markers, in which case all of them are
// returned in a fixed priority order: turn starts, text, turn completions,
// nominations, suspension and finally completion markers. A record without
// any known marker yields no events.
func Classify(r Record) []Event {
	var classified []Event

	if r.ModeratorStart {
		classified = append(classified, NewModeratorStarted(r.Phase))
	}
	if r.ElderStart {
		classified = append(classified, NewParticipantStarted(r.ElderID, Identity{
			ID:    r.ElderID,
			Name:  r.Name,
			Title: r.Title,
			Era:   r.Era,
		}))
	}
	if r.SynthesisStart {
		classified = append(classified, NewSynthesisStarted())
	}

	if r.Chunk != "" {
		classified = append(classified, NewTextChunk(r.Chunk, r.ElderID))
	}
	if r.ElderInterrupted {
		classified = append(classified, NewParticipantInterrupted())
	}

	if r.ModeratorDone {
		classified = append(classified, NewModeratorCompleted(r.Raw, r.HTML))
	}
	if r.ElderDone {
		classified = append(classified, NewParticipantCompleted(r.ElderID, r.Name, r.Raw, r.HTML))
	}
	if r.SynthesisDone {
		classified = append(classified, NewSynthesisCompleted(r.Raw, r.HTML))
	}
	if r.Done {
		classified = append(classified, NewAnswerCompleted(r.Raw, r.HTML))
	}

	if r.Nomination {
		nomination := NewNomination(r.GuestID, r.GuestName, r.Expertise, r.NominatedBy)
		nomination.IsExisting = r.IsExistingElder
		nomination.Biography = r.Biography
		classified = append(classified, nomination)
	}

	if r.AskUser {
		var speakers []string
		var turnsUsed int
		if r.State != nil {
			speakers = r.State.SpeakersSoFar
			turnsUsed = r.State.TurnsUsed
		}
		classified = append(classified, NewInputRequested(speakers, turnsUsed))
	}

	if r.DebateDone {
		classified = append(classified, NewDebateCompleted())
	}
	if r.PanelDone || r.RoundtableDone {
		classified = append(classified, NewSessionCompleted())
	}

	return classified
}
