// Package events defines the typed discussion event contract.
//
// The backend emits untyped JSON frames where the presence of fields decides
// what a frame means. [Classify] turns one decoded [Record] into an ordered
// list of typed events, so that nothing past the decoding boundary has to
// inspect raw fields again.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - moderator.*
//   - participant.*
//   - synthesis.*
//   - text.*
//   - answer.*
//   - nomination.*
//   - session.*
//
// moderator events
//
//   - ModeratorStarted (moderator.started): the moderator opened a turn,
//     optionally tagged with a phase ("opening", "transition", "acknowledge",
//     "takeaways").
//   - ModeratorCompleted (moderator.completed): the moderator turn is complete;
//     carries both the raw text and its rendered form.
//
// participant events
//
//   - ParticipantStarted (participant.started): a participant opened a turn;
//     carries inline identity fields used only when the participant is
//     otherwise unknown.
//   - ParticipantInterrupted (participant.interrupted): the moderator cut the
//     current participant off.
//   - ParticipantCompleted (participant.completed): the participant turn is
//     complete.
//
// synthesis events
//
//   - SynthesisStarted (synthesis.started): the intake synthesis turn started.
//   - SynthesisCompleted (synthesis.completed): the intake synthesis is
//     complete; its raw text lists the questions posed to the user.
//
// text events
//
//   - TextChunk (text.chunk): append-only piece of the currently streamed turn,
//     addressed to a speaker channel.
//
// answer events
//
//   - AnswerCompleted (answer.completed): a single-answer response is
//     complete.
//
// nomination events
//
//   - Nomination (nomination.received): a participant nominated a guest.
//
// session events
//
//   - InputRequested (session.input_requested): the producer suspends the
//     session until the user answers; carries the state to resume with.
//   - DebateCompleted (session.debate_completed): the intake debate phase
//     ended.
//   - SessionCompleted (session.completed): the discussion ended.
package events
