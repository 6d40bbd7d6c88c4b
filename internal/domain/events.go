package domain

// Event types published to clients.
const (
	EventRoomCreated      = "roomCreated"
	EventPlayerList       = "playerList"
	EventChatMessage      = "chatMessage"
	EventReaction         = "reaction"
	EventError            = "error"
	EventGameStarted      = "gameStarted"
	EventQuestionUpdate   = "questionUpdate"
	EventTimerUpdate      = "timerUpdate"
	EventScoreboardUpdate = "scoreboardUpdate"
	EventGameEnded        = "gameEnded"
)

// Event is the outbound wire envelope, addressed either to a single
// connection or broadcast to a room.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RoomCreatedPayload tells a connection which room it now belongs to.
type RoomCreatedPayload struct {
	Code string `json:"code"`
}

// ChatPayload carries both player chat and system notices; System is true
// for lifecycle notices and Username is empty in that case.
type ChatPayload struct {
	System   bool   `json:"system,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
}

// ReactionPayload relays an emoji reaction to the room.
type ReactionPayload struct {
	Emoji string `json:"emoji"`
	From  string `json:"from"`
}

// ErrorPayload carries a human-readable error notice.
type ErrorPayload struct {
	Message string `json:"message"`
}

// QuestionPayload announces the active question to the room.
type QuestionPayload struct {
	Category string       `json:"category"`
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Question QuestionView `json:"question"`
}

// GameEndedPayload carries the final scores when a game finishes.
type GameEndedPayload struct {
	Scores []FinalScore `json:"scores"`
}
