package domain

// Question is a single record from the question bank. Answer holds the
// correct option's value and must never be sent to clients.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Category is a named collection of bank questions.
type Category struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// QuestionView is the client-facing shape of the active question: the
// option order is the per-presentation shuffle and the answer is omitted.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// PlayerInfo is a roster snapshot entry.
type PlayerInfo struct {
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
	Score    int    `json:"score"`
}

// ScoreEntry is a scoreboard snapshot entry.
type ScoreEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// FinalScore extends ScoreEntry with the per-player correctness tally
// accumulated over the game.
type FinalScore struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
}

// Tally counts correct and incorrect submissions for one player.
type Tally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}
