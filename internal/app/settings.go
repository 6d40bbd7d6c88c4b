package app

import "time"

// Settings controls game pacing and room defaults. Tick is the countdown
// resolution; tests shrink it to keep full-game runs fast.
type Settings struct {
	QuestionSeconds      int
	Intermission         time.Duration
	Tick                 time.Duration
	DefaultCategory      string
	DefaultQuestionCount int
}

// DefaultSettings matches the production pacing: 30-unit questions counted
// down once per second with a 2-second pause between questions.
func DefaultSettings() Settings {
	return Settings{
		QuestionSeconds:      30,
		Intermission:         2 * time.Second,
		Tick:                 time.Second,
		DefaultCategory:      "general-knowledge",
		DefaultQuestionCount: 10,
	}
}
