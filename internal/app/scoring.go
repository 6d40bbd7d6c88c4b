package app

import (
	"math"
	"math/rand"

	"github.com/germain250/quizly/internal/domain"
)

// scoreAward converts the remaining countdown into points for a correct
// answer: round(100 * (1 - elapsed/budget)), so an instant answer earns 100
// and one landing on the final tick earns 0.
func scoreAward(budget, remaining int) int {
	if budget <= 0 || remaining <= 0 {
		return 0
	}
	if remaining > budget {
		remaining = budget
	}
	elapsed := budget - remaining
	return int(math.Round(100 * (1 - float64(elapsed)/float64(budget))))
}

// shuffledOptions returns a fresh per-presentation shuffle of the
// question's options; the bank record itself is never reordered.
func shuffledOptions(q domain.Question) []string {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// drawQuestions shuffles the category bank and truncates it to the room's
// configured question count.
func drawQuestions(bank []domain.Question, count int) []domain.Question {
	drawn := make([]domain.Question, len(bank))
	copy(drawn, bank)
	rand.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})
	if count > 0 && len(drawn) > count {
		drawn = drawn[:count]
	}
	return drawn
}
