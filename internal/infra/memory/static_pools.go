package memory

import (
	"context"
	"fmt"

	"pairquiz-service/internal/domain"
)

// StaticPoolLoader serves question pools from an in-memory map, keyed by
// subject then difficulty (useful for tests, demos, and DB-less deployments).
type StaticPoolLoader struct {
	pools map[string]map[string][]domain.Question
}

func NewStaticPoolLoader(pools map[string]map[string][]domain.Question) *StaticPoolLoader {
	return &StaticPoolLoader{pools: pools}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, subject, difficulty string) ([]domain.Question, error) {
	if byDifficulty, ok := l.pools[subject]; ok {
		if pool, ok := byDifficulty[difficulty]; ok {
			return pool, nil
		}
	}
	return nil, fmt.Errorf("no question pool for subject %q difficulty %q: %w", subject, difficulty, domain.ErrValidation)
}

// BuiltinPools returns the bundled question pools; swap the loader for a
// Postgres-backed one to serve curated content in production.
func BuiltinPools() map[string]map[string][]domain.Question {
	return map[string]map[string][]domain.Question{
		"mathematics": {
			"easy": {
				{ID: "math-e1", Prompt: "What is 7 + 8?", Options: []string{"13", "14", "15", "16"}, CorrectIndex: 2, Points: 1},
				{ID: "math-e2", Prompt: "What is 9 × 6?", Options: []string{"52", "54", "56", "58"}, CorrectIndex: 1, Points: 1},
				{ID: "math-e3", Prompt: "What is 100 ÷ 4?", Options: []string{"20", "24", "25", "30"}, CorrectIndex: 2, Points: 1},
				{ID: "math-e4", Prompt: "What is the next prime number after 7?", Options: []string{"9", "10", "11", "13"}, CorrectIndex: 2, Points: 1},
				{ID: "math-e5", Prompt: "How many sides does a hexagon have?", Options: []string{"5", "6", "7", "8"}, CorrectIndex: 1, Points: 1},
				{ID: "math-e6", Prompt: "What is 15% of 200?", Options: []string{"25", "30", "35", "40"}, CorrectIndex: 1, Points: 1},
				{ID: "math-e7", Prompt: "What is the square root of 81?", Options: []string{"7", "8", "9", "11"}, CorrectIndex: 2, Points: 1},
				{ID: "math-e8", Prompt: "What is 12 squared?", Options: []string{"124", "140", "142", "144"}, CorrectIndex: 3, Points: 1},
			},
			"medium": {
				{ID: "math-m1", Prompt: "What is the value of π rounded to two decimal places?", Options: []string{"3.12", "3.14", "3.16", "3.18"}, CorrectIndex: 1, Points: 2},
				{ID: "math-m2", Prompt: "Solve for x: 3x - 7 = 14", Options: []string{"5", "6", "7", "8"}, CorrectIndex: 2, Points: 2},
				{ID: "math-m3", Prompt: "What is the sum of the interior angles of a triangle?", Options: []string{"90°", "180°", "270°", "360°"}, CorrectIndex: 1, Points: 2},
				{ID: "math-m4", Prompt: "What is 2 to the power of 10?", Options: []string{"512", "1000", "1024", "2048"}, CorrectIndex: 2, Points: 2},
				{ID: "math-m5", Prompt: "What is the least common multiple of 4 and 6?", Options: []string{"10", "12", "18", "24"}, CorrectIndex: 1, Points: 2},
				{ID: "math-m6", Prompt: "If a fair die is rolled, what is the probability of an even number?", Options: []string{"1/6", "1/3", "1/2", "2/3"}, CorrectIndex: 2, Points: 2},
			},
		},
		"general knowledge": {
			"medium": {
				{ID: "gk-m1", Prompt: "Which Indian state is known as the 'Land of the Rising Sun'?", Options: []string{"Assam", "Arunachal Pradesh", "Nagaland", "Manipur"}, CorrectIndex: 1, Points: 1},
				{ID: "gk-m2", Prompt: "The Chipko Movement originated in which Indian state?", Options: []string{"Himachal Pradesh", "Uttarakhand", "Madhya Pradesh", "Rajasthan"}, CorrectIndex: 1, Points: 1},
				{ID: "gk-m3", Prompt: "Which Indian city is known as the 'Silicon Valley of India'?", Options: []string{"Hyderabad", "Pune", "Bangalore", "Chennai"}, CorrectIndex: 2, Points: 1},
				{ID: "gk-m4", Prompt: "The Kaziranga National Park is famous for which animal?", Options: []string{"Bengal Tiger", "Asiatic Lion", "One-horned Rhinoceros", "Indian Elephant"}, CorrectIndex: 2, Points: 1},
				{ID: "gk-m5", Prompt: "Who was the first President of India?", Options: []string{"Jawaharlal Nehru", "Dr. Rajendra Prasad", "S. Radhakrishnan", "Zakir Husain"}, CorrectIndex: 1, Points: 1},
				{ID: "gk-m6", Prompt: "The Battle of Plassey was fought in which year?", Options: []string{"1757", "1764", "1857", "1947"}, CorrectIndex: 0, Points: 1},
				{ID: "gk-m7", Prompt: "Which Indian state has the highest literacy rate?", Options: []string{"Tamil Nadu", "Maharashtra", "Kerala", "Goa"}, CorrectIndex: 2, Points: 1},
				{ID: "gk-m8", Prompt: "The Sundarbans mangrove forest is shared between India and which other country?", Options: []string{"Nepal", "Bangladesh", "Myanmar", "Bhutan"}, CorrectIndex: 1, Points: 1},
				{ID: "gk-m9", Prompt: "Who designed the Indian National Flag?", Options: []string{"Mahatma Gandhi", "Pingali Venkayya", "Jawaharlal Nehru", "Rabindranath Tagore"}, CorrectIndex: 1, Points: 1},
				{ID: "gk-m10", Prompt: "The Qutub Minar is located in which city?", Options: []string{"Agra", "Delhi", "Jaipur", "Lucknow"}, CorrectIndex: 1, Points: 1},
			},
		},
	}
}
