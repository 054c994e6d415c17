package cli

import "trivia-quiz/internal/domain"

// sampleCategories is served when no Postgres URL is configured.
func sampleCategories() map[string]domain.CategoryBank {
	return map[string]domain.CategoryBank{
		"science": {
			Category: domain.Category{ID: "science", Name: "Science", Description: "Physics, chemistry and the stars"},
			Questions: []domain.BankQuestion{
				bank("sci-1", "What is the chemical symbol for gold?", domain.DifficultyEasy, "Au", "Ag", "Gd", "Go"),
				bank("sci-2", "Which planet has the shortest year?", domain.DifficultyEasy, "Mercury", "Venus", "Mars", "Earth"),
				bank("sci-3", "What particle carries a negative charge?", domain.DifficultyMedium, "Electron", "Proton", "Neutron", "Photon"),
				bank("sci-4", "Approximate speed of light in vacuum (km/s)?", domain.DifficultyMedium, "300000", "150000", "30000", "3000000"),
				bank("sci-5", "Which element has atomic number 26?", domain.DifficultyHard, "Iron", "Cobalt", "Nickel", "Manganese"),
			},
		},
		"history": {
			Category: domain.Category{ID: "history", Name: "History", Description: "Dates and turning points"},
			Questions: []domain.BankQuestion{
				bank("his-1", "In which year did the Berlin Wall fall?", domain.DifficultyEasy, "1989", "1991", "1985", "1961"),
				bank("his-2", "Who was the first emperor of Rome?", domain.DifficultyMedium, "Augustus", "Julius Caesar", "Nero", "Trajan"),
				bank("his-3", "The Treaty of Westphalia was signed in?", domain.DifficultyHard, "1648", "1618", "1713", "1555"),
			},
		},
	}
}

// bank builds a question whose first option is the correct one.
func bank(id, text string, difficulty domain.Difficulty, correct string, wrong ...string) domain.BankQuestion {
	q := domain.BankQuestion{ID: id, Text: text, Difficulty: difficulty}
	q.Options = append(q.Options, domain.Option{ID: id + "-a", Text: correct, Correct: true})
	for i, w := range wrong {
		q.Options = append(q.Options, domain.Option{ID: id + "-" + string(rune('b'+i)), Text: w})
	}
	return q
}
