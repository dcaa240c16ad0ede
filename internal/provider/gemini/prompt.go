package gemini

import (
	"fmt"

	"quran-quiz-service/internal/domain"
)

var modeContext = map[domain.GameMode]string{
	domain.ModeGuessSurah:      "Focus strictly on 'GUESS_SURAH' type. Show a verse (arabicText) and ask which Surah it belongs to.",
	domain.ModeCompleteVerse:   "Focus strictly on 'COMPLETE_VERSE' type. Provide verses with missing parts.",
	domain.ModeTajwidKnowledge: "Focus strictly on 'GENERAL_KNOWLEDGE' type. Ask about Tajweed rules (Izhar, Idgham, etc) and Makharijul Huruf based on provided snippets or theoretical questions.",
	domain.ModeWordMeaning:     "Focus strictly on 'TRANSLATE_WORD' type. Show an Arabic word/phrase and ask for Indonesian translation.",
}

const promptTemplate = `Create a fresh, unique, and randomized Quran Quiz set of %d questions.
Mode: %s.
Context: %s

SESSION_ID: %s (Use this to ensure completely new questions).

STRICT RANDOMIZATION RULES:
1. NO REPETITION: Do NOT use the same common questions (e.g. Al-Ikhlas, Al-Fatihah, An-Nas) unless they are for Level 1. You MUST select verses from RANDOM Juz (Juz 1 to 30) distributed evenly.
2. FRESH CONTENT: Ensure the questions are different from a standard "default" set. Pick random Surahs like Al-Mulk, Yasin, Ar-Rahman, Al-Waqiah, Al-Kahf, and random verses from Al-Baqarah, Ali Imran, etc.
3. DIFFICULTY CURVE:
   - Q1-Q3: Easy (Common Juz 30)
   - Q4-Q7: Medium (Famous verses from other Juz)
   - Q8-Q10: Hard (Random verses from middle of the Quran)
4. CONTENT SEPARATION: If the question involves Arabic text, put the Arabic ONLY in 'arabicText'. The 'questionText' must be the instruction in Indonesian.
5. OPTIONS: Provide %d options. They must be distinct. Randomize the correct answer position.

Output strictly JSON matching the schema.`

func buildPrompt(mode domain.GameMode, seed string) string {
	return fmt.Sprintf(promptTemplate, domain.SetSize, mode, modeContext[mode], seed, domain.ChoiceOptionCount)
}

// responseSchema constrains the model output to the question record shape.
var responseSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id": map[string]any{"type": "STRING"},
					"type": map[string]any{
						"type": "STRING",
						"enum": []any{
							string(domain.TopicGuessSurah),
							string(domain.TopicCompleteVerse),
							string(domain.TopicTranslateWord),
							string(domain.TopicGeneralKnowledge),
						},
					},
					"questionText":    map[string]any{"type": "STRING"},
					"points":          map[string]any{"type": "NUMBER"},
					"difficultyLevel": map[string]any{"type": "NUMBER", "description": "Level 1 to 10"},
					"arabicText":      map[string]any{"type": "STRING"},
					"options":         map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
					"correctAnswer":   map[string]any{"type": "STRING"},
					"versePart1":      map[string]any{"type": "STRING"},
					"hiddenPart":      map[string]any{"type": "STRING"},
					"versePart2":      map[string]any{"type": "STRING"},
				},
				"required": []any{"id", "type", "questionText", "points", "options", "correctAnswer", "difficultyLevel"},
			},
		},
	},
}
