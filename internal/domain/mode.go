package domain

import "fmt"

// GameMode selects which question type the provider should emphasize.
type GameMode string

const (
	ModeGuessSurah      GameMode = "guess-surah"
	ModeCompleteVerse   GameMode = "complete-verse"
	ModeTajwidKnowledge GameMode = "tajwid-knowledge"
	ModeWordMeaning     GameMode = "word-meaning"
)

// Modes lists the supported game modes in menu order.
var Modes = []GameMode{ModeGuessSurah, ModeCompleteVerse, ModeTajwidKnowledge, ModeWordMeaning}

var modeTitles = map[GameMode]string{
	ModeGuessSurah:      "Tebak Surat & Ayat",
	ModeCompleteVerse:   "Lengkapi Ayat",
	ModeTajwidKnowledge: "Tajwid & Ilmu Quran",
	ModeWordMeaning:     "Arti Kata",
}

// ParseMode validates a raw mode tag.
func ParseMode(raw string) (GameMode, error) {
	mode := GameMode(raw)
	if _, ok := modeTitles[mode]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
	return mode, nil
}

// Title is the menu label of the mode.
func (m GameMode) Title() string {
	return modeTitles[m]
}

// Topic is the question type the mode asks the provider to focus on.
func (m GameMode) Topic() Topic {
	switch m {
	case ModeCompleteVerse:
		return TopicCompleteVerse
	case ModeTajwidKnowledge:
		return TopicGeneralKnowledge
	case ModeWordMeaning:
		return TopicTranslateWord
	default:
		return TopicGuessSurah
	}
}
