package domain

import (
	"fmt"
	"strings"
)

// Kind tags which payload of a Question is populated.
type Kind string

const (
	KindChoice    Kind = "choice"
	KindFillBlank Kind = "fill_blank"
)

// Topic is the content category a question was generated for.
type Topic string

const (
	TopicGuessSurah       Topic = "GUESS_SURAH"
	TopicCompleteVerse    Topic = "COMPLETE_VERSE"
	TopicTranslateWord    Topic = "TRANSLATE_WORD"
	TopicGeneralKnowledge Topic = "GENERAL_KNOWLEDGE"
)

const (
	// ChoiceOptionCount is the number of options a choice question carries.
	ChoiceOptionCount = 4
	// SetSize is the number of questions a session asks for.
	SetSize = 10

	MinDifficulty = 1
	MaxDifficulty = 10
)

// Question is a tagged union: exactly one of Choice or FillBlank is set, matching Kind.
type Question struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	Topic           Topic      `json:"topic,omitempty"`
	Text            string     `json:"text"`
	Points          int        `json:"points"`
	DifficultyLevel int        `json:"difficultyLevel,omitempty"`
	Choice          *Choice    `json:"choice,omitempty"`
	FillBlank       *FillBlank `json:"fillBlank,omitempty"`
}

// Choice is the multiple-choice payload.
type Choice struct {
	PromptMedia   string   `json:"promptMedia,omitempty"` // source-language text, e.g. an Arabic verse
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// FillBlank is the complete-the-verse payload.
type FillBlank struct {
	PrefixText string   `json:"prefixText"`
	SuffixText string   `json:"suffixText"`
	HiddenPart string   `json:"hiddenPart"`
	Options    []string `json:"options"`
}

// NewChoice builds a choice question.
func NewChoice(id, text string, points int, media string, options []string, answer string) Question {
	return Question{
		ID:     id,
		Kind:   KindChoice,
		Text:   text,
		Points: points,
		Choice: &Choice{PromptMedia: media, Options: options, CorrectAnswer: answer},
	}
}

// NewFillBlank builds a fill-in-the-blank question.
func NewFillBlank(id, text string, points int, prefix, hidden, suffix string, options []string) Question {
	return Question{
		ID:        id,
		Kind:      KindFillBlank,
		Topic:     TopicCompleteVerse,
		Text:      text,
		Points:    points,
		FillBlank: &FillBlank{PrefixText: prefix, SuffixText: suffix, HiddenPart: hidden, Options: options},
	}
}

// Options returns the ordered answer options of either variant.
func (q Question) Options() []string {
	switch {
	case q.Kind == KindChoice && q.Choice != nil:
		return q.Choice.Options
	case q.Kind == KindFillBlank && q.FillBlank != nil:
		return q.FillBlank.Options
	}
	return nil
}

// Answer returns the correct answer (correctAnswer or hiddenPart).
func (q Question) Answer() string {
	switch {
	case q.Kind == KindChoice && q.Choice != nil:
		return q.Choice.CorrectAnswer
	case q.Kind == KindFillBlank && q.FillBlank != nil:
		return q.FillBlank.HiddenPart
	}
	return ""
}

// IsCorrect compares a selection with the answer, case-sensitively.
func (q Question) IsCorrect(selected string) bool {
	answer := q.Answer()
	return answer != "" && selected == answer
}

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options() {
		if o == option {
			return true
		}
	}
	return false
}

// Validate checks the tag-payload consistency and the answer-in-options invariant.
func (q Question) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return invalid(q, "missing id")
	}
	if strings.TrimSpace(q.Text) == "" {
		return invalid(q, "missing text")
	}
	if q.Points <= 0 {
		return invalid(q, "points must be positive")
	}
	if q.DifficultyLevel != 0 && (q.DifficultyLevel < MinDifficulty || q.DifficultyLevel > MaxDifficulty) {
		return invalid(q, "difficulty out of range")
	}

	switch q.Kind {
	case KindChoice:
		if q.Choice == nil || q.FillBlank != nil {
			return invalid(q, "choice payload mismatch")
		}
		if len(q.Choice.Options) != ChoiceOptionCount {
			return invalid(q, fmt.Sprintf("choice needs %d options, got %d", ChoiceOptionCount, len(q.Choice.Options)))
		}
	case KindFillBlank:
		if q.FillBlank == nil || q.Choice != nil {
			return invalid(q, "fill-blank payload mismatch")
		}
		if len(q.FillBlank.Options) < 2 {
			return invalid(q, "fill-blank needs alternatives")
		}
	default:
		return invalid(q, fmt.Sprintf("unknown kind %q", q.Kind))
	}

	seen := make(map[string]struct{}, len(q.Options()))
	for _, o := range q.Options() {
		if strings.TrimSpace(o) == "" {
			return invalid(q, "empty option")
		}
		if _, dup := seen[o]; dup {
			return invalid(q, fmt.Sprintf("duplicate option %q", o))
		}
		seen[o] = struct{}{}
	}
	if _, ok := seen[q.Answer()]; !ok {
		return invalid(q, "answer not among options")
	}
	return nil
}

// Public strips the answer so the question can be shown before a verdict.
func (q Question) Public() PublicQuestion {
	pq := PublicQuestion{
		ID:              q.ID,
		Kind:            q.Kind,
		Topic:           q.Topic,
		Text:            q.Text,
		Points:          q.Points,
		DifficultyLevel: q.DifficultyLevel,
		Options:         append([]string(nil), q.Options()...),
	}
	switch {
	case q.Choice != nil:
		pq.PromptMedia = q.Choice.PromptMedia
	case q.FillBlank != nil:
		pq.PrefixText = q.FillBlank.PrefixText
		pq.SuffixText = q.FillBlank.SuffixText
	}
	return pq
}

// PublicQuestion is the answer-free view sent to players.
type PublicQuestion struct {
	ID              string   `json:"id"`
	Kind            Kind     `json:"kind"`
	Topic           Topic    `json:"topic,omitempty"`
	Text            string   `json:"text"`
	Points          int      `json:"points"`
	DifficultyLevel int      `json:"difficultyLevel"`
	PromptMedia     string   `json:"promptMedia,omitempty"`
	PrefixText      string   `json:"prefixText,omitempty"`
	SuffixText      string   `json:"suffixText,omitempty"`
	Options         []string `json:"options"`
}

// NormalizeSet drops invalid and duplicate questions, defaults difficulty to the
// 1-based position and truncates to SetSize. It returns the dropped errors.
func NormalizeSet(questions []Question) ([]Question, []error) {
	var (
		out  = make([]Question, 0, min(len(questions), SetSize))
		errs []error
		ids  = make(map[string]struct{}, len(questions))
	)
	for _, q := range questions {
		if len(out) == SetSize {
			break
		}
		if err := q.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := ids[q.ID]; dup {
			errs = append(errs, invalid(q, "duplicate id"))
			continue
		}
		ids[q.ID] = struct{}{}
		if q.DifficultyLevel == 0 {
			q.DifficultyLevel = len(out) + 1
		}
		out = append(out, q)
	}
	return out, errs
}

// TotalPoints sums the points of a question set.
func TotalPoints(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

func invalid(q Question, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidQuestion, q.ID, reason)
}
