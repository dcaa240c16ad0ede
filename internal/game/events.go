package game

import (
	"time"

	"quran-quiz-service/internal/domain"
	"quran-quiz-service/internal/result"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseMenu      Phase = "menu"
	PhaseLoading   Phase = "loading"
	PhaseCountdown Phase = "countdown"
	PhasePlaying   Phase = "playing"
	PhaseFinished  Phase = "finished"
)

// EventType names a session event on the wire.
type EventType string

const (
	EventState     EventType = "state"
	EventPhase     EventType = "phase"
	EventCountdown EventType = "countdown"
	EventQuestion  EventType = "question"
	EventTimer     EventType = "timer"
	EventSelected  EventType = "selected"
	EventVerdict   EventType = "verdict"
	EventScore     EventType = "score"
	EventFinished  EventType = "finished"
)

// Event is pushed to session subscribers.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type PhasePayload struct {
	Phase Phase           `json:"phase"`
	Mode  domain.GameMode `json:"mode,omitempty"`
}

// CountdownPayload carries the pre-game countdown; Start marks the final "go".
type CountdownPayload struct {
	Value int  `json:"value"`
	Start bool `json:"start"`
}

type QuestionPayload struct {
	Index     int                   `json:"index"`
	Total     int                   `json:"total"`
	TimeLimit int                   `json:"timeLimit"`
	Question  domain.PublicQuestion `json:"question"`
}

type TimerPayload struct {
	QuestionID    string `json:"questionId"`
	TimeRemaining int    `json:"timeRemaining"`
}

type SelectedPayload struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
}

// VerdictPayload reveals the answer once a question is submitted or timed out.
type VerdictPayload struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Selected   string `json:"selected,omitempty"`
	Answer     string `json:"answer"`
	TimedOut   bool   `json:"timedOut"`
}

type ScorePayload struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correctCount"`
}

type FinishedPayload struct {
	Result      result.Result `json:"result"`
	Surrendered bool          `json:"surrendered"`
}

// State is a point-in-time view of a session.
type State struct {
	ID           string          `json:"id"`
	Phase        Phase           `json:"phase"`
	Mode         domain.GameMode `json:"mode,omitempty"`
	Countdown    int             `json:"countdown"`
	Index        int             `json:"index"`
	Total        int             `json:"total"`
	Score        int             `json:"score"`
	CorrectCount int             `json:"correctCount"`
	TotalPoints  int             `json:"totalPoints"`
	Question     *QuestionState  `json:"question,omitempty"`
	Result       *result.Result  `json:"result,omitempty"`
}

// QuestionState is the interaction state of the active question.
type QuestionState struct {
	Question      domain.PublicQuestion `json:"question"`
	TimeRemaining int                   `json:"timeRemaining"`
	Selected      string                `json:"selected,omitempty"`
	Submitted     bool                  `json:"submitted"`
	TimedOut      bool                  `json:"timedOut"`
}

// Summary is handed to the recorder when a session finishes.
type Summary struct {
	SessionID      string          `json:"sessionId"`
	Mode           domain.GameMode `json:"mode"`
	Score          int             `json:"score"`
	TotalPoints    int             `json:"totalPoints"`
	CorrectCount   int             `json:"correctCount"`
	TotalQuestions int             `json:"totalQuestions"`
	Percentage     int             `json:"percentage"`
	Stars          int             `json:"stars"`
	Surrendered    bool            `json:"surrendered"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt"`
}
