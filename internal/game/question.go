package game

import (
	"quran-quiz-service/internal/audio"
	"quran-quiz-service/internal/domain"
)

// QuestionController runs one question: a countdown timer, option selection and
// a single verdict. It is created fresh for every question and never reused.
//
// The controller is not safe for concurrent use on its own; the owning Session
// serializes access, and timer callbacks run under the same lock via its scope.
type QuestionController struct {
	question domain.Question
	index    int
	total    int
	timing   Timing
	cues     audio.Emitter
	scope    *scope
	emit     func(Event)

	onVerdict func(correct bool)

	timeRemaining int
	selected      string
	submitted     bool
	timedOut      bool
	verdictSent   bool
	ticker        *handle
}

func newQuestionController(
	q domain.Question,
	index, total int,
	timing Timing,
	cues audio.Emitter,
	sc *scope,
	emit func(Event),
	onVerdict func(correct bool),
) *QuestionController {
	return &QuestionController{
		question:      q,
		index:         index,
		total:         total,
		timing:        timing,
		cues:          cues,
		scope:         sc,
		emit:          emit,
		onVerdict:     onVerdict,
		timeRemaining: timing.QuestionSeconds,
	}
}

func (c *QuestionController) start() {
	c.emit(Event{Type: EventQuestion, Payload: QuestionPayload{
		Index:     c.index,
		Total:     c.total,
		TimeLimit: c.timing.QuestionSeconds,
		Question:  c.question.Public(),
	}})
	c.ticker = c.scope.every(c.timing.Tick, c.tick)
}

// Select stores option as the current selection. Later calls replace earlier
// ones. It is a no-op once submitted or for an option the question lacks.
func (c *QuestionController) Select(option string) bool {
	if c.submitted || !c.question.HasOption(option) {
		return false
	}
	c.cues.Play(audio.CueClick)
	c.selected = option
	c.emit(Event{Type: EventSelected, Payload: SelectedPayload{QuestionID: c.question.ID, Option: option}})
	return true
}

// Submit locks in the selection and schedules the verdict. It requires a
// selection and is a no-op after the first submit or a timeout.
func (c *QuestionController) Submit() bool {
	if c.submitted || c.selected == "" {
		return false
	}
	c.submitted = true
	c.ticker.stop()

	correct := c.question.IsCorrect(c.selected)
	if correct {
		c.cues.Play(audio.CueCorrect)
	} else {
		c.cues.Play(audio.CueWrong)
	}
	c.reveal(correct)
	c.scope.after(c.timing.SubmitReveal, func() { c.deliver(correct) })
	return true
}

func (c *QuestionController) tick() {
	if c.submitted {
		return
	}
	c.timeRemaining--
	if c.timeRemaining <= 0 {
		c.timeRemaining = 0
	}
	c.emit(Event{Type: EventTimer, Payload: TimerPayload{QuestionID: c.question.ID, TimeRemaining: c.timeRemaining}})
	if c.timeRemaining == 0 {
		c.timeout()
	}
}

// timeout counts as a wrong answer even if an option was selected.
func (c *QuestionController) timeout() {
	c.submitted = true
	c.timedOut = true
	c.ticker.stop()
	c.cues.Play(audio.CueWrong)
	c.reveal(false)
	c.scope.after(c.timing.TimeoutReveal, func() { c.deliver(false) })
}

func (c *QuestionController) reveal(correct bool) {
	c.emit(Event{Type: EventVerdict, Payload: VerdictPayload{
		QuestionID: c.question.ID,
		Correct:    correct,
		Selected:   c.selected,
		Answer:     c.question.Answer(),
		TimedOut:   c.timedOut,
	}})
}

func (c *QuestionController) deliver(correct bool) {
	if c.verdictSent {
		return
	}
	c.verdictSent = true
	c.onVerdict(correct)
}

func (c *QuestionController) close() {
	c.scope.release()
}

func (c *QuestionController) state() *QuestionState {
	return &QuestionState{
		Question:      c.question.Public(),
		TimeRemaining: c.timeRemaining,
		Selected:      c.selected,
		Submitted:     c.submitted,
		TimedOut:      c.timedOut,
	}
}
