package quiz

import (
	"context"
	"time"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
)

// Параметры квиза
const (
	QuizLength        = 10
	QuestionTime      = 60 // секунд на вопрос
	WarningThreshold  = 10
	CriticalThreshold = 5
	FeedbackDelay     = 3 * time.Second
	SelectionDelay    = 500 * time.Millisecond
)

// Уведомления пользователю
const (
	MsgLoadFailed   = "Error loading question"
	MsgSubmitFailed = "Error submitting answer"
	MsgFinishFailed = "Error finishing quiz"
	MsgEmptyAnswer  = "Please enter an answer"
)

// State — состояние сессии квиза.
type State string

const (
	StateLoading         State = "loading"
	StateAwaitingAnswer  State = "awaiting_answer"
	StateShowingFeedback State = "showing_feedback"
	StateFinished        State = "finished"
)

// CountdownLevel — визуальный уровень обратного отсчета.
type CountdownLevel int

const (
	CountdownNormal CountdownLevel = iota
	CountdownWarning
	CountdownCritical
)

func (l CountdownLevel) String() string {
	switch l {
	case CountdownWarning:
		return "warning"
	case CountdownCritical:
		return "critical"
	}

	return "normal"
}

// levelFor возвращает уровень для оставшегося времени remaining.
func levelFor(remaining int) CountdownLevel {
	switch {
	case remaining <= CriticalThreshold:
		return CountdownCritical
	case remaining <= WarningThreshold:
		return CountdownWarning
	}

	return CountdownNormal
}

// Countdown — состояние отсчета для отображения.
type Countdown struct {
	Remaining int
	Total     int
	Level     CountdownLevel
}

// Renderer определяет границу отображения. Контроллер только отдает инструкции,
// оформление остается на стороне реализации.
type Renderer interface {
	// RenderQuestion показывает вопрос и элементы ответа.
	RenderQuestion(question *models.Question)

	// UpdateCountdown обновляет отображение оставшегося времени.
	UpdateCountdown(countdown Countdown)

	// MarkSelected отмечает выбранный вариант, снимая прежнюю отметку.
	MarkSelected(option string)

	// FreezeControls блокирует элементы ответа.
	FreezeControls()

	// RenderFeedback показывает результат проверки ответа.
	RenderFeedback(result *models.AnswerResult)

	// Notify показывает блокирующее уведомление.
	Notify(message string)

	// Navigate переходит на страницу url.
	Navigate(url string)
}

// Recorder сохраняет завершенные попытки.
type Recorder interface {
	SaveAttempt(ctx context.Context, attempt *models.Attempt) error
}

// Input — ввод пользователя, который контроллер обрабатывает в своем цикле.
type Input interface {
	isInput()
}

// Selection — выбор варианта для mcq и true/false.
type Selection struct {
	Option string
}

// TextAnswer — ответ на вопрос с пропуском, отправленный явно.
type TextAnswer struct {
	Text string
}

// Reload — ручная перезагрузка после ошибки.
type Reload struct{}

func (Selection) isInput()  {}
func (TextAnswer) isInput() {}
func (Reload) isInput()     {}
