package models

import (
	"time"
)

// Файл с моделями, которыми обмениваются клиент сервиса квизов, контроллер
// сессии и журнал попыток. Сервис отдает их в JSON, контроллер только читает.

// QuestionType — тип вопроса, определяет набор элементов ответа.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "mcq"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeFillBlank      QuestionType = "fill_blank"
)

// Valid сообщает, известен ли тип вопроса.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeFillBlank:
		return true
	}

	return false
}

// MaxOptions — наибольшее число вариантов в вопросе mcq.
const MaxOptions = 6

// Selectable сообщает, отвечают ли на вопрос выбором варианта.
func (t QuestionType) Selectable() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Question представляет вопрос, полученный от сервиса.
// Number — позиция вопроса, начиная с 1.
type Question struct {
	ID      int          `json:"id"`
	Number  int          `json:"number"`
	Total   int          `json:"total"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// Choices возвращает варианты, которые показываются пользователю.
// Для true/false сервис не присылает варианты, они фиксированы.
func (q *Question) Choices() []string {
	switch q.Type {
	case QuestionTypeMultipleChoice:
		return q.Options
	case QuestionTypeTrueFalse:
		return []string{"True", "False"}
	}

	return nil
}

// AnswerSubmission — ответ на вопрос. Пустой Answer означает, что время вышло.
type AnswerSubmission struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
	TimeTaken  int    `json:"time_taken"`
}

// AnswerResult — проверка ответа сервисом.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// FinishResult — ответ сервиса на завершение квиза.
type FinishResult struct {
	Redirect string `json:"redirect"`
}

// StartResult — ответ сервиса на запуск квиза.
type StartResult struct {
	QuizID   int    `json:"quiz_id"`
	Redirect string `json:"redirect"`
}

// Category — категория вопросов.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AnswerRecord — ответ, сохраняемый в журнале попыток.
type AnswerRecord struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
	TimeTaken  int    `json:"time_taken"`
	Correct    bool   `json:"correct"`
}

// Attempt — одна завершенная попытка прохождения квиза.
type Attempt struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Score      int
	Total      int
	TotalTime  int // в секундах
	Redirect   string
	Answers    []AnswerRecord
}
