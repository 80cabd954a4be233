package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
)

// Client определяет интерфейс клиента сервиса квизов.
type Client interface {
	// Login авторизует пользователя, сессия хранится в cookie.
	Login(ctx context.Context, username, password string) error

	// Categories возвращает категории вида спорта sportID.
	Categories(ctx context.Context, sportID int) ([]models.Category, error)

	// StartQuiz создает новую попытку из 10 вопросов.
	StartQuiz(ctx context.Context, categoryID int, difficulty string) (*models.StartResult, error)

	// FetchQuestion получает вопрос по порядковому номеру (с 0).
	FetchQuestion(ctx context.Context, ordinal int) (*models.Question, error)

	// SubmitAnswer отправляет ответ на текущий вопрос.
	SubmitAnswer(ctx context.Context, submission models.AnswerSubmission) (*models.AnswerResult, error)

	// FinishQuiz завершает квиз и возвращает адрес страницы результатов.
	FinishQuiz(ctx context.Context, totalTime int) (*models.FinishResult, error)
}

// APIError — ответ сервиса с кодом, отличным от 2xx.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("quiz service error: status %d", e.StatusCode)
	}

	return fmt.Sprintf("quiz service error: status %d: %s", e.StatusCode, e.Message)
}

// ErrInvalidQuestion — вопрос от сервиса не прошел проверку.
var ErrInvalidQuestion = errors.New("invalid question payload")

// Маршруты сервиса
const (
	pathLogin      = "/login"
	pathCategories = "/categories"
	pathStartQuiz  = "/start_quiz"
	pathQuestion   = "/get_question/%d"
	pathSubmit     = "/submit_answer"
	pathFinish     = "/finish_quiz"
)
