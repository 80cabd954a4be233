package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
)

// Storage определяет интерфейс журнала попыток.
type Storage interface {
	// SaveAttempt сохраняет завершенную попытку.
	SaveAttempt(ctx context.Context, attempt *models.Attempt) error

	// GetAttempt возвращает попытку по ID.
	GetAttempt(ctx context.Context, id string) (*models.Attempt, error)

	// ListAttempts возвращает последние limit попыток, новые первыми.
	ListAttempts(ctx context.Context, limit int) ([]*models.Attempt, error)
}

// Ошибки журнала
var (
	ErrNotFound      = errors.New("attempt not found")
	ErrAlreadyExists = errors.New("attempt already exists")
	ErrInvalid       = errors.New("invalid attempt")
)

// Validate проверяет попытку перед сохранением.
func Validate(attempt *models.Attempt) error {
	if attempt == nil {
		return fmt.Errorf("%w, attempt object is nil", ErrInvalid)
	}

	if attempt.ID == "" {
		return fmt.Errorf("%w, missing field id", ErrInvalid)
	}

	if attempt.Score < 0 || attempt.Score > attempt.Total {
		return fmt.Errorf("%w, score %d is out of range", ErrInvalid, attempt.Score)
	}

	return nil
}

// Summary — статистика по попыткам.
type Summary struct {
	Attempts     int
	AverageScore float64
	BestScore    int
	TotalTime    int
}

// Summarize считает статистику по попыткам attempts.
func Summarize(attempts []*models.Attempt) Summary {
	var summary Summary
	if len(attempts) == 0 {
		return summary
	}

	totalScore := 0
	for _, attempt := range attempts {
		totalScore += attempt.Score
		summary.TotalTime += attempt.TotalTime

		if attempt.Score > summary.BestScore {
			summary.BestScore = attempt.Score
		}
	}

	summary.Attempts = len(attempts)
	summary.AverageScore = float64(totalScore) / float64(len(attempts))

	return summary
}
