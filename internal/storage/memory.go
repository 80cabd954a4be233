package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
)

// MemoryStorage реализует Storage в памяти.
type MemoryStorage struct {
	attempts map[string]*models.Attempt // ключ - attemptID
	mu       sync.RWMutex
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		attempts: make(map[string]*models.Attempt),
	}
}

// SaveAttempt сохраняет копию попытки.
func (s *MemoryStorage) SaveAttempt(ctx context.Context, attempt *models.Attempt) error {
	if err := Validate(attempt); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attempts[attempt.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, attempt.ID)
	}

	s.attempts[attempt.ID] = clone(attempt)

	return nil
}

// GetAttempt возвращает попытку по ID.
func (s *MemoryStorage) GetAttempt(ctx context.Context, id string) (*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempt, ok := s.attempts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return clone(attempt), nil
}

// ListAttempts возвращает последние limit попыток.
// При limit <= 0 возвращаются все.
func (s *MemoryStorage) ListAttempts(ctx context.Context, limit int) ([]*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := make([]*models.Attempt, 0, len(s.attempts))
	for _, attempt := range s.attempts {
		attempts = append(attempts, clone(attempt))
	}

	sort.Slice(attempts, func(i, j int) bool {
		if !attempts[i].FinishedAt.Equal(attempts[j].FinishedAt) {
			return attempts[i].FinishedAt.After(attempts[j].FinishedAt)
		}

		return attempts[i].ID < attempts[j].ID
	})

	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}

	return attempts, nil
}

func clone(attempt *models.Attempt) *models.Attempt {
	copied := *attempt
	copied.Answers = append([]models.AnswerRecord(nil), attempt.Answers...)

	return &copied
}
