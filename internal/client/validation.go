package client

import (
	"fmt"
	"strings"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
)

// validateQuestion проверяет на корректность вопрос, полученный от сервиса
func validateQuestion(question *models.Question) error {
	if strings.TrimSpace(question.Text) == "" {
		return fmt.Errorf("%w, missing field text of question %d", ErrInvalidQuestion, question.ID)
	}

	if !question.Type.Valid() {
		return fmt.Errorf("%w, unknown type %q of question %d", ErrInvalidQuestion, question.Type, question.ID)
	}

	if question.Type == models.QuestionTypeMultipleChoice && len(question.Options) < 2 {
		return fmt.Errorf(
			"%w, amount of options must be at least two in question %d",
			ErrInvalidQuestion,
			question.ID,
		)
	}

	if question.Type == models.QuestionTypeMultipleChoice && len(question.Options) > models.MaxOptions {
		return fmt.Errorf(
			"%w, amount of options must be at most %d in question %d",
			ErrInvalidQuestion,
			models.MaxOptions,
			question.ID,
		)
	}

	if question.Number < 1 || (question.Total > 0 && question.Number > question.Total) {
		return fmt.Errorf("%w, number %d of question %d is out of range", ErrInvalidQuestion, question.Number, question.ID)
	}

	return nil
}
