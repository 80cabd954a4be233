package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
)

// ExportCSV экспортирует попытки в CSV, по строке на попытку.
func ExportCSV(attempts []*models.Attempt) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	_ = w.Write(
		[]string{
			"ID",
			"StartedAt",
			"FinishedAt",
			"Score",
			"Total",
			"CorrectAnswers",
			"TotalTime",
			"Redirect",
		},
	)

	for _, a := range attempts {
		correct := 0
		for _, answer := range a.Answers {
			if answer.Correct {
				correct++
			}
		}

		_ = w.Write([]string{
			a.ID,
			a.StartedAt.UTC().Format(time.RFC3339),
			a.FinishedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(a.Score),
			strconv.Itoa(a.Total),
			strconv.Itoa(correct),
			strconv.Itoa(a.TotalTime),
			a.Redirect,
		})
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush buffer: %w", err)
	}

	return buf.Bytes(), nil
}
