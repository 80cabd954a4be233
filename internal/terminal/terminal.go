package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
	"github.com/letsssgooo/cricketQuiz/internal/quiz"
)

const (
	reloadCommand = ":r"
	progressWidth = 20
)

var (
	colorNormal   = color.New(color.FgGreen, color.Bold)
	colorWarning  = color.New(color.FgYellow, color.Bold)
	colorCritical = color.New(color.FgRed, color.Bold, color.BlinkSlow)
	colorCorrect  = color.New(color.FgGreen, color.Bold)
	colorWrong    = color.New(color.FgRed, color.Bold)
	colorNotice   = color.New(color.FgHiYellow)
	colorMuted    = color.New(color.FgHiBlack)
)

// Inputs — получатель ввода пользователя.
type Inputs interface {
	Select(option string)
	SubmitText(text string)
	Reload()
}

// Terminal реализует quiz.Renderer для терминала и разбирает ввод пользователя.
type Terminal struct {
	out      io.Writer
	mu       sync.Mutex
	question *models.Question
	frozen   bool
	inline   bool // строка отсчета не завершена переводом строки
}

var _ quiz.Renderer = (*Terminal)(nil)

// New создаёт терминал, который пишет в out.
func New(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) RenderQuestion(question *models.Question) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.breakLine()
	t.question = question
	t.frozen = false

	fmt.Fprintln(t.out)
	colorMuted.Fprintf(t.out, "Question %d of %d\n", question.Number, question.Total)
	fmt.Fprintf(t.out, "%s\n\n", question.Text)

	switch question.Type {
	case models.QuestionTypeFillBlank:
		colorMuted.Fprintln(t.out, "Type your answer and press Enter.")
	default:
		for i, choice := range question.Choices() {
			fmt.Fprintf(t.out, "  %s. %s\n", IndexToLetter(i), choice)
		}
		colorMuted.Fprintln(t.out, "Type the letter of your answer.")
	}
}

func (t *Terminal) UpdateCountdown(countdown quiz.Countdown) {
	t.mu.Lock()
	defer t.mu.Unlock()

	filled := 0
	if countdown.Total > 0 {
		filled = countdown.Remaining * progressWidth / countdown.Total
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled)

	c := colorNormal
	switch countdown.Level {
	case quiz.CountdownWarning:
		c = colorWarning
	case quiz.CountdownCritical:
		c = colorCritical
	}

	fmt.Fprint(t.out, "\r")
	c.Fprintf(t.out, "Time remaining: %2ds [%s]", countdown.Remaining, bar)
	t.inline = true
}

func (t *Terminal) MarkSelected(option string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.breakLine()
	fmt.Fprintf(t.out, "Selected: %s\n", option)
}

func (t *Terminal) FreezeControls() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frozen = true
}

func (t *Terminal) RenderFeedback(result *models.AnswerResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.breakLine()

	if result.Correct {
		colorCorrect.Fprintln(t.out, "Correct!")
	} else {
		colorWrong.Fprintln(t.out, "Incorrect")
		fmt.Fprintf(t.out, "Correct answer: %s\n", result.CorrectAnswer)
	}

	if result.Explanation != "" {
		fmt.Fprintf(t.out, "Explanation: %s\n", result.Explanation)
	}
}

func (t *Terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.breakLine()
	colorNotice.Fprintf(t.out, "! %s\n", message)
	if message != quiz.MsgEmptyAnswer {
		colorMuted.Fprintf(t.out, "Type %s to reload.\n", reloadCommand)
	}
}

func (t *Terminal) Navigate(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.breakLine()
	fmt.Fprintf(t.out, "\nQuiz finished. Results: %s\n", url)
}

// breakLine завершает строку отсчета, вызывается под t.mu.
func (t *Terminal) breakLine() {
	if !t.inline {
		return
	}

	fmt.Fprintln(t.out)
	t.inline = false
}

// Parse превращает строку ввода в ввод для текущего вопроса.
// Возвращает nil, если строка ничего не значит.
func (t *Terminal) Parse(line string) quiz.Input {
	trimmed := strings.TrimSpace(line)
	if trimmed == reloadCommand {
		return quiz.Reload{}
	}

	t.mu.Lock()
	question := t.question
	frozen := t.frozen
	t.mu.Unlock()

	if question == nil || frozen {
		return nil
	}

	if question.Type == models.QuestionTypeFillBlank {
		return quiz.TextAnswer{Text: line}
	}

	choices := question.Choices()
	if idx, ok := LetterToIndex(trimmed); ok && idx < len(choices) {
		return quiz.Selection{Option: choices[idx]}
	}

	for _, choice := range choices {
		if strings.EqualFold(choice, trimmed) {
			return quiz.Selection{Option: choice}
		}
	}

	return nil
}

// ReadInput читает строки из in и передает их в inputs, пока in не закончится
// или не будет отменен ctx.
func (t *Terminal) ReadInput(ctx context.Context, in io.Reader, inputs Inputs) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch input := t.Parse(scanner.Text()).(type) {
		case quiz.Selection:
			inputs.Select(input.Option)
		case quiz.TextAnswer:
			inputs.SubmitText(input.Text)
		case quiz.Reload:
			inputs.Reload()
		}
	}

	return scanner.Err()
}
