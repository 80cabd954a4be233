package quiz

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/letsssgooo/cricketQuiz/internal/client"
	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
	"k8s.io/utils/clock"
)

// ErrAlreadyStarted возвращается при повторном запуске сессии.
var ErrAlreadyStarted = errors.New("quiz session already started")

// Controller ведет одну попытку прохождения квиза: загружает вопросы,
// считает время, отправляет ответы и показывает результат.
// Все состояние принадлежит циклу Run, ввод приходит через Select, SubmitText и Reload.
type Controller struct {
	client   client.Client
	renderer Renderer
	recorder Recorder
	clock    clock.WithTicker

	inputs  chan Input
	done    chan struct{}
	started bool

	attemptID string
	startedAt time.Time
	elapsed   int
	remaining int
	question  *models.Question
	result    *models.AnswerResult
	answers   []models.AnswerRecord
	navigated bool

	countdown clock.Ticker // nil, если отсчет остановлен
	selection clock.Timer  // отложенная отправка выбранного варианта
	pending   string
	feedback  clock.Timer // переход к следующему вопросу

	mu      sync.Mutex // для state, ordinal, score, stalled
	state   State
	ordinal int
	score   int
	stalled bool
}

// Option настраивает Controller.
type Option func(*Controller)

// WithClock задает часы, по которым идут отсчет и задержки.
func WithClock(c clock.WithTicker) Option {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// WithRecorder задает журнал, в который сохраняется завершенная попытка.
func WithRecorder(r Recorder) Option {
	return func(ctrl *Controller) {
		ctrl.recorder = r
	}
}

// NewController создаёт новую сессию квиза.
func NewController(quizClient client.Client, renderer Renderer, opts ...Option) *Controller {
	ctrl := &Controller{
		client:    quizClient,
		renderer:  renderer,
		clock:     clock.RealClock{},
		inputs:    make(chan Input, 16),
		done:      make(chan struct{}),
		attemptID: uuid.NewString(),
		state:     StateLoading,
		answers:   make([]models.AnswerRecord, 0, QuizLength),
	}

	for _, opt := range opts {
		opt(ctrl)
	}

	return ctrl
}

// Status — снимок состояния сессии.
type Status struct {
	State   State
	Ordinal int
	Score   int
	Stalled bool
}

// Status возвращает текущее состояние сессии.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		State:   c.state,
		Ordinal: c.ordinal,
		Score:   c.score,
		Stalled: c.stalled,
	}
}

// AttemptID возвращает идентификатор попытки.
func (c *Controller) AttemptID() string {
	return c.attemptID
}

// Select выбирает вариант ответа option.
func (c *Controller) Select(option string) {
	c.send(Selection{Option: option})
}

// SubmitText отправляет ответ на вопрос с пропуском.
func (c *Controller) SubmitText(text string) {
	c.send(TextAnswer{Text: text})
}

// Reload повторяет шаг, на котором сессия остановилась из-за ошибки.
func (c *Controller) Reload() {
	c.send(Reload{})
}

func (c *Controller) send(in Input) {
	select {
	case c.inputs <- in:
	case <-c.done:
	}
}

// Run запускает сессию с первого вопроса и обрабатывает события до перехода
// на страницу результатов. Возвращает ctx.Err(), если сессия прервана.
func (c *Controller) Run(ctx context.Context) error {
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	defer close(c.done)
	defer c.stopTimers()

	c.startedAt = c.clock.Now()
	slog.Info("quiz session started", "attempt", c.attemptID)

	c.loadQuestion(ctx, 0)

	for !c.navigated {
		select {
		case <-ctx.Done():
			slog.Info("quiz session interrupted", "attempt", c.attemptID, "ordinal", c.ordinal)
			return ctx.Err()
		case in := <-c.inputs:
			c.handleInput(ctx, in)
		case <-tickerC(c.countdown):
			c.tick(ctx)
		case <-timerC(c.selection):
			c.selection = nil
			c.submitAnswer(ctx, c.pending, c.timeTaken())
		case <-timerC(c.feedback):
			c.feedback = nil
			c.advance(ctx)
		}
	}

	return nil
}

func (c *Controller) handleInput(ctx context.Context, in Input) {
	switch in := in.(type) {
	case Selection:
		c.selectOption(in.Option)
	case TextAnswer:
		c.submitText(ctx, in.Text)
	case Reload:
		c.reload(ctx)
	}
}

// loadQuestion загружает вопрос ordinal и запускает отсчет.
func (c *Controller) loadQuestion(ctx context.Context, ordinal int) {
	c.setState(StateLoading)

	question, err := c.client.FetchQuestion(ctx, ordinal)
	if err != nil {
		slog.Error("failed to load question", "ordinal", ordinal, "err", err)
		c.fail(ctx, MsgLoadFailed)
		return
	}

	c.question = question
	c.result = nil
	c.renderer.RenderQuestion(question)
	c.setState(StateAwaitingAnswer)
	c.startCountdown()

	slog.Debug("question loaded", "ordinal", ordinal, "question", question.ID, "type", question.Type)
}

// startCountdown запускает отсчет заново, прежний отсчет останавливается.
func (c *Controller) startCountdown() {
	c.stopCountdown()

	c.remaining = QuestionTime
	c.countdown = c.clock.NewTicker(time.Second)
	c.renderer.UpdateCountdown(c.countdownView())
}

// stopCountdown останавливает отсчет, если он идет.
func (c *Controller) stopCountdown() {
	if c.countdown == nil {
		return
	}

	c.countdown.Stop()
	c.countdown = nil
}

func (c *Controller) tick(ctx context.Context) {
	if c.remaining <= 0 {
		c.stopCountdown()
		return
	}

	c.remaining--
	c.renderer.UpdateCountdown(c.countdownView())

	if c.remaining == 0 {
		c.timeUp(ctx)
	}
}

// timeUp отправляет пустой ответ с полным временем.
func (c *Controller) timeUp(ctx context.Context) {
	c.stopCountdown()
	c.cancelSelection()

	slog.Debug("time is up", "ordinal", c.ordinal)
	c.submitAnswer(ctx, "", QuestionTime)
}

func (c *Controller) timeTaken() int {
	return QuestionTime - c.remaining
}

func (c *Controller) countdownView() Countdown {
	return Countdown{
		Remaining: c.remaining,
		Total:     QuestionTime,
		Level:     levelFor(c.remaining),
	}
}

// selectOption отмечает вариант и откладывает отправку на SelectionDelay.
// Новый выбор в этом окне заменяет прежний.
func (c *Controller) selectOption(option string) {
	if !c.acceptsAnswer() || !c.question.Type.Selectable() {
		slog.Debug("selection ignored", "option", option, "state", c.state)
		return
	}

	if !contains(c.question.Choices(), option) {
		slog.Debug("unknown option", "option", option, "question", c.question.ID)
		return
	}

	c.cancelSelection()
	c.pending = option
	c.selection = c.clock.NewTimer(SelectionDelay)
	c.renderer.MarkSelected(option)
}

func (c *Controller) cancelSelection() {
	if c.selection == nil {
		return
	}

	c.selection.Stop()
	c.selection = nil
	c.pending = ""
}

// submitText отправляет ответ на вопрос с пропуском, пустой ответ отклоняется.
func (c *Controller) submitText(ctx context.Context, text string) {
	if !c.acceptsAnswer() || c.question.Type != models.QuestionTypeFillBlank {
		slog.Debug("text answer ignored", "state", c.state)
		return
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		c.renderer.Notify(MsgEmptyAnswer)
		return
	}

	c.submitAnswer(ctx, answer, c.timeTaken())
}

func (c *Controller) acceptsAnswer() bool {
	return c.state == StateAwaitingAnswer && !c.stalled && c.question != nil
}

// submitAnswer останавливает отсчет до запроса, поэтому повторный вызов
// после остановки ничего не отправляет.
func (c *Controller) submitAnswer(ctx context.Context, answer string, timeTaken int) {
	if !c.acceptsAnswer() {
		return
	}

	c.stopCountdown()
	c.cancelSelection()

	submission := models.AnswerSubmission{
		QuestionID: c.question.ID,
		Answer:     answer,
		TimeTaken:  timeTaken,
	}

	result, err := c.client.SubmitAnswer(ctx, submission)
	if err != nil {
		slog.Error("failed to submit answer", "question", submission.QuestionID, "err", err)
		c.fail(ctx, MsgSubmitFailed)
		return
	}

	c.result = result
	c.answers = append(c.answers, models.AnswerRecord{
		QuestionID: submission.QuestionID,
		Answer:     submission.Answer,
		TimeTaken:  submission.TimeTaken,
		Correct:    result.Correct,
	})

	if result.Correct {
		c.mu.Lock()
		c.score++
		c.mu.Unlock()
	}

	c.showFeedback(result)
}

// showFeedback блокирует ввод, показывает результат и планирует переход.
func (c *Controller) showFeedback(result *models.AnswerResult) {
	c.setState(StateShowingFeedback)
	c.renderer.FreezeControls()
	c.feedback = c.clock.NewTimer(FeedbackDelay)
	c.renderer.RenderFeedback(result)
}

// advance переходит к следующему вопросу или завершает квиз.
func (c *Controller) advance(ctx context.Context) {
	c.mu.Lock()
	c.ordinal++
	ordinal := c.ordinal
	c.mu.Unlock()

	c.elapsed = int(c.clock.Since(c.startedAt) / time.Second)

	if ordinal >= QuizLength {
		c.setState(StateFinished)
		c.finish(ctx)
		return
	}

	c.loadQuestion(ctx, ordinal)
}

// finish сообщает сервису общее время и переходит на страницу результатов.
func (c *Controller) finish(ctx context.Context) {
	result, err := c.client.FinishQuiz(ctx, c.elapsed)
	if err != nil {
		slog.Error("failed to finish quiz", "total_time", c.elapsed, "err", err)
		c.fail(ctx, MsgFinishFailed)
		return
	}

	slog.Info("quiz finished", "attempt", c.attemptID, "score", c.score, "total_time", c.elapsed)

	c.record(ctx, result.Redirect)
	c.renderer.Navigate(result.Redirect)
	c.navigated = true
}

// record сохраняет попытку в журнал. Ошибка журнала не влияет на квиз.
func (c *Controller) record(ctx context.Context, redirect string) {
	if c.recorder == nil {
		return
	}

	attempt := &models.Attempt{
		ID:         c.attemptID,
		StartedAt:  c.startedAt,
		FinishedAt: c.clock.Now(),
		Score:      c.score,
		Total:      QuizLength,
		TotalTime:  c.elapsed,
		Redirect:   redirect,
		Answers:    c.answers,
	}

	if err := c.recorder.SaveAttempt(ctx, attempt); err != nil {
		slog.Error("failed to save attempt", "attempt", c.attemptID, "err", err)
	}
}

// reload повторяет шаг, на котором произошла ошибка.
func (c *Controller) reload(ctx context.Context) {
	if !c.stalled {
		return
	}

	c.mu.Lock()
	c.stalled = false
	c.mu.Unlock()

	slog.Info("reloading quiz session", "ordinal", c.ordinal, "state", c.state)

	if c.state == StateFinished {
		c.finish(ctx)
		return
	}

	c.loadQuestion(ctx, c.ordinal)
}

// fail останавливает сессию до ручной перезагрузки.
func (c *Controller) fail(ctx context.Context, message string) {
	c.mu.Lock()
	c.stalled = true
	c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	c.renderer.Notify(message)
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Controller) stopTimers() {
	c.stopCountdown()
	c.cancelSelection()

	if c.feedback != nil {
		c.feedback.Stop()
		c.feedback = nil
	}
}

func tickerC(t clock.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}

	return t.C()
}

func timerC(t clock.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}

	return t.C()
}

func contains(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}

	return false
}
