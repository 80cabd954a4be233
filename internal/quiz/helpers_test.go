package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/letsssgooo/cricketQuiz/internal/domain/models"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

const (
	waitFor    = 2 * time.Second
	pollTick   = time.Millisecond
	resultsURL = "http://quiz.test/results/7"
)

var errService = errors.New("service unavailable")

// fakeService отвечает как сервер квизов: вопросы по порядковому номеру
// и проверка ответа без учета регистра для true/false и пропусков.
type fakeService struct {
	mu          sync.Mutex
	questions   []*models.Question
	correct     map[int]string
	fetches     []int
	submissions []models.AnswerSubmission
	inFlight    int
	finishes    []int
	fetchErr    error
	submitErr   error
	finishErr   error
	submitGate  chan struct{}
}

func newFakeService(types ...models.QuestionType) *fakeService {
	svc := &fakeService{correct: make(map[int]string)}

	for i := 0; i < QuizLength; i++ {
		questionType := models.QuestionTypeMultipleChoice
		if len(types) > 0 {
			questionType = types[i%len(types)]
		}

		question := &models.Question{
			ID:     101 + i,
			Number: i + 1,
			Total:  QuizLength,
			Text:   fmt.Sprintf("Question %d?", i+1),
			Type:   questionType,
		}

		switch questionType {
		case models.QuestionTypeMultipleChoice:
			question.Options = []string{"Kohli", "Tendulkar", "Dhoni", "Ganguly"}
			svc.correct[question.ID] = "Tendulkar"
		case models.QuestionTypeTrueFalse:
			svc.correct[question.ID] = "True"
		case models.QuestionTypeFillBlank:
			svc.correct[question.ID] = "Lord's"
		}

		svc.questions = append(svc.questions, question)
	}

	return svc
}

func (s *fakeService) Login(context.Context, string, string) error {
	return nil
}

func (s *fakeService) Categories(context.Context, int) ([]models.Category, error) {
	return nil, nil
}

func (s *fakeService) StartQuiz(context.Context, int, string) (*models.StartResult, error) {
	return &models.StartResult{QuizID: 7, Redirect: "/quiz"}, nil
}

func (s *fakeService) FetchQuestion(_ context.Context, ordinal int) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches = append(s.fetches, ordinal)
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}

	if ordinal < 0 || ordinal >= len(s.questions) {
		return nil, errors.New("invalid question")
	}

	return s.questions[ordinal], nil
}

func (s *fakeService) SubmitAnswer(ctx context.Context, submission models.AnswerSubmission) (*models.AnswerResult, error) {
	s.mu.Lock()
	s.inFlight++
	gate := s.submitGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions = append(s.submissions, submission)
	if s.submitErr != nil {
		return nil, s.submitErr
	}

	correct := s.correct[submission.QuestionID]

	return &models.AnswerResult{
		Correct:       submission.Answer != "" && strings.EqualFold(submission.Answer, correct),
		CorrectAnswer: correct,
		Explanation:   "Scored in 2010.",
	}, nil
}

func (s *fakeService) FinishQuiz(_ context.Context, totalTime int) (*models.FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finishes = append(s.finishes, totalTime)
	if s.finishErr != nil {
		return nil, s.finishErr
	}

	return &models.FinishResult{Redirect: resultsURL}, nil
}

func (s *fakeService) setErrors(fetchErr, submitErr, finishErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchErr, s.submitErr, s.finishErr = fetchErr, submitErr, finishErr
}

func (s *fakeService) submitted() []models.AnswerSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.AnswerSubmission(nil), s.submissions...)
}

func (s *fakeService) inFlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inFlight
}

func (s *fakeService) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.fetches)
}

func (s *fakeService) finished() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]int(nil), s.finishes...)
}

// fakeRenderer записывает инструкции контроллера.
type fakeRenderer struct {
	mu         sync.Mutex
	log        []string
	questions  []*models.Question
	countdowns []Countdown // текущего вопроса
	selected   []string
	frozen     int
	feedbacks  []*models.AnswerResult
	notices    []string
	navigated  []string
}

func (r *fakeRenderer) RenderQuestion(question *models.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.questions = append(r.questions, question)
	r.countdowns = nil
	r.log = append(r.log, "question")
}

func (r *fakeRenderer) UpdateCountdown(countdown Countdown) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.countdowns = append(r.countdowns, countdown)
}

func (r *fakeRenderer) MarkSelected(option string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = append(r.selected, option)
}

func (r *fakeRenderer) FreezeControls() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen++
	r.log = append(r.log, "freeze")
}

func (r *fakeRenderer) RenderFeedback(result *models.AnswerResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.feedbacks = append(r.feedbacks, result)
	r.log = append(r.log, "feedback")
}

func (r *fakeRenderer) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, message)
	r.log = append(r.log, "notify")
}

func (r *fakeRenderer) Navigate(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.navigated = append(r.navigated, url)
	r.log = append(r.log, "navigate")
}

func (r *fakeRenderer) questionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.questions)
}

func (r *fakeRenderer) lastCountdown() (Countdown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.countdowns) == 0 {
		return Countdown{}, false
	}

	return r.countdowns[len(r.countdowns)-1], true
}

func (r *fakeRenderer) selectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.selected)
}

func (r *fakeRenderer) selectedOptions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.selected...)
}

func (r *fakeRenderer) feedbackCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.feedbacks)
}

func (r *fakeRenderer) noticeList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.notices...)
}

func (r *fakeRenderer) navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.navigated...)
}

func (r *fakeRenderer) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.log...)
}

// fakeRecorder сохраняет попытки в памяти.
type fakeRecorder struct {
	mu       sync.Mutex
	attempts []*models.Attempt
	err      error
}

func (r *fakeRecorder) SaveAttempt(_ context.Context, attempt *models.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts = append(r.attempts, attempt)

	return r.err
}

func (r *fakeRecorder) saved() []*models.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*models.Attempt(nil), r.attempts...)
}

// harness запускает контроллер на фиктивных часах.
type harness struct {
	t        *testing.T
	clock    *testingclock.FakeClock
	svc      *fakeService
	renderer *fakeRenderer
	recorder *fakeRecorder
	ctrl     *Controller
	cancel   context.CancelFunc
	exited   chan struct{}
	err      error
}

func newHarness(t *testing.T, svc *fakeService) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		clock:    testingclock.NewFakeClock(time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)),
		svc:      svc,
		renderer: &fakeRenderer{},
		recorder: &fakeRecorder{},
		exited:   make(chan struct{}),
	}
	h.ctrl = NewController(svc, h.renderer, WithClock(h.clock), WithRecorder(h.recorder))

	return h
}

func (h *harness) start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	go func() {
		defer close(h.exited)
		h.err = h.ctrl.Run(ctx)
	}()

	h.t.Cleanup(func() {
		cancel()
		select {
		case <-h.exited:
		case <-time.After(waitFor):
		}
	})
}

// waitQuestion ждет, пока будет показан n-й вопрос и запущен его отсчет.
func (h *harness) waitQuestion(n int) {
	h.t.Helper()

	require.Eventually(h.t, func() bool {
		if h.renderer.questionCount() != n {
			return false
		}
		_, ok := h.renderer.lastCountdown()
		return ok
	}, waitFor, pollTick, "question %d was not rendered", n)
}

// tick продвигает часы на n секунд, дожидаясь обработки каждого тика.
func (h *harness) tick(n int) {
	h.t.Helper()

	for i := 0; i < n; i++ {
		last, _ := h.renderer.lastCountdown()
		want := last.Remaining - 1

		h.clock.Step(time.Second)

		require.Eventually(h.t, func() bool {
			current, _ := h.renderer.lastCountdown()
			return current.Remaining == want
		}, waitFor, pollTick, "countdown did not reach %d", want)
	}
}

// choose выбирает вариант и дожидается отметки выбора.
func (h *harness) choose(option string) {
	h.t.Helper()

	before := h.renderer.selectedCount()
	h.ctrl.Select(option)

	require.Eventually(h.t, func() bool {
		return h.renderer.selectedCount() == before+1
	}, waitFor, pollTick, "option %s was not selected", option)
}

func (h *harness) waitFeedback(n int) {
	h.t.Helper()

	require.Eventually(h.t, func() bool {
		return h.renderer.feedbackCount() == n
	}, waitFor, pollTick, "feedback %d was not rendered", n)
}

func (h *harness) waitSubmissions(n int) {
	h.t.Helper()

	require.Eventually(h.t, func() bool {
		return len(h.svc.submitted()) == n
	}, waitFor, pollTick, "expected %d submissions", n)
}

func (h *harness) waitNotice(message string) {
	h.t.Helper()

	require.Eventually(h.t, func() bool {
		for _, notice := range h.renderer.noticeList() {
			if notice == message {
				return true
			}
		}
		return false
	}, waitFor, pollTick, "notice %q was not shown", message)
}

func (h *harness) waitExit() {
	h.t.Helper()

	select {
	case <-h.exited:
	case <-time.After(waitFor):
		h.t.Fatal("controller did not stop")
	}
}

// answerCorrectly отвечает правильно на текущий вопрос ordinal
// и проходит задержку показа результата.
func (h *harness) answerCorrectly(ordinal int) {
	h.t.Helper()

	h.waitQuestion(ordinal + 1)

	question := h.svc.questions[ordinal]
	answer := h.svc.correct[question.ID]

	if question.Type.Selectable() {
		h.choose(answer)
		h.clock.Step(SelectionDelay)
	} else {
		h.ctrl.SubmitText(answer)
	}

	h.waitFeedback(ordinal + 1)
	h.clock.Step(FeedbackDelay)
}
