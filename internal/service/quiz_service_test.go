package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/rs/zerolog"
)

// sessionRecorder counts session releases.
type sessionRecorder struct {
	released []int
}

func (s *sessionRecorder) ReleaseStudentSession(_ context.Context, studentID int) error {
	s.released = append(s.released, studentID)
	return nil
}

func questionPool(category model.QuestionCategory, startID, n int) []model.Question {
	pool := make([]model.Question, n)
	for i := range pool {
		pool[i] = model.Question{
			ID:            startID + i,
			Category:      category,
			QuestionText:  "q",
			Option1:       "a",
			Option2:       "b",
			CorrectOption: 1 + (startID+i)%4,
			IsActive:      true,
		}
	}
	return pool
}

func quizFixture() (*QuizService, *fakeScheduleStore, *fakeQuestionStore, *fakeResultStore, *sessionRecorder, *memKV) {
	schedules := newFakeScheduleStore()
	questions := &fakeQuestionStore{
		tech: questionPool(model.CategoryTechnical, 1, 30),
		reas: questionPool(model.CategoryReasoning, 101, 30),
	}
	results := newFakeResultStore()
	sessions := &sessionRecorder{}
	kv := newMemKV()
	svc := NewQuizService(testConfig(), schedules, questions, results, sessions, kv, zerolog.Nop())
	return svc, schedules, questions, results, sessions, kv
}

func quizStudent() *model.Student {
	return &model.Student{ID: 5, CollegeID: 1, ExamScheduleID: 7, Email: "asha@example.com"}
}

func openSchedule(schedules *fakeScheduleStore, date time.Time, enabled bool) {
	schedules.schedule = &model.ExamSchedule{
		ID: 1, CollegeID: 1, QuizDate: &date, QuizEnabled: enabled, IsActive: true,
	}
}

func TestEligibilityGateOrder(t *testing.T) {
	svc, schedules, _, results, _, _ := quizFixture()
	student := quizStudent()
	ctx := context.Background()

	check := func(want GateStatus, wantMsg string) {
		t.Helper()
		gate, err := svc.Eligibility(ctx, student)
		if err != nil {
			t.Fatalf("Eligibility: %v", err)
		}
		if gate.Status != want {
			t.Fatalf("status: got %s, want %s", gate.Status, want)
		}
		if wantMsg != "" && gate.Message != wantMsg {
			t.Fatalf("message: got %q, want %q", gate.Message, wantMsg)
		}
	}

	// No schedule at all.
	check(GateNoSchedule, "No active quiz schedule for your college.")

	// Schedule exists, date not set.
	schedules.schedule = &model.ExamSchedule{ID: 1, CollegeID: 1, IsActive: true}
	check(GateDateNotSet, "Quiz date & time not set yet.")

	// Date in the future.
	future := time.Now().Add(48 * time.Hour)
	openSchedule(schedules, future, true)
	check(GateNotYetTime, "Quiz will start at "+future.Format("2006-01-02 15:04")+".")

	// Date passed but quiz switch still off.
	openSchedule(schedules, time.Now().Add(-time.Hour), false)
	check(GateQuizDisabled, "Quiz has not been enabled yet.")

	// Open, but already attempted.
	openSchedule(schedules, time.Now().Add(-time.Hour), true)
	hist := student.ExamScheduleID
	if err := results.Create(ctx, &model.Result{StudentID: student.ID, ExamScheduleID: &hist}); err != nil {
		t.Fatalf("seed result: %v", err)
	}
	check(GateAlreadyAttempted, "You have already attempted the test.")
}

func TestStartDrawsMixedPaper(t *testing.T) {
	svc, schedules, _, _, _, kv := quizFixture()
	openSchedule(schedules, time.Now().Add(-time.Hour), true)
	ctx := context.Background()

	gate, paper, err := svc.Start(ctx, quizStudent())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if gate.Status != GateAvailable {
		t.Fatalf("gate: %s", gate.Status)
	}
	if len(paper) != 20 {
		t.Fatalf("paper size: got %d, want 20", len(paper))
	}

	seen := make(map[int]bool)
	tech, reas := 0, 0
	for _, q := range paper {
		if seen[q.ID] {
			t.Fatalf("question %d drawn twice", q.ID)
		}
		seen[q.ID] = true
		switch q.Category {
		case model.CategoryTechnical:
			tech++
		case model.CategoryReasoning:
			reas++
		}
	}
	if tech != 10 || reas != 10 {
		t.Fatalf("category split: %d tech, %d reas", tech, reas)
	}

	// Presented IDs are cached for the submit path.
	raw, err := kv.Get(ctx, config.CacheKey.PresentedQuestionsKey(5))
	if err != nil {
		t.Fatalf("presented cache: %v", err)
	}
	if got := len(strings.Split(raw, ",")); got != 20 {
		t.Fatalf("cached presented count: got %d, want 20", got)
	}
}

func TestStartSmallPoolTakesAll(t *testing.T) {
	svc, schedules, questions, _, _, _ := quizFixture()
	openSchedule(schedules, time.Now().Add(-time.Hour), true)
	questions.tech = questionPool(model.CategoryTechnical, 1, 5)

	_, paper, err := svc.Start(context.Background(), quizStudent())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(paper) != 15 {
		t.Fatalf("paper size with 5 tech questions: got %d, want 15", len(paper))
	}
}

func TestStartHidesCorrectOption(t *testing.T) {
	q := model.Question{
		ID: 1, Category: model.CategoryTechnical, QuestionText: "q",
		Option1: "a", Option2: "b", CorrectOption: 2, IsActive: true,
	}
	projected := q.ForStudent()
	if projected.ID != 1 || projected.Option1 != "a" {
		t.Fatalf("projection dropped fields: %+v", projected)
	}
}

func TestSubmitScoresAndRecords(t *testing.T) {
	svc, schedules, _, results, sessions, _ := quizFixture()
	openSchedule(schedules, time.Now().Add(-time.Hour), true)
	student := quizStudent()
	ctx := context.Background()

	if _, _, err := svc.Start(ctx, student); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Question 1 has correct option 2, question 2 has correct option 3.
	answers := map[int]int{1: 2, 2: 2}
	result, err := svc.Submit(ctx, student, answers)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("score: got %d, want 1", result.Score)
	}
	if result.TotalQuestions != 20 {
		t.Fatalf("total: got %d, want 20", result.TotalQuestions)
	}
	if len(results.results) != 1 {
		t.Fatalf("expected 1 stored result, got %d", len(results.results))
	}
	if len(sessions.released) != 1 || sessions.released[0] != student.ID {
		t.Fatalf("session not released after submit: %v", sessions.released)
	}
}

func TestSubmitUnknownQuestionIDsSkipped(t *testing.T) {
	svc, schedules, _, _, _, _ := quizFixture()
	openSchedule(schedules, time.Now().Add(-time.Hour), true)

	result, err := svc.Submit(context.Background(), quizStudent(), map[int]int{9999: 1, 1: 2})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("score with unknown ID: got %d, want 1", result.Score)
	}
}

func TestSubmitTotalFallsBackWithoutCache(t *testing.T) {
	svc, schedules, _, _, _, _ := quizFixture()
	openSchedule(schedules, time.Now().Add(-time.Hour), true)

	// No Start call, so no presented-set cache entry.
	result, err := svc.Submit(context.Background(), quizStudent(), map[int]int{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.TotalQuestions != 20 {
		t.Fatalf("fallback total: got %d, want 20", result.TotalQuestions)
	}
	if result.Score != 0 {
		t.Fatalf("empty answers score: got %d, want 0", result.Score)
	}
}

func TestSubmitSecondAttemptRejected(t *testing.T) {
	svc, schedules, _, results, _, _ := quizFixture()
	openSchedule(schedules, time.Now().Add(-time.Hour), true)
	student := quizStudent()
	ctx := context.Background()

	first, err := svc.Submit(ctx, student, map[int]int{1: 2})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, err := svc.Submit(ctx, student, map[int]int{1: 2, 2: 3}); err != ErrAlreadyAttempted {
		t.Fatalf("second submit: expected ErrAlreadyAttempted, got %v", err)
	}

	// The recorded result is the original one.
	hist := *first.ExamScheduleID
	stored := results.results[[2]int{student.ID, hist}]
	if stored == nil || stored.ID != first.ID || stored.Score != first.Score {
		t.Fatal("original result must stay untouched by a second submit")
	}
}

func TestEligibilityBlocksAfterQuizDateMoved(t *testing.T) {
	svc, schedules, _, _, _, _ := quizFixture()
	student := quizStudent()
	ctx := context.Background()

	openSchedule(schedules, time.Now().Add(-2*time.Hour), true)
	if _, err := svc.Submit(ctx, student, map[int]int{1: 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Moving the quiz date makes the live schedule resolve to a different
	// snapshot than the one the result was scored under. The gate must
	// still see the attempt.
	openSchedule(schedules, time.Now().Add(-30*time.Minute), true)

	gate, err := svc.Eligibility(ctx, student)
	if err != nil {
		t.Fatalf("Eligibility: %v", err)
	}
	if gate.Status != GateAlreadyAttempted {
		t.Fatalf("gate after date move: got %s, want %s", gate.Status, GateAlreadyAttempted)
	}

	if _, err := svc.Submit(ctx, student, map[int]int{1: 2}); err != ErrAlreadyAttempted {
		t.Fatalf("resubmit after date move: expected ErrAlreadyAttempted, got %v", err)
	}
}

func TestSubmitWithoutScheduleFails(t *testing.T) {
	svc, _, _, _, _, _ := quizFixture()

	if _, err := svc.Submit(context.Background(), quizStudent(), map[int]int{1: 2}); err != ErrNoActiveSchedule {
		t.Fatalf("expected ErrNoActiveSchedule, got %v", err)
	}
}
