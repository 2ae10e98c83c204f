package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/database"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrNoActiveSchedule is returned by Submit when the student's college no
// longer has a schedule to record the attempt against.
var ErrNoActiveSchedule = errors.New("no active quiz schedule for your college")

// GateStatus is the outcome of the availability gate. Gate outcomes are
// data, not errors; only AVAILABLE lets an attempt start.
type GateStatus string

const (
	GateNoSchedule       GateStatus = "NO_SCHEDULE"
	GateDateNotSet       GateStatus = "DATE_NOT_SET"
	GateNotYetTime       GateStatus = "NOT_YET_TIME"
	GateQuizDisabled     GateStatus = "QUIZ_DISABLED"
	GateAlreadyAttempted GateStatus = "ALREADY_ATTEMPTED"
	GateAvailable        GateStatus = "AVAILABLE"
)

// Eligibility is the gate verdict shown to the student.
type Eligibility struct {
	Status          GateStatus `json:"status"`
	Message         string     `json:"message"`
	QuizDate        *time.Time `json:"quiz_date,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
}

// QuizScheduleStore resolves the live schedule and its cohort snapshot.
type QuizScheduleStore interface {
	CurrentByCollege(ctx context.Context, collegeID int) (*model.ExamSchedule, error)
	GetOrCreateHistory(ctx context.Context, collegeID int, quizDate *time.Time) (*model.ExamScheduleHistory, error)
}

// QuizQuestionStore provides the question pools and answer resolution.
type QuizQuestionStore interface {
	ListActiveByCategory(ctx context.Context, category model.QuestionCategory) ([]model.Question, error)
	ListByIDs(ctx context.Context, ids []int) ([]model.Question, error)
}

// QuizResultStore persists the single scored attempt.
type QuizResultStore interface {
	ExistsForStudent(ctx context.Context, studentID int) (bool, error)
	Create(ctx context.Context, res *model.Result) error
}

// SessionReleaser frees the single-device session lock after submission.
type SessionReleaser interface {
	ReleaseStudentSession(ctx context.Context, studentID int) error
}

// QuizService runs the availability gate, question selection and scoring.
type QuizService struct {
	cfg       *config.Config
	schedules QuizScheduleStore
	questions QuizQuestionStore
	results   QuizResultStore
	sessions  SessionReleaser
	kv        database.KV
	log       zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	cfg *config.Config,
	schedules QuizScheduleStore,
	questions QuizQuestionStore,
	results QuizResultStore,
	sessions SessionReleaser,
	kv database.KV,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		cfg:       cfg,
		schedules: schedules,
		questions: questions,
		results:   results,
		sessions:  sessions,
		kv:        kv,
		log:       log,
	}
}

// Eligibility evaluates the availability gate for a student. The checks
// run freshly on every call and short-circuit in a fixed order, so an
// admin toggling a flag takes effect on the student's next request.
func (s *QuizService) Eligibility(ctx context.Context, student *model.Student) (*Eligibility, error) {
	schedule, err := s.schedules.CurrentByCollege(ctx, student.CollegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Eligibility{
				Status:  GateNoSchedule,
				Message: "No active quiz schedule for your college.",
			}, nil
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	if schedule.QuizDate == nil {
		return &Eligibility{
			Status:  GateDateNotSet,
			Message: "Quiz date & time not set yet.",
		}, nil
	}

	if time.Now().Before(*schedule.QuizDate) {
		return &Eligibility{
			Status:   GateNotYetTime,
			Message:  fmt.Sprintf("Quiz will start at %s.", schedule.QuizDate.Format("2006-01-02 15:04")),
			QuizDate: schedule.QuizDate,
		}, nil
	}

	if !schedule.QuizEnabled {
		return &Eligibility{
			Status:   GateQuizDisabled,
			Message:  "Quiz has not been enabled yet.",
			QuizDate: schedule.QuizDate,
		}, nil
	}

	// Any recorded result blocks, regardless of which snapshot it was
	// scored under: moving the quiz date after a submission must not
	// reopen the gate.
	attempted, err := s.results.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("check attempt: %w", err)
	}
	if attempted {
		return &Eligibility{
			Status:  GateAlreadyAttempted,
			Message: "You have already attempted the test.",
		}, nil
	}

	return &Eligibility{
		Status:          GateAvailable,
		Message:         "Quiz is available.",
		QuizDate:        schedule.QuizDate,
		DurationMinutes: s.cfg.QuizDurationMinutes,
	}, nil
}

// Start draws a fresh question paper for an eligible student: up to the
// configured count from each pool, merged and shuffled. Nothing about the
// draw is persisted as an attempt; only the presented IDs are cached so
// Submit can report how many questions the student actually saw.
func (s *QuizService) Start(ctx context.Context, student *model.Student) (*Eligibility, []model.QuestionForStudent, error) {
	gate, err := s.Eligibility(ctx, student)
	if err != nil {
		return nil, nil, err
	}
	if gate.Status != GateAvailable {
		return gate, nil, nil
	}

	tech, err := s.questions.ListActiveByCategory(ctx, model.CategoryTechnical)
	if err != nil {
		return nil, nil, fmt.Errorf("list technical questions: %w", err)
	}
	reas, err := s.questions.ListActiveByCategory(ctx, model.CategoryReasoning)
	if err != nil {
		return nil, nil, fmt.Errorf("list reasoning questions: %w", err)
	}

	per := s.cfg.QuestionsPerCategory
	paper := append(sampleQuestions(tech, per), sampleQuestions(reas, per)...)
	rand.Shuffle(len(paper), func(i, j int) {
		paper[i], paper[j] = paper[j], paper[i]
	})

	ids := make([]string, len(paper))
	out := make([]model.QuestionForStudent, len(paper))
	for i, q := range paper {
		ids[i] = strconv.Itoa(q.ID)
		out[i] = q.ForStudent()
	}

	// TTL covers the quiz duration with slack for a slow submit.
	key := config.CacheKey.PresentedQuestionsKey(student.ID)
	ttl := 2 * time.Duration(s.cfg.QuizDurationMinutes) * time.Minute
	if err := s.kv.Set(ctx, key, strings.Join(ids, ","), ttl); err != nil {
		s.log.Warn().Err(err).Int("student_id", student.ID).Msg("presented set cache write failed")
	}

	return gate, out, nil
}

// Submit scores the answers and records the one permitted attempt. The
// uniqueness constraint on (student, schedule snapshot) is the final
// arbiter; losing that race reports the same already-attempted outcome a
// second submit would.
func (s *QuizService) Submit(ctx context.Context, student *model.Student, answers map[int]int) (*model.Result, error) {
	score, err := s.scoreAnswers(ctx, answers)
	if err != nil {
		return nil, err
	}

	schedule, err := s.schedules.CurrentByCollege(ctx, student.CollegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveSchedule
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	history, err := s.schedules.GetOrCreateHistory(ctx, student.CollegeID, schedule.QuizDate)
	if err != nil {
		return nil, fmt.Errorf("resolve schedule snapshot: %w", err)
	}

	attempted, err := s.results.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("check attempt: %w", err)
	}
	if attempted {
		return nil, ErrAlreadyAttempted
	}

	result := &model.Result{
		StudentID:      student.ID,
		ExamScheduleID: &history.ID,
		QuizDate:       history.QuizDate,
		Score:          score,
		TotalQuestions: s.presentedCount(ctx, student.ID),
	}

	if err := s.results.Create(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicateResult) {
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("create result: %w", err)
	}

	key := config.CacheKey.PresentedQuestionsKey(student.ID)
	if err := s.kv.Del(ctx, key); err != nil {
		s.log.Warn().Err(err).Int("student_id", student.ID).Msg("presented set cleanup failed")
	}
	if err := s.sessions.ReleaseStudentSession(ctx, student.ID); err != nil {
		s.log.Warn().Err(err).Int("student_id", student.ID).Msg("session release after submit failed")
	}

	return result, nil
}

// scoreAnswers resolves the answered question IDs in one query and counts
// correct choices. IDs that resolve to nothing are skipped.
func (s *QuizService) scoreAnswers(ctx context.Context, answers map[int]int) (int, error) {
	if len(answers) == 0 {
		return 0, nil
	}

	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}

	questions, err := s.questions.ListByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("resolve answered questions: %w", err)
	}

	score := 0
	for _, q := range questions {
		if answers[q.ID] == q.CorrectOption {
			score++
		}
	}
	return score, nil
}

// presentedCount reads how many questions the student was shown, falling
// back to the full paper size when the cache entry is gone.
func (s *QuizService) presentedCount(ctx context.Context, studentID int) int {
	fallback := 2 * s.cfg.QuestionsPerCategory

	raw, err := s.kv.Get(ctx, config.CacheKey.PresentedQuestionsKey(studentID))
	if err != nil {
		if !errors.Is(err, database.ErrKeyMissing) {
			s.log.Warn().Err(err).Int("student_id", studentID).Msg("presented set read failed")
		}
		return fallback
	}
	if raw == "" {
		return fallback
	}
	return len(strings.Split(raw, ","))
}

// sampleQuestions draws up to n questions without replacement; a pool
// smaller than n is returned whole.
func sampleQuestions(pool []model.Question, n int) []model.Question {
	picked := make([]model.Question, len(pool))
	copy(picked, pool)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}
