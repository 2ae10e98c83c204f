package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/mail"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Schedule management errors.
var (
	ErrPastQuizDate   = errors.New("quiz date must be in the future")
	ErrQuizDateNotSet = errors.New("quiz date is not set")
	ErrNoRecipients   = errors.New("no recipients for this mail")
)

// ScheduleService manages quiz schedules, their history snapshots and the
// share-link mails.
type ScheduleService struct {
	cfg       *config.Config
	schedules *repository.ScheduleRepository
	colleges  *repository.CollegeRepository
	students  *repository.StudentRepository
	mailer    mail.Mailer
	log       zerolog.Logger
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	cfg *config.Config,
	schedules *repository.ScheduleRepository,
	colleges *repository.CollegeRepository,
	students *repository.StudentRepository,
	mailer mail.Mailer,
	log zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		cfg:       cfg,
		schedules: schedules,
		colleges:  colleges,
		students:  students,
		mailer:    mailer,
		log:       log,
	}
}

// List pairs every college with its current schedule, nil when the college
// has none yet.
func (s *ScheduleService) List(ctx context.Context) ([]model.ScheduleRow, error) {
	colleges, err := s.colleges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}

	rows := make([]model.ScheduleRow, 0, len(colleges))
	for _, c := range colleges {
		schedule, err := s.schedules.CurrentByCollege(ctx, c.ID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("get schedule for college %d: %w", c.ID, err)
			}
			schedule = nil
		}
		rows = append(rows, model.ScheduleRow{College: c, Schedule: schedule})
	}
	return rows, nil
}

// ListByCollege returns all schedules of one college.
func (s *ScheduleService) ListByCollege(ctx context.Context, collegeID int) ([]model.ExamSchedule, error) {
	if _, err := s.colleges.GetByID(ctx, collegeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollegeNotFound
		}
		return nil, fmt.Errorf("get college: %w", err)
	}
	schedules, err := s.schedules.ListByCollege(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []model.ExamSchedule{}
	}
	return schedules, nil
}

// SetDate sets or replaces a college's quiz date. The date must lie in the
// future; setting it re-opens registration, disables the quiz and snapshots
// a history row so the new cohort has a stable identity from the start.
func (s *ScheduleService) SetDate(ctx context.Context, collegeID int, quizDate time.Time) (*model.ExamSchedule, error) {
	if !quizDate.After(time.Now()) {
		return nil, ErrPastQuizDate
	}
	if _, err := s.colleges.GetByID(ctx, collegeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollegeNotFound
		}
		return nil, fmt.Errorf("get college: %w", err)
	}

	schedule, err := s.schedules.CurrentByCollege(ctx, collegeID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		schedule = &model.ExamSchedule{
			CollegeID:           collegeID,
			RegistrationEnabled: true,
			QuizEnabled:         false,
			QuizDate:            &quizDate,
			IsActive:            true,
		}
		if err := s.schedules.Upsert(ctx, schedule); err != nil {
			return nil, fmt.Errorf("create schedule: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("get schedule: %w", err)
	default:
		schedule.QuizDate = &quizDate
		schedule.RegistrationEnabled = true
		schedule.QuizEnabled = false
		if err := s.schedules.Update(ctx, schedule); err != nil {
			return nil, fmt.Errorf("update schedule: %w", err)
		}
	}

	if _, err := s.schedules.GetOrCreateHistory(ctx, collegeID, &quizDate); err != nil {
		return nil, fmt.Errorf("snapshot schedule: %w", err)
	}
	return schedule, nil
}

// Update edits a schedule's flags and date.
func (s *ScheduleService) Update(ctx context.Context, id int, req *model.UpdateScheduleRequest) (*model.ExamSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RegistrationEnabled != nil {
		schedule.RegistrationEnabled = *req.RegistrationEnabled
	}
	if req.QuizEnabled != nil {
		schedule.QuizEnabled = *req.QuizEnabled
	}
	if req.QuizDate != nil {
		schedule.QuizDate = req.QuizDate
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return schedule, nil
}

// ToggleQuiz flips the quiz flag. Disabling the quiz also retires the
// date and closes registration, returning the schedule to a blank slate
// for the next round.
func (s *ScheduleService) ToggleQuiz(ctx context.Context, id int) (*model.ExamSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule.QuizEnabled = !schedule.QuizEnabled
	if !schedule.QuizEnabled {
		schedule.QuizDate = nil
		schedule.RegistrationEnabled = false
	}
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return schedule, nil
}

// ToggleRegistration flips the registration flag.
func (s *ScheduleService) ToggleRegistration(ctx context.Context, id int) (*model.ExamSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule.RegistrationEnabled = !schedule.RegistrationEnabled
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return schedule, nil
}

// ShareRegistrationLink mails the college's registration link to its
// active officials and records the link on the schedule.
func (s *ScheduleService) ShareRegistrationLink(ctx context.Context, collegeID int) (string, error) {
	college, err := s.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCollegeNotFound
		}
		return "", fmt.Errorf("get college: %w", err)
	}

	schedule, err := s.schedules.CurrentByCollege(ctx, collegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoActiveSchedule
		}
		return "", fmt.Errorf("get schedule: %w", err)
	}

	emails, err := s.colleges.ActiveOfficialEmails(ctx, collegeID)
	if err != nil {
		return "", fmt.Errorf("list official emails: %w", err)
	}
	if len(emails) == 0 {
		return "", ErrNoRecipients
	}

	link := fmt.Sprintf("%s/register/%d", s.cfg.PublicBaseURL, collegeID)
	schedule.RegistrationLink = link
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return "", fmt.Errorf("save registration link: %w", err)
	}

	subject := fmt.Sprintf("Scholarship test registration link for %s", college.Name)
	body := fmt.Sprintf(
		"Hello,\n\nStudent registration for the %s scholarship test is open. Please circulate the link below:\n\n%s",
		college.Name, link,
	)
	if err := s.mailer.Send(ctx, subject, body, emails); err != nil {
		return link, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return link, nil
}

// ShareQuizLink mails the quiz link to every student registered for the
// current cohort and records the link on the schedule.
func (s *ScheduleService) ShareQuizLink(ctx context.Context, collegeID int) (string, error) {
	college, err := s.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCollegeNotFound
		}
		return "", fmt.Errorf("get college: %w", err)
	}

	schedule, err := s.schedules.CurrentByCollege(ctx, collegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoActiveSchedule
		}
		return "", fmt.Errorf("get schedule: %w", err)
	}
	if schedule.QuizDate == nil {
		return "", ErrQuizDateNotSet
	}

	history, err := s.schedules.GetOrCreateHistory(ctx, collegeID, schedule.QuizDate)
	if err != nil {
		return "", fmt.Errorf("resolve schedule snapshot: %w", err)
	}

	students, err := s.students.ListBySchedule(ctx, history.ID)
	if err != nil {
		return "", fmt.Errorf("list students: %w", err)
	}
	if len(students) == 0 {
		return "", ErrNoRecipients
	}
	emails := make([]string, len(students))
	for i, st := range students {
		emails[i] = st.Email
	}

	link := fmt.Sprintf("%s/quiz/%d", s.cfg.PublicBaseURL, collegeID)
	schedule.QuizLink = link
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return "", fmt.Errorf("save quiz link: %w", err)
	}

	subject := fmt.Sprintf("Your %s scholarship test is scheduled", college.Name)
	body := fmt.Sprintf(
		"Hello,\n\nYour scholarship test is scheduled for %s. Log in here when it is time:\n\n%s",
		schedule.QuizDate.Format("2006-01-02 15:04"), link,
	)
	if err := s.mailer.Send(ctx, subject, body, emails); err != nil {
		return link, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return link, nil
}

// ListHistories returns schedule snapshots for the dashboard.
func (s *ScheduleService) ListHistories(ctx context.Context, filter model.HistoryFilter) ([]model.ExamScheduleHistory, error) {
	histories, err := s.schedules.ListHistories(ctx, filter)
	if err != nil {
		return nil, err
	}
	if histories == nil {
		histories = []model.ExamScheduleHistory{}
	}
	return histories, nil
}

// GetHistory returns one snapshot with its college name.
func (s *ScheduleService) GetHistory(ctx context.Context, id int) (*model.ExamScheduleHistory, error) {
	return s.schedules.GetHistory(ctx, id)
}

// Registrations lists the students registered under a snapshot, name
// ascending.
func (s *ScheduleService) Registrations(ctx context.Context, historyID int) ([]model.Student, error) {
	if _, err := s.schedules.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}
	students, err := s.students.ListBySchedule(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}
