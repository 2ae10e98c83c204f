package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateSchedule = errors.New("schedule already exists for this college and date")

// ScheduleRepository handles exam schedules and their immutable history
// snapshots.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, college_id, registration_enabled, quiz_enabled, quiz_date,
	 COALESCE(registration_link, ''), COALESCE(quiz_link, ''), is_active`

func scanSchedule(row interface{ Scan(dest ...any) error }) (*model.ExamSchedule, error) {
	s := &model.ExamSchedule{}
	err := row.Scan(&s.ID, &s.CollegeID, &s.RegistrationEnabled, &s.QuizEnabled,
		&s.QuizDate, &s.RegistrationLink, &s.QuizLink, &s.IsActive)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a schedule by ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id int) (*model.ExamSchedule, error) {
	return scanSchedule(r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM exam_schedules WHERE id = $1`, id))
}

// CurrentByCollege retrieves the college's live schedule: the newest by
// quiz date, rows without a date last.
func (r *ScheduleRepository) CurrentByCollege(ctx context.Context, collegeID int) (*model.ExamSchedule, error) {
	return scanSchedule(r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM exam_schedules
		 WHERE college_id = $1
		 ORDER BY quiz_date DESC NULLS LAST
		 LIMIT 1`, collegeID))
}

// OpenForRegistration retrieves the college's newest schedule that has
// registration enabled.
func (r *ScheduleRepository) OpenForRegistration(ctx context.Context, collegeID int) (*model.ExamSchedule, error) {
	return scanSchedule(r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM exam_schedules
		 WHERE college_id = $1 AND registration_enabled
		 ORDER BY quiz_date DESC NULLS LAST
		 LIMIT 1`, collegeID))
}

// ListByCollege retrieves all of a college's schedules ordered by quiz date.
func (r *ScheduleRepository) ListByCollege(ctx context.Context, collegeID int) ([]model.ExamSchedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+scheduleColumns+` FROM exam_schedules
		 WHERE college_id = $1
		 ORDER BY quiz_date NULLS LAST`, collegeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []model.ExamSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

// Upsert creates the college's schedule or replaces its date and flags in
// place, matching how setting a new quiz date resets the control surface.
func (r *ScheduleRepository) Upsert(ctx context.Context, s *model.ExamSchedule) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_schedules (college_id, registration_enabled, quiz_enabled, quiz_date, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (college_id, quiz_date)
		 DO UPDATE SET registration_enabled = EXCLUDED.registration_enabled,
		               quiz_enabled = EXCLUDED.quiz_enabled,
		               is_active = EXCLUDED.is_active
		 RETURNING id`,
		s.CollegeID, s.RegistrationEnabled, s.QuizEnabled, s.QuizDate, s.IsActive,
	).Scan(&s.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSchedule
		}
		return err
	}
	return nil
}

// Update persists a schedule's flags, date and share links.
func (r *ScheduleRepository) Update(ctx context.Context, s *model.ExamSchedule) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_schedules
		 SET registration_enabled = $1, quiz_enabled = $2, quiz_date = $3,
		     registration_link = $4, quiz_link = $5, is_active = $6
		 WHERE id = $7`,
		s.RegistrationEnabled, s.QuizEnabled, s.QuizDate,
		s.RegistrationLink, s.QuizLink, s.IsActive, s.ID)
	return err
}

// GetOrCreateHistory resolves the immutable snapshot for (college, quiz
// date), creating it if absent. The upsert keeps concurrent callers
// converging on the same row.
func (r *ScheduleRepository) GetOrCreateHistory(ctx context.Context, collegeID int, quizDate *time.Time) (*model.ExamScheduleHistory, error) {
	h := &model.ExamScheduleHistory{CollegeID: collegeID, QuizDate: quizDate}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_schedule_histories (college_id, quiz_date)
		 VALUES ($1, $2)
		 ON CONFLICT (college_id, quiz_date)
		 DO UPDATE SET college_id = EXCLUDED.college_id
		 RETURNING id, created_at`,
		collegeID, quizDate,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetHistory retrieves a snapshot with its college name.
func (r *ScheduleRepository) GetHistory(ctx context.Context, id int) (*model.ExamScheduleHistory, error) {
	h := &model.ExamScheduleHistory{}
	err := r.pool.QueryRow(ctx,
		`SELECT h.id, h.college_id, c.name, h.quiz_date, h.created_at
		 FROM exam_schedule_histories h JOIN colleges c ON h.college_id = c.id
		 WHERE h.id = $1`, id,
	).Scan(&h.ID, &h.CollegeID, &h.CollegeName, &h.QuizDate, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ListHistories retrieves snapshots for the dashboard, newest quiz date
// first, with optional college-name and date-range filters.
func (r *ScheduleRepository) ListHistories(ctx context.Context, filter model.HistoryFilter) ([]model.ExamScheduleHistory, error) {
	query := `SELECT h.id, h.college_id, c.name, h.quiz_date, h.created_at
		 FROM exam_schedule_histories h JOIN colleges c ON h.college_id = c.id
		 WHERE 1=1`
	var args []any

	if filter.CollegeName != "" {
		args = append(args, "%"+filter.CollegeName+"%")
		query += fmt.Sprintf(" AND c.name ILIKE $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND h.quiz_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND h.quiz_date <= $%d", len(args))
	}
	query += ` ORDER BY h.quiz_date DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []model.ExamScheduleHistory
	for rows.Next() {
		var h model.ExamScheduleHistory
		if err := rows.Scan(&h.ID, &h.CollegeID, &h.CollegeName, &h.QuizDate, &h.CreatedAt); err != nil {
			return nil, err
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
