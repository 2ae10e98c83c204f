package repository

import (
	"context"
	"errors"
	"time"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateResult signals that a result already exists for this student
// and schedule snapshot: the attempt was already recorded.
var ErrDuplicateResult = errors.New("result already exists for this student and schedule")

// ScoredStudent joins a result with its student for per-schedule listings.
type ScoredStudent struct {
	StudentID    int       `json:"student_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	HallTicket   string    `json:"hall_ticket"`
	MobileNumber string    `json:"mobile_number"`
	Score        int       `json:"score"`
	Total        int       `json:"total_questions"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// ResultRepository handles result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// ExistsForStudent reports whether the student has any recorded result,
// regardless of which schedule snapshot it was scored under. Fast path
// only; Create is the authoritative guard.
func (r *ResultRepository) ExistsForStudent(ctx context.Context, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM results WHERE student_id = $1)`,
		studentID,
	).Scan(&exists)
	return exists, err
}

// Create inserts a result. The (student_id, exam_schedule_id) uniqueness is
// enforced at write time: a concurrent duplicate insert hits the ON
// CONFLICT arm, returns no row, and surfaces as ErrDuplicateResult.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO results (student_id, exam_schedule_id, quiz_date, score, total_questions)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id, exam_schedule_id) DO NOTHING
		 RETURNING id, created_at`,
		res.StudentID, res.ExamScheduleID, res.QuizDate, res.Score, res.TotalQuestions,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicateResult
		}
		return err
	}
	return nil
}

// ListBySchedule retrieves a snapshot's results joined with student data,
// best score first, with optional cutoff and top-N narrowing.
func (r *ResultRepository) ListBySchedule(ctx context.Context, historyID int, filter model.ResultFilter) ([]ScoredStudent, error) {
	query := `SELECT s.id, s.name, s.email, s.hall_ticket, s.mobile_number,
	                 res.score, res.total_questions, res.created_at
	          FROM results res JOIN students s ON res.student_id = s.id
	          WHERE res.exam_schedule_id = $1`
	args := []any{historyID}

	if filter.Cutoff != nil {
		args = append(args, *filter.Cutoff)
		query += ` AND res.score >= $2`
	}
	query += ` ORDER BY res.score DESC, res.created_at ASC`
	if filter.TopN != nil {
		args = append(args, *filter.TopN)
		if filter.Cutoff != nil {
			query += ` LIMIT $3`
		} else {
			query += ` LIMIT $2`
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScoredStudent
	for rows.Next() {
		var sc ScoredStudent
		if err := rows.Scan(&sc.StudentID, &sc.Name, &sc.Email, &sc.HallTicket,
			&sc.MobileNumber, &sc.Score, &sc.Total, &sc.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}
