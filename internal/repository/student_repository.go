package repository

import (
	"context"
	"errors"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateStudent = errors.New("student with this email already exists")

// hallTicketLockID serializes hall-ticket assignment across processes.
// Two verifications committing at once must not read the same max suffix.
const hallTicketLockID = 172025

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `s.id, s.name, s.email, s.password_hash, s.mobile_number, s.stream,
	 s.exam_schedule_id, h.college_id, s.current_session, s.is_active, s.hall_ticket,
	 s.created_at, h.quiz_date`

func scanStudent(row interface{ Scan(dest ...any) error }) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.MobileNumber, &s.Stream,
		&s.ExamScheduleID, &s.CollegeID, &s.CurrentSession, &s.IsActive, &s.HallTicket,
		&s.CreatedAt, &s.QuizDate)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student with their cohort's college and quiz date.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+`
		 FROM students s JOIN exam_schedule_histories h ON s.exam_schedule_id = h.id
		 WHERE s.id = $1`, id))
}

// GetByEmail retrieves a student by their unique email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+`
		 FROM students s JOIN exam_schedule_histories h ON s.exam_schedule_id = h.id
		 WHERE s.email = $1`, email))
}

// ExistsForSchedule reports whether a student with this email is already
// registered against the given exam-schedule snapshot.
func (r *StudentRepository) ExistsForSchedule(ctx context.Context, email string, historyID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE email = $1 AND exam_schedule_id = $2)`,
		email, historyID,
	).Scan(&exists)
	return exists, err
}

// CreateVerified inserts a student that passed OTP verification, assigning
// the next hall ticket inside the same transaction. An advisory lock keeps
// the ticket sequence gap-free under concurrent verifications; the unique
// constraint on hall_ticket remains as last-resort safety.
func (r *StudentRepository) CreateVerified(ctx context.Context, s *model.Student, prefix string, start int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, hallTicketLockID); err != nil {
		return err
	}

	rows, err := tx.Query(ctx,
		`SELECT hall_ticket FROM students WHERE hall_ticket LIKE $1 || '%'`, prefix)
	if err != nil {
		return err
	}
	var issued []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return err
		}
		issued = append(issued, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	s.HallTicket = nextHallTicket(prefix, start, issued)

	err = tx.QueryRow(ctx,
		`INSERT INTO students (name, email, password_hash, mobile_number, stream, exam_schedule_id, is_active, hall_ticket)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		s.Name, s.Email, s.PasswordHash, s.MobileNumber, s.Stream, s.ExamScheduleID, s.IsActive, s.HallTicket,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudent
		}
		return err
	}

	return tx.Commit(ctx)
}

// ClaimSession atomically sets current_session if and only if no session is
// held. Returns false when another session already owns the row; the stored
// token is left untouched.
func (r *StudentRepository) ClaimSession(ctx context.Context, studentID int, token string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET current_session = $1 WHERE id = $2 AND current_session IS NULL`,
		token, studentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseSession clears current_session unconditionally.
func (r *StudentRepository) ReleaseSession(ctx context.Context, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET current_session = NULL WHERE id = $1`, studentID)
	return err
}

// ListBySchedule retrieves the students registered against a schedule
// snapshot, ordered by name.
func (r *StudentRepository) ListBySchedule(ctx context.Context, historyID int) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+`
		 FROM students s JOIN exam_schedule_histories h ON s.exam_schedule_id = h.id
		 WHERE s.exam_schedule_id = $1
		 ORDER BY s.name`, historyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}
