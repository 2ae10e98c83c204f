package repository

import (
	"context"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, category, question_text, option_1, option_2, option_3, option_4, correct_option, is_active`

func scanQuestion(row interface{ Scan(dest ...any) error }) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.Category, &q.QuestionText, &q.Option1, &q.Option2,
		&q.Option3, &q.Option4, &q.CorrectOption, &q.IsActive)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// ListActiveByCategory retrieves the active question pool for a category.
func (r *QuestionRepository) ListActiveByCategory(ctx context.Context, category model.QuestionCategory) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE category = $1 AND is_active`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ListByIDs retrieves the questions matching the given IDs. IDs with no
// matching row are simply absent from the response.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []int) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ListPaginated retrieves questions newest first with pagination.
func (r *QuestionRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Question, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 ORDER BY id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (category, question_text, option_1, option_2, option_3, option_4, correct_option, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		q.Category, q.QuestionText, q.Option1, q.Option2, q.Option3, q.Option4, q.CorrectOption, q.IsActive,
	).Scan(&q.ID)
}

// Update modifies a question's content.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET category = $1, question_text = $2, option_1 = $3, option_2 = $4,
		     option_3 = $5, option_4 = $6, correct_option = $7
		 WHERE id = $8`,
		q.Category, q.QuestionText, q.Option1, q.Option2, q.Option3, q.Option4, q.CorrectOption, q.ID)
	return err
}

// ToggleActive flips a question's active flag and returns the new value.
func (r *QuestionRepository) ToggleActive(ctx context.Context, id int) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`UPDATE questions SET is_active = NOT is_active WHERE id = $1 RETURNING is_active`,
		id,
	).Scan(&active)
	return active, err
}
