package repository

import (
	"context"
	"errors"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDuplicateCollege  = errors.New("college with this name already exists")
	ErrDuplicateOfficial = errors.New("official with this email already exists")
)

// CollegeRepository handles college and college-official data access.
type CollegeRepository struct {
	pool *pgxpool.Pool
}

// NewCollegeRepository creates a new CollegeRepository.
func NewCollegeRepository(pool *pgxpool.Pool) *CollegeRepository {
	return &CollegeRepository{pool: pool}
}

// GetByID retrieves a college by ID.
func (r *CollegeRepository) GetByID(ctx context.Context, id int) (*model.College, error) {
	c := &model.College{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM colleges WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves all colleges ordered by name.
func (r *CollegeRepository) List(ctx context.Context) ([]model.College, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM colleges ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colleges []model.College
	for rows.Next() {
		var c model.College
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		colleges = append(colleges, c)
	}
	return colleges, rows.Err()
}

// Create inserts a new college.
func (r *CollegeRepository) Create(ctx context.Context, c *model.College) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO colleges (name) VALUES ($1) RETURNING id, created_at`,
		c.Name,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCollege
		}
		return err
	}
	return nil
}

// ListOfficials retrieves a college's officials ordered by name.
func (r *CollegeRepository) ListOfficials(ctx context.Context, collegeID int) ([]model.CollegeOfficial, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, college_id, name, email, is_active, created_at
		 FROM college_officials WHERE college_id = $1
		 ORDER BY name`, collegeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officials []model.CollegeOfficial
	for rows.Next() {
		var o model.CollegeOfficial
		if err := rows.Scan(&o.ID, &o.CollegeID, &o.Name, &o.Email, &o.IsActive, &o.CreatedAt); err != nil {
			return nil, err
		}
		officials = append(officials, o)
	}
	return officials, rows.Err()
}

// ActiveOfficialEmails retrieves the emails of a college's active officials.
// Only active officials receive share-links.
func (r *CollegeRepository) ActiveOfficialEmails(ctx context.Context, collegeID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT email FROM college_officials WHERE college_id = $1 AND is_active`, collegeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// GetOfficial retrieves an official by ID.
func (r *CollegeRepository) GetOfficial(ctx context.Context, id int) (*model.CollegeOfficial, error) {
	o := &model.CollegeOfficial{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, college_id, name, email, is_active, created_at
		 FROM college_officials WHERE id = $1`, id,
	).Scan(&o.ID, &o.CollegeID, &o.Name, &o.Email, &o.IsActive, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateOfficial inserts a new official.
func (r *CollegeRepository) CreateOfficial(ctx context.Context, o *model.CollegeOfficial) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO college_officials (college_id, name, email, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		o.CollegeID, o.Name, o.Email, o.IsActive,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOfficial
		}
		return err
	}
	return nil
}

// UpdateOfficial modifies an official's contact info and active flag.
func (r *CollegeRepository) UpdateOfficial(ctx context.Context, o *model.CollegeOfficial) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE college_officials SET name = $1, email = $2, is_active = $3 WHERE id = $4`,
		o.Name, o.Email, o.IsActive, o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOfficial
		}
		return err
	}
	return nil
}

// ToggleOfficial flips an official's active flag and returns the new value.
func (r *CollegeRepository) ToggleOfficial(ctx context.Context, id int) (bool, error) {
	var active bool
	err := r.pool.QueryRow(ctx,
		`UPDATE college_officials SET is_active = NOT is_active WHERE id = $1 RETURNING is_active`,
		id,
	).Scan(&active)
	return active, err
}
