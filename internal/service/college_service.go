package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

// CollegeService manages colleges and their officials.
type CollegeService struct {
	colleges *repository.CollegeRepository
}

// NewCollegeService creates a new CollegeService.
func NewCollegeService(colleges *repository.CollegeRepository) *CollegeService {
	return &CollegeService{colleges: colleges}
}

// ListPublic returns all colleges for the public registration page.
func (s *CollegeService) ListPublic(ctx context.Context) ([]model.College, error) {
	colleges, err := s.colleges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	if colleges == nil {
		colleges = []model.College{}
	}
	return colleges, nil
}

// ListWithOfficials returns every college with its officials attached. A
// college without officials carries an empty slice; the listing never pads
// with placeholder rows.
func (s *CollegeService) ListWithOfficials(ctx context.Context) ([]model.CollegeWithOfficials, error) {
	colleges, err := s.colleges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}

	out := make([]model.CollegeWithOfficials, 0, len(colleges))
	for _, c := range colleges {
		officials, err := s.colleges.ListOfficials(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list officials for college %d: %w", c.ID, err)
		}
		if officials == nil {
			officials = []model.CollegeOfficial{}
		}
		out = append(out, model.CollegeWithOfficials{College: c, Officials: officials})
	}
	return out, nil
}

// Create registers a new college.
func (s *CollegeService) Create(ctx context.Context, req *model.CreateCollegeRequest) (*model.College, error) {
	college := &model.College{Name: req.Name}
	if err := s.colleges.Create(ctx, college); err != nil {
		return nil, err
	}
	return college, nil
}

// CreateOfficial adds an official to a college, active by default.
func (s *CollegeService) CreateOfficial(ctx context.Context, collegeID int, req *model.CreateOfficialRequest) (*model.CollegeOfficial, error) {
	if _, err := s.colleges.GetByID(ctx, collegeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollegeNotFound
		}
		return nil, fmt.Errorf("get college: %w", err)
	}

	official := &model.CollegeOfficial{
		CollegeID: collegeID,
		Name:      req.Name,
		Email:     req.Email,
		IsActive:  true,
	}
	if err := s.colleges.CreateOfficial(ctx, official); err != nil {
		return nil, err
	}
	return official, nil
}

// UpdateOfficial edits an official's contact details and active flag.
func (s *CollegeService) UpdateOfficial(ctx context.Context, id int, req *model.UpdateOfficialRequest) (*model.CollegeOfficial, error) {
	official, err := s.colleges.GetOfficial(ctx, id)
	if err != nil {
		return nil, err
	}

	official.Name = req.Name
	official.Email = req.Email
	if req.IsActive != nil {
		official.IsActive = *req.IsActive
	}
	if err := s.colleges.UpdateOfficial(ctx, official); err != nil {
		return nil, err
	}
	return official, nil
}

// ToggleOfficial flips an official's active flag and returns the new state.
func (s *CollegeService) ToggleOfficial(ctx context.Context, id int) (bool, error) {
	return s.colleges.ToggleOfficial(ctx, id)
}
