package model

import "time"

// College represents a participating college.
type College struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CollegeOfficial is a contact person for a college. Only active officials
// receive registration share-links.
type CollegeOfficial struct {
	ID        int       `json:"id"`
	CollegeID int       `json:"college_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CollegeWithOfficials is the college-management listing row. A college with
// no officials yet carries an empty slice, never placeholder officials.
type CollegeWithOfficials struct {
	College
	Officials []CollegeOfficial `json:"officials"`
}

// CreateCollegeRequest is the payload for registering a new college.
type CreateCollegeRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}

// CreateOfficialRequest is the payload for adding an official to a college.
type CreateOfficialRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// UpdateOfficialRequest is the payload for editing an official.
type UpdateOfficialRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	IsActive *bool  `json:"is_active" binding:"omitempty"`
}
