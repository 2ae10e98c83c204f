package model

import "time"

// ExamSchedule is the live, admin-editable quiz configuration for a college.
// There is at most one row per (college, quiz_date).
type ExamSchedule struct {
	ID                  int        `json:"id"`
	CollegeID           int        `json:"college_id"`
	RegistrationEnabled bool       `json:"registration_enabled"`
	QuizEnabled         bool       `json:"quiz_enabled"`
	QuizDate            *time.Time `json:"quiz_date"`
	RegistrationLink    string     `json:"registration_link,omitempty"`
	QuizLink            string     `json:"quiz_link,omitempty"`
	IsActive            bool       `json:"is_active"`
}

// ExamScheduleHistory is an immutable snapshot of a schedule, taken when a
// date is set or a quiz link is shared. Students and results reference the
// snapshot so later edits to the live schedule cannot move a past cohort.
type ExamScheduleHistory struct {
	ID          int        `json:"id"`
	CollegeID   int        `json:"college_id"`
	CollegeName string     `json:"college_name,omitempty"`
	QuizDate    *time.Time `json:"quiz_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ScheduleRow pairs a college with its current schedule for the management
// listing. Schedule is nil when the college has none yet.
type ScheduleRow struct {
	College  College       `json:"college"`
	Schedule *ExamSchedule `json:"schedule"`
}

// SetScheduleDateRequest sets or replaces a college's quiz date.
type SetScheduleDateRequest struct {
	QuizDate time.Time `json:"quiz_date" binding:"required"`
}

// UpdateScheduleRequest edits the live schedule's flags and date.
type UpdateScheduleRequest struct {
	RegistrationEnabled *bool      `json:"registration_enabled" binding:"omitempty"`
	QuizEnabled         *bool      `json:"quiz_enabled" binding:"omitempty"`
	QuizDate            *time.Time `json:"quiz_date" binding:"omitempty"`
	IsActive            *bool      `json:"is_active" binding:"omitempty"`
}

// HistoryFilter narrows the dashboard's schedule-history listing.
type HistoryFilter struct {
	CollegeName string
	From        *time.Time
	To          *time.Time
}
