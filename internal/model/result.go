package model

import "time"

// Result is a student's single scored attempt for an exam-schedule snapshot.
// At most one row exists per (student, exam_schedule) pair; the uniqueness
// constraint in storage is what guarantees the single attempt.
type Result struct {
	ID             int        `json:"id"`
	StudentID      int        `json:"student_id"`
	ExamScheduleID *int       `json:"exam_schedule_id"`
	QuizDate       *time.Time `json:"quiz_date"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"total_questions"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ResultFilter narrows a per-schedule result listing.
type ResultFilter struct {
	Cutoff *int // minimum score, inclusive
	TopN   *int // keep only the N best
}
