package model

import "time"

// Stream is the academic stream a registrant belongs to.
type Stream string

const (
	StreamBTech Stream = "BTECH"
	StreamMCA   Stream = "MCA"
)

// Student is a verified registrant. A row exists only after the OTP
// verification step succeeded. CurrentSession is nil when the student is
// not logged in; it doubles as the durable single-device lock.
type Student struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	MobileNumber   string     `json:"mobile_number"`
	Stream         Stream     `json:"stream"`
	ExamScheduleID int        `json:"exam_schedule_id"`
	CollegeID      int        `json:"college_id"`
	CurrentSession *string    `json:"-"`
	IsActive       bool       `json:"is_active"`
	HallTicket     string     `json:"hall_ticket"`
	CreatedAt      time.Time  `json:"created_at"`
	QuizDate       *time.Time `json:"quiz_date,omitempty"`
}

// RegisterRequest is the payload to begin a registration for a college.
type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=255"`
	Email        string `json:"email" binding:"required,email,max=255"`
	Password     string `json:"password" binding:"required,min=6,max=128"`
	MobileNumber string `json:"mobile_number" binding:"required,len=10,numeric"`
	Stream       Stream `json:"stream" binding:"required,oneof=BTECH MCA"`
}

// VerifyRequest confirms ownership of the registrant's email address.
type VerifyRequest struct {
	RegistrationToken string `json:"registration_token" binding:"required,uuid"`
	OTP               string `json:"otp" binding:"required,min=4,max=10"`
}

// StudentLoginRequest is the payload for student authentication. CollegeID
// is set when the student follows a college-specific quiz link.
type StudentLoginRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=128"`
	CollegeID *int   `json:"college_id" binding:"omitempty"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}
