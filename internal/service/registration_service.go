package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/database"
	"github.com/btesedu/scholarex-backend/internal/mail"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Registration errors.
var (
	ErrCollegeNotFound       = errors.New("college not found")
	ErrRegistrationClosed    = errors.New("registration is closed for this college")
	ErrDuplicateRegistration = errors.New("already registered for this quiz")
	ErrMailDelivery          = errors.New("could not deliver the verification email")
	ErrRegistrationExpired   = errors.New("registration expired or not found")
	ErrInvalidOTP            = errors.New("invalid verification code")
)

// RegistrationCollegeStore resolves the college a registrant signed up under.
type RegistrationCollegeStore interface {
	GetByID(ctx context.Context, id int) (*model.College, error)
}

// RegistrationScheduleStore resolves the open schedule and its cohort snapshot.
type RegistrationScheduleStore interface {
	OpenForRegistration(ctx context.Context, collegeID int) (*model.ExamSchedule, error)
	GetOrCreateHistory(ctx context.Context, collegeID int, quizDate *time.Time) (*model.ExamScheduleHistory, error)
}

// RegistrationStudentStore persists a registrant once their email is verified.
type RegistrationStudentStore interface {
	ExistsForSchedule(ctx context.Context, email string, historyID int) (bool, error)
	CreateVerified(ctx context.Context, s *model.Student, prefix string, start int) error
}

// pendingRegistration is the unverified state held in the cache between
// Begin and Verify. No students row exists until the OTP matches.
type pendingRegistration struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	MobileNumber string       `json:"mobile_number"`
	Stream       model.Stream `json:"stream"`
	CollegeID    int          `json:"college_id"`
	HistoryID    int          `json:"history_id"`
	OTP          string       `json:"otp"`
}

// RegistrationService runs the OTP-verified student registration flow.
type RegistrationService struct {
	cfg       *config.Config
	colleges  RegistrationCollegeStore
	schedules RegistrationScheduleStore
	students  RegistrationStudentStore
	kv        database.KV
	mailer    mail.Mailer
	log       zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	cfg *config.Config,
	colleges RegistrationCollegeStore,
	schedules RegistrationScheduleStore,
	students RegistrationStudentStore,
	kv database.KV,
	mailer mail.Mailer,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		cfg:       cfg,
		colleges:  colleges,
		schedules: schedules,
		students:  students,
		kv:        kv,
		mailer:    mailer,
		log:       log,
	}
}

// Begin stores an unverified registration and emails a one-time code. It
// returns an opaque token the client must echo back to Verify. When the
// mail cannot be sent the token is still returned alongside a wrapped
// ErrMailDelivery; the pending state stays alive for the TTL so support
// can hand the code over out of band.
func (s *RegistrationService) Begin(ctx context.Context, collegeID int, req *model.RegisterRequest) (string, error) {
	college, err := s.colleges.GetByID(ctx, collegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCollegeNotFound
		}
		return "", fmt.Errorf("get college: %w", err)
	}

	schedule, err := s.schedules.OpenForRegistration(ctx, collegeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRegistrationClosed
		}
		return "", fmt.Errorf("get open schedule: %w", err)
	}

	history, err := s.schedules.GetOrCreateHistory(ctx, collegeID, schedule.QuizDate)
	if err != nil {
		return "", fmt.Errorf("resolve schedule snapshot: %w", err)
	}

	exists, err := s.students.ExistsForSchedule(ctx, req.Email, history.ID)
	if err != nil {
		return "", fmt.Errorf("check duplicate registration: %w", err)
	}
	if exists {
		return "", ErrDuplicateRegistration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	otp, err := generateOTP(s.cfg.OTPLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	pending := pendingRegistration{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		MobileNumber: req.MobileNumber,
		Stream:       req.Stream,
		CollegeID:    collegeID,
		HistoryID:    history.ID,
		OTP:          otp,
	}

	payload, err := json.Marshal(pending)
	if err != nil {
		return "", fmt.Errorf("marshal pending registration: %w", err)
	}

	token := uuid.New().String()
	key := config.CacheKey.PendingRegistrationKey(token)
	if err := s.kv.Set(ctx, key, string(payload), s.cfg.PendingTTL); err != nil {
		return "", fmt.Errorf("store pending registration: %w", err)
	}

	subject := "Your scholarship test verification code"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour verification code for the %s scholarship test registration is %s.\n\nThe code expires in %d minutes.",
		req.Name, college.Name, otp, int(s.cfg.PendingTTL.Minutes()),
	)
	if err := s.mailer.Send(ctx, subject, body, []string{req.Email}); err != nil {
		s.log.Error().Err(err).Str("email", req.Email).Msg("otp mail failed")
		return token, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	return token, nil
}

// Verify matches the submitted code against the pending registration and,
// on success, creates the student row with a freshly assigned hall ticket.
// A wrong code leaves the pending state untouched so the student can retry.
func (s *RegistrationService) Verify(ctx context.Context, token, code string) (*model.Student, error) {
	key := config.CacheKey.PendingRegistrationKey(token)

	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrKeyMissing) {
			return nil, ErrRegistrationExpired
		}
		return nil, fmt.Errorf("load pending registration: %w", err)
	}

	var pending pendingRegistration
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}

	if pending.OTP != code {
		return nil, ErrInvalidOTP
	}

	student := &model.Student{
		Name:           pending.Name,
		Email:          pending.Email,
		PasswordHash:   pending.PasswordHash,
		MobileNumber:   pending.MobileNumber,
		Stream:         pending.Stream,
		ExamScheduleID: pending.HistoryID,
		CollegeID:      pending.CollegeID,
		IsActive:       true,
	}

	err = s.students.CreateVerified(ctx, student, s.cfg.HallTicketPrefix, s.cfg.HallTicketStart)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			// Someone completed the same registration first; the pending
			// state is spent either way.
			if delErr := s.kv.Del(ctx, key); delErr != nil {
				s.log.Warn().Err(delErr).Msg("pending registration cleanup failed")
			}
			return nil, ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("create student: %w", err)
	}

	if err := s.kv.Del(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("pending registration cleanup failed")
	}

	return student, nil
}

func generateOTP(length int) (string, error) {
	buf := make([]byte, length)
	for i := 0; i < length; {
		b := make([]byte, 1)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		// Reject bytes above the largest multiple of 10 so every digit
		// is equally likely.
		if b[0] >= 250 {
			continue
		}
		buf[i] = '0' + b[0]%10
		i++
	}
	return string(buf), nil
}
