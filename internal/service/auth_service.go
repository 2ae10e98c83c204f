package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/database"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongCollege       = errors.New("account does not belong to the selected college")
	ErrSessionActive      = errors.New("already logged in from another device or browser")
	ErrAlreadyAttempted   = errors.New("quiz already attempted")
	ErrNoSession          = errors.New("no active session")
)

// TokenType distinguishes student vs admin tokens.
type TokenType string

const (
	TokenTypeStudent TokenType = "student"
	TokenTypeAdmin   TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    int       `json:"user_id"`
	CollegeID int       `json:"college_id,omitempty"` // Student only
}

// StudentSessionStore is the student-row access the session guard needs.
// The durable current_session column is the single-writer lock; ClaimSession
// must be a conditional update, not a read-then-write.
type StudentSessionStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
	ClaimSession(ctx context.Context, studentID int, token string) (bool, error)
	ReleaseSession(ctx context.Context, studentID int) error
}

// AttemptChecker reports whether a student already has a recorded result.
type AttemptChecker interface {
	ExistsForStudent(ctx context.Context, studentID int) (bool, error)
}

// AuthService handles authentication, JWT and the single-session guard.
type AuthService struct {
	cfg      *config.Config
	students StudentSessionStore
	results  AttemptChecker
	admins   *repository.AdminRepository
	kv       database.KV
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	cfg *config.Config,
	students StudentSessionStore,
	results AttemptChecker,
	admins *repository.AdminRepository,
	kv database.KV,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		students: students,
		results:  results,
		admins:   admins,
		kv:       kv,
		log:      log,
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// StudentLogin authenticates a student and claims their session slot.
// collegeID, when present, pins the login to the college whose quiz link
// the student followed. The order of checks is deliberate: credentials,
// college, prior attempt, then the session claim, so that a rejected login
// never disturbs an existing session token.
func (s *AuthService) StudentLogin(ctx context.Context, email, password string, collegeID *int) (string, *model.Student, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get student: %w", err)
	}

	if err := s.CheckPassword(student.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if collegeID != nil && student.CollegeID != *collegeID {
		return "", nil, ErrWrongCollege
	}

	attempted, err := s.results.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return "", nil, fmt.Errorf("check attempt: %w", err)
	}
	if attempted {
		return "", nil, ErrAlreadyAttempted
	}

	jti := uuid.New().String()
	claimed, err := s.students.ClaimSession(ctx, student.ID, jti)
	if err != nil {
		return "", nil, fmt.Errorf("claim session: %w", err)
	}
	if !claimed {
		return "", nil, ErrSessionActive
	}
	student.CurrentSession = &jti

	token, err := s.signToken(jti, TokenTypeStudent, student.ID, student.CollegeID)
	if err != nil {
		// Release the claim so a retry isn't locked out by our own failure.
		_ = s.students.ReleaseSession(ctx, student.ID)
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	// Mirror the JTI into the cache for the per-request session check.
	// A miss self-heals from the student row, so a cache error only logs.
	key := config.CacheKey.StudentSessionKey(student.ID)
	if err := s.kv.Set(ctx, key, jti, s.cfg.JWTExpiry); err != nil {
		s.log.Warn().Err(err).Int("student_id", student.ID).Msg("session mirror write failed")
	}

	return token, student, nil
}

// ValidateStudentSession checks that the token's JTI still owns the
// student's session. It consults the cache mirror first and falls back to
// the durable student row, re-priming the mirror on a hit.
func (s *AuthService) ValidateStudentSession(ctx context.Context, studentID int, jti string) error {
	key := config.CacheKey.StudentSessionKey(studentID)

	stored, err := s.kv.Get(ctx, key)
	if err == nil {
		if stored != jti {
			return ErrNoSession
		}
		return nil
	}
	if !errors.Is(err, database.ErrKeyMissing) {
		return fmt.Errorf("check session mirror: %w", err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}
	if student.CurrentSession == nil || *student.CurrentSession != jti {
		return ErrNoSession
	}

	if err := s.kv.Set(ctx, key, jti, s.cfg.JWTExpiry); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("session mirror reprime failed")
	}
	return nil
}

// ReleaseStudentSession clears the durable session lock and its cache
// mirror, allowing a fresh login. Used by logout, quiz submission and the
// admin unlock.
func (s *AuthService) ReleaseStudentSession(ctx context.Context, studentID int) error {
	if err := s.students.ReleaseSession(ctx, studentID); err != nil {
		return fmt.Errorf("release session: %w", err)
	}
	if err := s.kv.Del(ctx, config.CacheKey.StudentSessionKey(studentID)); err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("session mirror delete failed")
	}
	return nil
}

// GetStudent retrieves a student profile.
func (s *AuthService) GetStudent(ctx context.Context, id int) (*model.Student, error) {
	return s.students.GetByID(ctx, id)
}

// AdminLogin authenticates an admin and returns a signed token.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (string, *model.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get admin: %w", err)
	}

	if err := s.CheckPassword(admin.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.signToken(uuid.New().String(), TokenTypeAdmin, admin.ID, 0)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, admin, nil
}

// GetAdmin retrieves an admin profile.
func (s *AuthService) GetAdmin(ctx context.Context, id int) (*model.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) signToken(jti string, tokenType TokenType, userID, collegeID int) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType: tokenType,
		UserID:    userID,
		CollegeID: collegeID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
