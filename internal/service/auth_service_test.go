package service

import (
	"context"
	"errors"
	"testing"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func authFixture(t *testing.T) (*AuthService, *fakeStudentStore, *fakeResultStore, *memKV) {
	t.Helper()
	students := newFakeStudentStore()
	results := newFakeResultStore()
	kv := newMemKV()
	svc := NewAuthService(testConfig(), students, results, nil, kv, zerolog.Nop())
	return svc, students, results, kv
}

func addStudent(t *testing.T, students *fakeStudentStore) *model.Student {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sekrit123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return students.add(&model.Student{
		Name:           "Asha Verma",
		Email:          "asha@example.com",
		PasswordHash:   string(hash),
		CollegeID:      1,
		ExamScheduleID: 7,
		IsActive:       true,
	})
}

func TestStudentLoginSuccess(t *testing.T) {
	svc, students, _, kv := authFixture(t)
	student := addStudent(t, students)

	token, got, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil)
	if err != nil {
		t.Fatalf("StudentLogin: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if got.CurrentSession == nil {
		t.Fatal("session must be claimed on login")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeStudent || claims.UserID != student.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID != *got.CurrentSession {
		t.Fatal("JTI must match the claimed session token")
	}

	mirror, err := kv.Get(context.Background(), config.CacheKey.StudentSessionKey(student.ID))
	if err != nil || mirror != claims.ID {
		t.Fatalf("session mirror not primed: %q, %v", mirror, err)
	}
}

func TestStudentLoginBadCredentials(t *testing.T) {
	svc, students, _, _ := authFixture(t)
	addStudent(t, students)

	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "wrong", nil); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.StudentLogin(context.Background(), "nobody@example.com", "sekrit123", nil); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestStudentLoginWrongCollege(t *testing.T) {
	svc, students, _, _ := authFixture(t)
	addStudent(t, students)

	other := 2
	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", &other); !errors.Is(err, ErrWrongCollege) {
		t.Fatalf("expected ErrWrongCollege, got %v", err)
	}

	same := 1
	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", &same); err != nil {
		t.Fatalf("matching college must pass: %v", err)
	}
}

func TestStudentLoginAfterAttemptRejected(t *testing.T) {
	svc, students, results, _ := authFixture(t)
	student := addStudent(t, students)

	hist := student.ExamScheduleID
	if err := results.Create(context.Background(), &model.Result{StudentID: student.ID, ExamScheduleID: &hist}); err != nil {
		t.Fatalf("seed result: %v", err)
	}

	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil); !errors.Is(err, ErrAlreadyAttempted) {
		t.Fatalf("expected ErrAlreadyAttempted, got %v", err)
	}
}

func TestStudentLoginSecondDeviceRejected(t *testing.T) {
	svc, students, _, _ := authFixture(t)
	student := addStudent(t, students)

	_, first, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	firstJTI := *first.CurrentSession

	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}

	// The losing login must not disturb the held session.
	stored, _ := students.GetByID(context.Background(), student.ID)
	if stored.CurrentSession == nil || *stored.CurrentSession != firstJTI {
		t.Fatal("existing session token was disturbed by a rejected login")
	}
}

func TestValidateStudentSessionSelfHeals(t *testing.T) {
	svc, students, _, kv := authFixture(t)
	student := addStudent(t, students)

	_, got, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	jti := *got.CurrentSession

	// Simulate a cache flush: the durable row still holds the session.
	key := config.CacheKey.StudentSessionKey(student.ID)
	if err := kv.Del(context.Background(), key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if err := svc.ValidateStudentSession(context.Background(), student.ID, jti); err != nil {
		t.Fatalf("self-heal from the student row failed: %v", err)
	}
	if mirror, err := kv.Get(context.Background(), key); err != nil || mirror != jti {
		t.Fatal("mirror was not re-primed")
	}

	if err := svc.ValidateStudentSession(context.Background(), student.ID, "stale-jti"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("stale JTI: expected ErrNoSession, got %v", err)
	}
}

func TestReleaseStudentSessionFreesLogin(t *testing.T) {
	svc, students, _, kv := authFixture(t)
	student := addStudent(t, students)

	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.ReleaseStudentSession(context.Background(), student.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if kv.len() != 0 {
		t.Fatal("mirror must be deleted on release")
	}
	if _, _, err := svc.StudentLogin(context.Background(), "asha@example.com", "sekrit123", nil); err != nil {
		t.Fatalf("login after release: %v", err)
	}
}
