package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/btesedu/scholarex-backend/internal/config"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret",
		JWTExpiry:            time.Hour,
		BcryptCost:           4,
		OTPLength:            6,
		PendingTTL:           15 * time.Minute,
		HallTicketPrefix:     "CH0125",
		HallTicketStart:      1000,
		QuestionsPerCategory: 10,
		QuizDurationMinutes:  20,
		PublicBaseURL:        "https://test.example.com",
	}
}

func registrationFixture() (*RegistrationService, *fakeStudentStore, *fakeScheduleStore, *memKV, *fakeMailer) {
	colleges := &fakeCollegeStore{colleges: map[int]*model.College{
		1: {ID: 1, Name: "Crescent Hills Engineering College"},
	}}
	schedules := newFakeScheduleStore()
	quizDate := time.Now().Add(72 * time.Hour)
	schedules.openSched = &model.ExamSchedule{
		ID: 1, CollegeID: 1, RegistrationEnabled: true, QuizDate: &quizDate, IsActive: true,
	}
	students := newFakeStudentStore()
	kv := newMemKV()
	mailer := &fakeMailer{}

	svc := NewRegistrationService(testConfig(), colleges, schedules, students, kv, mailer, zerolog.Nop())
	return svc, students, schedules, kv, mailer
}

func registerRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:         "Asha Verma",
		Email:        "asha@example.com",
		Password:     "sekrit123",
		MobileNumber: "9876543210",
		Stream:       model.StreamBTech,
	}
}

func TestBeginStoresPendingAndMailsOTP(t *testing.T) {
	svc, _, _, kv, mailer := registrationFixture()

	token, err := svc.Begin(context.Background(), 1, registerRequest())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if token == "" {
		t.Fatal("expected a registration token")
	}
	if kv.len() != 1 {
		t.Fatalf("expected 1 pending entry, got %d", kv.len())
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}

	m := mailer.sent[0]
	if len(m.to) != 1 || m.to[0] != "asha@example.com" {
		t.Fatalf("mail sent to %v", m.to)
	}

	// The six-digit code in the mail must match the stored pending state.
	raw, err := kv.Get(context.Background(), config.CacheKey.PendingRegistrationKey(token))
	if err != nil {
		t.Fatalf("pending state missing: %v", err)
	}
	otp := extractOTP(t, raw)
	if len(otp) != 6 {
		t.Fatalf("expected 6-digit OTP, got %q", otp)
	}
	if !strings.Contains(m.body, otp) {
		t.Fatalf("mail body does not carry the OTP %q:\n%s", otp, m.body)
	}
}

func TestBeginUnknownCollege(t *testing.T) {
	svc, _, _, _, _ := registrationFixture()

	if _, err := svc.Begin(context.Background(), 99, registerRequest()); !errors.Is(err, ErrCollegeNotFound) {
		t.Fatalf("expected ErrCollegeNotFound, got %v", err)
	}
}

func TestBeginRegistrationClosed(t *testing.T) {
	svc, _, schedules, _, _ := registrationFixture()
	schedules.openSched = nil

	if _, err := svc.Begin(context.Background(), 1, registerRequest()); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("expected ErrRegistrationClosed, got %v", err)
	}
}

func TestBeginDuplicateForCohort(t *testing.T) {
	svc, students, schedules, _, _ := registrationFixture()

	hist, _ := schedules.GetOrCreateHistory(context.Background(), 1, schedules.openSched.QuizDate)
	students.add(&model.Student{Email: "asha@example.com", ExamScheduleID: hist.ID})

	if _, err := svc.Begin(context.Background(), 1, registerRequest()); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("expected ErrDuplicateRegistration, got %v", err)
	}
}

func TestBeginMailFailureKeepsPending(t *testing.T) {
	svc, _, _, kv, mailer := registrationFixture()
	mailer.err = errors.New("smtp down")

	token, err := svc.Begin(context.Background(), 1, registerRequest())
	if !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
	if token == "" {
		t.Fatal("token must still be returned on mail failure")
	}
	if _, err := kv.Get(context.Background(), config.CacheKey.PendingRegistrationKey(token)); err != nil {
		t.Fatalf("pending state must survive a mail failure: %v", err)
	}
}

func TestVerifyCreatesStudentWithHallTicket(t *testing.T) {
	svc, students, _, kv, _ := registrationFixture()

	token, err := svc.Begin(context.Background(), 1, registerRequest())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	raw, _ := kv.Get(context.Background(), config.CacheKey.PendingRegistrationKey(token))
	otp := extractOTP(t, raw)

	student, err := svc.Verify(context.Background(), token, otp)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if student.HallTicket != "CH01251000" {
		t.Fatalf("expected first hall ticket CH01251000, got %q", student.HallTicket)
	}
	if student.Email != "asha@example.com" || student.Stream != model.StreamBTech {
		t.Fatalf("student fields not carried over: %+v", student)
	}
	if !student.IsActive {
		t.Fatal("verified student must be active")
	}
	if len(students.students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(students.students))
	}
	if kv.len() != 0 {
		t.Fatal("pending state must be deleted after verification")
	}
}

func TestVerifyHallTicketsIncrement(t *testing.T) {
	svc, _, _, kv, _ := registrationFixture()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	var tickets []string
	for _, email := range emails {
		req := registerRequest()
		req.Email = email
		token, err := svc.Begin(context.Background(), 1, req)
		if err != nil {
			t.Fatalf("Begin(%s): %v", email, err)
		}
		raw, _ := kv.Get(context.Background(), config.CacheKey.PendingRegistrationKey(token))
		student, err := svc.Verify(context.Background(), token, extractOTP(t, raw))
		if err != nil {
			t.Fatalf("Verify(%s): %v", email, err)
		}
		tickets = append(tickets, student.HallTicket)
	}

	want := []string{"CH01251000", "CH01251001", "CH01251002"}
	for i, ticket := range tickets {
		if ticket != want[i] {
			t.Fatalf("ticket %d: got %q, want %q", i, ticket, want[i])
		}
	}
}

func TestVerifyWrongOTPPreservesPending(t *testing.T) {
	svc, students, _, kv, _ := registrationFixture()

	token, err := svc.Begin(context.Background(), 1, registerRequest())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token, "000000x"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
	if kv.len() != 1 {
		t.Fatal("pending state must survive a wrong code")
	}
	if len(students.students) != 0 {
		t.Fatal("no student row may exist before the OTP matches")
	}

	// A retry with the right code still succeeds.
	raw, _ := kv.Get(context.Background(), config.CacheKey.PendingRegistrationKey(token))
	if _, err := svc.Verify(context.Background(), token, extractOTP(t, raw)); err != nil {
		t.Fatalf("retry after wrong code: %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	svc, _, _, _, _ := registrationFixture()

	if _, err := svc.Verify(context.Background(), "no-such-token", "123456"); !errors.Is(err, ErrRegistrationExpired) {
		t.Fatalf("expected ErrRegistrationExpired, got %v", err)
	}
}

func TestGenerateOTPDigitsOnly(t *testing.T) {
	seen := make(map[byte]bool)
	for i := 0; i < 500; i++ {
		otp, err := generateOTP(6)
		if err != nil {
			t.Fatalf("generateOTP: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("length: got %d, want 6", len(otp))
		}
		for j := 0; j < len(otp); j++ {
			if otp[j] < '0' || otp[j] > '9' {
				t.Fatalf("non-digit %q in otp %q", otp[j], otp)
			}
			seen[otp[j]] = true
		}
	}
	// 3000 uniform draws hit every digit.
	if len(seen) != 10 {
		t.Fatalf("digits seen: got %d, want all 10", len(seen))
	}
}

// extractOTP pulls the otp field out of the stored pending JSON.
func extractOTP(t *testing.T, raw string) string {
	t.Helper()
	const marker = `"otp":"`
	i := strings.Index(raw, marker)
	if i < 0 {
		t.Fatalf("no otp in pending payload: %s", raw)
	}
	rest := raw[i+len(marker):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		t.Fatalf("malformed pending payload: %s", raw)
	}
	return rest[:j]
}
