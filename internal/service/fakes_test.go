package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/btesedu/scholarex-backend/internal/database"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

// memKV is an in-memory KV for tests. TTLs are recorded but not enforced;
// expiry is simulated by deleting keys.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (kv *memKV) Get(_ context.Context, key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	val, ok := kv.data[key]
	if !ok {
		return "", database.ErrKeyMissing
	}
	return val, nil
}

func (kv *memKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
	kv.ttls[key] = ttl
	return nil
}

func (kv *memKV) Del(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, k := range keys {
		delete(kv.data, k)
		delete(kv.ttls, k)
	}
	return nil
}

func (kv *memKV) len() int {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return len(kv.data)
}

// fakeMailer records sent mail and can be told to fail.
type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	subject string
	body    string
	to      []string
}

func (m *fakeMailer) Send(_ context.Context, subject, body string, to []string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{subject: subject, body: body, to: to})
	return nil
}

// fakeStudentStore backs both the registration and session stores.
type fakeStudentStore struct {
	students map[int]*model.Student
	nextID   int
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: make(map[int]*model.Student), nextID: 1}
}

func (f *fakeStudentStore) add(s *model.Student) *model.Student {
	if s.ID == 0 {
		s.ID = f.nextID
		f.nextID++
	}
	f.students[s.ID] = s
	return s
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudentStore) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	for _, s := range f.students {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStudentStore) ClaimSession(_ context.Context, studentID int, token string) (bool, error) {
	s, ok := f.students[studentID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if s.CurrentSession != nil {
		return false, nil
	}
	s.CurrentSession = &token
	return true, nil
}

func (f *fakeStudentStore) ReleaseSession(_ context.Context, studentID int) error {
	if s, ok := f.students[studentID]; ok {
		s.CurrentSession = nil
	}
	return nil
}

func (f *fakeStudentStore) ExistsForSchedule(_ context.Context, email string, historyID int) (bool, error) {
	for _, s := range f.students {
		if s.Email == email && s.ExamScheduleID == historyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentStore) CreateVerified(_ context.Context, s *model.Student, prefix string, start int) error {
	next := start
	for _, existing := range f.students {
		suffix, ok := strings.CutPrefix(existing.HallTicket, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n+1 > next {
			next = n + 1
		}
	}
	s.HallTicket = prefix + strconv.Itoa(next)
	s.CreatedAt = time.Now()
	f.add(s)
	return nil
}

// fakeScheduleStore serves one college's schedule state.
type fakeScheduleStore struct {
	schedule   *model.ExamSchedule // nil means no schedule
	openSched  *model.ExamSchedule // nil means registration closed
	histories  map[string]*model.ExamScheduleHistory
	nextHistID int
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{histories: make(map[string]*model.ExamScheduleHistory), nextHistID: 1}
}

func (f *fakeScheduleStore) CurrentByCollege(_ context.Context, collegeID int) (*model.ExamSchedule, error) {
	if f.schedule == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *f.schedule
	return &cp, nil
}

func (f *fakeScheduleStore) OpenForRegistration(_ context.Context, collegeID int) (*model.ExamSchedule, error) {
	if f.openSched == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *f.openSched
	return &cp, nil
}

func (f *fakeScheduleStore) GetOrCreateHistory(_ context.Context, collegeID int, quizDate *time.Time) (*model.ExamScheduleHistory, error) {
	key := strconv.Itoa(collegeID)
	if quizDate != nil {
		key += quizDate.String()
	}
	if h, ok := f.histories[key]; ok {
		return h, nil
	}
	h := &model.ExamScheduleHistory{
		ID:        f.nextHistID,
		CollegeID: collegeID,
		QuizDate:  quizDate,
		CreatedAt: time.Now(),
	}
	f.nextHistID++
	f.histories[key] = h
	return h, nil
}

// fakeCollegeStore holds colleges by ID.
type fakeCollegeStore struct {
	colleges map[int]*model.College
}

func (f *fakeCollegeStore) GetByID(_ context.Context, id int) (*model.College, error) {
	c, ok := f.colleges[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

// fakeQuestionStore serves fixed pools.
type fakeQuestionStore struct {
	tech []model.Question
	reas []model.Question
}

func (f *fakeQuestionStore) ListActiveByCategory(_ context.Context, category model.QuestionCategory) ([]model.Question, error) {
	if category == model.CategoryTechnical {
		return f.tech, nil
	}
	return f.reas, nil
}

func (f *fakeQuestionStore) ListByIDs(_ context.Context, ids []int) ([]model.Question, error) {
	all := append(append([]model.Question{}, f.tech...), f.reas...)
	var out []model.Question
	for _, q := range all {
		for _, id := range ids {
			if q.ID == id {
				out = append(out, q)
				break
			}
		}
	}
	return out, nil
}

// fakeResultStore enforces (student, history) uniqueness like the real table.
type fakeResultStore struct {
	results map[[2]int]*model.Result
	nextID  int
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[[2]int]*model.Result), nextID: 1}
}

func (f *fakeResultStore) ExistsForStudent(_ context.Context, studentID int) (bool, error) {
	for key := range f.results {
		if key[0] == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResultStore) Create(_ context.Context, res *model.Result) error {
	histID := 0
	if res.ExamScheduleID != nil {
		histID = *res.ExamScheduleID
	}
	key := [2]int{res.StudentID, histID}
	if _, ok := f.results[key]; ok {
		return repository.ErrDuplicateResult
	}
	res.ID = f.nextID
	res.CreatedAt = time.Now()
	f.nextID++
	cp := *res
	f.results[key] = &cp
	return nil
}
