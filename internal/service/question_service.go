package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
)

// QuestionService manages the question banks.
type QuestionService struct {
	questions *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// List returns one page of questions plus the total count.
func (s *QuestionService) List(ctx context.Context, page, perPage int) ([]model.Question, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	questions, total, err := s.questions.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, total, nil
}

// Create adds a question to its category's bank, active immediately.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Category:      req.Category,
		QuestionText:  req.QuestionText,
		Option1:       req.Option1,
		Option2:       req.Option2,
		Option3:       req.Option3,
		Option4:       req.Option4,
		CorrectOption: req.CorrectOption,
		IsActive:      true,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update replaces a question's content.
func (s *QuestionService) Update(ctx context.Context, id int, req *model.CreateQuestionRequest) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	q.Category = req.Category
	q.QuestionText = req.QuestionText
	q.Option1 = req.Option1
	q.Option2 = req.Option2
	q.Option3 = req.Option3
	q.Option4 = req.Option4
	q.CorrectOption = req.CorrectOption
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ToggleActive flips a question in or out of the selection pool.
func (s *QuestionService) ToggleActive(ctx context.Context, id int) (bool, error) {
	return s.questions.ToggleActive(ctx, id)
}

// Import bulk-loads questions. Invalid entries are skipped and counted, so
// one bad row never sinks a whole upload.
func (s *QuestionService) Import(ctx context.Context, items []model.QuestionImportItem) (imported, skipped int, err error) {
	for _, item := range items {
		q, ok := importItemToQuestion(item)
		if !ok {
			skipped++
			continue
		}
		if err := s.questions.Create(ctx, q); err != nil {
			return imported, skipped, fmt.Errorf("import question %q: %w", item.QuestionText, err)
		}
		imported++
	}
	return imported, skipped, nil
}

func importItemToQuestion(item model.QuestionImportItem) (*model.Question, bool) {
	category := model.QuestionCategory(strings.ToUpper(strings.TrimSpace(item.Category)))
	if category != model.CategoryTechnical && category != model.CategoryReasoning {
		return nil, false
	}
	if strings.TrimSpace(item.QuestionText) == "" ||
		strings.TrimSpace(item.Option1) == "" ||
		strings.TrimSpace(item.Option2) == "" {
		return nil, false
	}
	if item.CorrectOption < 1 || item.CorrectOption > 4 {
		return nil, false
	}

	q := &model.Question{
		Category:      category,
		QuestionText:  strings.TrimSpace(item.QuestionText),
		Option1:       item.Option1,
		Option2:       item.Option2,
		CorrectOption: item.CorrectOption,
		IsActive:      true,
	}
	if v := strings.TrimSpace(item.Option3); v != "" {
		q.Option3 = &v
	}
	if v := strings.TrimSpace(item.Option4); v != "" {
		q.Option4 = &v
	}
	return q, true
}
