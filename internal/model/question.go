package model

// QuestionCategory separates the two question pools.
type QuestionCategory string

const (
	CategoryTechnical QuestionCategory = "TECH"
	CategoryReasoning QuestionCategory = "REAS"
)

// Question is a four-option multiple-choice question. Options 3 and 4 are
// optional; CorrectOption indexes into options 1..4.
type Question struct {
	ID            int              `json:"id"`
	Category      QuestionCategory `json:"category"`
	QuestionText  string           `json:"question_text"`
	Option1       string           `json:"option_1"`
	Option2       string           `json:"option_2"`
	Option3       *string          `json:"option_3,omitempty"`
	Option4       *string          `json:"option_4,omitempty"`
	CorrectOption int              `json:"correct_option"`
	IsActive      bool             `json:"is_active"`
}

// QuestionForStudent is a question stripped of the correct answer, as
// presented during an attempt.
type QuestionForStudent struct {
	ID           int              `json:"id"`
	Category     QuestionCategory `json:"category"`
	QuestionText string           `json:"question_text"`
	Option1      string           `json:"option_1"`
	Option2      string           `json:"option_2"`
	Option3      *string          `json:"option_3,omitempty"`
	Option4      *string          `json:"option_4,omitempty"`
}

// ForStudent projects the student-visible fields.
func (q Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		Category:     q.Category,
		QuestionText: q.QuestionText,
		Option1:      q.Option1,
		Option2:      q.Option2,
		Option3:      q.Option3,
		Option4:      q.Option4,
	}
}

// CreateQuestionRequest is the payload for adding or editing a question.
type CreateQuestionRequest struct {
	Category      QuestionCategory `json:"category" binding:"required,oneof=TECH REAS"`
	QuestionText  string           `json:"question_text" binding:"required,min=1,max=2000"`
	Option1       string           `json:"option_1" binding:"required,max=255"`
	Option2       string           `json:"option_2" binding:"required,max=255"`
	Option3       *string          `json:"option_3" binding:"omitempty,max=255"`
	Option4       *string          `json:"option_4" binding:"omitempty,max=255"`
	CorrectOption int              `json:"correct_option" binding:"required,min=1,max=4"`
}

// QuestionImportItem is one entry of a bulk JSON upload. Validation is
// deliberately loose; invalid entries are skipped and counted, not fatal.
type QuestionImportItem struct {
	Category      string `json:"category"`
	QuestionText  string `json:"question_text"`
	Option1       string `json:"option_1"`
	Option2       string `json:"option_2"`
	Option3       string `json:"option_3"`
	Option4       string `json:"option_4"`
	CorrectOption int    `json:"correct_option"`
}

// SubmitQuizRequest maps question IDs to the option the student chose.
type SubmitQuizRequest struct {
	Answers map[int]int `json:"answers" binding:"required"`
}
