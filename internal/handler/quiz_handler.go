package handler

import (
	"errors"
	"net/http"

	"github.com/btesedu/scholarex-backend/internal/middleware"
	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/response"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/btesedu/scholarex-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// QuizHandler handles the student quiz endpoints.
type QuizHandler struct {
	authService *service.AuthService
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(authService *service.AuthService, quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{authService: authService, quizService: quizService}
}

// GetQuiz godoc
// GET /api/v1/student/quiz
// Evaluates the availability gate; when the quiz is open, draws and
// returns a fresh question paper.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	student, ok := h.currentStudent(c)
	if !ok {
		return
	}

	gate, questions, err := h.quizService.Start(c.Request.Context(), student)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	body := gin.H{"gate": gate}
	if gate.Status == service.GateAvailable {
		body["questions"] = questions
	}
	response.Success(c, http.StatusOK, body)
}

// Submit godoc
// POST /api/v1/student/quiz/submit
// Scores the answers and records the single permitted attempt.
func (h *QuizHandler) Submit(c *gin.Context) {
	student, ok := h.currentStudent(c)
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.quizService.Submit(c.Request.Context(), student, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyAttempted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
		case errors.Is(err, service.ErrNoActiveSchedule):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveSchedule)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"result": result})
}

func (h *QuizHandler) currentStudent(c *gin.Context) (*model.Student, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, false
	}

	student, err := h.authService.GetStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}
	return student, true
}
