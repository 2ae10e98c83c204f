package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/response"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/btesedu/scholarex-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// ScheduleHandler handles schedule management, history listings and the
// share-link mails.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	authService     *service.AuthService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService, authService *service.AuthService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, authService: authService}
}

// List godoc
// GET /api/v1/admin/schedules
// Every college paired with its current schedule.
func (h *ScheduleHandler) List(c *gin.Context) {
	rows, err := h.scheduleService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedules": rows})
}

// ListByCollege godoc
// GET /api/v1/admin/colleges/:college_id/schedules
func (h *ScheduleHandler) ListByCollege(c *gin.Context) {
	collegeID, err := strconv.Atoi(c.Param("college_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	schedules, err := h.scheduleService.ListByCollege(c.Request.Context(), collegeID)
	if err != nil {
		if errors.Is(err, service.ErrCollegeNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedules": schedules})
}

// SetDate godoc
// POST /api/v1/admin/colleges/:college_id/schedule/date
// Sets or replaces the quiz date; must be in the future.
func (h *ScheduleHandler) SetDate(c *gin.Context) {
	collegeID, err := strconv.Atoi(c.Param("college_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SetScheduleDateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	schedule, err := h.scheduleService.SetDate(c.Request.Context(), collegeID, req.QuizDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPastQuizDate):
			response.Fail(c, http.StatusBadRequest, response.ErrPastQuizDate)
		case errors.Is(err, service.ErrCollegeNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": schedule})
}

// Update godoc
// PUT /api/v1/admin/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	schedule, err := h.scheduleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": schedule})
}

// ToggleQuiz godoc
// PATCH /api/v1/admin/schedules/:id/toggle-quiz
func (h *ScheduleHandler) ToggleQuiz(c *gin.Context) {
	h.toggle(c, h.scheduleService.ToggleQuiz)
}

// ToggleRegistration godoc
// PATCH /api/v1/admin/schedules/:id/toggle-registration
func (h *ScheduleHandler) ToggleRegistration(c *gin.Context) {
	h.toggle(c, h.scheduleService.ToggleRegistration)
}

func (h *ScheduleHandler) toggle(c *gin.Context, fn func(ctx context.Context, id int) (*model.ExamSchedule, error)) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	schedule, err := fn(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": schedule})
}

// ShareRegistrationLink godoc
// POST /api/v1/admin/colleges/:college_id/share-registration
// Mails the registration link to the college's active officials.
func (h *ScheduleHandler) ShareRegistrationLink(c *gin.Context) {
	h.share(c, h.scheduleService.ShareRegistrationLink)
}

// ShareQuizLink godoc
// POST /api/v1/admin/colleges/:college_id/share-quiz
// Mails the quiz link to the cohort's registered students.
func (h *ScheduleHandler) ShareQuizLink(c *gin.Context) {
	h.share(c, h.scheduleService.ShareQuizLink)
}

func (h *ScheduleHandler) share(c *gin.Context, fn func(ctx context.Context, collegeID int) (string, error)) {
	collegeID, err := strconv.Atoi(c.Param("college_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	link, err := fn(c.Request.Context(), collegeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCollegeNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNoActiveSchedule):
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveSchedule)
		case errors.Is(err, service.ErrQuizDateNotSet), errors.Is(err, service.ErrNoRecipients):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrMailDelivery):
			response.Fail(c, http.StatusBadGateway, response.ErrMailDelivery)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"link": link})
}

// ListHistories godoc
// GET /api/v1/admin/histories?college=...&from=...&to=...
// Schedule snapshots for the dashboard, optionally filtered.
func (h *ScheduleHandler) ListHistories(c *gin.Context) {
	filter := model.HistoryFilter{CollegeName: c.Query("college")}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		filter.To = &t
	}

	histories, err := h.scheduleService.ListHistories(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"histories": histories})
}

// Registrations godoc
// GET /api/v1/admin/histories/:id/registrations
// Students registered under one snapshot.
func (h *ScheduleHandler) Registrations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	students, err := h.scheduleService.Registrations(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ResetStudentSession godoc
// POST /api/v1/admin/students/:id/reset-session
// Unlocks a student whose session never closed.
func (h *ScheduleHandler) ResetStudentSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ReleaseStudentSession(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
