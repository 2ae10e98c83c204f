package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/btesedu/scholarex-backend/internal/response"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/btesedu/scholarex-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// CollegeHandler handles the college and official management endpoints.
type CollegeHandler struct {
	collegeService *service.CollegeService
}

// NewCollegeHandler creates a new CollegeHandler.
func NewCollegeHandler(collegeService *service.CollegeService) *CollegeHandler {
	return &CollegeHandler{collegeService: collegeService}
}

// ListPublic godoc
// GET /api/v1/public/colleges
// Returns the colleges shown on the registration page.
func (h *CollegeHandler) ListPublic(c *gin.Context) {
	colleges, err := h.collegeService.ListPublic(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"colleges": colleges})
}

// List godoc
// GET /api/v1/admin/colleges
// Returns every college with its officials.
func (h *CollegeHandler) List(c *gin.Context) {
	colleges, err := h.collegeService.ListWithOfficials(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"colleges": colleges})
}

// Create godoc
// POST /api/v1/admin/colleges
func (h *CollegeHandler) Create(c *gin.Context) {
	var req model.CreateCollegeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	college, err := h.collegeService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCollege) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"college": college})
}

// CreateOfficial godoc
// POST /api/v1/admin/colleges/:college_id/officials
func (h *CollegeHandler) CreateOfficial(c *gin.Context) {
	collegeID, err := strconv.Atoi(c.Param("college_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateOfficialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	official, err := h.collegeService.CreateOfficial(c.Request.Context(), collegeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCollegeNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrDuplicateOfficial):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"official": official})
}

// UpdateOfficial godoc
// PUT /api/v1/admin/officials/:id
func (h *CollegeHandler) UpdateOfficial(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateOfficialRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	official, err := h.collegeService.UpdateOfficial(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrDuplicateOfficial):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"official": official})
}

// ToggleOfficial godoc
// PATCH /api/v1/admin/officials/:id/toggle
func (h *CollegeHandler) ToggleOfficial(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	isActive, err := h.collegeService.ToggleOfficial(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_active": isActive})
}
