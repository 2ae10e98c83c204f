package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/response"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
)

// ResultHandler handles the result listing and spreadsheet downloads.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListBySchedule godoc
// GET /api/v1/admin/histories/:id/results?cutoff=...&top=...
// A snapshot's scored students, best score first.
func (h *ResultHandler) ListBySchedule(c *gin.Context) {
	id, filter, ok := h.parseListing(c)
	if !ok {
		return
	}

	results, err := h.resultService.ListBySchedule(c.Request.Context(), id, filter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// ExportResults godoc
// GET /api/v1/admin/histories/:id/results/export
func (h *ResultHandler) ExportResults(c *gin.Context) {
	id, filter, ok := h.parseListing(c)
	if !ok {
		return
	}

	f, err := h.resultService.ExportResults(c.Request.Context(), id, filter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeWorkbook(c, f, fmt.Sprintf("results-%d.xlsx", id))
}

// ExportRegistrations godoc
// GET /api/v1/admin/histories/:id/registrations/export
func (h *ResultHandler) ExportRegistrations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	f, err := h.resultService.ExportRegistrations(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeWorkbook(c, f, fmt.Sprintf("registrations-%d.xlsx", id))
}

func (h *ResultHandler) parseListing(c *gin.Context) (int, model.ResultFilter, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, model.ResultFilter{}, false
	}

	var filter model.ResultFilter
	if v := c.Query("cutoff"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return 0, model.ResultFilter{}, false
		}
		filter.Cutoff = &n
	}
	if v := c.Query("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return 0, model.ResultFilter{}, false
		}
		filter.TopN = &n
	}
	return id, filter, true
}

func writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
