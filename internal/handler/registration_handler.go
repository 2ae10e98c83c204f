package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/response"
	"github.com/btesedu/scholarex-backend/internal/service"
	"github.com/btesedu/scholarex-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// RegistrationHandler handles the OTP-verified registration flow.
type RegistrationHandler struct {
	registrationService *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrationService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Begin godoc
// POST /api/v1/registration/colleges/:college_id
// Starts a registration: stores the pending state and emails an OTP.
func (h *RegistrationHandler) Begin(c *gin.Context) {
	collegeID, err := strconv.Atoi(c.Param("college_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.registrationService.Begin(c.Request.Context(), collegeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCollegeNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrRegistrationClosed):
			response.Fail(c, http.StatusForbidden, response.ErrRegistrationClosed)
		case errors.Is(err, service.ErrDuplicateRegistration):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateRegistration)
		case errors.Is(err, service.ErrMailDelivery):
			// Pending state survives; the client keeps the token and the
			// student can retry verification once the code reaches them.
			response.Success(c, http.StatusAccepted, gin.H{
				"registration_token": token,
				"warning":            response.GetMessage(response.ErrMailDelivery),
			})
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"registration_token": token})
}

// Verify godoc
// POST /api/v1/registration/verify
// Matches the OTP and creates the student with a hall ticket.
func (h *RegistrationHandler) Verify(c *gin.Context) {
	var req model.VerifyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.registrationService.Verify(c.Request.Context(), req.RegistrationToken, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationExpired):
			response.Fail(c, http.StatusGone, response.ErrRegistrationExpired)
		case errors.Is(err, service.ErrInvalidOTP):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidOTP)
		case errors.Is(err, service.ErrDuplicateRegistration):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateRegistration)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}
