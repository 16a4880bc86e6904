package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"authsvc/internal/service"
)

// ExamHandler handles the per-user exam timer endpoints.
type ExamHandler struct {
	examService service.ExamService
}

// NewExamHandler creates a new exam handler.
func NewExamHandler(examService service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// StartExamRequest names the window length; zero falls back to one hour.
type StartExamRequest struct {
	Duration int `json:"duration" validate:"omitempty,gte=0"`
}

// Start godoc
// @Summary Start the exam timer
// @Tags exam-time
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartExamRequest true "Exam duration in seconds"
// @Success 200 {object} service.ExamWindow
// @Failure 401 {object} errors.ErrorResponse
// @Router /exam-time/start [post]
func (h *ExamHandler) Start(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req StartExamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	window, err := h.examService.Start(c.Request().Context(), user, req.Duration)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, window)
}

// Status godoc
// @Summary Get exam timer status
// @Tags exam-time
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExamWindow
// @Failure 401 {object} errors.ErrorResponse
// @Router /exam-time/status [get]
func (h *ExamHandler) Status(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.examService.Status(user))
}

// End godoc
// @Summary End the exam timer early
// @Tags exam-time
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExamWindow
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /exam-time/end [post]
func (h *ExamHandler) End(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	window, err := h.examService.End(c.Request().Context(), user)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, window)
}

// Reset godoc
// @Summary Reset the exam timer
// @Tags exam-time
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExamWindow
// @Failure 401 {object} errors.ErrorResponse
// @Router /exam-time/reset [post]
func (h *ExamHandler) Reset(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	window, err := h.examService.Reset(c.Request().Context(), user)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, window)
}
