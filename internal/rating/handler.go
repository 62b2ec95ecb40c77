package rating

import (
	"errors"
	"net/http"

	"gardenrating/validation"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	InterfaceService ServiceInterface
}

func NewRatingHandler(service ServiceInterface) *Handler {
	return &Handler{
		InterfaceService: service,
	}
}

// RateHandler godoc
// @Summary Rate a garden photo.
// @Description Downloads the photo, scores it and writes the result back to the Airtable record.
// @Tags Ratings
// @Accept json
// @Produce json
// @Param request body RatePayload true "Record and photo to rate"
// @Success 200 {object} RateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rate [post]
// @Security ApiKeyAuth
func (h *Handler) RateHandler(c echo.Context) error {
	var request RatePayload
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
	}
	if err := validation.Validate(request); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
	}

	result, err := h.InterfaceService.RateService(c.Request().Context(), request)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrDownload) || errors.Is(err, ErrDecode) {
			statusCode = http.StatusBadRequest
		}
		return c.JSON(statusCode, ErrorResponse{Detail: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// HealthHandler godoc
// @Summary Service health.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *Handler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.InterfaceService.HealthService())
}

// GetRatingsHandler godoc
// @Summary Rating history for a record.
// @Tags Ratings
// @Produce json
// @Param record_id path string true "Airtable record id"
// @Success 200 {array} RatingHistoryResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /ratings/{record_id} [get]
func (h *Handler) GetRatingsHandler(c echo.Context) error {
	recordID := c.Param("record_id")

	result, err := h.InterfaceService.GetRatingsService(c.Request().Context(), recordID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrNoRatings):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrHistoryDisabled):
			statusCode = http.StatusServiceUnavailable
		}
		return c.JSON(statusCode, ErrorResponse{Detail: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
