package trigger

import (
	"net/http"

	"gardenrating/validation"

	"github.com/labstack/echo/v4"
)

// Request mirrors the automation's input config.
type Request struct {
	RecordID string `json:"recordId" validate:"required,record_id"`
}

type Handler struct {
	InterfaceService ServiceInterface
}

func NewTriggerHandler(service ServiceInterface) *Handler {
	return &Handler{InterfaceService: service}
}

// RecordCreatedHandler godoc
// @Summary Record-created trigger.
// @Description Forwards the record's first photo to the rating endpoint and returns the endpoint's reply as text.
// @Tags Trigger
// @Accept json
// @Produce plain
// @Param request body Request true "Trigger input"
// @Success 200 {string} string "Run output"
// @Failure 400 {string} string "Bad Request"
// @Failure 502 {string} string "Upstream failure"
// @Router /webhooks/record-created [post]
// @Security ApiKeyAuth
func (h *Handler) RecordCreatedHandler(c echo.Context) error {
	var request Request
	if err := c.Bind(&request); err != nil {
		return c.String(http.StatusBadRequest, "invalid request body")
	}
	if request.RecordID == "" {
		return c.String(http.StatusBadRequest, "recordId is required")
	}
	if err := validation.Validate(request); err != nil {
		return c.String(http.StatusBadRequest, "recordId is not an Airtable record id")
	}

	output, err := h.InterfaceService.Run(c.Request().Context(), request.RecordID)
	if err != nil {
		return c.String(http.StatusBadGateway, err.Error())
	}

	return c.String(http.StatusOK, output)
}
