package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// ProgressionHandler handles chord progression requests
type ProgressionHandler struct {
	progressionService ports.ProgressionService
	logger             *logger.Logger
}

// NewProgressionHandler creates a new progression handler
func NewProgressionHandler(progressionService ports.ProgressionService, logger *logger.Logger) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: progressionService,
		logger:             logger,
	}
}

// ListProgressions godoc
// @Summary List progressions
// @Description List every stored chord progression in order
// @Tags progressions
// @Produce json
// @Success 200 {array} entities.Progression
// @Failure 500 {object} ErrorResponse
// @Router /progressions [get]
func (h *ProgressionHandler) ListProgressions(c echo.Context) error {
	progressions, err := h.progressionService.ListProgressions(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List progressions failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, progressions)
}

// CreateProgression godoc
// @Summary Create a progression
// @Description Store a new chord progression under a freshly generated ID
// @Tags progressions
// @Accept json
// @Produce json
// @Param request body ports.ProgressionRequest true "Progression data"
// @Success 201 {object} entities.Progression
// @Failure 422 {object} ErrorResponse
// @Router /progressions [post]
func (h *ProgressionHandler) CreateProgression(c echo.Context) error {
	var req ports.ProgressionRequest
	if err := bindPayload(c, entities.KindProgression, &req); err != nil {
		return err
	}

	progression, err := h.progressionService.CreateProgression(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Create progression failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, progression)
}

// UpdateProgression godoc
// @Summary Update a progression
// @Description Replace the contents of a progression, keeping its ID and position
// @Tags progressions
// @Accept json
// @Produce json
// @Param id path string true "Progression ID"
// @Param request body ports.ProgressionRequest true "Progression data"
// @Success 200 {object} entities.Progression
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /progressions/{id} [put]
func (h *ProgressionHandler) UpdateProgression(c echo.Context) error {
	id := c.Param("id")

	var req ports.ProgressionRequest
	if err := bindPayload(c, entities.KindProgression, &req); err != nil {
		return err
	}

	progression, err := h.progressionService.UpdateProgression(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Warnw("Update progression failed", "error", err, "progression_id", id)
		return err
	}

	return c.JSON(http.StatusOK, progression)
}

// DeleteProgression godoc
// @Summary Delete a progression
// @Tags progressions
// @Param id path string true "Progression ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /progressions/{id} [delete]
func (h *ProgressionHandler) DeleteProgression(c echo.Context) error {
	id := c.Param("id")

	if err := h.progressionService.DeleteProgression(c.Request().Context(), id); err != nil {
		h.logger.Warnw("Delete progression failed", "error", err, "progression_id", id)
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
