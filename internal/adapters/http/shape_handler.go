package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// ShapeHandler handles chord shape requests
type ShapeHandler struct {
	shapeService ports.ShapeService
	logger       *logger.Logger
}

// NewShapeHandler creates a new shape handler
func NewShapeHandler(shapeService ports.ShapeService, logger *logger.Logger) *ShapeHandler {
	return &ShapeHandler{
		shapeService: shapeService,
		logger:       logger,
	}
}

// ListShapes godoc
// @Summary List chord shapes
// @Tags shapes
// @Produce json
// @Success 200 {array} entities.ChordShape
// @Failure 500 {object} ErrorResponse
// @Router /shapes [get]
func (h *ShapeHandler) ListShapes(c echo.Context) error {
	shapes, err := h.shapeService.ListShapes(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List shapes failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, shapes)
}

// CreateShape godoc
// @Summary Create a chord shape
// @Description Store a new guitar chord diagram. A client supplied id is ignored.
// @Tags shapes
// @Accept json
// @Produce json
// @Param request body ports.ShapeRequest true "Shape data"
// @Success 201 {object} entities.ChordShape
// @Failure 422 {object} ErrorResponse
// @Router /shapes [post]
func (h *ShapeHandler) CreateShape(c echo.Context) error {
	var req ports.ShapeRequest
	if err := bindPayload(c, entities.KindShape, &req); err != nil {
		return err
	}

	shape, err := h.shapeService.CreateShape(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Create shape failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, shape)
}

// UpdateShape godoc
// @Summary Update a chord shape
// @Tags shapes
// @Accept json
// @Produce json
// @Param id path string true "Shape ID"
// @Param request body ports.ShapeRequest true "Shape data"
// @Success 200 {object} entities.ChordShape
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /shapes/{id} [put]
func (h *ShapeHandler) UpdateShape(c echo.Context) error {
	id := c.Param("id")

	var req ports.ShapeRequest
	if err := bindPayload(c, entities.KindShape, &req); err != nil {
		return err
	}

	shape, err := h.shapeService.UpdateShape(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Warnw("Update shape failed", "error", err, "shape_id", id)
		return err
	}

	return c.JSON(http.StatusOK, shape)
}

// DeleteShape godoc
// @Summary Delete a chord shape
// @Tags shapes
// @Param id path string true "Shape ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /shapes/{id} [delete]
func (h *ShapeHandler) DeleteShape(c echo.Context) error {
	id := c.Param("id")

	if err := h.shapeService.DeleteShape(c.Request().Context(), id); err != nil {
		h.logger.Warnw("Delete shape failed", "error", err, "shape_id", id)
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
