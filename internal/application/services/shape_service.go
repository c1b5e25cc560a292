package services

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// ShapeService handles chord shape operations
type ShapeService struct {
	shapes   *collection[entities.ChordShape]
	validate *validator.Validate
	logger   *logger.Logger
}

var _ ports.ShapeService = (*ShapeService)(nil)

// NewShapeService creates a new shape service
func NewShapeService(store *Store, ids ports.IDGenerator, validate *validator.Validate, logger *logger.Logger) *ShapeService {
	return &ShapeService{
		shapes:   newCollection[entities.ChordShape](entities.KindShape, store, ids, logger),
		validate: validate,
		logger:   logger,
	}
}

// ListShapes returns every chord shape in stored order
func (s *ShapeService) ListShapes(ctx context.Context) ([]entities.ChordShape, error) {
	return s.shapes.list(ctx)
}

// CreateShape creates a new chord shape. Any ID in the payload is ignored.
func (s *ShapeService) CreateShape(ctx context.Context, req ports.ShapeRequest) (*entities.ChordShape, error) {
	if err := validatePayload(s.validate, entities.KindShape, &req); err != nil {
		return nil, err
	}

	shape, err := s.shapes.create(ctx, func(id string) entities.ChordShape {
		return buildShape(id, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Shape created successfully", "shape_id", shape.ID, "chord", shape.Chord)

	return &shape, nil
}

// UpdateShape replaces a chord shape's contents, keeping its ID and position
func (s *ShapeService) UpdateShape(ctx context.Context, id string, req ports.ShapeRequest) (*entities.ChordShape, error) {
	if err := validatePayload(s.validate, entities.KindShape, &req); err != nil {
		return nil, err
	}

	shape, err := s.shapes.update(ctx, id, func(id string) entities.ChordShape {
		return buildShape(id, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Shape updated successfully", "shape_id", shape.ID, "chord", shape.Chord)

	return &shape, nil
}

// DeleteShape deletes a chord shape
func (s *ShapeService) DeleteShape(ctx context.Context, id string) error {
	if err := s.shapes.delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Shape deleted successfully", "shape_id", id)

	return nil
}

func buildShape(id string, req ports.ShapeRequest) entities.ChordShape {
	frets := make([]int, len(req.Diagram.Frets))
	copy(frets, req.Diagram.Frets)

	shape := entities.ChordShape{
		ID:       id,
		Chord:    *req.Chord,
		Position: entities.FromPtr(req.Position),
		Diagram: entities.Diagram{
			StartFret: *req.Diagram.StartFret,
			Frets:     frets,
		},
	}
	shape.Normalize()
	return shape
}
