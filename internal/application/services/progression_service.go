package services

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// ProgressionService handles chord progression operations
type ProgressionService struct {
	progressions *collection[entities.Progression]
	validate     *validator.Validate
	logger       *logger.Logger
}

var _ ports.ProgressionService = (*ProgressionService)(nil)

// NewProgressionService creates a new progression service
func NewProgressionService(store *Store, ids ports.IDGenerator, validate *validator.Validate, logger *logger.Logger) *ProgressionService {
	return &ProgressionService{
		progressions: newCollection[entities.Progression](entities.KindProgression, store, ids, logger),
		validate:     validate,
		logger:       logger,
	}
}

// ListProgressions returns every progression in stored order
func (s *ProgressionService) ListProgressions(ctx context.Context) ([]entities.Progression, error) {
	return s.progressions.list(ctx)
}

// CreateProgression creates a new progression with a fresh ID
func (s *ProgressionService) CreateProgression(ctx context.Context, req ports.ProgressionRequest) (*entities.Progression, error) {
	if err := validatePayload(s.validate, entities.KindProgression, &req); err != nil {
		return nil, err
	}

	progression, err := s.progressions.create(ctx, func(id string) entities.Progression {
		return buildProgression(id, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Progression created successfully", "progression_id", progression.ID, "name", progression.Name)

	return &progression, nil
}

// UpdateProgression replaces a progression's contents, keeping its ID and position
func (s *ProgressionService) UpdateProgression(ctx context.Context, id string, req ports.ProgressionRequest) (*entities.Progression, error) {
	if err := validatePayload(s.validate, entities.KindProgression, &req); err != nil {
		return nil, err
	}

	progression, err := s.progressions.update(ctx, id, func(id string) entities.Progression {
		return buildProgression(id, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Progression updated successfully", "progression_id", progression.ID, "name", progression.Name)

	return &progression, nil
}

// DeleteProgression deletes a progression
func (s *ProgressionService) DeleteProgression(ctx context.Context, id string) error {
	if err := s.progressions.delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("Progression deleted successfully", "progression_id", id)

	return nil
}

func buildProgression(id string, req ports.ProgressionRequest) entities.Progression {
	chords := make([]entities.Chord, 0, len(req.Chords))
	for _, c := range req.Chords {
		chords = append(chords, entities.Chord{
			Root:    *c.Root,
			Quality: *c.Quality,
			Label:   *c.Label,
			Bass:    entities.FromPtr(c.Bass),
		})
	}

	progression := entities.Progression{
		ID:   id,
		Name: *req.Name,
		Scale: entities.ScaleInfo{
			Key:  *req.Scale.Key,
			Mode: *req.Scale.Mode,
		},
		Chords: chords,
	}
	progression.Normalize()
	return progression
}
