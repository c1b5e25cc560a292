package ports

import (
	"context"

	"github.com/chordcraft/core/internal/domain/entities"
)

// ProgressionService interface for chord progression operations
type ProgressionService interface {
	ListProgressions(ctx context.Context) ([]entities.Progression, error)
	CreateProgression(ctx context.Context, req ProgressionRequest) (*entities.Progression, error)
	UpdateProgression(ctx context.Context, id string, req ProgressionRequest) (*entities.Progression, error)
	DeleteProgression(ctx context.Context, id string) error
}

// ShapeService interface for chord shape operations
type ShapeService interface {
	ListShapes(ctx context.Context) ([]entities.ChordShape, error)
	CreateShape(ctx context.Context, req ShapeRequest) (*entities.ChordShape, error)
	UpdateShape(ctx context.Context, id string, req ShapeRequest) (*entities.ChordShape, error)
	DeleteShape(ctx context.Context, id string) error
}

// Request types
//
// Required fields are pointers so that a missing field can be told apart from
// an empty one.

type ChordInput struct {
	Root    *string `json:"root" validate:"required"`
	Quality *string `json:"quality" validate:"required"`
	Label   *string `json:"label" validate:"required"`
	Bass    *string `json:"bass"`
}

type ScaleInput struct {
	Key  *string `json:"key" validate:"required"`
	Mode *string `json:"mode" validate:"required"`
}

type ProgressionRequest struct {
	Name   *string      `json:"name" validate:"required"`
	Scale  *ScaleInput  `json:"scale" validate:"required"`
	Chords []ChordInput `json:"chords" validate:"required,dive"`
}

type DiagramInput struct {
	StartFret *int  `json:"startFret" validate:"required,min=1"`
	Frets     []int `json:"frets" validate:"required,len=6"`
}

// ShapeRequest carries a chord shape payload. A client supplied ID is accepted
// on the wire and ignored.
type ShapeRequest struct {
	ID       string        `json:"id,omitempty"`
	Chord    *string       `json:"chord" validate:"required"`
	Position *string       `json:"position"`
	Diagram  *DiagramInput `json:"diagram" validate:"required"`
}
