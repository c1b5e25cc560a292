package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrNotFound   = errors.New("record not found")
	ErrValidation = errors.New("validation failed")
)

// Kind identifies one of the collections held by the document.
type Kind string

const (
	KindProgression Kind = "progressions"
	KindShape       Kind = "shapes"
)

// Kinds lists every collection in document order.
var Kinds = []Kind{KindProgression, KindShape}

// Collection returns the document key holding records of this kind.
func (k Kind) Collection() string {
	return string(k)
}

// Prefix returns the identifier prefix for records of this kind.
func (k Kind) Prefix() string {
	switch k {
	case KindProgression:
		return "prg"
	case KindShape:
		return "shape"
	default:
		return "rec"
	}
}

// Singular returns a human-readable name for one record of this kind.
func (k Kind) Singular() string {
	switch k {
	case KindProgression:
		return "progression"
	case KindShape:
		return "shape"
	default:
		return "record"
	}
}

// NotFoundError reports that no record with ID exists in the collection of Kind.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind.Singular(), e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a not-found error for the given record.
func NewNotFoundError(kind Kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError reports a payload that does not satisfy the record constraints.
type ValidationError struct {
	Kind Kind
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Kind.Singular(), e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError wraps err as a validation failure for kind.
func NewValidationError(kind Kind, err error) *ValidationError {
	return &ValidationError{Kind: kind, Err: err}
}

// PlaceholderChordLabel replaces a blank chord name on a shape.
const PlaceholderChordLabel = "Untitled"

// Fret values used by diagrams. Positive numbers are fretted positions.
const (
	FretMuted = -1
	FretOpen  = 0
)

// StringCount is the number of strings a diagram describes.
const StringCount = 6

// ScaleInfo names the tonal center of a progression
type ScaleInfo struct {
	Key  string `json:"key"`
	Mode string `json:"mode"`
}

// Chord is a single step of a progression
type Chord struct {
	Root    string           `json:"root"`
	Quality string           `json:"quality"`
	Label   string           `json:"label"`
	Bass    Optional[string] `json:"bass"`
}

// Progression represents a named sequence of chords within a scale
type Progression struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Scale  ScaleInfo `json:"scale"`
	Chords []Chord   `json:"chords"`
}

// Diagram describes fret positions for a six-string instrument
type Diagram struct {
	StartFret int   `json:"startFret"`
	Frets     []int `json:"frets"`
}

// ChordShape represents a guitar chord diagram
type ChordShape struct {
	ID       string           `json:"id"`
	Chord    string           `json:"chord"`
	Position Optional[string] `json:"position"`
	Diagram  Diagram          `json:"diagram"`
}

// NormalizeChordLabel trims label and falls back to the placeholder when nothing is left.
func NormalizeChordLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return PlaceholderChordLabel
	}
	return trimmed
}

// Normalize applies field normalization to the shape.
func (s *ChordShape) Normalize() {
	s.Chord = NormalizeChordLabel(s.Chord)
	if s.Diagram.Frets == nil {
		s.Diagram.Frets = []int{}
	}
}

// Normalize applies field normalization to the progression.
func (p *Progression) Normalize() {
	if p.Chords == nil {
		p.Chords = []Chord{}
	}
}
