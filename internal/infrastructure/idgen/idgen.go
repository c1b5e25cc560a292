package idgen

import (
	"strings"

	"github.com/google/uuid"

	"github.com/chordcraft/core/internal/domain/entities"
)

// suffixLength is the number of hex characters taken from a random UUID.
const suffixLength = 12

// Generator produces "<prefix>-<hex>" identifiers with a random suffix.
type Generator struct{}

// New creates a new identifier generator
func New() *Generator {
	return &Generator{}
}

// Generate returns a fresh identifier for a record of kind.
func (g *Generator) Generate(kind entities.Kind) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
	return kind.Prefix() + "-" + suffix
}
