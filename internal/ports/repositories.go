package ports

import (
	"context"

	"github.com/chordcraft/core/internal/domain/entities"
)

// DocumentGateway defines the interface for reading and writing the persisted document
type DocumentGateway interface {
	// Load reads the persisted document. Missing or unparseable state is not an
	// error; it yields the empty default and is reported through the outcome.
	Load(ctx context.Context) (entities.LoadResult, error)

	// Save replaces the persisted document as a whole. Readers never observe a
	// partially written document.
	Save(ctx context.Context, doc entities.Document) error

	// Close releases resources held by the gateway.
	Close() error
}

// IDGenerator produces record identifiers
type IDGenerator interface {
	Generate(kind entities.Kind) string
}

// StoreObserver receives notifications about document loads and repairs
type StoreObserver interface {
	DocumentLoaded(outcome entities.LoadOutcome)
	DocumentRepaired(report NormalizeReport)
}

// NormalizeReport describes the repairs made by one normalization pass
type NormalizeReport struct {
	CreatedCollections []entities.Kind `json:"created_collections,omitempty"`
	ReassignedIDs      []IDChange      `json:"reassigned_ids,omitempty"`
	RepairedFields     []FieldRepair   `json:"repaired_fields,omitempty"`
}

// IDChange records an identifier assigned during normalization. Previous is
// empty when the record had no usable identifier.
type IDChange struct {
	Kind     entities.Kind `json:"kind"`
	Index    int           `json:"index"`
	Previous string        `json:"previous,omitempty"`
	Current  string        `json:"current"`
}

// FieldRepair records a field rewritten during normalization
type FieldRepair struct {
	Kind  entities.Kind `json:"kind"`
	ID    string        `json:"id"`
	Field string        `json:"field"`
}

// Changed reports whether the pass modified the document
func (r NormalizeReport) Changed() bool {
	return len(r.CreatedCollections) > 0 || len(r.ReassignedIDs) > 0 || len(r.RepairedFields) > 0
}
