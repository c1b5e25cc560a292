package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// Store hands out normalized documents and persists mutations through a gateway.
//
// Each call runs load, normalize, conditional save and, for Mutate, the
// mutation and its save while holding one mutex, so requests served by this
// process never interleave their read-modify-write windows. Writers in other
// processes are not coordinated.
type Store struct {
	gateway    ports.DocumentGateway
	normalizer *Normalizer
	observer   ports.StoreObserver
	logger     *logger.Logger
	mu         sync.Mutex
}

// NewStore creates a new document store
func NewStore(gateway ports.DocumentGateway, normalizer *Normalizer, observer ports.StoreObserver, logger *logger.Logger) *Store {
	return &Store{
		gateway:    gateway,
		normalizer: normalizer,
		observer:   observer,
		logger:     logger.WithComponent("store"),
	}
}

// Snapshot returns the normalized document, persisting any repairs first.
func (s *Store) Snapshot(ctx context.Context) (entities.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.loadLocked(ctx)
	return doc, err
}

// Repair runs one normalization pass and returns what it changed.
func (s *Store) Repair(ctx context.Context) (ports.NormalizeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, report, err := s.loadLocked(ctx)
	return report, err
}

// Mutate applies fn to the normalized document and persists the result. When fn
// returns an error nothing is written and the error is returned unchanged.
func (s *Store) Mutate(ctx context.Context, fn func(doc entities.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	if err := s.gateway.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *Store) loadLocked(ctx context.Context) (entities.Document, ports.NormalizeReport, error) {
	result, err := s.gateway.Load(ctx)
	if err != nil {
		return nil, ports.NormalizeReport{}, fmt.Errorf("failed to load document: %w", err)
	}

	if s.observer != nil {
		s.observer.DocumentLoaded(result.Outcome)
	}
	if result.Outcome == entities.LoadRecovered {
		s.logger.Warn("Persisted document unreadable, starting from an empty document")
	}

	doc, report := s.normalizer.NormalizeWithReport(result.Document)
	if !report.Changed() {
		return doc, report, nil
	}

	s.logger.LogStoreRepair(report)
	if s.observer != nil {
		s.observer.DocumentRepaired(report)
	}

	if err := s.gateway.Save(ctx, doc); err != nil {
		return nil, report, fmt.Errorf("failed to save repaired document: %w", err)
	}
	return doc, report, nil
}
