package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// memoryGateway keeps the persisted document as encoded bytes so tests see
// exactly what a file-backed gateway would write.
type memoryGateway struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
}

func newMemoryGateway(t *testing.T, raw string) *memoryGateway {
	t.Helper()
	g := &memoryGateway{}
	if raw != "" {
		g.data = []byte(raw)
	}
	return g
}

func (g *memoryGateway) Load(ctx context.Context) (entities.LoadResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.data == nil {
		return entities.LoadResult{Document: entities.NewDocument(), Outcome: entities.LoadMissing}, nil
	}
	doc, err := entities.DecodeDocument(g.data)
	if err != nil {
		return entities.LoadResult{Document: entities.NewDocument(), Outcome: entities.LoadRecovered}, nil
	}
	return entities.LoadResult{Document: doc, Outcome: entities.LoadOK}, nil
}

func (g *memoryGateway) Save(ctx context.Context, doc entities.Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.saveErr != nil {
		return g.saveErr
	}
	data, err := entities.EncodeDocument(doc)
	if err != nil {
		return err
	}
	g.data = data
	g.saves++
	return nil
}

func (g *memoryGateway) Close() error { return nil }

func (g *memoryGateway) document(t *testing.T) entities.Document {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := entities.DecodeDocument(g.data)
	require.NoError(t, err)
	return doc
}

func (g *memoryGateway) saveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

// sequenceIDs hands out predictable identifiers, optionally replaying a fixed
// list first.
type sequenceIDs struct {
	mu     sync.Mutex
	queued []string
	next   int
}

func (s *sequenceIDs) Generate(kind entities.Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queued) > 0 {
		id := s.queued[0]
		s.queued = s.queued[1:]
		return id
	}
	s.next++
	return fmt.Sprintf("%s-%012x", kind.Prefix(), s.next)
}

type recordingObserver struct {
	outcomes []entities.LoadOutcome
	reports  []ports.NormalizeReport
}

func (o *recordingObserver) DocumentLoaded(outcome entities.LoadOutcome) {
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) DocumentRepaired(report ports.NormalizeReport) {
	o.reports = append(o.reports, report)
}

type fixture struct {
	gateway      *memoryGateway
	ids          *sequenceIDs
	observer     *recordingObserver
	store        *Store
	progressions *ProgressionService
	shapes       *ShapeService
}

func newFixture(t *testing.T, raw string) *fixture {
	t.Helper()

	f := &fixture{
		gateway:  newMemoryGateway(t, raw),
		ids:      &sequenceIDs{},
		observer: &recordingObserver{},
	}

	log := logger.NewNop()
	validate := NewValidator()
	f.store = NewStore(f.gateway, NewNormalizer(f.ids), f.observer, log)
	f.progressions = NewProgressionService(f.store, f.ids, validate, log)
	f.shapes = NewShapeService(f.store, f.ids, validate, log)
	return f
}

var errDiskFull = errors.New("disk full")

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func progressionRequest(name string, chords ...ports.ChordInput) ports.ProgressionRequest {
	if chords == nil {
		chords = []ports.ChordInput{}
	}
	return ports.ProgressionRequest{
		Name:   strPtr(name),
		Scale:  &ports.ScaleInput{Key: strPtr("C"), Mode: strPtr("Ionian")},
		Chords: chords,
	}
}

func chordInput(root, quality, label string) ports.ChordInput {
	return ports.ChordInput{Root: strPtr(root), Quality: strPtr(quality), Label: strPtr(label)}
}

func shapeRequest(chord string, startFret int, frets ...int) ports.ShapeRequest {
	return ports.ShapeRequest{
		Chord:   strPtr(chord),
		Diagram: &ports.DiagramInput{StartFret: intPtr(startFret), Frets: frets},
	}
}
