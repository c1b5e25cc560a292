package services

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/ports"
)

// Normalizer repairs structural drift in a loaded document
type Normalizer struct {
	ids ports.IDGenerator
}

// NewNormalizer creates a normalizer assigning identifiers from ids
func NewNormalizer(ids ports.IDGenerator) *Normalizer {
	return &Normalizer{ids: ids}
}

// Normalize returns a repaired copy of doc and whether anything was changed.
// The input is never modified.
func (n *Normalizer) Normalize(doc entities.Document) (entities.Document, bool) {
	clean, report := n.NormalizeWithReport(doc)
	return clean, report.Changed()
}

// NormalizeWithReport is Normalize with a description of every repair.
func (n *Normalizer) NormalizeWithReport(doc entities.Document) (entities.Document, ports.NormalizeReport) {
	var report ports.NormalizeReport

	clean := doc.Clone()
	if clean == nil {
		clean = entities.Document{}
	}

	for _, kind := range entities.Kinds {
		if _, ok := clean.Records(kind); !ok {
			clean.SetRecords(kind, nil)
			report.CreatedCollections = append(report.CreatedCollections, kind)
		}
	}

	for _, kind := range entities.Kinds {
		records, _ := clean.Records(kind)
		n.repairIDs(kind, records, &report)
	}

	shapes, _ := clean.Records(entities.KindShape)
	for _, record := range shapes {
		obj, ok := record.(map[string]any)
		if !ok {
			continue
		}
		id, _ := entities.RecordID(obj)
		for _, field := range repairShape(obj) {
			report.RepairedFields = append(report.RepairedFields, ports.FieldRepair{
				Kind:  entities.KindShape,
				ID:    id,
				Field: field,
			})
		}
	}

	return clean, report
}

// repairIDs makes identifiers unique within one collection in a single pass.
// The first record holding an identifier keeps it; later duplicates and
// records without a usable identifier get a fresh one.
func (n *Normalizer) repairIDs(kind entities.Kind, records []any, report *ports.NormalizeReport) {
	seen := make(map[string]bool, len(records))
	taken := make(map[string]bool, len(records))
	for _, record := range records {
		if id, ok := entities.RecordID(record); ok {
			taken[id] = true
		}
	}

	for i, record := range records {
		obj, ok := record.(map[string]any)
		if !ok {
			continue
		}

		id, ok := entities.RecordID(obj)
		if !ok || seen[id] {
			fresh := n.freshID(kind, taken)
			report.ReassignedIDs = append(report.ReassignedIDs, ports.IDChange{
				Kind:     kind,
				Index:    i,
				Previous: id,
				Current:  fresh,
			})
			obj["id"] = fresh
			taken[fresh] = true
			id = fresh
		}
		seen[id] = true
	}
}

// freshID returns a generated identifier not used anywhere in the collection.
func (n *Normalizer) freshID(kind entities.Kind, taken map[string]bool) string {
	for {
		id := n.ids.Generate(kind)
		if !taken[id] {
			return id
		}
	}
}

// repairShape normalizes the chord label and diagram of a shape record in place
// and returns the names of the fields it rewrote.
func repairShape(obj map[string]any) []string {
	var repaired []string

	label, isString := obj["chord"].(string)
	if fixed := entities.NormalizeChordLabel(label); !isString || label != fixed {
		obj["chord"] = fixed
		repaired = append(repaired, "chord")
	}

	if fixed := repairDiagram(obj["diagram"]); !reflect.DeepEqual(obj["diagram"], fixed) {
		obj["diagram"] = fixed
		repaired = append(repaired, "diagram")
	}

	return repaired
}

// repairDiagram returns a diagram value satisfying the startFret and frets
// constraints. Values that already satisfy them are returned unchanged.
func repairDiagram(v any) any {
	diagram, ok := v.(map[string]any)
	if !ok {
		return map[string]any{
			"startFret": json.Number("1"),
			"frets":     mutedFrets(entities.StringCount),
		}
	}

	out := make(map[string]any, len(diagram))
	for k, val := range diagram {
		out[k] = val
	}

	if start, ok := integerValue(diagram["startFret"]); !ok || start < 1 {
		out["startFret"] = json.Number("1")
	} else {
		out["startFret"] = canonicalInteger(diagram["startFret"], start)
	}

	frets, ok := diagram["frets"].([]any)
	if !ok {
		out["frets"] = mutedFrets(entities.StringCount)
		return out
	}

	fixed := make([]any, 0, entities.StringCount)
	for _, fret := range frets {
		if len(fixed) == entities.StringCount {
			break
		}
		if i, ok := integerValue(fret); ok {
			fixed = append(fixed, canonicalInteger(fret, i))
			continue
		}
		fixed = append(fixed, mutedFret())
	}
	for len(fixed) < entities.StringCount {
		fixed = append(fixed, mutedFret())
	}
	out["frets"] = fixed
	return out
}

func mutedFret() json.Number {
	return json.Number("-1")
}

func mutedFrets(n int) []any {
	frets := make([]any, n)
	for i := range frets {
		frets[i] = mutedFret()
	}
	return frets
}

// canonicalInteger spells integral JSON numbers such as 5.0 or 3e0 as plain
// integers so they decode into int fields.
func canonicalInteger(v any, i int64) any {
	if num, ok := v.(json.Number); ok && string(num) != strconv.FormatInt(i, 10) {
		return json.Number(strconv.FormatInt(i, 10))
	}
	return v
}

// integerValue reports the value of a JSON number holding an integer.
func integerValue(v any) (int64, bool) {
	switch num := v.(type) {
	case json.Number:
		if i, err := num.Int64(); err == nil {
			return i, true
		}
		f, err := num.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, false
		}
		return int64(f), true
	case float64:
		if num != math.Trunc(num) {
			return 0, false
		}
		return int64(num), true
	case int:
		return int64(num), true
	case int64:
		return num, true
	default:
		return 0, false
	}
}
