package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Document is the persisted root object holding every collection.
//
// Values are kept in their decoded JSON form so that records the application
// does not understand survive a load/save cycle: objects are map[string]any,
// arrays are []any and numbers are json.Number.
type Document map[string]any

// NewDocument returns the empty default document.
func NewDocument() Document {
	doc := Document{}
	for _, kind := range Kinds {
		doc[kind.Collection()] = []any{}
	}
	return doc
}

// Records returns the collection for kind. The second result is false when the
// key is missing or does not hold a sequence.
func (d Document) Records(kind Kind) ([]any, bool) {
	records, ok := d[kind.Collection()].([]any)
	return records, ok
}

// SetRecords replaces the collection for kind.
func (d Document) SetRecords(kind Kind, records []any) {
	if records == nil {
		records = []any{}
	}
	d[kind.Collection()] = records
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case Document:
		return cloneValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// LoadOutcome tells which path produced a loaded document.
type LoadOutcome string

const (
	// LoadOK means the persisted document was read and parsed.
	LoadOK LoadOutcome = "loaded"
	// LoadMissing means nothing was persisted yet.
	LoadMissing LoadOutcome = "missing"
	// LoadRecovered means persisted state was unreadable and replaced by the empty default.
	LoadRecovered LoadOutcome = "recovered"
)

// LoadResult is the outcome of reading the persisted document.
type LoadResult struct {
	Document Document
	Outcome  LoadOutcome
}

// ErrMalformedDocument is returned by DecodeDocument for content that is not a JSON object.
var ErrMalformedDocument = errors.New("malformed document")

// DecodeDocument parses data as a document root.
func DecodeDocument(data []byte) (Document, error) {
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: root is %T, not an object", ErrMalformedDocument, v)
	}
	return Document(root), nil
}

// DecodeValue parses a single JSON value, keeping numbers as json.Number.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrMalformedDocument)
	}
	return v, nil
}

// EncodeDocument renders the document with two-space indentation. Non-ASCII and
// HTML characters are written literally.
func EncodeDocument(doc Document) ([]byte, error) {
	return EncodeValue(map[string]any(doc), "  ")
}

// EncodeValue renders v as JSON without HTML escaping. An empty indent produces compact output.
func EncodeValue(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RecordID returns the identifier of a record. It reports false for entries that
// are not objects and for records whose id is absent, not a string or empty.
func RecordID(record any) (string, bool) {
	obj, ok := record.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// ToRecord converts a typed entity into its stored object form.
func ToRecord(entity any) (map[string]any, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	v, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("encode record: %T is not an object", entity)
	}
	return obj, nil
}

// FromRecord decodes a stored record into a typed entity.
func FromRecord[T any](record any) (T, error) {
	var out T
	if _, ok := record.(map[string]any); !ok {
		return out, fmt.Errorf("decode record: %T is not an object", record)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
