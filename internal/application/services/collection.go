package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// collection implements list/create/update/delete for one kind of record.
// T is the typed entity stored in the collection.
type collection[T any] struct {
	kind   entities.Kind
	store  *Store
	ids    ports.IDGenerator
	logger *logger.Logger
}

func newCollection[T any](kind entities.Kind, store *Store, ids ports.IDGenerator, log *logger.Logger) *collection[T] {
	return &collection[T]{
		kind:   kind,
		store:  store,
		ids:    ids,
		logger: log.WithFields("collection", kind.Collection()),
	}
}

// list returns every object record in stored order. Fields whose stored value
// does not fit T are left at their zero value. Entries that are not objects
// are skipped.
func (c *collection[T]) list(ctx context.Context) ([]T, error) {
	doc, err := c.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	records, _ := doc.Records(c.kind)
	items := make([]T, 0, len(records))
	for i, record := range records {
		obj, ok := record.(map[string]any)
		if !ok {
			c.logger.Warnw("Skipping entry that is not an object", "index", i)
			continue
		}

		item, dropped, err := decodeLenient[T](obj)
		if err != nil {
			c.logger.Warnw("Skipping record that does not match the schema", "index", i, "error", err)
			continue
		}
		if len(dropped) > 0 {
			id, _ := entities.RecordID(obj)
			c.logger.Warnw("Listing record with unreadable fields", "index", i, "id", id, "fields", dropped)
		}
		if n, ok := any(&item).(interface{ Normalize() }); ok {
			n.Normalize()
		}
		items = append(items, item)
	}
	return items, nil
}

// create appends the entity built for a fresh identifier.
func (c *collection[T]) create(ctx context.Context, build func(id string) T) (T, error) {
	var created T
	err := c.store.Mutate(ctx, func(doc entities.Document) error {
		records, _ := doc.Records(c.kind)
		created = build(c.freshID(records))
		record, err := entities.ToRecord(created)
		if err != nil {
			return err
		}
		doc.SetRecords(c.kind, append(records, record))
		return nil
	})
	if err != nil {
		return created, fmt.Errorf("failed to create %s: %w", c.kind.Singular(), err)
	}
	return created, nil
}

// update replaces the record with id in place. The identifier is kept.
func (c *collection[T]) update(ctx context.Context, id string, build func(id string) T) (T, error) {
	var updated T
	err := c.store.Mutate(ctx, func(doc entities.Document) error {
		records, _ := doc.Records(c.kind)
		for i, record := range records {
			if existing, ok := entities.RecordID(record); !ok || existing != id {
				continue
			}
			updated = build(id)
			replacement, err := entities.ToRecord(updated)
			if err != nil {
				return err
			}
			records[i] = replacement
			return nil
		}
		return entities.NewNotFoundError(c.kind, id)
	})
	if err != nil {
		return updated, fmt.Errorf("failed to update %s: %w", c.kind.Singular(), err)
	}
	return updated, nil
}

// delete removes the record with id.
func (c *collection[T]) delete(ctx context.Context, id string) error {
	err := c.store.Mutate(ctx, func(doc entities.Document) error {
		records, _ := doc.Records(c.kind)
		kept := make([]any, 0, len(records))
		for _, record := range records {
			if existing, ok := entities.RecordID(record); ok && existing == id {
				continue
			}
			kept = append(kept, record)
		}
		if len(kept) == len(records) {
			return entities.NewNotFoundError(c.kind, id)
		}
		doc.SetRecords(c.kind, kept)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", c.kind.Singular(), err)
	}
	return nil
}

// decodeLenient decodes obj into T. When that fails it retries without the
// top-level fields that cannot decode on their own and returns their names.
func decodeLenient[T any](obj map[string]any) (T, []string, error) {
	item, err := entities.FromRecord[T](obj)
	if err == nil {
		return item, nil, nil
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	kept := make(map[string]any, len(obj))
	var dropped []string
	for _, key := range keys {
		if _, err := entities.FromRecord[T](map[string]any{key: obj[key]}); err != nil {
			dropped = append(dropped, key)
			continue
		}
		kept[key] = obj[key]
	}

	item, err = entities.FromRecord[T](kept)
	if err != nil {
		return item, dropped, err
	}
	return item, dropped, nil
}

func (c *collection[T]) freshID(records []any) string {
	taken := make(map[string]bool, len(records))
	for _, record := range records {
		if id, ok := entities.RecordID(record); ok {
			taken[id] = true
		}
	}
	for {
		id := c.ids.Generate(c.kind)
		if !taken[id] {
			return id
		}
	}
}
