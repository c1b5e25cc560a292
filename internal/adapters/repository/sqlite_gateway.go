package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/database"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// documentRow is one top-level key of the document
type documentRow struct {
	Collection string `db:"collection"`
	Payload    []byte `db:"payload"`
}

// SQLiteGateway persists each top-level key of the document as a row
type SQLiteGateway struct {
	db     *database.DB
	logger *logger.Logger
}

var _ ports.DocumentGateway = (*SQLiteGateway)(nil)

// NewSQLiteGateway opens the database at path and applies pending migrations
func NewSQLiteGateway(ctx context.Context, path string, logger *logger.Logger) (*SQLiteGateway, error) {
	db, err := database.New(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteGateway{
		db:     db,
		logger: logger.WithComponent("sqlite_gateway"),
	}, nil
}

// Load assembles the document from its rows. No rows means nothing was saved
// yet; a row that does not decode marks the whole document recovered.
func (g *SQLiteGateway) Load(ctx context.Context) (entities.LoadResult, error) {
	var rows []documentRow
	query := `SELECT collection, payload FROM documents ORDER BY collection`
	if err := g.db.DB.SelectContext(ctx, &rows, query); err != nil {
		return entities.LoadResult{}, fmt.Errorf("failed to read documents: %w", err)
	}

	if len(rows) == 0 {
		return entities.LoadResult{Document: entities.NewDocument(), Outcome: entities.LoadMissing}, nil
	}

	doc := entities.Document{}
	for _, row := range rows {
		value, err := entities.DecodeValue(row.Payload)
		if err != nil {
			g.logger.Warnw("Discarding unreadable document", "collection", row.Collection, "error", err)
			return entities.LoadResult{Document: entities.NewDocument(), Outcome: entities.LoadRecovered}, nil
		}
		doc[row.Collection] = value
	}

	return entities.LoadResult{Document: doc, Outcome: entities.LoadOK}, nil
}

// Save replaces every row in one transaction
func (g *SQLiteGateway) Save(ctx context.Context, doc entities.Document) error {
	rows := make([]documentRow, 0, len(doc))
	for key, value := range doc {
		payload, err := entities.EncodeValue(value, "")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		rows = append(rows, documentRow{Collection: key, Payload: payload})
	}

	err := g.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
			return fmt.Errorf("failed to clear documents: %w", err)
		}

		query := `
			INSERT INTO documents (collection, payload, updated_at)
			VALUES (:collection, :payload, CURRENT_TIMESTAMP)`
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				return fmt.Errorf("failed to write %s: %w", row.Collection, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.logger.Debugw("Document saved", "path", g.db.Path(), "collections", len(rows))
	return nil
}

// Close closes the underlying database
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}
