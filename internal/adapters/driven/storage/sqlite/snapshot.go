package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Save replaces the stored snapshot in one transaction.
func (s *snapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return domain.ErrInvalidInput
	}
	reportJSON, err := json.Marshal(snap.Report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"snapshot", "manifest", "chunks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot (id, index_id, built_at, scorer, chunk_size, chunk_overlap, report)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`, snap.IndexID, formatTime(snap.BuiltAt), snap.Scorer,
		snap.Policy.Size, snap.Policy.Overlap, string(reportJSON)); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	if err := saveManifest(ctx, tx, snap.Manifest); err != nil {
		return err
	}
	if err := saveChunks(ctx, tx, snap.Chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func saveManifest(ctx context.Context, tx *sql.Tx, m domain.Manifest) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO manifest (document_id, format, size, modified_at) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range m.IDs() {
		e := m[id]
		if _, err := stmt.ExecContext(ctx, id, string(e.Format), e.Size, formatTime(e.ModifiedAt)); err != nil {
			return fmt.Errorf("saving manifest entry: %w", err)
		}
	}
	return nil
}

func saveChunks(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (seq, id, document_id, heading, content, position,
			start_offset, end_offset, first_block, last_block, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, i, c.ID, c.DocumentID, c.Heading, c.Content, c.Position,
			c.Start, c.End, c.FirstBlock, c.LastBlock, float32SliceToBytes(c.Embedding),
			string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}
	return nil
}

// Load returns the stored snapshot, or domain.ErrNotFound.
func (s *snapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var builtAt, reportJSON string

	err := s.store.db.QueryRowContext(ctx, `
		SELECT index_id, built_at, scorer, chunk_size, chunk_overlap, report FROM snapshot WHERE id = 1
	`).Scan(&snap.IndexID, &builtAt, &snap.Scorer, &snap.Policy.Size, &snap.Policy.Overlap, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if snap.BuiltAt, err = parseTime(builtAt); err != nil {
		return nil, fmt.Errorf("parsing built_at: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &snap.Report); err != nil {
		return nil, fmt.Errorf("unmarshalling report: %w", err)
	}
	if snap.Manifest, err = s.loadManifest(ctx); err != nil {
		return nil, err
	}
	if snap.Chunks, err = s.loadChunks(ctx); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *snapshotStore) loadManifest(ctx context.Context) (domain.Manifest, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_id, format, size, modified_at FROM manifest
	`)
	if err != nil {
		return nil, fmt.Errorf("querying manifest: %w", err)
	}
	defer rows.Close()

	m := make(domain.Manifest)
	for rows.Next() {
		var id, format, modifiedAt string
		var e domain.ManifestEntry
		if err := rows.Scan(&id, &format, &e.Size, &modifiedAt); err != nil {
			return nil, fmt.Errorf("scanning manifest: %w", err)
		}
		e.Format = domain.Format(format)
		if e.ModifiedAt, err = parseTime(modifiedAt); err != nil {
			return nil, fmt.Errorf("parsing modified_at: %w", err)
		}
		m[id] = e
	}
	return m, rows.Err()
}

func (s *snapshotStore) loadChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, heading, content, position, start_offset, end_offset,
			first_block, last_block, embedding, metadata
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var embedding []byte
		var metadataJSON sql.NullString
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Heading, &c.Content, &c.Position,
			&c.Start, &c.End, &c.FirstBlock, &c.LastBlock, &embedding, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(embedding)
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON.String), &c.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Close is a no-op; the owning Store closes the database.
func (s *snapshotStore) Close() error {
	return nil
}

// jsonNull is the JSON representation of null.
const jsonNull = "null"
