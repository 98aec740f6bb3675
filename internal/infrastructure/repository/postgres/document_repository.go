package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, name, description, type, content, chunk_size, chunk_overlap, status, notes, summary, summary_vector, chunk_count, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	var summaryVec []byte
	if len(doc.SummaryVector) > 0 {
		summaryVec = EncodeVector(doc.SummaryVector)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		doc.ID, doc.Name, doc.Description, doc.Type, doc.Content, doc.ChunkSize, doc.ChunkOverlap,
		string(doc.Status), doc.Notes, doc.Summary, summaryVec, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET name = $2, description = $3, type = $4, content = $5, chunk_size = $6, chunk_overlap = $7,
    status = $8, notes = $9, updated_at = $10
WHERE id = $1
`, doc.ID, doc.Name, doc.Description, doc.Type, doc.Content, doc.ChunkSize, doc.ChunkOverlap,
		string(doc.Status), doc.Notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRowAffected(res, "update document", doc.ID)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document "+id, nil)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) ListMissingSummaries(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id
FROM documents
WHERE status = $1 AND (summary = '' OR summary_vector IS NULL)
ORDER BY created_at
`, string(domain.StatusProcessed))
	if err != nil {
		return nil, fmt.Errorf("list documents missing summaries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, notes string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, notes = $3, updated_at = $4
WHERE id = $1
`, id, string(status), notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowAffected(res, "update document status", id)
}

// SetChunkParams records the chunk size/overlap an ingestion run actually
// used and clears the stale chunk count.
func (r *DocumentRepository) SetChunkParams(ctx context.Context, id string, chunkSize, chunkOverlap int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET chunk_size = $2, chunk_overlap = $3, chunk_count = 0, updated_at = $4
WHERE id = $1
`, id, chunkSize, chunkOverlap, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set chunk params: %w", err)
	}
	return requireRowAffected(res, "set chunk params", id)
}

func (r *DocumentRepository) SetChunkCount(ctx context.Context, id string, count int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET chunk_count = $2, updated_at = $3
WHERE id = $1
`, id, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set chunk count: %w", err)
	}
	return requireRowAffected(res, "set chunk count", id)
}

func (r *DocumentRepository) SaveSummary(ctx context.Context, id, summary string, vector []float32) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET summary = $2, summary_vector = $3, updated_at = $4
WHERE id = $1
`, id, summary, EncodeVector(vector), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return requireRowAffected(res, "save summary", id)
}

func (r *DocumentRepository) ClearSummary(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET summary = '', summary_vector = NULL, updated_at = $2
WHERE id = $1
`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clear summary: %w", err)
	}
	return requireRowAffected(res, "clear summary", id)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRowAffected(res, "delete document", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var summaryVec []byte

	err := row.Scan(
		&doc.ID, &doc.Name, &doc.Description, &doc.Type, &doc.Content, &doc.ChunkSize, &doc.ChunkOverlap,
		&status, &doc.Notes, &doc.Summary, &summaryVec, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)
	if len(summaryVec) > 0 {
		vec, err := DecodeVector(summaryVec)
		if err != nil {
			return nil, fmt.Errorf("decode summary vector: %w", err)
		}
		doc.SummaryVector = vec
	}
	return &doc, nil
}

// requireRowAffected turns a silent zero-row update into a hard failure so
// state transitions never get lost.
func requireRowAffected(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.WrapError(domain.ErrNotFound, op+" "+id, nil)
	}
	return nil
}
