package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument swaps the document's chunk set in one transaction.
// Partial chunk sets are never visible to readers.
func (r *ChunkRepository) ReplaceForDocument(ctx context.Context, documentID string, chunks []domain.EmbeddingChunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embedding_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete existing chunks: %w", err)
	}
	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
INSERT INTO embedding_chunks (id, document_id, text, vector)
VALUES ($1,$2,$3,$4)
`, chunk.ID, documentID, chunk.Text, EncodeVector(chunk.Vector))
		if err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) DeleteForDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM embedding_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks for document: %w", err)
	}
	return nil
}

func (r *ChunkRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM embedding_chunks`); err != nil {
		return fmt.Errorf("delete all chunks: %w", err)
	}
	return nil
}

// Search ranks the chunks of the bot's processed documents against the
// query vector. Scoring runs over the decoded vector column; ordering is
// document score then chunk score when document-level ranking is on,
// otherwise chunk score alone.
func (r *ChunkRepository) Search(ctx context.Context, q ports.SearchQuery) ([]domain.RetrievedChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.document_id, d.name, c.text, c.vector, d.summary_vector
FROM embedding_chunks c
JOIN documents d ON d.id = c.document_id
JOIN document_bot_relationships r ON r.document_id = d.id
WHERE r.bot_id = $1 AND d.status = $2
`, q.BotID, string(domain.StatusProcessed))
	if err != nil {
		return nil, fmt.Errorf("query chunk candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.RetrievedChunk
	for rows.Next() {
		var (
			docID, docName, text string
			vecRaw, docVecRaw    []byte
		)
		if err := rows.Scan(&docID, &docName, &text, &vecRaw, &docVecRaw); err != nil {
			return nil, fmt.Errorf("scan chunk candidate: %w", err)
		}
		vec, err := DecodeVector(vecRaw)
		if err != nil {
			return nil, fmt.Errorf("chunk of document %s: %w", docID, err)
		}
		chunkScore, err := score(q.Algorithm, q.Vector, vec)
		if err != nil {
			return nil, fmt.Errorf("score chunk of document %s: %w", docID, err)
		}
		retrieved := domain.RetrievedChunk{
			DocumentID:   docID,
			DocumentName: docName,
			Text:         text,
			Score:        chunkScore,
		}
		if q.DocumentLevel && len(docVecRaw) > 0 {
			docVec, err := DecodeVector(docVecRaw)
			if err != nil {
				return nil, fmt.Errorf("summary vector of document %s: %w", docID, err)
			}
			docScore, err := score(q.Algorithm, q.Vector, docVec)
			if err != nil {
				return nil, fmt.Errorf("score summary of document %s: %w", docID, err)
			}
			retrieved.DocScore = &docScore
		}
		out = append(out, retrieved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk candidates: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.DocumentLevel {
			di, dj := docScoreOf(out[i]), docScoreOf(out[j])
			if di != dj {
				return di > dj
			}
		}
		return out[i].Score > out[j].Score
	})

	if q.TopK > 0 && len(out) > q.TopK {
		out = out[:q.TopK]
	}
	return out, nil
}

func docScoreOf(c domain.RetrievedChunk) float64 {
	if c.DocScore == nil {
		return 0
	}
	return *c.DocScore
}
