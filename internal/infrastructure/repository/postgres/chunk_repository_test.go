package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

func newChunkRepoWithMock(t *testing.T) (*ChunkRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ChunkRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestReplaceForDocumentIsTransactional(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	chunks := []domain.EmbeddingChunk{
		{ID: "c1", DocumentID: "doc-1", Text: "first", Vector: []float32{1, 0}},
		{ID: "c2", DocumentID: "doc-1", Text: "second", Vector: []float32{0, 1}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM embedding_chunks").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO embedding_chunks").
		WithArgs("c1", "doc-1", "first", EncodeVector(chunks[0].Vector)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO embedding_chunks").
		WithArgs("c2", "doc-1", "second", EncodeVector(chunks[1].Vector)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.ReplaceForDocument(context.Background(), "doc-1", chunks); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchRanksByCosineDescending(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	// Query vector (1,0): "close" scores 0.9-ish, "far" scores lower.
	rows := sqlmock.NewRows([]string{"document_id", "name", "text", "vector", "summary_vector"}).
		AddRow("doc-1", "Doc One", "far", EncodeVector([]float32{0.7, 0.714}), nil).
		AddRow("doc-1", "Doc One", "close", EncodeVector([]float32{0.9, 0.436}), nil)

	mock.ExpectQuery("SELECT c.document_id, d.name, c.text").
		WithArgs("bot-1", string(domain.StatusProcessed)).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), ports.SearchQuery{
		BotID:     "bot-1",
		Vector:    []float32{1, 0},
		Algorithm: domain.CosineSimilarity,
		TopK:      10,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Text != "close" || got[1].Text != "far" {
		t.Fatalf("order = [%s, %s], want [close, far]", got[0].Text, got[1].Text)
	}
	if got[0].Score <= got[1].Score {
		t.Fatalf("scores not descending: %v then %v", got[0].Score, got[1].Score)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchDocumentLevelOrdersByDocScoreFirst(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	strongDoc := EncodeVector([]float32{1, 0})
	weakDoc := EncodeVector([]float32{0, 1})

	// The best chunk lives in the weakly matching document; document-level
	// ranking must still put the strong document's chunk first.
	rows := sqlmock.NewRows([]string{"document_id", "name", "text", "vector", "summary_vector"}).
		AddRow("doc-weak", "Weak", "best chunk", EncodeVector([]float32{1, 0}), weakDoc).
		AddRow("doc-strong", "Strong", "ok chunk", EncodeVector([]float32{0.8, 0.6}), strongDoc)

	mock.ExpectQuery("SELECT c.document_id, d.name, c.text").
		WithArgs("bot-1", string(domain.StatusProcessed)).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), ports.SearchQuery{
		BotID:         "bot-1",
		Vector:        []float32{1, 0},
		Algorithm:     domain.CosineSimilarity,
		TopK:          10,
		DocumentLevel: true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got[0].DocumentID != "doc-strong" {
		t.Fatalf("first document = %s, want doc-strong", got[0].DocumentID)
	}
	if got[0].DocScore == nil || got[1].DocScore == nil {
		t.Fatalf("expected doc scores on both results")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSearchAppliesTopK(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"document_id", "name", "text", "vector", "summary_vector"})
	for _, text := range []string{"a", "b", "c"} {
		rows.AddRow("doc-1", "Doc One", text, EncodeVector([]float32{1, 0}), nil)
	}

	mock.ExpectQuery("SELECT c.document_id, d.name, c.text").
		WithArgs("bot-1", string(domain.StatusProcessed)).
		WillReturnRows(rows)

	got, err := repo.Search(context.Background(), ports.SearchQuery{
		BotID:     "bot-1",
		Vector:    []float32{1, 0},
		Algorithm: domain.CosineSimilarity,
		TopK:      2,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
