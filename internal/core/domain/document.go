package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "UPLOADED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusProcessed  DocumentStatus = "PROCESSED"
	StatusFailed     DocumentStatus = "FAILED"
)

const (
	DocumentTypePDF     = "application/pdf"
	DocumentTypeDocx    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	DocumentTypeText    = "text/plain"
	DocumentTypeWebsite = "custom/website"
)

// Document is the unit of ingestion. ChunkSize/ChunkOverlap of zero mean
// "unset, fall back to global settings".
type Document struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Type          string         `json:"type"`
	Content       []byte         `json:"-"`
	ChunkSize     int            `json:"chunk_size,omitempty"`
	ChunkOverlap  int            `json:"chunk_overlap,omitempty"`
	Status        DocumentStatus `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	SummaryVector []float32      `json:"-"`
	ChunkCount    int            `json:"chunk_count,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// EmbeddingChunk is one bounded slice of a document plus its vector.
// A document's chunk set is always replaced wholesale, never merged.
type EmbeddingChunk struct {
	ID         string
	DocumentID string
	Text       string
	Vector     []float32
}
