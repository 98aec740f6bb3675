package domain

// Runtime setting names stored in the settings table. These are pipeline
// parameters, not infrastructure configuration.
const (
	SettingChunkSize              = "CHUNK_SIZE"
	SettingChunkOverlap           = "CHUNK_OVERLAP_SIZE"
	SettingDocumentSplitter       = "DOCUMENT_SPLITTER"
	SettingComparisonAlgorithm    = "COMPARISON_ALGORITHM"
	SettingDocumentsTopK          = "DOCUMENTS_TOPK"
	SettingCohereAPIKey           = "COHERE_API_KEY"
	SettingSummarizationEnabled   = "DOCUMENT_SUMMARIZATION_ENABLED"
	SettingSummarizationChunkSize = "DOCUMENT_SUMMARIZATION_CHUNK_SIZE"
	SettingSummarizationConfigID  = "DOCUMENT_SUMMARIZATION_CONFIG_ID"
	SettingEmbeddingModelConfigID = "EMBEDDING_MODEL_CONFIG_ID"
)

const (
	SplitterCharacter = "CHARACTER_TEXT_SPLITTER"
	SplitterRecursive = "RECURSIVE_CHARACTER_TEXT_SPLITTER"
)

const (
	DefaultChunkSize              = 2000
	DefaultChunkOverlap           = 500
	DefaultDocumentsTopK          = 10
	DefaultSummarizationChunkSize = 5000
)
