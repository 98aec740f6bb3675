package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// settingsReader wraps the settings repository with typed accessors and
// the default rules for each pipeline parameter.
type settingsReader struct {
	repo ports.SettingsRepository
}

func (s settingsReader) load(ctx context.Context, names ...string) (map[string]string, error) {
	return s.repo.Get(ctx, names...)
}

func intSetting(values map[string]string, name string, fallback int) int {
	raw, ok := values[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func boolSetting(values map[string]string, name string) bool {
	raw, ok := values[name]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

func requiredSetting(values map[string]string, name string) (string, error) {
	raw := strings.TrimSpace(values[name])
	if raw == "" {
		return "", domain.WrapError(domain.ErrConfiguration, "missing required setting "+name, nil)
	}
	return raw, nil
}

// chunkParams resolves chunk size and overlap as a pair: the document
// override wins only when it carries both values, otherwise the global
// settings pair, otherwise the built-in defaults. Mixing a size from one
// layer with an overlap from another produces nonsense splits.
func chunkParams(doc *domain.Document, values map[string]string) (int, int) {
	size, overlap := domain.DefaultChunkSize, domain.DefaultChunkOverlap
	if gs, ok := positiveSetting(values, domain.SettingChunkSize); ok {
		if gov, ok := positiveSetting(values, domain.SettingChunkOverlap); ok {
			size, overlap = gs, gov
		}
	}
	if doc.ChunkSize > 0 && doc.ChunkOverlap > 0 {
		size, overlap = doc.ChunkSize, doc.ChunkOverlap
	}
	if overlap >= size {
		overlap = domain.DefaultChunkOverlap
		if overlap >= size {
			overlap = 0
		}
	}
	return size, overlap
}

func positiveSetting(values map[string]string, name string) (int, bool) {
	raw, ok := values[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
