package chunking

import (
	"strings"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
	"github.com/mindset-labs/rag-ai/internal/core/ports"
)

// Factory maps a configured splitter name to an implementation. The
// recursive splitter is the default for unknown or empty names.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ForName(name string) (ports.TextSplitter, error) {
	switch name {
	case domain.SplitterCharacter:
		return NewCharacterSplitter(), nil
	default:
		return NewRecursiveSplitter(), nil
	}
}

// CharacterSplitter cuts on blank lines only, merging paragraphs into
// chunks up to the size limit.
type CharacterSplitter struct {
	separator string
}

func NewCharacterSplitter() *CharacterSplitter {
	return &CharacterSplitter{separator: "\n\n"}
}

func (s *CharacterSplitter) Split(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	parts := splitWithSeparator(text, s.separator)
	return mergeSplits(parts, chunkSize, chunkOverlap)
}

// RecursiveSplitter tries progressively finer separators until every
// piece fits, then merges pieces back up to the size limit with overlap.
type RecursiveSplitter struct {
	separators []string
}

func NewRecursiveSplitter() *RecursiveSplitter {
	return &RecursiveSplitter{separators: []string{"\n\n", "\n", " ", ""}}
}

func (s *RecursiveSplitter) Split(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return s.splitRecursive(text, s.separators, chunkSize, chunkOverlap)
}

func (s *RecursiveSplitter) splitRecursive(text string, separators []string, chunkSize, chunkOverlap int) []string {
	separator := separators[len(separators)-1]
	next := separators
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	parts := splitWithSeparator(text, separator)

	var out []string
	var fitting []string
	flushFitting := func() {
		if len(fitting) == 0 {
			return
		}
		out = append(out, mergeSplits(fitting, chunkSize, chunkOverlap)...)
		fitting = nil
	}
	for _, part := range parts {
		if len([]rune(part)) <= chunkSize {
			fitting = append(fitting, part)
			continue
		}
		flushFitting()
		if len(next) == 0 {
			out = append(out, hardCut(part, chunkSize, chunkOverlap)...)
		} else {
			out = append(out, s.splitRecursive(part, next, chunkSize, chunkOverlap)...)
		}
	}
	flushFitting()
	return out
}

// splitWithSeparator splits text and keeps the separator attached to the
// preceding piece so rejoined chunks preserve the original text.
func splitWithSeparator(text, separator string) []string {
	if separator == "" {
		if text == "" {
			return nil
		}
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
		}
		return out
	}
	pieces := strings.Split(text, separator)
	out := make([]string, 0, len(pieces))
	for i, piece := range pieces {
		if i < len(pieces)-1 {
			piece += separator
		}
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// mergeSplits packs consecutive pieces into chunks up to chunkSize runes,
// carrying chunkOverlap runes of tail context into the next chunk. Pieces
// arrive with their separators still attached.
func mergeSplits(parts []string, chunkSize, chunkOverlap int) []string {
	var out []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(current, ""))
		if chunk != "" {
			out = append(out, chunk)
		}
		// Keep the tail as overlap for the next chunk.
		for currentLen > chunkOverlap && len(current) > 0 {
			currentLen -= len([]rune(current[0]))
			current = current[1:]
		}
	}

	for _, part := range parts {
		partLen := len([]rune(part))
		if partLen > chunkSize {
			flush()
			current = nil
			currentLen = 0
			out = append(out, hardCut(part, chunkSize, chunkOverlap)...)
			continue
		}
		if currentLen+partLen > chunkSize && currentLen > 0 {
			flush()
		}
		current = append(current, part)
		currentLen += partLen
	}
	if len(current) > 0 {
		chunk := strings.TrimSpace(strings.Join(current, ""))
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

// hardCut slices by rune windows when no separator can help.
func hardCut(text string, chunkSize, chunkOverlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := chunkSize - chunkOverlap
	if step <= 0 {
		step = chunkSize
	}
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
