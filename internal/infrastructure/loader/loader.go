package loader

import (
	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

// Loader extracts plain-text blocks from a document's raw content based
// on its declared type.
type Loader struct{}

func New() *Loader {
	return &Loader{}
}

func (l *Loader) Load(doc *domain.Document) ([]string, error) {
	switch doc.Type {
	case domain.DocumentTypePDF:
		return extractPDF(doc.Content)
	case domain.DocumentTypeDocx:
		return extractDocx(doc.Content)
	case domain.DocumentTypeText, domain.DocumentTypeWebsite:
		if len(doc.Content) == 0 {
			return nil, nil
		}
		return []string{string(doc.Content)}, nil
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedType, "load document", nil)
	}
}
