package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConfiguration   = errors.New("configuration error")
	ErrConflict        = errors.New("conflict")
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrProvider        = errors.New("provider error")
)

// WrapError annotates err with the failing operation while keeping the
// sentinel kind matchable through errors.Is.
func WrapError(kind error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}

func IsKind(err, kind error) bool {
	return errors.Is(err, kind)
}

// BlockReason identifies why a provider refused to complete a prompt.
type BlockReason string

const (
	BlockedSafety     BlockReason = "safety"
	BlockedRecitation BlockReason = "recitation"
	BlockedOther      BlockReason = "other"
)

// BlockedError carries a provider refusal through to the user as a normal
// assistant-facing message rather than an internal failure.
type BlockedError struct {
	Reason BlockReason
	Detail string
}

func (e *BlockedError) Error() string {
	switch e.Reason {
	case BlockedSafety:
		return "The answer was blocked by the provider for safety reasons. Please rephrase your question."
	case BlockedRecitation:
		return "The answer was blocked by the provider because it would recite protected material. Please rephrase your question."
	default:
		if e.Detail != "" {
			return "The answer was blocked by the provider: " + e.Detail
		}
		return "The answer was blocked by the provider. Please rephrase your question."
	}
}

// AsBlocked reports whether err is a provider block and returns it.
func AsBlocked(err error) (*BlockedError, bool) {
	var be *BlockedError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
