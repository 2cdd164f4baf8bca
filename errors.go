package flowdsl

import "github.com/goliatone/go-errors"

// ErrInvalidConfiguration marks a Configuration that violates its own
// invariants. It only surfaces from the serializer and document codecs, where
// it is a programming error in the caller rather than a user-facing
// diagnostic; compare with errors.Is(err, ErrInvalidConfiguration).
var ErrInvalidConfiguration = errors.New("invalid configuration", errors.CategoryValidation).
	WithTextCode("INVALID_CONFIGURATION")
