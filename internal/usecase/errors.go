package usecase

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrProviderFetch marks a provider batch fetch that failed after the
	// provider's own retries.
	ErrProviderFetch = errors.New("provider fetch failed")
	// ErrReadOnly is returned when a record needs a write but upserts are disabled.
	ErrReadOnly = errors.New("upsert disabled")
)

// Mapping stages reported by MappingError.
const (
	StageTaxonomy   = "taxonomy mapping failed"
	StagePayout     = "payout normalization failed"
	StageValidation = "data validation failed"
)

// MappingError is the single failure type of PropMapper.Map. It keeps the
// provider prop id so a failed record can be traced back to the feed.
type MappingError struct {
	Stage          string
	ProviderPropID string
	Err            error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s (provider_prop_id=%s): %v", e.Stage, e.ProviderPropID, e.Err)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}
