package providers

import (
	"context"
	"fmt"

	"github.com/rLg1290/7crm-sub003/internal/models"
)

// Provider fetches the raw leg payload for a search. The body is decoded by
// the legs package, not here.
type Provider interface {
	Name() string
	Search(ctx context.Context, params models.SearchParams) ([]byte, error)
}

// UpstreamError wraps any failure talking to the search provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return e.Provider + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(provider string, status int, err error) *UpstreamError {
	return &UpstreamError{
		Provider:   provider,
		StatusCode: status,
		Err:        err,
	}
}
