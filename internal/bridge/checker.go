package bridge

import (
	"context"

	"go.uber.org/zap"
)

// Source fetches one raw search payload from the open-data portal.
type Source interface {
	// Search performs a single request and returns the decoded JSON payload.
	Search(ctx context.Context) (any, error)

	// LastURL returns the most recently constructed request URL, also on
	// error paths, so it can be reported on the resulting status.
	LastURL() string
}

// Checker composes one status lookup: fetch, extract, interpret. Each call is
// an independent, single synchronous chain with no state shared across
// invocations.
type Checker struct {
	source Source
}

// NewChecker creates a Checker reading from the given source.
func NewChecker(source Source) *Checker {
	return &Checker{source: source}
}

// Status returns the most recent known bridge status. Failures of any kind
// surface as a *LookupError.
func (c *Checker) Status(ctx context.Context) (*Status, error) {
	payload, err := c.source.Search(ctx)
	if err != nil {
		return nil, err
	}

	records := ExtractRecords(payload)
	zap.L().Debug("records extracted", zap.Int("count", len(records)))

	return Interpret(records, c.source.LastURL())
}
