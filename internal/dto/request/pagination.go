package request

import "math"

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPageNumber keeps the row offset inside int32 at any page size.
	MaxPageNumber = math.MaxInt32 / MaxLimit
)

type PaginationRequest struct {
	PageNumber int `json:"pageNumber"`
	Limit      int `json:"limit"`
}

// PerPage applies the default and the upper bound to Limit.
func (p PaginationRequest) PerPage() int {
	if p.Limit < 1 {
		return DefaultLimit
	}
	if p.Limit > MaxLimit {
		return MaxLimit
	}
	return p.Limit
}
