package utils

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// CalculateSkip converts a 1-based page number into a row offset.
// The result is negative for pageNumber < 1; callers reject that.
func CalculateSkip(pageNumber, limit int) int {
	return pageNumber*limit - limit
}
