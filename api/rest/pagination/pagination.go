package pagination

import "github.com/gin-gonic/gin"

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// reads limit/offset from the query string, clamped to sane bounds
func FromQuery(c *gin.Context) (Params, error) {
	var params Params

	if err := c.ShouldBindQuery(&params); err != nil {
		return Params{}, err
	}

	return Clamp(params, DefaultLimit, MaxLimit), nil
}

// applies defaults: limit falls back to defaultLimit and is capped at maxLimit
func Clamp(params Params, defaultLimit, maxLimit int) Params {
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}

	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	if params.Offset < 0 {
		params.Offset = 0
	}

	return params
}

// returns the requested window of items along with its metadata
func Page[T any](items []T, params Params) ([]T, Meta) {
	total := len(items)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)

	return items[start:end], Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: end < total,
	}
}
