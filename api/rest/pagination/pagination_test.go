package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, Params{Limit: 50, Offset: 0}, Clamp(Params{}, 50, 200))
	assert.Equal(t, Params{Limit: 200, Offset: 3}, Clamp(Params{Limit: 1000, Offset: 3}, 50, 200))
	assert.Equal(t, Params{Limit: 10, Offset: 0}, Clamp(Params{Limit: 10, Offset: -4}, 50, 200))
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := Page(items, Params{Limit: 2, Offset: 1})
	assert.Equal(t, []int{2, 3}, page)
	assert.Equal(t, Meta{Total: 5, Limit: 2, Offset: 1, HasMore: true}, meta)

	page, meta = Page(items, Params{Limit: 10, Offset: 3})
	assert.Equal(t, []int{4, 5}, page)
	assert.False(t, meta.HasMore)

	page, meta = Page(items, Params{Limit: 10, Offset: 99})
	assert.Empty(t, page)
	assert.Equal(t, 5, meta.Total)
}
