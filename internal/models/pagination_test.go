package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListParams_Normalize(t *testing.T) {
	p := ListParams{Page: 0, PageSize: 0}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = ListParams{Page: 3, PageSize: 500}.Normalize()
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestListParams_NormalizeHugePage(t *testing.T) {
	p := ListParams{Page: 1000000000000000000, PageSize: 10}.Normalize()
	assert.Equal(t, MaxPage, p.Page)
	assert.GreaterOrEqual(t, p.Offset(), 0)

	p = ListParams{Page: math.MaxInt, PageSize: MaxPageSize}.Normalize()
	assert.GreaterOrEqual(t, p.Offset(), 0)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
