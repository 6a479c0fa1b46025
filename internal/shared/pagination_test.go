package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationClamps(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, Pagination{Page: 1, PerPage: DefaultPerPage, Total: 45, TotalPages: 3}, p)

	p = NewPagination(2, 1000, 250)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
}

func TestPaginationBounds(t *testing.T) {
	start, end := NewPagination(2, 2, 3).Bounds()
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)

	start, end = NewPagination(9, 2, 3).Bounds()
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}

func TestPaginationFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/users?page=2&per_page=abc", nil)
	p := PaginationFromRequest(r, 30)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
}
