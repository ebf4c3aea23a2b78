package models

import "math"

// Pagination defaults and bounds. MaxPage keeps Offset within int.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = math.MaxInt / MaxPageSize
)

// ListParams selects a page of users, newest first.
type ListParams struct {
	Page     int
	PageSize int
	Status   string // empty means any status
}

// Normalize clamps page and page size into their accepted ranges.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of records to skip for the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// UserPage is one page of users.
// swagger:model UserPage
type UserPage struct {
	Users      []User `json:"users"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// TotalPages computes ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
