package models

import "time"

// Pagination describes a page of a listing.
// swagger:model Pagination
type Pagination struct {
	// example: 1
	Page int `json:"page"`
	// example: 10
	Limit int `json:"limit"`
	// example: 42
	Total int `json:"total"`
	// example: 5
	TotalPages int `json:"totalPages"`
}

// UserListData is the payload of a user listing.
// swagger:model UserListData
type UserListData struct {
	Users      []UserView `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// UserListResponse represents a page of users
// swagger:model UserListResponse
type UserListResponse struct {
	// example: true
	Success bool         `json:"success"`
	Data    UserListData `json:"data"`
}

// UserResponse represents a single user
// swagger:model UserResponse
type UserResponse struct {
	// example: true
	Success bool     `json:"success"`
	Data    UserView `json:"data"`
}

// StatsResponse represents the registration statistics
// swagger:model StatsResponse
type StatsResponse struct {
	// example: true
	Success bool          `json:"success"`
	Data    StatsSnapshot `json:"data"`
}

// StorageStatusResponse represents the storage status
// swagger:model StorageStatusResponse
type StorageStatusResponse struct {
	// example: true
	Success bool          `json:"success"`
	Data    StorageStatus `json:"data"`
}

// HealthResponse represents the liveness probe result
// swagger:model HealthResponse
type HealthResponse struct {
	// example: ok
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
