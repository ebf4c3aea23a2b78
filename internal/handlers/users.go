package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
)

//go:generate mockgen -source=users.go -destination=mock_users.go -package=handlers

// UserReader defines the read side of the user service.
type UserReader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, params models.ListParams) (*models.UserPage, error)
}

// NewListUsersHandler returns an HTTP handler listing users, newest first.
// @Summary List users
// @Description Returns a page of users from the primary store. Passwords are never included.
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param status query string false "Filter by status" Enums(active, inactive, pending, suspended)
// @Success 200 {object} models.UserListResponse "Users"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/users [get]
func NewListUsersHandler(svc UserReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		// unparsable numbers fall back to the defaults
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		params := models.ListParams{
			Page:     page,
			PageSize: limit,
			Status:   q.Get("status"),
		}.Normalize()

		result, err := svc.ListUsers(r.Context(), params)
		if err != nil {
			logger.Log.Errorw("failed to list users", "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		users := make([]models.UserView, 0, len(result.Users))
		for i := range result.Users {
			users = append(users, result.Users[i].View())
		}

		writeJSON(w, http.StatusOK, models.UserListResponse{
			Success: true,
			Data: models.UserListData{
				Users: users,
				Pagination: models.Pagination{
					Page:       result.Page,
					Limit:      result.PageSize,
					Total:      result.Total,
					TotalPages: result.TotalPages,
				},
			},
		})
	}
}

// NewGetUserHandler returns an HTTP handler fetching a single user.
// @Summary Get user
// @Description Returns a user by identifier from the primary store
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserResponse "User"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/users/{id} [get]
func NewGetUserHandler(svc UserReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, models.UserResponse{Success: true, Data: user.View()})
	}
}
