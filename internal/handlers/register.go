package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/services"
)

//go:generate mockgen -source=register.go -destination=mock_register.go -package=handlers

// PhotoField is the multipart field carrying the profile photo.
const PhotoField = "profilePhoto"

// Image types accepted for profile photos.
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UserRegistrar defines the interface that the service must implement.
type UserRegistrar interface {
	CreateUser(ctx context.Context, reg models.Registration) (*models.User, models.StorageStatus, error)
}

// PhotoSaver stores uploaded profile photos.
type PhotoSaver interface {
	Save(ctx context.Context, originalName, mimeType string, src io.Reader) (*models.Photo, error)
	Delete(ctx context.Context, photo *models.Photo) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errBadRequest carries field level messages back to the client.
type errBadRequest struct {
	details []string
}

func (e *errBadRequest) Error() string {
	return strings.Join(e.details, "; ")
}

func badRequest(format string, args ...any) *errBadRequest {
	return &errBadRequest{details: []string{fmt.Sprintf(format, args...)}}
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a user in the primary store and mirrors it to the secondary store when reachable. Accepts JSON or multipart/form-data with an optional profilePhoto file.
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Param registerRequest body models.RegisterRequest true "User registration request"
// @Param profilePhoto formData file false "Profile photo (jpeg, png, gif, webp)"
// @Success 201 {object} models.RegisterResponse "User successfully registered"
// @Failure 400 {object} models.ErrorResponse "Validation failed"
// @Failure 409 {object} models.ErrorResponse "User with this email already exists"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/users/register [post]
func NewRegisterHandler(svc UserRegistrar, photos PhotoSaver, maxPhotoBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, file, err := decodeRegisterRequest(r, maxPhotoBytes)
		if file != nil {
			defer file.Close()
		}
		if err != nil {
			writeBadRequest(w, err)
			return
		}

		if err := validate.Struct(req); err != nil {
			writeBadRequest(w, validationDetails(err))
			return
		}

		var photo *models.Photo
		if file != nil {
			photo, err = photos.Save(r.Context(), file.header.Filename, file.mimeType, file)
			if err != nil {
				if errors.Is(err, models.ErrPhotoTooLarge) {
					writeBadRequest(w, badRequest("%s: file exceeds %d bytes", PhotoField, maxPhotoBytes))
					return
				}
				logger.Log.Errorw("failed to save profile photo", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
		}

		user, status, err := svc.CreateUser(r.Context(), req.Registration(photo))
		if err != nil {
			if photo != nil {
				if delErr := photos.Delete(r.Context(), photo); delErr != nil {
					logger.Log.Warnw("failed to remove orphaned photo", "file", photo.Filename, "err", delErr)
				}
			}

			switch {
			case errors.Is(err, services.ErrEmailAlreadyExists):
				writeError(w, http.StatusConflict, "User with this email already exists")
			case errors.Is(err, services.ErrInvalidRegistration):
				writeBadRequest(w, badRequest("%s", err.Error()))
			default:
				logger.Log.Errorw("internal server error", "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, models.RegisterResponse{
			Success: true,
			Message: "User registered successfully",
			Data: models.RegisterData{
				User:    user.View(),
				Storage: status,
			},
		})
	}
}

// uploadedPhoto is a multipart file that passed the type checks.
type uploadedPhoto struct {
	multipart.File
	header   *multipart.FileHeader
	mimeType string
}

// decodeRegisterRequest reads a JSON body or a multipart form.
func decodeRegisterRequest(r *http.Request, maxPhotoBytes int64) (*models.RegisterRequest, *uploadedPhoto, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, badRequest("invalid request body: %v", err)
		}
		return &req, nil, nil
	}

	// form fields are small, keep at most one photo plus headroom in memory
	if err := r.ParseMultipartForm(maxPhotoBytes + 1<<20); err != nil {
		return nil, nil, badRequest("invalid multipart form: %v", err)
	}

	req, err := formRequest(r)
	if err != nil {
		return nil, nil, err
	}

	file, header, err := r.FormFile(PhotoField)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return nil, nil, badRequest("%s: %v", PhotoField, err)
	}

	photo := &uploadedPhoto{File: file, header: header, mimeType: header.Header.Get("Content-Type")}
	if !allowedPhotoTypes[photo.mimeType] {
		return nil, photo, badRequest("%s: only image files are allowed", PhotoField)
	}
	if header.Size > maxPhotoBytes {
		return nil, photo, badRequest("%s: file exceeds %d bytes", PhotoField, maxPhotoBytes)
	}
	return req, photo, nil
}

func formRequest(r *http.Request) (*models.RegisterRequest, error) {
	newsletter, err := models.ParseFlexBool(r.FormValue("newsletterSubscription"))
	if err != nil {
		return nil, badRequest("newsletterSubscription: %v", err)
	}
	terms, err := models.ParseFlexBool(r.FormValue("termsAccepted"))
	if err != nil {
		return nil, badRequest("termsAccepted: %v", err)
	}

	return &models.RegisterRequest{
		Name:                   r.FormValue("name"),
		Email:                  r.FormValue("email"),
		Password:               r.FormValue("password"),
		Phone:                  r.FormValue("phone"),
		DateOfBirth:            r.FormValue("dateOfBirth"),
		Gender:                 r.FormValue("gender"),
		Address:                r.FormValue("address"),
		City:                   r.FormValue("city"),
		State:                  r.FormValue("state"),
		ZipCode:                r.FormValue("zipCode"),
		Country:                r.FormValue("country"),
		Occupation:             r.FormValue("occupation"),
		Company:                r.FormValue("company"),
		Website:                r.FormValue("website"),
		EmergencyContactName:   r.FormValue("emergencyContactName"),
		EmergencyContactPhone:  r.FormValue("emergencyContactPhone"),
		NewsletterSubscription: models.FlexBool(newsletter),
		TermsAccepted:          models.FlexBool(terms),
	}, nil
}

func validationDetails(err error) *errBadRequest {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("%v", err)
	}

	out := &errBadRequest{}
	for _, fe := range verrs {
		out.details = append(out.details, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "eq":
		if field == "termsAccepted" {
			return "You must accept the terms and conditions"
		}
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

func writeBadRequest(w http.ResponseWriter, err error) {
	var bad *errBadRequest
	if !errors.As(err, &bad) {
		bad = badRequest("%v", err)
	}
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Details: bad.details,
	})
}
