package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxPhoto = 1024

func registeredUser(reg models.Registration) *models.User {
	return &models.User{
		ID:           "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Name:         reg.Name,
		Email:        strings.ToLower(reg.Email),
		Phone:        reg.Phone,
		Status:       models.StatusActive,
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		ProfilePhoto: reg.Photo,
	}
}

var fileOnly = models.StorageStatus{Primary: "file", PrimaryAvailable: true, Mode: "file-only"}

func TestRegisterHandler_JSON(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockUserRegistrar)
		expectedCode int
		expectedErr  string
		detail       string
	}{
		{
			name: "success",
			body: `{"name":"Jane Doe","email":"JANE@X.COM","password":"secret1","phone":"+15551234","termsAccepted":true}`,
			mockSetup: func(m *MockUserRegistrar) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, reg models.Registration) (*models.User, models.StorageStatus, error) {
						assert.Equal(t, "JANE@X.COM", reg.Email)
						assert.True(t, reg.TermsAccepted)
						assert.False(t, reg.NewsletterSubscription)
						return registeredUser(reg), fileOnly, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "string booleans",
			body: `{"name":"Jane Doe","email":"jane@x.com","password":"secret1","phone":"+15551234","termsAccepted":"on","newsletterSubscription":"1"}`,
			mockSetup: func(m *MockUserRegistrar) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, reg models.Registration) (*models.User, models.StorageStatus, error) {
						assert.True(t, reg.TermsAccepted)
						assert.True(t, reg.NewsletterSubscription)
						return registeredUser(reg), fileOnly, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "terms not accepted",
			body:         `{"name":"Jane Doe","email":"jane@x.com","password":"secret1","phone":"+15551234","termsAccepted":false}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
			detail:       "You must accept the terms and conditions",
		},
		{
			name:         "missing email",
			body:         `{"name":"Jane Doe","password":"secret1","phone":"+15551234","termsAccepted":true}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
			detail:       "email is required",
		},
		{
			name:         "bad gender",
			body:         `{"name":"Jane Doe","email":"jane@x.com","password":"secret1","phone":"+15551234","gender":"robot","termsAccepted":true}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
			detail:       "gender must be one of: male female other prefer-not-to-say",
		},
		{
			name:         "password longer than 72 characters",
			body:         `{"name":"Jane Doe","email":"jane@x.com","password":"` + strings.Repeat("p", 73) + `","phone":"+15551234","termsAccepted":true}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
			detail:       "password must be at most 72 characters",
		},
		{
			name: "password rejected by the service",
			body: `{"name":"Jane Doe","email":"jane@x.com","password":"` + strings.Repeat("é", 40) + `","phone":"+15551234","termsAccepted":true}`,
			mockSetup: func(m *MockUserRegistrar) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, models.StorageStatus{}, fmt.Errorf("%w: password exceeds 72 bytes", services.ErrInvalidRegistration))
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
		},
		{
			name:         "invalid json",
			body:         "{invalid json}",
			expectedCode: http.StatusBadRequest,
			expectedErr:  "Validation failed",
		},
		{
			name: "user already exists",
			body: `{"name":"Jane Doe","email":"jane@x.com","password":"secret1","phone":"+15551234","termsAccepted":true}`,
			mockSetup: func(m *MockUserRegistrar) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, models.StorageStatus{}, services.ErrEmailAlreadyExists)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "User with this email already exists",
		},
		{
			name: "internal server error",
			body: `{"name":"Jane Doe","email":"jane@x.com","password":"secret1","phone":"+15551234","termsAccepted":true}`,
			mockSetup: func(m *MockUserRegistrar) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(nil, models.StorageStatus{}, fmt.Errorf("primary store file: %w", errors.New("disk full")))
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockUserRegistrar(ctrl)
			photos := NewMockPhotoSaver(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			NewRegisterHandler(svc, photos, testMaxPhoto)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusCreated {
				var resp models.RegisterResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "jane@x.com", resp.Data.User.Email)
				assert.Equal(t, models.StatusActive, resp.Data.User.Status)
				assert.Equal(t, "file-only", resp.Data.Storage.Mode)
				assert.NotContains(t, rr.Body.String(), "password")
				return
			}

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedErr, resp.Error)
			if tt.detail != "" {
				assert.Contains(t, resp.Details, tt.detail)
			}
		})
	}
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, PhotoField, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func janeForm() map[string]string {
	return map[string]string{
		"name":                   "Jane Doe",
		"email":                  "jane@x.com",
		"password":               "secret1",
		"phone":                  "+15551234",
		"city":                   "Austin",
		"termsAccepted":          "on",
		"newsletterSubscription": "0",
	}
}

func TestRegisterHandler_Multipart(t *testing.T) {
	png := &formFile{name: "me.png", contentType: "image/png", data: []byte("\x89PNG fake image")}
	stored := &models.Photo{
		Filename:     "profile-1.png",
		OriginalName: "me.png",
		MimeType:     "image/png",
		Size:         int64(len(png.data)),
		Path:         "uploads/profile-1.png",
	}

	t.Run("with photo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := NewMockUserRegistrar(ctrl)
		photos := NewMockPhotoSaver(ctrl)

		photos.EXPECT().Save(gomock.Any(), "me.png", "image/png", gomock.Any()).Return(stored, nil)
		svc.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reg models.Registration) (*models.User, models.StorageStatus, error) {
				assert.Equal(t, stored, reg.Photo)
				assert.Equal(t, "Austin", reg.City)
				assert.True(t, reg.TermsAccepted)
				assert.False(t, reg.NewsletterSubscription)
				return registeredUser(reg), fileOnly, nil
			})

		rr := httptest.NewRecorder()
		NewRegisterHandler(svc, photos, testMaxPhoto)(rr, multipartRequest(t, janeForm(), png))

		require.Equal(t, http.StatusCreated, rr.Code)
		var resp models.RegisterResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotNil(t, resp.Data.User.ProfilePhoto)
		assert.Equal(t, "profile-1.png", resp.Data.User.ProfilePhoto.Filename)
	})

	t.Run("without photo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := NewMockUserRegistrar(ctrl)
		photos := NewMockPhotoSaver(ctrl)

		svc.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, reg models.Registration) (*models.User, models.StorageStatus, error) {
				assert.Nil(t, reg.Photo)
				return registeredUser(reg), fileOnly, nil
			})

		rr := httptest.NewRecorder()
		NewRegisterHandler(svc, photos, testMaxPhoto)(rr, multipartRequest(t, janeForm(), nil))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("conflict removes stored photo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := NewMockUserRegistrar(ctrl)
		photos := NewMockPhotoSaver(ctrl)

		photos.EXPECT().Save(gomock.Any(), "me.png", "image/png", gomock.Any()).Return(stored, nil)
		svc.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			Return(nil, models.StorageStatus{}, services.ErrEmailAlreadyExists)
		photos.EXPECT().Delete(gomock.Any(), stored).Return(nil)

		rr := httptest.NewRecorder()
		NewRegisterHandler(svc, photos, testMaxPhoto)(rr, multipartRequest(t, janeForm(), png))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	rejected := []struct {
		name   string
		fields func() map[string]string
		file   *formFile
		detail string
	}{
		{
			name:   "not an image",
			fields: janeForm,
			file:   &formFile{name: "cv.pdf", contentType: "application/pdf", data: []byte("%PDF")},
			detail: "profilePhoto: only image files are allowed",
		},
		{
			name:   "photo too large",
			fields: janeForm,
			file:   &formFile{name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, testMaxPhoto+1)},
			detail: fmt.Sprintf("profilePhoto: file exceeds %d bytes", testMaxPhoto),
		},
		{
			name: "unparsable boolean",
			fields: func() map[string]string {
				f := janeForm()
				f["termsAccepted"] = "maybe"
				return f
			},
			detail: `termsAccepted: invalid boolean value "maybe"`,
		},
		{
			name: "terms missing",
			fields: func() map[string]string {
				f := janeForm()
				delete(f, "termsAccepted")
				return f
			},
			detail: "You must accept the terms and conditions",
		},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// neither mock expects a call
			svc := NewMockUserRegistrar(ctrl)
			photos := NewMockPhotoSaver(ctrl)

			rr := httptest.NewRecorder()
			NewRegisterHandler(svc, photos, testMaxPhoto)(rr, multipartRequest(t, tt.fields(), tt.file))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp.Details, tt.detail)
		})
	}
}
