package models

import (
	"errors"
	"time"
)

// Storage errors shared by the repositories.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrPhotoTooLarge  = errors.New("photo exceeds size limit")
)

// User statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
)

// Gender values accepted by the registration contract.
const (
	GenderMale           = "male"
	GenderFemale         = "female"
	GenderOther          = "other"
	GenderPreferNotToSay = "prefer-not-to-say"
)

// Photo references an uploaded profile photo. The file itself lives on disk,
// the record only keeps the reference.
type Photo struct {
	Filename     string `json:"filename" bson:"filename"`
	OriginalName string `json:"originalName" bson:"original_name"`
	MimeType     string `json:"mimetype" bson:"mimetype"`
	Size         int64  `json:"size" bson:"size"`
	Path         string `json:"path" bson:"path"`
}

// User is the persisted user record.
// Optional profile fields are nil when not provided, never "".
type User struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"password,omitempty" bson:"password"` // bcrypt hash
	Phone    string `json:"phone" bson:"phone"`

	DateOfBirth           *time.Time `json:"dateOfBirth" bson:"date_of_birth"`
	Gender                *string    `json:"gender" bson:"gender"`
	Address               *string    `json:"address" bson:"address"`
	City                  *string    `json:"city" bson:"city"`
	State                 *string    `json:"state" bson:"state"`
	ZipCode               *string    `json:"zipCode" bson:"zip_code"`
	Country               *string    `json:"country" bson:"country"`
	Occupation            *string    `json:"occupation" bson:"occupation"`
	Company               *string    `json:"company" bson:"company"`
	Website               *string    `json:"website" bson:"website"`
	EmergencyContactName  *string    `json:"emergencyContactName" bson:"emergency_contact_name"`
	EmergencyContactPhone *string    `json:"emergencyContactPhone" bson:"emergency_contact_phone"`

	ProfilePhoto *Photo `json:"profilePhoto" bson:"profile_photo"`

	NewsletterSubscription bool `json:"newsletterSubscription" bson:"newsletter_subscription"`
	TermsAccepted          bool `json:"termsAccepted" bson:"terms_accepted"`

	Status        string     `json:"status" bson:"status"`
	EmailVerified bool       `json:"emailVerified" bson:"email_verified"`
	CreatedAt     time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" bson:"updated_at"`
	LastLogin     *time.Time `json:"lastLogin" bson:"last_login"`
	LoginCount    int        `json:"loginCount" bson:"login_count"`
}

// WithoutPassword returns a copy of the user with the password hash cleared.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}

// UserView is the public projection of a user returned by the API.
// swagger:model UserView
type UserView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	ProfilePhoto *Photo    `json:"profilePhoto"`
}

// View builds the public projection of the user.
func (u *User) View() UserView {
	return UserView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
		ProfilePhoto: u.ProfilePhoto,
	}
}
