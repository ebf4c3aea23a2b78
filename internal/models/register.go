package models

// RegisterRequest represents the registration payload. JSON bodies and
// multipart forms are both decoded into it.
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Full name
	// required: true
	// example: Jane Doe
	Name string `json:"name" validate:"required,min=2,max=100"`

	// Email
	// required: true
	// example: jane@example.com
	Email string `json:"email" validate:"required,email,max=254"`

	// Password
	// required: true
	// example: secret1
	Password string `json:"password" validate:"required,min=6,max=72"`

	// Phone
	// required: true
	// example: +15551234
	Phone string `json:"phone" validate:"required,min=5,max=20"`

	// Date of birth, YYYY-MM-DD
	// example: 1990-04-01
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`

	// example: female
	Gender string `json:"gender" validate:"omitempty,oneof=male female other prefer-not-to-say"`

	Address    string `json:"address" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=100"`
	ZipCode    string `json:"zipCode" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
	Occupation string `json:"occupation" validate:"max=100"`
	Company    string `json:"company" validate:"max=100"`
	Website    string `json:"website" validate:"omitempty,url"`

	EmergencyContactName  string `json:"emergencyContactName" validate:"max=100"`
	EmergencyContactPhone string `json:"emergencyContactPhone" validate:"max=20"`

	// Newsletter opt-in
	NewsletterSubscription FlexBool `json:"newsletterSubscription"`

	// Terms consent, must be true
	// required: true
	TermsAccepted FlexBool `json:"termsAccepted" validate:"eq=true"`
}

// Registration is the normalized input of the registration service.
type Registration struct {
	Name     string
	Email    string
	Password string // plaintext, hashed by the service
	Phone    string

	DateOfBirth           string
	Gender                string
	Address               string
	City                  string
	State                 string
	ZipCode               string
	Country               string
	Occupation            string
	Company               string
	Website               string
	EmergencyContactName  string
	EmergencyContactPhone string

	NewsletterSubscription bool
	TermsAccepted          bool

	Photo *Photo
}

// Registration converts the request into the service input.
func (r *RegisterRequest) Registration(photo *Photo) Registration {
	return Registration{
		Name:                   r.Name,
		Email:                  r.Email,
		Password:               r.Password,
		Phone:                  r.Phone,
		DateOfBirth:            r.DateOfBirth,
		Gender:                 r.Gender,
		Address:                r.Address,
		City:                   r.City,
		State:                  r.State,
		ZipCode:                r.ZipCode,
		Country:                r.Country,
		Occupation:             r.Occupation,
		Company:                r.Company,
		Website:                r.Website,
		EmergencyContactName:   r.EmergencyContactName,
		EmergencyContactPhone:  r.EmergencyContactPhone,
		NewsletterSubscription: bool(r.NewsletterSubscription),
		TermsAccepted:          bool(r.TermsAccepted),
		Photo:                  photo,
	}
}

// RegisterData is the payload of a successful registration response.
// swagger:model RegisterData
type RegisterData struct {
	User    UserView      `json:"user"`
	Storage StorageStatus `json:"storage"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// example: true
	Success bool `json:"success"`
	// example: User registered successfully
	Message string       `json:"message"`
	Data    RegisterData `json:"data"`
}

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// example: false
	Success bool `json:"success"`
	// example: User with this email already exists
	Error string `json:"error"`
	// Field level validation messages
	Details []string `json:"details,omitempty"`
}
