package models

import "time"

// Company is a client tenant principal stored in the companies table.
type Company struct {
	ID                 string     `db:"id" json:"id"`
	CompanyName        string     `db:"company_name" json:"company_name"`
	RepresentativeName string     `db:"representative_name" json:"representative_name"`
	Email              string     `db:"email" json:"email"`
	PhoneNumber        string     `db:"phone_number" json:"phone_number"`
	FullAddress        string     `db:"full_address" json:"full_address"`
	Country            string     `db:"country" json:"country"`
	City               string     `db:"city" json:"city"`
	AirportCode        string     `db:"airport_code" json:"airport_code"`
	LogoURL            string     `db:"logo_url" json:"logo_url"`
	Status             string     `db:"status" json:"status"`
	Archived           bool       `db:"archived" json:"archived"`
	PasswordHash       *string    `db:"password_hash" json:"-"`
	OTPHash            *string    `db:"otp_hash" json:"-"`
	OTPExpiry          *time.Time `db:"otp_expiry" json:"-"`
	TempPasswordHash   *string    `db:"temp_password_hash" json:"-"`
	LastLogin          *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the company finished the OTP onboarding.
func (c *Company) HasPassword() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

// HasPendingOTP reports whether an OTP challenge is outstanding.
func (c *Company) HasPendingOTP() bool {
	return c.OTPHash != nil && c.OTPExpiry != nil
}

// OTPChallenge is written when a company requests a first-login code.
type OTPChallenge struct {
	CompanyID        string
	OTPHash          string
	TempPasswordHash string
	Expiry           time.Time
}

// CreateCompanyRequest is submitted by an admin. Logo bytes travel separately.
type CreateCompanyRequest struct {
	CompanyName        string `form:"company_name" json:"company_name" validate:"required"`
	RepresentativeName string `form:"representative_name" json:"representative_name" validate:"required"`
	Email              string `form:"email" json:"email" validate:"required,email"`
	PhoneNumber        string `form:"phone_number" json:"phone_number" validate:"required"`
	FullAddress        string `form:"full_address" json:"full_address" validate:"required"`
	Country            string `form:"country" json:"country"`
	City               string `form:"city" json:"city"`
	AirportCode        string `form:"airport_code" json:"airport_code"`
}

// UpdateCompanyRequest is an admin edit. Blank fields keep their stored value.
type UpdateCompanyRequest struct {
	CompanyName        string `form:"company_name" json:"company_name"`
	RepresentativeName string `form:"representative_name" json:"representative_name"`
	Email              string `form:"email" json:"email" validate:"omitempty,email"`
	PhoneNumber        string `form:"phone_number" json:"phone_number"`
	FullAddress        string `form:"full_address" json:"full_address"`
	Country            string `form:"country" json:"country"`
	City               string `form:"city" json:"city"`
	AirportCode        string `form:"airport_code" json:"airport_code"`
}

// UpdateCompanyInfoRequest is the subset a company may edit on its own profile.
type UpdateCompanyInfoRequest struct {
	CompanyName string `form:"company_name" json:"company_name"`
	Email       string `form:"email" json:"email" validate:"omitempty,email"`
	PhoneNumber string `form:"phone_number" json:"phone_number"`
	FullAddress string `form:"full_address" json:"full_address"`
}

// Upload is an in-memory file handed to the blob store.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RequestOTPRequest starts the first-login flow.
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ValidateOTPRequest completes the first-login flow.
type ValidateOTPRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// CompanyLoginRequest carries company credentials.
type CompanyLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DeliveryStatus reports the outcome of a best-effort notification.
type DeliveryStatus struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// RequestOTPResponse is returned even when the email could not be delivered.
type RequestOTPResponse struct {
	Message      string         `json:"message"`
	EmailSent    bool           `json:"email_sent"`
	Notification DeliveryStatus `json:"notification"`
	ExpiresAt    time.Time      `json:"expires_at"`
}
