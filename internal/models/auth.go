package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the token payload. It is a snapshot taken at issuance.
type JWTClaims struct {
	PrincipalID     string   `json:"id"`
	Email           string   `json:"email"`
	Role            Role     `json:"role"`
	FullName        string   `json:"nom_complet,omitempty"`
	CompanyID       *string  `json:"id_companie"`
	LegacyCompanyID *string  `json:"company_id,omitempty"`
	CompanyName     string   `json:"company_name,omitempty"`
	Permissions     []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Session is the normalized principal attached to an authenticated request.
type Session struct {
	Kind        PrincipalKind `json:"kind"`
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	FullName    string        `json:"nom_complet,omitempty"`
	Role        Role          `json:"role"`
	Permissions []string      `json:"permissions"`
	CompanyID   *string       `json:"id_companie"`
	CompanyName string        `json:"company_name,omitempty"`
}

// IsAdmin reports whether the session belongs to an admin principal.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Kind == PrincipalAdmin
}

// IsCompany reports whether the session belongs to a company principal.
func (s *Session) IsCompany() bool {
	return s != nil && s.Kind == PrincipalCompany
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PrincipalInfo describes the authenticated principal in login responses.
type PrincipalInfo struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"nom_complet,omitempty"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
	CompanyID   *string  `json:"id_companie"`
	CompanyName string   `json:"company_name,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// LoginResponse returns the issued tokens and principal info.
type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	Principal    PrincipalInfo `json:"user"`
	IssuedAt     time.Time     `json:"issued_at"`
}

// RefreshTokenResponse returns the refreshed access token.
type RefreshTokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}
