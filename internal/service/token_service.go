package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

// ErrMissingSigningSecret is returned by NewTokenService when a secret is empty.
var ErrMissingSigningSecret = errors.New("token service: access and refresh secrets are required")

// TokenKind selects the signing key and lifetime.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// TokenConfig defines signing material and lifetimes.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService issues and verifies HS256 tokens. Access and refresh tokens use distinct keys.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService fails fast when signing material is missing.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		return nil, ErrMissingSigningSecret
	}
	if config.AccessTTL <= 0 {
		config.AccessTTL = 12 * time.Hour
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{config: config, now: func() time.Time { return time.Now().UTC() }}, nil
}

// AccessTTL exposes the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.config.AccessTTL
}

// IssueAccessToken signs claims with the access secret.
func (s *TokenService) IssueAccessToken(claims models.JWTClaims) (string, time.Time, error) {
	return s.issue(claims, AccessToken)
}

// IssueRefreshToken signs claims with the refresh secret.
func (s *TokenService) IssueRefreshToken(claims models.JWTClaims) (string, time.Time, error) {
	return s.issue(claims, RefreshToken)
}

// Verify checks signature and expiry using the key for kind.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*models.JWTClaims, error) {
	if tokenString == "" {
		return nil, appErrors.ErrTokenMissing
	}
	secret := s.secret(kind)
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.WrapAs(err, appErrors.ErrTokenExpired, appErrors.ErrTokenExpired.Message)
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrTokenInvalid, appErrors.ErrTokenInvalid.Message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.ErrTokenInvalid
	}
	return claims, nil
}

// Refresh verifies a refresh token and issues an access token carrying the same
// principal claims. Claims are not re-derived from the store.
func (s *TokenService) Refresh(refreshToken string) (string, time.Time, error) {
	claims, err := s.Verify(refreshToken, RefreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.IssueAccessToken(principalClaims(claims))
}

func (s *TokenService) issue(claims models.JWTClaims, kind TokenKind) (string, time.Time, error) {
	issuedAt := s.now()
	ttl := s.config.AccessTTL
	if kind == RefreshToken {
		ttl = s.config.RefreshTTL
	}
	expiresAt := issuedAt.Add(ttl)

	payload := principalClaims(&claims)
	payload.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   claims.PrincipalID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &payload)
	signed, err := token.SignedString([]byte(s.secret(kind)))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) secret(kind TokenKind) string {
	if kind == RefreshToken {
		return s.config.RefreshSecret
	}
	return s.config.AccessSecret
}

// principalClaims copies the principal fields without registered claims.
func principalClaims(src *models.JWTClaims) models.JWTClaims {
	out := models.JWTClaims{
		PrincipalID: src.PrincipalID,
		Email:       src.Email,
		Role:        src.Role,
		FullName:    src.FullName,
		CompanyName: src.CompanyName,
		Permissions: append([]string{}, src.Permissions...),
	}
	if src.CompanyID != nil {
		id := *src.CompanyID
		out.CompanyID = &id
	}
	if src.LegacyCompanyID != nil {
		id := *src.LegacyCompanyID
		out.LegacyCompanyID = &id
	}
	return out
}
