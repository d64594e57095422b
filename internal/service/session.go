package service

import (
	"strings"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

var adminSessionRoles = map[string]models.Role{
	"admin":          models.RoleAdministrateur,
	"administrateur": models.RoleAdministrateur,
	"superviseur":    models.RoleSuperviseur,
	"super admin":    models.RoleSuperAdmin,
}

var companySessionRoles = map[string]struct{}{
	"company":   {},
	"compagnie": {},
}

// BuildSession normalizes verified claims into a Session. Claims whose role is
// neither an admin nor a company label are rejected.
func BuildSession(claims *models.JWTClaims) (*models.Session, error) {
	if claims == nil {
		return nil, appErrors.ErrTokenInvalid
	}
	key := strings.ToLower(strings.TrimSpace(string(claims.Role)))

	if role, ok := adminSessionRoles[key]; ok {
		return &models.Session{
			Kind:        models.PrincipalAdmin,
			ID:          claims.PrincipalID,
			Email:       claims.Email,
			FullName:    claims.FullName,
			Role:        role,
			Permissions: append([]string{}, claims.Permissions...),
			CompanyID:   claims.CompanyID,
		}, nil
	}

	if _, ok := companySessionRoles[key]; ok {
		return &models.Session{
			Kind:        models.PrincipalCompany,
			ID:          claims.PrincipalID,
			Email:       claims.Email,
			FullName:    claims.FullName,
			Role:        models.RoleCompany,
			Permissions: append([]string{}, claims.Permissions...),
			CompanyID:   companyLink(claims),
			CompanyName: claims.CompanyName,
		}, nil
	}

	return nil, appErrors.Clone(appErrors.ErrUnknownRole, "unknown role in token: "+string(claims.Role))
}

func companyLink(claims *models.JWTClaims) *string {
	if claims.CompanyID != nil && *claims.CompanyID != "" {
		return claims.CompanyID
	}
	if claims.LegacyCompanyID != nil && *claims.LegacyCompanyID != "" {
		return claims.LegacyCompanyID
	}
	return nil
}
