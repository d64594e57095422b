package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
)

const defaultStoreTimeout = 5 * time.Second

func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// unavailable hides store and notifier failures behind a generic 503.
func unavailable(err error, message string) *appErrors.Error {
	return appErrors.WrapAs(err, appErrors.ErrServiceUnavailable, message)
}

func invalid(err error, message string) *appErrors.Error {
	return appErrors.WrapAs(err, appErrors.ErrValidation, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashSecret(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// secretMatches compares a bcrypt hash with a submitted value. The system-only
// sentinel and empty hashes never match.
func secretMatches(hash, plain string) bool {
	if hash == "" || hash == models.SystemOnlyPassword {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// generateOTP returns a uniformly random six-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate temp password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func systemClock() time.Time {
	return time.Now().UTC()
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, models.Activity) {}

func recorderOrNoop(r activityRecorder) activityRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
