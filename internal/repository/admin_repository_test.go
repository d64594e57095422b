package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assa-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var adminRowColumns = []string{"id", "email", "password_hash", "nom_complet", "profile", "id_companie", "status", "archived", "last_login", "created_at", "updated_at"}

func TestAdminRepositoryFindByEmailIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(adminRowColumns).
		AddRow("a1", "ops@assa.com", "hash", "Ops", "Admin", nil, models.StatusActive, false, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("OPS@assa.com").
		WillReturnRows(rows)

	admin, err := repo.FindByEmail(context.Background(), " OPS@assa.com ")
	require.NoError(t, err)
	assert.Equal(t, "ops@assa.com", admin.Email)
	assert.Nil(t, admin.CompanyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE LOWER(email)")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@assa.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdminRepositoryFindSuperAdmin(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(adminRowColumns).
		AddRow("s1", "root@assa.com", models.SystemOnlyPassword, "Root", models.ProfileSuperAdmin, nil, models.StatusActive, false, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM admins WHERE profile = $1")).
		WithArgs(models.ProfileSuperAdmin).
		WillReturnRows(rows)

	admin, err := repo.FindSuperAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SystemOnlyPassword, admin.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec("INSERT INTO admins").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Admin{Email: "Dup@assa.com", Profile: "Admin"})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryCreateNormalizesEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec("INSERT INTO admins").WillReturnResult(sqlmock.NewResult(1, 1))

	admin := &models.Admin{Email: " New@ASSA.com ", Profile: "Superviseur"}
	require.NoError(t, repo.Create(context.Background(), admin))
	assert.Equal(t, "new@assa.com", admin.Email)
	assert.NotEmpty(t, admin.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositorySetArchivedMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE admins SET archived = $2")).
		WithArgs("ghost", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetArchived(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepositoryListActiveByCompany(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdminRepository(db)

	now := time.Now()
	companyID := "c1"
	rows := sqlmock.NewRows(adminRowColumns).
		AddRow("a1", "one@assa.com", "hash", "One", "Admin", companyID, models.StatusActive, false, nil, now, now).
		AddRow("a2", "two@assa.com", "hash", "Two", "Admin", companyID, models.StatusInactive, false, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id_companie = $1 AND archived = FALSE")).
		WithArgs(companyID).
		WillReturnRows(rows)

	admins, err := repo.ListActiveByCompany(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	require.NotNil(t, admins[0].CompanyID)
	assert.Equal(t, companyID, *admins[0].CompanyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
