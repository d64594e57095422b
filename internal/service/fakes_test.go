package service

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/assa-portal-api/internal/models"
	"github.com/noah-isme/assa-portal-api/internal/repository"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/notify"
)

const (
	testAdminSecret = "elevate-admin"
	testSuperSecret = "elevate-super"
)

type recordingJournal struct {
	mu      sync.Mutex
	entries []models.Activity
}

func (j *recordingJournal) Record(_ context.Context, entry models.Activity) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *recordingJournal) types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.Type)
	}
	return out
}

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	tokens, err := NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "assa-test",
	})
	require.NoError(t, err)
	return tokens
}

func newTestRoles() *RoleResolver {
	return NewRoleResolver(DefaultRoleTable(),
		ElevationSecret{Password: testAdminSecret, Role: models.RoleAdministrateur},
		ElevationSecret{Password: testSuperSecret, Role: models.RoleSuperAdmin},
	)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func requireCode(t *testing.T, err error, target *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, appErrors.Is(err, target), "expected %s, got %v", target.Code, err)
}

func adminSession(id string, role models.Role) *models.Session {
	return &models.Session{Kind: models.PrincipalAdmin, ID: id, Role: role}
}

func companySession(id string) *models.Session {
	cid := id
	return &models.Session{Kind: models.PrincipalCompany, ID: id, Role: models.RoleCompany, CompanyID: &cid}
}

func ptr[T any](v T) *T {
	return &v
}

type memAdmins struct {
	mu        sync.Mutex
	byID      map[string]*models.Admin
	order     []string
	failWith  error
	createErr error
	setErr    map[string]error
	statuses  map[string]string
	links     map[string]string
	lastLogin map[string]time.Time
}

func newMemAdmins(admins ...*models.Admin) *memAdmins {
	m := &memAdmins{
		byID:      map[string]*models.Admin{},
		setErr:    map[string]error{},
		statuses:  map[string]string{},
		links:     map[string]string{},
		lastLogin: map[string]time.Time{},
	}
	for _, a := range admins {
		m.byID[a.ID] = a
		m.order = append(m.order, a.ID)
	}
	return m
}

func (m *memAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, id := range m.order {
		if a := m.byID[id]; a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAdmins) FindByID(_ context.Context, id string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (m *memAdmins) FindSuperAdmin(_ context.Context) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, id := range m.order {
		if a := m.byID[id]; a.Profile == models.ProfileSuperAdmin {
			clone := *a
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memAdmins) List(_ context.Context, archived bool) ([]models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Admin
	for _, id := range m.order {
		if a := m.byID[id]; a.Archived == archived {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAdmins) ListActiveByCompany(_ context.Context, companyID string) ([]models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Admin
	for _, id := range m.order {
		a := m.byID[id]
		if !a.Archived && a.CompanyID != nil && *a.CompanyID == companyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAdmins) Create(_ context.Context, admin *models.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.byID {
		if existing.Email == admin.Email {
			return repository.ErrDuplicate
		}
	}
	if admin.ID == "" {
		admin.ID = "admin-" + strconv.Itoa(len(m.order)+1)
	}
	clone := *admin
	m.byID[admin.ID] = &clone
	m.order = append(m.order, admin.ID)
	return nil
}

func (m *memAdmins) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = status
	if a, ok := m.byID[id]; ok {
		a.Status = status
	}
	return nil
}

func (m *memAdmins) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLogin[id] = ts
	return nil
}

func (m *memAdmins) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.PasswordHash = passwordHash
	return nil
}

func (m *memAdmins) LinkCompany(_ context.Context, id, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[id] = companyID
	return nil
}

func (m *memAdmins) SetArchived(_ context.Context, id string, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setErr[id]; err != nil {
		return err
	}
	a, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	a.Archived = archived
	return nil
}

type memCompanies struct {
	mu          sync.Mutex
	byID        map[string]*models.Company
	failWith    error
	createErr   error
	updateErr   error
	updated     []*models.Company
	challenges  []models.OTPChallenge
	completeErr error
	setErr      map[string]error
	created     []*models.Company
}

func newMemCompanies(companies ...*models.Company) *memCompanies {
	m := &memCompanies{byID: map[string]*models.Company{}, setErr: map[string]error{}}
	for _, c := range companies {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCompanies) FindByEmail(_ context.Context, email string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, c := range m.byID {
		if c.Email == email {
			clone := *c
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memCompanies) FindByID(_ context.Context, id string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (m *memCompanies) List(_ context.Context, archived bool) ([]models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Company
	for _, c := range m.byID {
		if c.Archived == archived {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memCompanies) Create(_ context.Context, company *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if company.ID == "" {
		company.ID = "company-" + strconv.Itoa(len(m.byID)+1)
	}
	clone := *company
	m.byID[company.ID] = &clone
	m.created = append(m.created, &clone)
	return nil
}

func (m *memCompanies) Update(_ context.Context, company *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[company.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *company
	m.byID[company.ID] = &clone
	m.updated = append(m.updated, &clone)
	return nil
}

func (m *memCompanies) SaveOTPChallenge(_ context.Context, challenge models.OTPChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[challenge.CompanyID]
	if !ok {
		return sql.ErrNoRows
	}
	m.challenges = append(m.challenges, challenge)
	c.OTPHash = &challenge.OTPHash
	c.TempPasswordHash = &challenge.TempPasswordHash
	expiry := challenge.Expiry
	c.OTPExpiry = &expiry
	if !c.HasPassword() {
		c.Status = models.StatusInactive
	}
	return nil
}

// CompleteOTP only succeeds while the stored hash still matches, like the conditional UPDATE.
func (m *memCompanies) CompleteOTP(_ context.Context, id, otpHash, passwordHash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.completeErr != nil {
		return m.completeErr
	}
	c, ok := m.byID[id]
	if !ok || c.OTPHash == nil || *c.OTPHash != otpHash {
		return sql.ErrNoRows
	}
	c.PasswordHash = &passwordHash
	c.OTPHash = nil
	c.OTPExpiry = nil
	c.TempPasswordHash = nil
	c.Status = models.StatusActive
	return nil
}

func (m *memCompanies) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.byID[id]; ok {
		c.LastLogin = &ts
	}
	return nil
}

func (m *memCompanies) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.PasswordHash = &passwordHash
	return nil
}

func (m *memCompanies) SetArchived(_ context.Context, id string, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setErr[id]; err != nil {
		return err
	}
	c, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Archived = archived
	return nil
}

type memInvoices struct {
	mu     sync.Mutex
	byID   map[string]*models.Invoice
	order  []string
	setErr map[string]error
}

func newMemInvoices(invoices ...*models.Invoice) *memInvoices {
	m := &memInvoices{byID: map[string]*models.Invoice{}, setErr: map[string]error{}}
	for _, inv := range invoices {
		m.byID[inv.ID] = inv
		m.order = append(m.order, inv.ID)
	}
	return m
}

func (m *memInvoices) FindByID(_ context.Context, id string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *inv
	return &clone, nil
}

func (m *memInvoices) ListActiveByCompany(_ context.Context, companyID string) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Invoice
	for _, id := range m.order {
		if inv := m.byID[id]; !inv.Archived && inv.CompanyID == companyID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memInvoices) SetArchived(_ context.Context, id string, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setErr[id]; err != nil {
		return err
	}
	inv, ok := m.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	inv.Archived = archived
	if archived {
		inv.Status = models.InvoiceStatusArchived
	}
	return nil
}

type memRecords struct {
	mu        sync.Mutex
	records   []models.ArchiveRecord
	appendErr error
	listErr   error
	filters   []models.ArchiveFilter
}

func (m *memRecords) Append(_ context.Context, record *models.ArchiveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	record.ID = "rec-" + strconv.Itoa(len(m.records)+1)
	m.records = append(m.records, *record)
	return nil
}

func (m *memRecords) List(_ context.Context, filter models.ArchiveFilter) ([]models.ArchiveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.ArchiveRecord(nil), m.records...), nil
}

func (m *memRecords) ListByReference(_ context.Context, reference string) ([]models.ArchiveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ArchiveRecord
	for _, r := range m.records {
		if r.Reference == reference {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	sent  []notify.Template
	data  []map[string]string
	to    []string
	block bool
}

func (n *fakeNotifier) Send(ctx context.Context, address string, tpl notify.Template, data map[string]string) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, tpl)
	n.data = append(n.data, data)
	n.to = append(n.to, address)
	return nil
}
