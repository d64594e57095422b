package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assa-portal-api/internal/middleware"
	"github.com/noah-isme/assa-portal-api/internal/models"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code   string `json:"code"`
		Status int    `json:"status"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func newTestContext(method, target string, body io.Reader, session *models.Session) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if session != nil {
		c.Set(middleware.ContextSessionKey, session)
	}
	return c, w
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type lifecycleStub struct {
	kind   models.EntityKind
	id     string
	action models.ArchiveAction
	actor  *models.Session
	err    error
}

func (s *lifecycleStub) Archive(_ context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error) {
	return s.record(actor, kind, id, models.ActionArchive)
}

func (s *lifecycleStub) Restore(_ context.Context, actor *models.Session, kind models.EntityKind, id string) (*models.ArchiveOutcome, error) {
	return s.record(actor, kind, id, models.ActionRestore)
}

func (s *lifecycleStub) record(actor *models.Session, kind models.EntityKind, id string, action models.ArchiveAction) (*models.ArchiveOutcome, error) {
	s.actor, s.kind, s.id, s.action = actor, kind, id, action
	if s.err != nil {
		return nil, s.err
	}
	return &models.ArchiveOutcome{Kind: kind, ID: id, Action: action, Records: []models.ArchiveRecord{}}, nil
}

func adminActor() *models.Session {
	return &models.Session{Kind: models.PrincipalAdmin, ID: "a1", Role: models.RoleAdministrateur}
}

func companyActor() *models.Session {
	id := "c1"
	return &models.Session{Kind: models.PrincipalCompany, ID: id, Role: models.RoleCompany, CompanyID: &id}
}
