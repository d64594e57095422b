package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assa-portal-api/internal/models"
	appErrors "github.com/noah-isme/assa-portal-api/pkg/errors"
	"github.com/noah-isme/assa-portal-api/pkg/jobs"
)

type memActivities struct {
	mu        sync.Mutex
	entries   []models.Activity
	filters   []models.ActivityFilter
	createErr error
}

func (m *memActivities) Create(_ context.Context, entry *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memActivities) List(_ context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter)
	return append([]models.Activity(nil), m.entries...), nil
}

func (m *memActivities) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type failingQueue struct{}

func (failingQueue) Enqueue(jobs.Job) error { return jobs.ErrQueueFull }

func TestJournalRecordWritesInlineWithoutQueue(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)

	journal.Record(context.Background(), models.Activity{Type: "connexion"})

	require.Len(t, repo.entries, 1)
	assert.NotEmpty(t, repo.entries[0].ID)
	assert.False(t, repo.entries[0].OccurredAt.IsZero())
}

func TestJournalRecordSurvivesCancelledRequest(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	journal.Record(ctx, models.Activity{Type: "connexion"})

	assert.Equal(t, 1, repo.count())
}

func TestJournalRecordFailureIsCountedNotReturned(t *testing.T) {
	repo := &memActivities{createErr: errors.New("insert failed")}
	metrics := NewMetricsService()
	journal := NewJournalService(repo, nil, metrics, time.Second)

	journal.Record(context.Background(), models.Activity{Type: "connexion"})

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.journalDropped))
}

func TestJournalRecordThroughQueue(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)
	queue := jobs.NewQueue("journal", journal.HandleJob, jobs.QueueConfig{Workers: 1, BufferSize: 4})
	queue.Start(context.Background())
	journal.UseQueue(queue)

	journal.Record(context.Background(), models.Activity{Type: "connexion"})
	queue.Stop()

	assert.Equal(t, 1, repo.count())
}

func TestJournalFallsBackInlineWhenQueueRefuses(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)
	journal.UseQueue(failingQueue{})

	journal.Record(context.Background(), models.Activity{Type: "connexion"})

	assert.Equal(t, 1, repo.count())
}

func TestJournalHandleJobRejectsForeignPayload(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)

	require.NoError(t, journal.HandleJob(context.Background(), jobs.Job{ID: "x", Payload: "nope"}))
	assert.Zero(t, repo.count())
}

func TestNilJournalIgnoresRecord(t *testing.T) {
	var journal *JournalService
	assert.NotPanics(t, func() { journal.Record(context.Background(), models.Activity{}) })
}

func TestJournalListScopesCompanies(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)

	_, err := journal.List(context.Background(), companySession("c1"), models.ActivityFilter{AdminID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, models.ActivityFilter{CompanyID: "c1"}, repo.filters[0])

	_, err = journal.List(context.Background(), companySession("c1"), models.ActivityFilter{CompanyID: "c2"})
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = journal.List(context.Background(), adminSession("a1", models.RoleSuperviseur), models.ActivityFilter{CompanyID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "c2", repo.filters[1].CompanyID)

	_, err = journal.List(context.Background(), nil, models.ActivityFilter{})
	requireCode(t, err, appErrors.ErrUnauthorized)
}

func TestJournalRecentDefaultsLimit(t *testing.T) {
	repo := &memActivities{}
	journal := NewJournalService(repo, nil, nil, time.Second)

	entries, err := journal.Recent(context.Background(), adminSession("a1", models.RoleAdministrateur), 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Equal(t, defaultRecentLimit, repo.filters[0].Limit)
}
