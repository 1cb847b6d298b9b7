package app

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/epl-datalake/internal/adapters/catalog"
	"github.com/Amund211/epl-datalake/internal/config"
	"github.com/Amund211/epl-datalake/internal/domain"
	"github.com/Amund211/epl-datalake/internal/logging"
	"github.com/stretchr/testify/require"
)

type rosterResponse struct {
	players []domain.Player
	err     error
}

type mockedProvider struct {
	t *testing.T

	teams    []domain.Team
	teamsErr error
	rosters  map[int]rosterResponse

	mu        sync.Mutex
	requested []int
}

func (m *mockedProvider) GetTeams(ctx context.Context) ([]domain.Team, error) {
	return m.teams, m.teamsErr
}

func (m *mockedProvider) GetPlayersByTeam(ctx context.Context, teamID int) ([]domain.Player, error) {
	m.t.Helper()

	m.mu.Lock()
	m.requested = append(m.requested, teamID)
	m.mu.Unlock()

	response, ok := m.rosters[teamID]
	require.True(m.t, ok, "unexpected roster request for team %d", teamID)
	return response.players, response.err
}

// Returns an afterFunc that fires immediately, and the list of requested delays
func instantAfterFunc() (func(time.Duration) <-chan time.Time, *[]time.Duration) {
	var mu sync.Mutex
	delays := []time.Duration{}
	return func(d time.Duration) <-chan time.Time {
		mu.Lock()
		defer mu.Unlock()
		delays = append(delays, d)

		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}, &delays
}

type mockedObjectStore struct {
	ensureErr error
	putErr    error

	ensureCalls int
	objects     map[string][]byte
	putCalls    int
}

func newMockedObjectStore() *mockedObjectStore {
	return &mockedObjectStore{objects: map[string][]byte{}}
}

func (m *mockedObjectStore) EnsureBucket(ctx context.Context) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockedObjectStore) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = body
	return nil
}

func (m *mockedObjectStore) Bucket() string {
	return "sarps-epl-analytics-data-lake"
}

type mockedCatalog struct {
	databaseErr error
	tableErr    error

	databaseCalls int
	tables        []catalog.TableDefinition
}

func (m *mockedCatalog) CreateDatabase(ctx context.Context) error {
	m.databaseCalls++
	return m.databaseErr
}

func (m *mockedCatalog) CreateTable(ctx context.Context, table catalog.TableDefinition) error {
	m.tables = append(m.tables, table)
	return m.tableErr
}

type mockedQueryService struct {
	err       error
	databases []string
}

func (m *mockedQueryService) EnsureDatabase(ctx context.Context, name string) (string, error) {
	m.databases = append(m.databases, name)
	if m.err != nil {
		return "", m.err
	}
	return "query-id", nil
}

func (m *mockedQueryService) OutputLocation() string {
	return "s3://sarps-epl-analytics-data-lake/athena-results/"
}

// Returns a context whose logger writes to the returned buffer
func newLoggingContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	return logging.AddToContext(t.Context(), logger), &logs
}

// Without a Sentry hub on the context every report is logged with this message
const unsentReportMessage = "Failed to get Sentry hub from context"

func newTestConfig(t *testing.T) config.Config {
	t.Helper()

	conf, err := config.ConfigFromEnvironment(map[string]string{
		"SPORTS_DATA_API_KEY": "key",
		"EPL_ENDPOINT":        "https://api.sportsdata.io/v4/soccer/scores/json/Teams/EPL",
	})
	require.NoError(t, err)
	return conf
}
