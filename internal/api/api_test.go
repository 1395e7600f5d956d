package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agencypulse/server/config"
	"agencypulse/server/internal/auth"
	"agencypulse/server/internal/database"
	"agencypulse/server/internal/models"
	"agencypulse/server/internal/queue"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAllProperties(opts database.ListOptions) ([]models.PropertyDetails, error) {
	args := m.Called(opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PropertyDetails), args.Error(1)
}

func (m *MockStore) GetProperty(id int64) (*models.PropertyDetails, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyDetails), args.Error(1)
}

func (m *MockStore) InsertProperty(p *models.PropertyDetails) (int64, error) {
	args := m.Called(p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) UpdateProperty(id int64, p *models.PropertyDetails) error {
	args := m.Called(id, p)
	return args.Error(0)
}

func (m *MockStore) DeleteProperty(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) GetActivityEntries(agentEmail string) ([]models.ActivityEntry, error) {
	args := m.Called(agentEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityEntry), args.Error(1)
}

func (m *MockStore) InsertActivityEntry(e *models.ActivityEntry) (int64, error) {
	args := m.Called(e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteActivityEntry(id int64, agentEmail string) error {
	args := m.Called(id, agentEmail)
	return args.Error(0)
}

// stubProfiles backs the auth service with two fixed accounts.
type stubProfiles struct {
	agent *models.Profile
	admin *models.Profile
}

func (s *stubProfiles) GetProfileByEmail(email string) (*models.Profile, error) {
	switch email {
	case s.agent.Email:
		return s.agent, nil
	case s.admin.Email:
		return s.admin, nil
	}
	return nil, nil
}

func (s *stubProfiles) GetProfileByID(id int64) (*models.Profile, error) {
	switch id {
	case s.agent.ID:
		return s.agent, nil
	case s.admin.ID:
		return s.admin, nil
	}
	return nil, nil
}

func (s *stubProfiles) InsertProfile(p *models.Profile) (int64, error) {
	return 99, nil
}

type testServer struct {
	router     *gin.Engine
	store      *MockStore
	queue      *queue.ImportQueue
	cache      *MetricsCache
	sessions   *auth.Sessions
	agentToken string
	adminToken string
}

func testAPIConfig() *config.Config {
	cfg := &config.Config{
		AgencyName:        "Harcourt Success",
		JWTSecret:         "test-secret",
		TokenTTLMinutes:   60,
		MetricsDebounceMS: 5,
	}
	cfg.BulkImport.QueueSize = 1
	return cfg
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	cfg := testAPIConfig()

	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	profiles := &stubProfiles{
		agent: &models.Profile{ID: 1, Email: "agent@example.com", PasswordHash: hash, Role: models.RoleAgent},
		admin: &models.Profile{ID: 2, Email: "admin@example.com", PasswordHash: hash, Role: models.RoleAdmin},
	}

	store := new(MockStore)
	sessions := auth.NewSessions()
	authService := auth.NewService(profiles, sessions, cfg, logger)
	q := queue.NewImportQueue(cfg.BulkImport.QueueSize, cfg.BulkImport.WorkerCount, logger)
	cache := NewMetricsCache(store, cfg, logger)
	t.Cleanup(cache.Stop)

	handler := NewHandler(store, authService, q, cache, cfg, logger)
	router := gin.New()
	SetupRoutes(router, handler, authService)

	_, agentToken, err := authService.Login("agent@example.com", "pw")
	require.NoError(t, err)
	_, adminToken, err := authService.Login("admin@example.com", "pw")
	require.NoError(t, err)

	return &testServer{
		router:     router,
		store:      store,
		queue:      q,
		cache:      cache,
		sessions:   sessions,
		agentToken: agentToken,
		adminToken: adminToken,
	}
}

func (s *testServer) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func soldFixture() []models.PropertyDetails {
	price := 600000.0
	return []models.PropertyDetails{
		{Suburb: "Kenmore 4069", Category: models.CategorySold, SoldPrice: &price, AgentName: "Jane", AgencyName: "Harcourt Success"},
		{Suburb: "Kenmore 4069", Category: models.CategoryListing, AgentName: "Jane", AgencyName: "Harcourt Success"},
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/api/properties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login", body["redirect"])
}

func TestAdminRoutesRejectAgents(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/api/admin/commission", s.agentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.request(http.MethodGet, "/api/admin/commission", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "agent@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token   string         `json:"token"`
		Profile models.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "agent@example.com", body.Profile.Email)

	w = s.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "agent@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutReturnsSessionToAnonymous(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, auth.StateAuthenticated, s.sessions.For("agent@example.com").State())

	w := s.request(http.MethodPost, "/api/auth/logout", s.agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.StateAnonymous, s.sessions.For("agent@example.com").State())
}

func TestGetAllProperties(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil)

	w := s.request(http.MethodGet, "/api/properties", s.agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.PropertyDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestGetPropertyNotFound(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetProperty", int64(5)).Return(nil, nil)

	w := s.request(http.MethodGet, "/api/properties/5", s.agentToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProperty(t *testing.T) {
	s := newTestServer(t)
	s.store.On("InsertProperty", mock.AnythingOfType("*models.PropertyDetails")).Return(int64(11), nil)

	w := s.request(http.MethodPost, "/api/properties", s.agentToken, gin.H{
		"suburb": "Kenmore 4069", "category": models.CategoryListing,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.PropertyDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(11), got.ID)
	s.store.AssertExpectations(t)
}

func TestMetricsEmptyFiltersServeCache(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil).Once()

	cacheHandle := s.refreshCache(t)

	w := s.request(http.MethodPost, "/api/metrics", s.agentToken, models.Filters{})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.PropertyMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.TotalSales)
	assert.Equal(t, cacheHandle.TotalListings, got.TotalListings)

	// The cached aggregate was served: no second fetch happened.
	s.store.AssertNumberOfCalls(t, "GetAllProperties", 1)
}

func TestMetricsWithFiltersComputeOnDemand(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil)

	w := s.request(http.MethodPost, "/api/metrics", s.agentToken, models.Filters{
		Suburbs: []string{"Kenmore"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.PropertyMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1, got.TotalSales)
	assert.Equal(t, 1, got.TotalListings)
}

func TestPreviewCount(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil)

	w := s.request(http.MethodPost, "/api/metrics/preview-count", s.agentToken, models.Filters{
		Suburbs: []string{"Kenmore 4069"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got["count"])
}

func TestGetChartUnknownKind(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/api/charts/sparkline", s.agentToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetChartNoData(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/api/charts/heatmap", s.agentToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetChartHeatmap(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil)
	s.refreshCache(t)

	w := s.request(http.MethodGet, "/api/charts/heatmap", s.agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kenmore 4069")
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil)

	w := s.request(http.MethodGet, "/api/properties/suggestions", s.agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Suggestions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"Kenmore 4069"}, got.Suburbs)
}

func TestActivityScoping(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetActivityEntries", "agent@example.com").Return([]models.ActivityEntry{}, nil).Once()
	s.store.On("GetActivityEntries", "").Return([]models.ActivityEntry{}, nil).Once()

	w := s.request(http.MethodGet, "/api/activity", s.agentToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/activity", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s.store.AssertExpectations(t)
}

func TestCreateActivityAttributesCaller(t *testing.T) {
	s := newTestServer(t)
	s.store.On("InsertActivityEntry", mock.MatchedBy(func(e *models.ActivityEntry) bool {
		return e.AgentEmail == "agent@example.com"
	})).Return(int64(4), nil)

	w := s.request(http.MethodPost, "/api/activity", s.agentToken, gin.H{
		"agent_email": "spoofed@example.com",
		"action":      "Open home",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	s.store.AssertExpectations(t)
}

func TestDownloadPropertyCSV(t *testing.T) {
	s := newTestServer(t)
	s.store.On("GetAllProperties", mock.Anything).Return(soldFixture(), nil)

	w := s.request(http.MethodGet, "/api/reports/property.csv", s.agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "property_report.csv")
	assert.Contains(t, w.Body.String(), "Suburb")
}

func TestImportQueued(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodPost, "/api/admin/import", s.adminToken, gin.H{
		"properties": []gin.H{{"suburb": "Kenmore 4069"}},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, s.queue.Len())

	// Queue size is 1 in the test config, so the next batch is rejected.
	w = s.request(http.MethodPost, "/api/admin/import", s.adminToken, gin.H{
		"properties": []gin.H{{"suburb": "Moggill 4070"}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// refreshCache primes the metrics cache synchronously and returns the
// resulting aggregate.
func (s *testServer) refreshCache(t *testing.T) models.PropertyMetrics {
	t.Helper()
	s.cache.Refresh()
	return s.cache.Get()
}
