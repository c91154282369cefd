package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/cache"
	"github.com/raaihank/compliance-sentinel/internal/config"
	"github.com/raaihank/compliance-sentinel/internal/logger"
	"github.com/raaihank/compliance-sentinel/internal/report"
	"github.com/raaihank/compliance-sentinel/internal/store"
)

const fullConfig = `{
	"encryption": {"enabled": true},
	"consentManagement": {"enabled": true},
	"auditLogging": {"enabled": true},
	"accessControls": {"enabled": true},
	"dataSubjectRights": {"implemented": true},
	"breachResponse": {"plan": true}
}`

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]assessment.Assessment
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]assessment.Assessment)}
}

func (c *memoryCache) Key(controls assessment.Controls, ids []string, day time.Time) string {
	b, _ := json.Marshal(controls)
	return string(b) + strings.Join(ids, ",") + day.UTC().Format("2006-01-02")
}

func (c *memoryCache) Get(_ context.Context, key string) ([]assessment.Assessment, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	a, ok := c.entries[key]
	return a, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, a []assessment.Assessment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = a
	return nil
}

func (c *memoryCache) Stats(context.Context) (*cache.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &cache.Stats{TotalKeys: int64(len(c.entries))}, nil
}

type memoryStore struct {
	mu      sync.Mutex
	reports []report.Report
	saveErr error
	pingErr error
}

func (m *memoryStore) Save(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if r.ID == "" {
		r.ID = "report-" + string(rune('a'+len(m.reports)))
	}
	m.reports = append(m.reports, *r)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) ListByProject(_ context.Context, projectID string, limit int) ([]store.ReportSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.ReportSummary, 0)
	for i := len(m.reports) - 1; i >= 0; i-- {
		r := m.reports[i]
		if r.ProjectID != projectID {
			continue
		}
		out = append(out, store.ReportSummary{ID: r.ID, ProjectID: r.ProjectID, OverallScore: r.OverallScore})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *memoryStore) Stats(context.Context) (*store.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &store.Stats{TotalReports: int64(len(m.reports))}, nil
}

func testConfig() *config.Config {
	cfg := config.GetDefaults()
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, deps Dependencies) *Server {
	t.Helper()
	s, err := New(cfg, logger.NewNop(), deps)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody[HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = do(t, s, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodeBody[InfoResponse](t, rec)
	assert.Equal(t, "compliance-sentinel", info.Name)
	assert.Len(t, info.Regulations, 8)
	assert.False(t, info.CacheEnabled)
	assert.False(t, info.StoreEnabled)
}

func TestRequestIDIsReusedWhenValid(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "5f0c7e36-8f0e-4e43-9a66-4f0d3c1e8a11")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "5f0c7e36-8f0e-4e43-9a66-4f0d3c1e8a11", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestRegulationEndpoints(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodGet, "/api/regulations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[RegulationsResponse](t, rec)
	assert.Equal(t, 8, list.Count)
	assert.Equal(t, "hipaa", list.Regulations[0].ID)

	rec = do(t, s, http.MethodGet, "/api/regulations/GDPR", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 72, decodeBody[struct {
		BreachNotificationHours int `json:"breachNotificationHours"`
	}](t, rec).BreachNotificationHours)

	rec = do(t, s, http.MethodGet, "/api/regulations/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "nope")

	rec = do(t, s, http.MethodGet, "/api/regulations/gdpr/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decodeBody[RulesResponse](t, rec)
	assert.Equal(t, "gdpr", rules.RegulationID)
	assert.NotEmpty(t, rules.Rules)

	rec = do(t, s, http.MethodGet, "/api/regulations/nope/rules", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetect(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodPost, "/api/jurisdictions/detect", `{"operatingCountries":["United States"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[DetectResponse](t, rec)
	assert.Equal(t, []string{"hipaa", "ccpa"}, resp.ApplicableRegulations)
	assert.NotEmpty(t, resp.RequestID)

	rec = do(t, s, http.MethodPost, "/api/jurisdictions/detect", `{"operatingCountries":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/jurisdictions/locations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody[map[string][]string](t, rec)["locations"], "European Union")
}

func TestAssessFullyCompliantProject(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	body := `{"projectId":"proj-1","projectConfig":` + fullConfig + `,"regulations":["gdpr","unknown","hipaa"]}`
	rec := do(t, s, http.MethodPost, "/api/compliance/assess", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[AssessResponse](t, rec)
	require.Len(t, resp.Assessments, 2)
	assert.Equal(t, "gdpr", resp.Assessments[0].RegulationID)
	assert.Equal(t, "hipaa", resp.Assessments[1].RegulationID)
	for _, a := range resp.Assessments {
		assert.Equal(t, 100, a.Score)
		assert.Equal(t, assessment.StatusCompliant, a.Status)
		assert.Empty(t, a.Gaps)
	}
	assert.Equal(t, []string{"unknown"}, resp.UnknownRegulations)
	assert.False(t, resp.Cached)
}

func TestAssessEmptyConfigFloorsScore(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodPost, "/api/compliance/assess", `{"projectConfig":{},"regulations":["gdpr"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[AssessResponse](t, rec)
	require.Len(t, resp.Assessments, 1)
	assert.Equal(t, 0, resp.Assessments[0].Score)
	assert.Equal(t, assessment.StatusNonCompliant, resp.Assessments[0].Status)
	assert.Len(t, resp.Assessments[0].Gaps, 6)
}

func TestAssessResolvesRegulations(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodPost, "/api/compliance/assess", `{"projectConfig":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/compliance/assess", `{"projectConfig":{},"jurisdictions":{"userLocations":["Brazil"]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[AssessResponse](t, rec)
	require.Len(t, resp.Assessments, 1)
	assert.Equal(t, "lgpd", resp.Assessments[0].RegulationID)

	cfg := testConfig()
	cfg.Compliance.DefaultRegulations = []string{"pipeda"}
	s = newTestServer(t, cfg, Dependencies{})
	rec = do(t, s, http.MethodPost, "/api/compliance/assess", `{"projectConfig":{}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[AssessResponse](t, rec)
	require.Len(t, resp.Assessments, 1)
	assert.Equal(t, "pipeda", resp.Assessments[0].RegulationID)
}

func TestAssessUsesCache(t *testing.T) {
	c := newMemoryCache()
	s := newTestServer(t, testConfig(), Dependencies{Cache: c})

	body := `{"projectConfig":{"encryption":{"enabled":true}},"regulations":["gdpr"]}`
	first := decodeBody[AssessResponse](t, do(t, s, http.MethodPost, "/api/compliance/assess", body))
	second := decodeBody[AssessResponse](t, do(t, s, http.MethodPost, "/api/compliance/assess", body))

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Assessments, second.Assessments)
}

func TestAssessIgnoresCacheFailures(t *testing.T) {
	c := newMemoryCache()
	c.getErr = errors.New("redis down")
	s := newTestServer(t, testConfig(), Dependencies{Cache: c})

	rec := do(t, s, http.MethodPost, "/api/compliance/assess", `{"projectConfig":{},"regulations":["gdpr"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[AssessResponse](t, rec).Assessments, 1)
}

func TestReportFromEmptyAssessments(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodPost, "/api/compliance/report", `{"projectId":"proj-1","assessments":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[ReportResponse](t, rec)
	assert.True(t, resp.Report.NoData)
	assert.Equal(t, 0, resp.Report.OverallScore)
	assert.Equal(t, "No compliance assessments available", resp.Report.Summary)
	assert.False(t, resp.Persisted)
}

func TestReportAssessesAndPersists(t *testing.T) {
	st := &memoryStore{}
	s := newTestServer(t, testConfig(), Dependencies{Store: st})

	body := `{"projectId":"proj-1","projectConfig":` + fullConfig + `,"regulations":["gdpr","ccpa"]}`
	rec := do(t, s, http.MethodPost, "/api/compliance/report", body)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[ReportResponse](t, rec)
	assert.True(t, resp.Persisted)
	assert.Equal(t, 100, resp.Report.OverallScore)
	assert.Equal(t, 0, resp.Report.CriticalGaps)
	assert.Equal(t, "4-8 weeks for full compliance", resp.Report.Timeline)
	assert.Equal(t, "Compliance assessment for 2 regulations. Overall score: 100%", resp.Report.Summary)
	require.NotEmpty(t, resp.Report.ID)

	rec = do(t, s, http.MethodGet, "/api/reports/"+resp.Report.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "proj-1", decodeBody[report.Report](t, rec).ProjectID)

	rec = do(t, s, http.MethodGet, "/api/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/projects/proj-1/reports?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[ReportListResponse](t, rec)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, resp.Report.ID, list.Reports[0].ID)

	rec = do(t, s, http.MethodGet, "/api/projects/proj-1/reports?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportPersistFailure(t *testing.T) {
	st := &memoryStore{saveErr: errors.New("disk full")}
	s := newTestServer(t, testConfig(), Dependencies{Store: st})

	rec := do(t, s, http.MethodPost, "/api/compliance/report", `{"projectId":"p","assessments":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to persist report", decodeBody[ErrorResponse](t, rec).Error)
}

func TestReportEndpointsWithoutStore(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/reports/x", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/api/projects/p/reports", "").Code)
}

func TestStats(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{Cache: newMemoryCache(), Store: &memoryStore{}})

	rec := do(t, s, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[map[string]json.RawMessage](t, rec)
	assert.Contains(t, stats, "server")
	assert.Contains(t, stats, "websocket")
	assert.Contains(t, stats, "cache")
	assert.Contains(t, stats, "store")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1, IdleTimeout: time.Hour}
	s := newTestServer(t, cfg, Dependencies{})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/regulations", "").Code)

	rec := do(t, s, http.MethodGet, "/api/regulations", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// health checks bypass the limiter
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxRequestBody = 16
	s := newTestServer(t, cfg, Dependencies{})

	rec := do(t, s, http.MethodPost, "/api/jurisdictions/detect", `{"operatingCountries":["US","Canada","Brazil"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, testConfig(), Dependencies{})

	rec := do(t, s, http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthPingsStore(t *testing.T) {
	st := &memoryStore{}
	s := newTestServer(t, testConfig(), Dependencies{Store: st})

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["store"])

	st.pingErr = errors.New("connection refused")
	rec = do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	health = decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "connection refused", health.Checks["store"])
}

func TestDisabledWebSocketDropsNoEvents(t *testing.T) {
	cfg := testConfig()
	cfg.WebSocket.Enabled = false
	s := newTestServer(t, cfg, Dependencies{})

	for i := 0; i < 300; i++ {
		rec := do(t, s, http.MethodPost, "/api/compliance/assess", `{"projectConfig":{},"regulations":["gdpr"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Zero(t, s.wsHub.GetStats().DroppedEvents)
}
