package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tripwise/travel-agent/internal/api/dto"
	"github.com/tripwise/travel-agent/internal/api/handlers"
	"github.com/tripwise/travel-agent/internal/testutil"
	"github.com/tripwise/travel-agent/internal/testutil/mocks"
)

func TestHealthHandler_Health_AllHealthy(t *testing.T) {
	mockCache := &mocks.MockCacheClient{}
	mockDocDB := &mocks.MockDocDBClient{}
	mockCache.On("Ping", mock.Anything).Return(nil)
	mockDocDB.On("Ping", mock.Anything).Return(nil)

	handler := handlers.NewHealthHandler(mockCache, mockDocDB)
	router := testutil.SetupTestRouter()
	router.GET("/api/health", handler.Health)

	w := testutil.PerformRequest(router, http.MethodGet, "/api/health", nil, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var response dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &response)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, map[string]string{"cache": "healthy", "docdb": "healthy", "lookup": "healthy"}, response.Components)
	mockCache.AssertExpectations(t)
	mockDocDB.AssertExpectations(t)
}

func TestHealthHandler_Health_CacheUnhealthy(t *testing.T) {
	mockCache := &mocks.MockCacheClient{}
	mockCache.On("Ping", mock.Anything).Return(assert.AnError)

	handler := handlers.NewHealthHandler(mockCache, nil)
	router := testutil.SetupTestRouter()
	router.GET("/api/health", handler.Health)

	w := testutil.PerformRequest(router, http.MethodGet, "/api/health", nil, nil)

	testutil.AssertStatusCode(t, http.StatusServiceUnavailable, w)
	var response dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &response)
	assert.Equal(t, "unhealthy", response.Status)
	assert.Equal(t, "unhealthy", response.Components["cache"])
	assert.NotContains(t, response.Components, "docdb")
}

func TestHealthHandler_Health_AuditStoreDownIsDegraded(t *testing.T) {
	mockCache := &mocks.MockCacheClient{}
	mockDocDB := &mocks.MockDocDBClient{}
	mockCache.On("Ping", mock.Anything).Return(nil)
	mockDocDB.On("Ping", mock.Anything).Return(assert.AnError)

	handler := handlers.NewHealthHandler(mockCache, mockDocDB)
	router := testutil.SetupTestRouter()
	router.GET("/api/health", handler.Health)

	w := testutil.PerformRequest(router, http.MethodGet, "/api/health", nil, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var response dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &response)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "degraded", response.Components["docdb"])
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
	}{
		{name: "ready", wantCode: http.StatusOK},
		{name: "cache down", pingErr: assert.AnError, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCache := &mocks.MockCacheClient{}
			mockCache.On("Ping", mock.Anything).Return(tt.pingErr)

			handler := handlers.NewHealthHandler(mockCache, nil)
			router := testutil.SetupTestRouter()
			router.GET("/api/ready", handler.Ready)

			w := testutil.PerformRequest(router, http.MethodGet, "/api/ready", nil, nil)
			testutil.AssertStatusCode(t, tt.wantCode, w)
		})
	}
}

func TestHealthHandler_Live(t *testing.T) {
	handler := handlers.NewHealthHandler(&mocks.MockCacheClient{}, nil)
	router := testutil.SetupTestRouter()
	router.GET("/api/live", handler.Live)

	w := testutil.PerformRequest(router, http.MethodGet, "/api/live", nil, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
