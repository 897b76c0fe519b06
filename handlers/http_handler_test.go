package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openpv/psur-generator/interfaces"
)

// ============================================================================
// CORE HANDLER TESTS
// ============================================================================

// TestNewHTTPHandler tests handler creation
func TestNewHTTPHandler(t *testing.T) {
	tests := []struct {
		name          string
		store         interfaces.ReportStore
		runner        interfaces.GenerationRunner
		healthChecker interfaces.HealthChecker
	}{
		{
			name:          "valid dependencies",
			store:         NewMockReportStoreBuilder().Build(),
			runner:        NewMockGenerationRunner(),
			healthChecker: &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK},
		},
		{
			name:          "nil store",
			store:         nil,
			runner:        NewMockGenerationRunner(),
			healthChecker: &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK},
		},
		{
			name:          "nil runner",
			store:         NewMockReportStoreBuilder().Build(),
			runner:        nil,
			healthChecker: &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHTTPHandler(tt.store, tt.runner, tt.healthChecker)

			if handler == nil {
				t.Fatal("Handler should not be nil")
			}
		})
	}
}

// TestRespondWithJSON tests JSON response formatting
func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name           string
		code           int
		payload        any
		expectedStatus int
		expectedJSON   string
	}{
		{
			name:           "successful response",
			code:           http.StatusOK,
			payload:        map[string]string{"message": "success"},
			expectedStatus: http.StatusOK,
			expectedJSON:   `{"message":"success"}`,
		},
		{
			name:           "empty payload",
			code:           http.StatusOK,
			payload:        nil,
			expectedStatus: http.StatusOK,
			expectedJSON:   `null`,
		},
		{
			name:           "array payload",
			code:           http.StatusOK,
			payload:        []string{"item1", "item2"},
			expectedStatus: http.StatusOK,
			expectedJSON:   `["item1","item2"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			RespondWithJSON(rr, tt.code, tt.payload)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Expected Content-Type application/json; charset=utf-8, got %s", ct)
			}

			if !strings.Contains(rr.Body.String(), tt.expectedJSON) {
				t.Errorf("Expected body to contain %s, got %s", tt.expectedJSON, rr.Body.String())
			}
		})
	}
}

// TestRespondWithError tests error response formatting
func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name           string
		code           int
		message        string
		expectedStatus int
		expectedJSON   string
	}{
		{
			name:           "conflict error",
			code:           http.StatusConflict,
			message:        "A generation is already in progress",
			expectedStatus: http.StatusConflict,
			expectedJSON:   `"message":"A generation is already in progress"`,
		},
		{
			name:           "service unavailable error",
			code:           http.StatusServiceUnavailable,
			message:        "No report has been generated yet",
			expectedStatus: http.StatusServiceUnavailable,
			expectedJSON:   `"message":"No report has been generated yet"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			RespondWithError(rr, tt.code, tt.message)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Expected Content-Type application/json; charset=utf-8, got %s", ct)
			}

			if !strings.Contains(rr.Body.String(), tt.expectedJSON) {
				t.Errorf("Expected body to contain %s, got %s", tt.expectedJSON, rr.Body.String())
			}
		})
	}
}

// ============================================================================
// REPORT ENDPOINT TESTS
// ============================================================================

// TestServeReport tests the document download endpoint
func TestServeReport(t *testing.T) {
	factory := NewTestDataFactory()
	helper := NewHTTPTestHelper(t)

	document := factory.CreateDocument(2048)
	lastGenerated := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	mockStore := NewMockReportStoreBuilder().
		WithDocument(document).
		WithReport(factory.CreateReport(len(document))).
		WithLastGenerated(lastGenerated).
		Build()

	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK})

	rr := helper.ExecuteRequest(handler.ServeReport, "GET", "/report")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != DocxContentType {
		t.Errorf("Expected Content-Type %s, got %s", DocxContentType, ct)
	}

	disposition := rr.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") {
		t.Errorf("Expected attachment disposition, got %s", disposition)
	}
	if !strings.Contains(disposition, "PSUR_2025-03-10.docx") {
		t.Errorf("Expected dated filename in disposition, got %s", disposition)
	}

	if !bytes.Equal(rr.Body.Bytes(), document) {
		t.Error("Response body should match the stored document")
	}
}

// TestServeReport_NoDocument tests the download endpoint before any generation
func TestServeReport_NoDocument(t *testing.T) {
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().Build()
	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), &MockHealthChecker{status: "unhealthy", httpStatus: http.StatusServiceUnavailable})

	rr := helper.ExecuteRequest(handler.ServeReport, "GET", "/report")

	helper.AssertErrorResponse(rr, http.StatusServiceUnavailable)
}

// TestReportStatus tests the generation report endpoint
func TestReportStatus(t *testing.T) {
	factory := NewTestDataFactory()
	helper := NewHTTPTestHelper(t)

	report := factory.CreateReport(2048)
	report.AddWarning("section 5.3 is partial")

	nextUpdate := time.Now().Add(6 * time.Hour)
	mockStore := NewMockReportStoreBuilder().
		WithDocument(factory.CreateDocument(2048)).
		WithReport(report).
		WithLastGenerated(time.Now().Add(-1 * time.Hour)).
		Build()

	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), &MockHealthChecker{
		status:     "healthy",
		httpStatus: http.StatusOK,
		nextUpdate: nextUpdate,
	})

	rr := helper.ExecuteRequest(handler.ReportStatus, "GET", "/report/status")

	var response map[string]any
	helper.AssertJSONResponse(rr, http.StatusOK, &response)

	reportJSON, ok := response["report"].(map[string]any)
	if !ok {
		t.Fatal("Response should have a report object")
	}

	sections, ok := reportJSON["sections"].([]any)
	if !ok {
		t.Fatal("Report should have a sections array")
	}
	if len(sections) != 4 {
		t.Errorf("Expected 4 sections, got %d", len(sections))
	}

	warnings, ok := reportJSON["warnings"].([]any)
	if !ok || len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %v", reportJSON["warnings"])
	}

	if response["is_generating"] != false {
		t.Errorf("Expected is_generating false, got %v", response["is_generating"])
	}

	nextGeneration, ok := response["next_generation"].(string)
	if !ok {
		t.Fatal("Response should have next_generation")
	}
	if _, err := time.Parse(time.RFC3339, nextGeneration); err != nil {
		t.Errorf("next_generation should be RFC3339, got %q", nextGeneration)
	}
}

// TestReportStatus_NoReport tests the status endpoint before any generation
func TestReportStatus_NoReport(t *testing.T) {
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().Build()
	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), &MockHealthChecker{status: "unhealthy", httpStatus: http.StatusServiceUnavailable})

	rr := helper.ExecuteRequest(handler.ReportStatus, "GET", "/report/status")

	helper.AssertErrorResponse(rr, http.StatusServiceUnavailable)
}

// TestTriggerGenerate tests the manual regeneration endpoint
func TestTriggerGenerate(t *testing.T) {
	factory := NewTestDataFactory()
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().
		WithDocument(factory.CreateDocument(2048)).
		WithReport(factory.CreateReport(2048)).
		Build()
	runner := NewMockGenerationRunner()

	handler := NewHTTPHandler(mockStore, runner, &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK})

	rr := helper.ExecuteRequest(handler.TriggerGenerate, "POST", "/report/generate")

	var response map[string]any
	helper.AssertJSONResponse(rr, http.StatusAccepted, &response)

	if response["status"] != "generation started" {
		t.Errorf("Expected generation started status, got %v", response["status"])
	}

	// Wait for the background run
	select {
	case trigger := <-runner.done:
		if trigger != "manual" {
			t.Errorf("Expected manual trigger, got %q", trigger)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the triggered generation")
	}
}

// TestTriggerGenerate_AlreadyRunning tests the conflict response
func TestTriggerGenerate_AlreadyRunning(t *testing.T) {
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().WithGenerating(true).Build()
	runner := NewMockGenerationRunner()

	handler := NewHTTPHandler(mockStore, runner, &MockHealthChecker{status: "healthy", httpStatus: http.StatusOK})

	rr := helper.ExecuteRequest(handler.TriggerGenerate, "POST", "/report/generate")

	helper.AssertErrorResponse(rr, http.StatusConflict)

	// No background run was started
	if runner.RunCount() != 0 {
		t.Errorf("Expected 0 runs while generating, got %d", runner.RunCount())
	}
}

// ============================================================================
// HEALTH ENDPOINT TESTS
// ============================================================================

// TestHealthCheckHandler tests the health endpoint response structure
func TestHealthCheckHandler(t *testing.T) {
	factory := NewTestDataFactory()
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().
		WithDocument(factory.CreateDocument(2048)).
		WithReport(factory.CreateReport(2048)).
		WithStartTime(time.Now().Add(-3 * time.Hour)).
		Build()

	healthChecker := &MockHealthChecker{
		status: "healthy",
		data: map[string]any{
			"report_age_hours": 1.0,
			"sections_full":    4,
			"sections_failed":  0,
			"is_generating":    false,
		},
		httpStatus: http.StatusOK,
		nextUpdate: time.Now().Add(6 * time.Hour),
	}

	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), healthChecker)

	rr := helper.ExecuteRequest(handler.HealthCheck, "GET", "/health")

	helper.AssertHealthResponse(rr, http.StatusOK, "healthy")

	var response map[string]any
	helper.AssertJSONResponse(rr, http.StatusOK, &response)

	uptime, ok := response["uptime_seconds"].(float64)
	if !ok {
		t.Fatal("Response should have uptime_seconds")
	}
	if uptime < 3*3600-60 {
		t.Errorf("Expected uptime around 3 hours, got %f seconds", uptime)
	}

	uptimeHuman, ok := response["uptime_human"].(string)
	if !ok || uptimeHuman == "" {
		t.Error("Response should have a human-readable uptime")
	}

	system, ok := response["system"].(map[string]any)
	if !ok {
		t.Fatal("Response should have a system object")
	}
	if _, ok := system["goroutines"]; !ok {
		t.Error("System should report goroutines")
	}
	if _, ok := system["memory"]; !ok {
		t.Error("System should report memory")
	}
}

// TestHealthCheckHandler_Unhealthy tests status code passthrough
func TestHealthCheckHandler_Unhealthy(t *testing.T) {
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().Build()
	healthChecker := &MockHealthChecker{
		status:     "unhealthy",
		data:       map[string]any{"sections_full": 0},
		httpStatus: http.StatusServiceUnavailable,
		nextUpdate: time.Now().Add(6 * time.Hour),
	}

	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), healthChecker)

	rr := helper.ExecuteRequest(handler.HealthCheck, "GET", "/health")

	helper.AssertHealthResponse(rr, http.StatusServiceUnavailable, "unhealthy")
}

// TestHealthCheckHandler_Degraded tests the degraded status passthrough
func TestHealthCheckHandler_Degraded(t *testing.T) {
	factory := NewTestDataFactory()
	helper := NewHTTPTestHelper(t)

	mockStore := NewMockReportStoreBuilder().
		WithDocument(factory.CreateDocument(2048)).
		WithReport(factory.CreateReport(2048)).
		Build()

	healthChecker := &MockHealthChecker{
		status:     "degraded",
		data:       map[string]any{"sections_failed": 1},
		httpStatus: http.StatusServiceUnavailable,
		nextUpdate: time.Now().Add(6 * time.Hour),
	}

	handler := NewHTTPHandler(mockStore, NewMockGenerationRunner(), healthChecker)

	rr := helper.ExecuteRequest(handler.HealthCheck, "GET", "/health")

	helper.AssertHealthResponse(rr, http.StatusServiceUnavailable, "degraded")
}

// TestFormatUptimeHuman tests the uptime formatting helper
func TestFormatUptimeHuman(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"seconds only", 45 * time.Second, "45s"},
		{"minutes and seconds", 2*time.Minute + 30*time.Second, "2m 30s"},
		{"hours minutes seconds", 3*time.Hour + 25*time.Minute + 10*time.Second, "3h 25m 10s"},
		{"days included", 49*time.Hour + 5*time.Minute, "2d 1h 5m 0s"},
		{"zero duration", 0, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatUptimeHuman(tt.duration)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}
