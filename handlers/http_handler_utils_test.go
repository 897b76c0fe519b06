package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/openpv/psur-generator/interfaces"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// TestDataFactory creates consistent test data across all tests
type TestDataFactory struct{}

func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// CreateDocument creates test document bytes that look like a DOCX archive
func (f *TestDataFactory) CreateDocument(size int) []byte {
	document := make([]byte, size)
	copy(document, []byte{'P', 'K', 0x03, 0x04})
	return document
}

// CreateReport creates a generation report with the standard four sections
func (f *TestDataFactory) CreateReport(sizeBytes int) *interfaces.GenerationReport {
	return &interfaces.GenerationReport{
		GeneratedAt: time.Now(),
		Duration:    150 * time.Millisecond,
		Sections: []interfaces.SectionResult{
			{ID: "5.2", Title: "Cumulative Subject Exposure in Clinical Trials", Status: interfaces.SectionFull},
			{ID: "5.3", Title: "Patient Exposure from Marketing Experience", Status: interfaces.SectionFull},
			{ID: "6.3", Title: "Cumulative Summary Tabulations of Adverse Reactions", Status: interfaces.SectionFull},
			{ID: "15", Title: "Overview of Signals", Status: interfaces.SectionFull},
		},
		SizeBytes: sizeBytes,
	}
}

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockReportStoreBuilder provides fluent interface for building mock stores
type MockReportStoreBuilder struct {
	mock *MockReportStore
}

func NewMockReportStoreBuilder() *MockReportStoreBuilder {
	return &MockReportStoreBuilder{
		mock: &MockReportStore{
			document:      []byte{},
			report:        nil,
			lastGenerated: time.Time{},
			startTime:     time.Now(),
			generating:    false,
		},
	}
}

func (b *MockReportStoreBuilder) WithDocument(document []byte) *MockReportStoreBuilder {
	b.mock.document = document
	return b
}

func (b *MockReportStoreBuilder) WithReport(report *interfaces.GenerationReport) *MockReportStoreBuilder {
	b.mock.report = report
	return b
}

func (b *MockReportStoreBuilder) WithLastGenerated(lastGenerated time.Time) *MockReportStoreBuilder {
	b.mock.lastGenerated = lastGenerated
	return b
}

func (b *MockReportStoreBuilder) WithGenerating(generating bool) *MockReportStoreBuilder {
	b.mock.generating = generating
	return b
}

func (b *MockReportStoreBuilder) WithStartTime(startTime time.Time) *MockReportStoreBuilder {
	b.mock.startTime = startTime
	return b
}

func (b *MockReportStoreBuilder) Build() *MockReportStore {
	return b.mock
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	bodyStr := resp.Body.String()
	if bodyStr == "" {
		h.t.Error("Response body should not be empty")
	}

	err := json.Unmarshal([]byte(bodyStr), target)
	if err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	var errorResp map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &errorResp)
	if err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
	}

	// Check that it has error fields
	if _, ok := errorResp["message"]; !ok {
		h.t.Error("Error response should have message field")
	}
	if _, ok := errorResp["code"]; !ok {
		h.t.Error("Error response should have code field")
	}
}

// AssertHealthResponse asserts health check response structure
func (h *HTTPTestHelper) AssertHealthResponse(resp *httptest.ResponseRecorder, expectedCode int, expectedStatus string) {
	var response map[string]any
	h.AssertJSONResponse(resp, expectedCode, &response)

	if response["status"] != expectedStatus {
		h.t.Errorf("Status mismatch: expected %s, got %v", expectedStatus, response["status"])
	}
	if _, ok := response["data"]; !ok {
		h.t.Error("Response should have data field")
	}
	if _, ok := response["system"]; !ok {
		h.t.Error("Response should have system field")
	}
}

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockReportStore implements interfaces.ReportStore for testing
type MockReportStore struct {
	document      []byte
	report        *interfaces.GenerationReport
	lastGenerated time.Time
	startTime     time.Time
	generating    bool

	// Method call tracking
	getDocumentCalled bool
	getReportCalled   bool
	updateCalled      bool
}

func (m *MockReportStore) GetDocument() []byte {
	m.getDocumentCalled = true
	return m.document
}

func (m *MockReportStore) GetReport() *interfaces.GenerationReport {
	m.getReportCalled = true
	return m.report
}

func (m *MockReportStore) GetLastGenerated() time.Time {
	return m.lastGenerated
}

func (m *MockReportStore) IsGenerating() bool {
	return m.generating
}

func (m *MockReportStore) GetServerStartTime() time.Time {
	return m.startTime
}

func (m *MockReportStore) UpdateReport(document []byte, report *interfaces.GenerationReport) {
	m.updateCalled = true
	m.document = document
	m.report = report
	m.lastGenerated = time.Now()
}

func (m *MockReportStore) BeginGeneration() bool {
	if m.generating {
		return false
	}
	m.generating = true
	return true
}

func (m *MockReportStore) EndGeneration() {
	m.generating = false
}

// MockGenerationRunner implements interfaces.GenerationRunner for testing.
// Triggered runs are reported on the done channel so tests can wait for
// the handler's background goroutine.
type MockGenerationRunner struct {
	mu          sync.Mutex
	runCount    int
	lastTrigger string
	returnErr   error
	done        chan string
}

func NewMockGenerationRunner() *MockGenerationRunner {
	return &MockGenerationRunner{
		done: make(chan string, 8),
	}
}

func (m *MockGenerationRunner) GenerateNow(trigger string) error {
	m.mu.Lock()
	m.runCount++
	m.lastTrigger = trigger
	m.mu.Unlock()

	select {
	case m.done <- trigger:
	default:
	}

	return m.returnErr
}

func (m *MockGenerationRunner) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCount
}

// MockHealthChecker implements interfaces.HealthChecker for testing
type MockHealthChecker struct {
	status     string
	data       map[string]any
	httpStatus int
	nextUpdate time.Time
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.data, m.httpStatus
}

func (m *MockHealthChecker) CalculateNextUpdate() time.Time {
	return m.nextUpdate
}
