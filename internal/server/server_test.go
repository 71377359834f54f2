package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/match-advisor/internal/ai"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) GenerateContent(context.Context, string) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

type stubSource struct {
	payload map[string]any
	err     error
}

func (s *stubSource) Fetch(context.Context) (map[string]any, error) {
	return s.payload, s.err
}

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func samplePayload() map[string]any {
	return map[string]any{
		"page_index":   "1",
		"result_count": "2",
		"searchid":     "S-1",
		"profiles": []any{
			map[string]any{"profileid": "A", "age": "27"},
			map[string]any{"profileid": "B", "age": "35"},
		},
	}
}

func newTestServer(t *testing.T, gen ai.Generator, source *stubSource) *Server {
	t.Helper()

	handle := ai.NewUnavailable("gemini", "GOOGLE_API_KEY", errors.New("gemini api key is not configured"))
	if gen != nil {
		handle = ai.NewReady("stub", gen)
	}

	deps := Deps{
		Analyzer: ai.NewAnalyzer(handle, zap.NewNop(), ai.WithClock(func() time.Time { return fixedNow })),
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return fixedNow },
	}
	if source != nil {
		deps.Source = source
	}

	return New(Config{Prefix: DefaultPrefix}, deps)
}

func do(t *testing.T, s *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.Handler().ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not json: %v (%s)", err, rec.Body.String())
		}
	}

	return rec, decoded
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	tests := []struct {
		name    string
		path    string
		body    string
		message string
	}{
		{"analyze without profile", "/api/ai/analyze-profile", `{"userRequirements": {}}`, "Profile data is required"},
		{"analyze without requirements", "/api/ai/analyze-profile", `{"profile": {"id": "A"}}`, "User requirements are required"},
		{"recommend without profiles", "/api/ai/recommend-matches", `{"userProfile": {}, "userRequirements": {}}`, "Profiles array is required"},
		{"recommend with object profiles", "/api/ai/recommend-matches", `{"profiles": {"id": "A"}}`, "Profiles array is required"},
		{"recommend without user", "/api/ai/recommend-matches", `{"profiles": [], "userRequirements": {}}`, "User profile is required"},
		{"recommend without requirements", "/api/ai/recommend-matches", `{"profiles": [], "userProfile": {"name": "R"}}`, "User requirements are required"},
		{"set requirements empty", "/api/ai/set-requirements", `{}`, "Requirements are required"},
		{"compatibility one profile", "/api/profiles/compatibility", `{"profile1": {"id": "A"}}`, "Both profiles are required"},
		{"transform without data", "/api/profiles/transform", `{}`, "Jeevansathi data is required"},
		{"evaluate without requirements", "/api/profiles/evaluate", `{"profile": {"id": "A"}}`, "Requirements are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, s, http.MethodPost, tt.path, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if body["error"] != tt.message {
				t.Fatalf("expected %q, got %v", tt.message, body)
			}
		})
	}
}

func TestAnalyzeProfile(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"compatibilityScore\": 81, \"summary\": \"Strong match\"}\n```"}
	s := newTestServer(t, gen, nil)

	rec, body := do(t, s, http.MethodPost, "/api/ai/analyze-profile",
		`{"profile": {"id": "JS1", "name": "Priya", "age": 28}, "userRequirements": {"ageRange": {"min": 25, "max": 30}}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	if body["success"] != true || body["message"] != "Profile analyzed successfully" {
		t.Fatalf("unexpected envelope: %v", body)
	}

	analysis := body["analysis"].(map[string]any)
	if analysis["compatibilityScore"] != float64(81) || analysis["profileId"] != "JS1" {
		t.Fatalf("unexpected analysis: %v", analysis)
	}
	if analysis["timestamp"] != "2024-03-15T09:30:00Z" {
		t.Fatalf("unexpected timestamp: %v", analysis["timestamp"])
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
}

func TestAnalyzeProfileUnavailable(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	s := newTestServer(t, nil, nil)
	s.logger = zap.New(core)

	rec, body := do(t, s, http.MethodPost, "/api/ai/analyze-profile",
		`{"profile": {"id": "JS1"}, "userRequirements": {}}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "Failed to analyze profile" {
		t.Fatalf("unexpected error: %v", body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "GOOGLE_API_KEY") {
		t.Fatalf("expected message to name the credential: %v", body)
	}
	if observed.FilterMessage("Failed to analyze profile").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestAnalyzeProfileRejectsInvalidRequirements(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	rec, body := do(t, s, http.MethodPost, "/api/ai/analyze-profile",
		`{"profile": {"id": "JS1"}, "userRequirements": {"ageRange": {"min": 40, "max": 30}}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", rec.Code, body)
	}
}

func TestRecommendMatchesFallback(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	s := newTestServer(t, gen, nil)

	rec, body := do(t, s, http.MethodPost, "/api/ai/recommend-matches",
		`{"profiles": [{"id": "A"}, {"id": "B"}], "userProfile": {"name": "Rahul"}, "userRequirements": {}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	if body["message"] != "Match recommendations generated successfully" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	result := body["recommendations"].(map[string]any)
	rankings := result["rankings"].([]any)
	if len(rankings) != 2 || result["fallbackUsed"] != true {
		t.Fatalf("unexpected recommendations: %v", result)
	}
	for i, entry := range rankings {
		if entry.(map[string]any)["rank"] != float64(i+1) {
			t.Fatalf("ranks must be contiguous: %v", rankings)
		}
	}
}

func TestSetRequirements(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/api/ai/set-requirements",
		`{"requirements": {"location": ["Mumbai"], "verification": true}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	reqs := body["requirements"].(map[string]any)
	if reqs["verification"] != true || len(reqs["location"].([]any)) != 1 {
		t.Fatalf("unexpected requirements: %v", reqs)
	}
	if body["message"] != "Requirements saved successfully" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestListProfilesAppliesQueryFilters(t *testing.T) {
	s := newTestServer(t, nil, &stubSource{payload: samplePayload()})

	rec, body := do(t, s, http.MethodGet, "/api/profiles/profiles?ageRange=25-30", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	data := body["data"].(map[string]any)
	profiles := data["profiles"].([]any)
	if len(profiles) != 1 || profiles[0].(map[string]any)["id"] != "A" {
		t.Fatalf("unexpected profiles: %v", profiles)
	}
	if data["metadata"].(map[string]any)["searchId"] != "S-1" {
		t.Fatalf("unexpected metadata: %v", data["metadata"])
	}
}

func TestListProfilesSourceFailure(t *testing.T) {
	s := newTestServer(t, nil, &stubSource{err: errors.New("connection refused")})

	rec, body := do(t, s, http.MethodGet, "/api/profiles/profiles", "")

	if rec.Code != http.StatusInternalServerError || body["error"] != "Failed to load profile data" {
		t.Fatalf("unexpected response %d: %v", rec.Code, body)
	}
}

func TestListProfilesInvalidQuery(t *testing.T) {
	s := newTestServer(t, nil, &stubSource{payload: samplePayload()})

	rec, _ := do(t, s, http.MethodGet, "/api/profiles/profiles?verified=maybe", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransform(t *testing.T) {
	s := newTestServer(t, nil, nil)

	payload, _ := json.Marshal(map[string]any{"jeevansathiData": samplePayload()})
	rec, body := do(t, s, http.MethodPost, "/api/profiles/transform", string(payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	profiles := body["data"].(map[string]any)["profiles"].([]any)
	if len(profiles) != 2 {
		t.Fatalf("expected both profiles, got %d", len(profiles))
	}
	if body["message"] != "Profiles transformed successfully" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestTransformMalformedProfiles(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/api/profiles/transform",
		`{"jeevansathiData": {"profiles": ["not-an-object"]}}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "Failed to transform profile data" || body["message"] != "Failed to transform profile data" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestCompatibility(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/api/profiles/compatibility", `{
		"profile1": {"age": 28, "education": "MBA", "location": "Mumbai", "caste": "Brahmin", "income": "10L", "motherTongue": "Hindi"},
		"profile2": {"age": 30, "education": "MBA", "location": "Mumbai", "caste": "Brahmin", "income": "8L", "motherTongue": "Hindi"}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	result := body["compatibility"].(map[string]any)
	if result["totalScore"] != float64(100) || result["compatibility"] != "Excellent" {
		t.Fatalf("unexpected result: %v", result)
	}
	if len(result["factors"].([]any)) != 6 {
		t.Fatalf("expected six factors: %v", result["factors"])
	}
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/api/profiles/evaluate", `{
		"profile": {"id": "A", "age": 28, "location": "Mumbai", "isVerified": true},
		"requirements": {"ageRange": {"min": 25, "max": 30}, "location": ["Mumbai"]}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	result := body["evaluation"].(map[string]any)
	if result["compatibilityScore"] != float64(45) || result["recommendation"] != "Consider" {
		t.Fatalf("unexpected evaluation: %v", result)
	}
}

func TestHealthAndMiddleware(t *testing.T) {
	s := newTestServer(t, &stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected request id to be echoed")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected cors header")
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ai"] != "ready" || body["aiModel"] != "stub-model" {
		t.Fatalf("unexpected health: %v", body)
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/api/ai/analyze-profile", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, preflight)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, _ := do(t, s, http.MethodPost, "/api/ai/set-requirements", `{"requirements": {}}`)

	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestCompatibilityAcceptsMixedEncodings(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/api/profiles/compatibility", `{
		"profile1": {"age": "28 yrs", "income": 1000000, "isVerified": "true", "albumCount": "3"},
		"profile2": {"age": 30, "income": "8L", "isVerified": 1}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	factors := body["compatibility"].(map[string]any)["factors"].([]any)
	age := factors[0].(map[string]any)
	income := factors[4].(map[string]any)
	if age["factor"] != "Age" || age["score"] != float64(25) {
		t.Fatalf("expected labelled age to be parsed: %v", age)
	}
	if income["factor"] != "Income" || income["score"] != float64(10) {
		t.Fatalf("expected numeric income to count as stated: %v", income)
	}
}

func TestEvaluateAcceptsMixedEncodings(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, body := do(t, s, http.MethodPost, "/api/profiles/evaluate", `{
		"profile": {"id": 42, "age": "28", "isVerified": "yes"},
		"requirements": {"ageRange": {"min": 25, "max": 30}}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}

	result := body["evaluation"].(map[string]any)
	if result["compatibilityScore"] != float64(30) {
		t.Fatalf("expected age and verification to score, got %v", result)
	}
}

func TestCompatibilityRejectsNonObjectProfile(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, _ := do(t, s, http.MethodPost, "/api/profiles/compatibility", `{"profile1": [1, 2], "profile2": {"age": 30}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
