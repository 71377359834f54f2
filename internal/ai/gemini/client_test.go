package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	calls []fakeCall
	resp  *genai.GenerateContentResponse
	err   error
}

type fakeCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, fakeCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorJoinsTextParts(t *testing.T) {
	models := &fakeModels{resp: textResponse("  {\"compatibilityScore\": 80,", "", "\"summary\": \"ok\"}  ")}
	g := newGenerator(models, "gemini-pro", 0.4)

	output, err := g.GenerateContent(context.Background(), "  analyze this profile  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "{\"compatibilityScore\": 80,\n\"summary\": \"ok\"}" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != "gemini-pro" {
		t.Fatalf("unexpected model: %s", call.model)
	}
	if call.config == nil || call.config.Temperature == nil || *call.config.Temperature != float32(0.4) {
		t.Fatalf("expected temperature to be set, got %+v", call.config)
	}
	if got := call.contents[0].Parts[0].Text; got != "analyze this profile" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestGeneratorDoesNotRetry(t *testing.T) {
	models := &fakeModels{err: genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}}
	g := newGenerator(models, "", DefaultTemperature)

	_, err := g.GenerateContent(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "generate content") {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected api error to be preserved, got %v", err)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorEmptyResponse(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{nil, {}}}}
	g := newGenerator(models, "", DefaultTemperature)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestGeneratorValidation(t *testing.T) {
	g := newGenerator(&fakeModels{}, "  ", 5)

	if g.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
	if g.temperature != float32(DefaultTemperature) {
		t.Fatalf("expected out of range temperature to reset, got %v", g.temperature)
	}

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank prompt")
	}

	var missing *Generator
	if _, err := missing.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for nil generator")
	}
	if missing.Model() != "" {
		t.Fatal("expected empty model for nil generator")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "   ", "", DefaultTemperature); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
