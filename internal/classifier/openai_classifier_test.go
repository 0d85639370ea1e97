package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/models"
)

// fakeChatServer serves an OpenAI-compatible chat completion endpoint that
// always replies with content.
func fakeChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	content := `{"candidates": [{"label": "POSITIVE", "score": 0.98}, {"label": "NEGATIVE", "score": 0.02}]}`
	srv := fakeChatServer(t, content)
	defer srv.Close()

	clf := NewOpenAIClassifier("test-key", srv.URL, "", 256, 0.0, zap.NewNop())

	candidates, err := clf.Classify(context.Background(), "I love this product")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Classify() returned %d candidates, want 2", len(candidates))
	}
	if candidates[0].Label != models.LabelPositive || candidates[0].Score != 0.98 {
		t.Errorf("top candidate = %+v, want POSITIVE 0.98", candidates[0])
	}
}

func TestOpenAIClassifier_MalformedResponse(t *testing.T) {
	srv := fakeChatServer(t, "I think it's positive, maybe?")
	defer srv.Close()

	clf := NewOpenAIClassifier("test-key", srv.URL, "", 256, 0.0, zap.NewNop())

	if _, err := clf.Classify(context.Background(), "some text"); err == nil {
		t.Error("Classify() should error on a non-JSON response")
	}
}

func TestOpenAIClassifier_EmptyCandidates(t *testing.T) {
	srv := fakeChatServer(t, `{"candidates": []}`)
	defer srv.Close()

	clf := NewOpenAIClassifier("test-key", srv.URL, "", 256, 0.0, zap.NewNop())

	if _, err := clf.Classify(context.Background(), "some text"); err == nil {
		t.Error("Classify() should error when the response has no candidates")
	}
}

func TestOpenAIClassifier_EndpointDown(t *testing.T) {
	srv := fakeChatServer(t, "{}")
	srv.Close() // endpoint is already gone

	clf := NewOpenAIClassifier("test-key", srv.URL, "", 256, 0.0, zap.NewNop())

	if err := clf.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail for an unreachable endpoint")
	}
	if _, err := clf.Classify(context.Background(), "some text"); err == nil {
		t.Error("Classify() should fail for an unreachable endpoint")
	}
}
