// internal/ai/generator_test.go
//
// Unit-tests for the provider-fallback chain and prompt assembly.
//
// Run: go test ./internal/ai -v

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// completionServer answers the chat wire; failing ones return 429.
func completionServer(t *testing.T, fail bool, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "rate limited"},
			})
			return
		}
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected message shape: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": text}},
			},
		})
	}))
}

func TestGenerate_PrimarySucceeds(t *testing.T) {
	srv := completionServer(t, false, "# Invoice")
	defer srv.Close()

	g := NewGenerator(NewGroq("k", WithBaseURL(srv.URL)))
	text, provider, err := g.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "# Invoice" || provider != "groq" {
		t.Fatalf("got (%q, %q)", text, provider)
	}
}

func TestGenerate_FallsThroughToBackup(t *testing.T) {
	down := completionServer(t, true, "")
	defer down.Close()
	up := completionServer(t, false, "# Contract")
	defer up.Close()

	g := NewGenerator(
		NewGroq("k", WithBaseURL(down.URL)),
		NewDeepSeek("k", WithBaseURL(up.URL)),
	)
	text, provider, err := g.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "# Contract" || provider != "deepseek" {
		t.Fatalf("fallback not used: (%q, %q)", text, provider)
	}
}

func TestGenerate_AllFail(t *testing.T) {
	down := completionServer(t, true, "")
	defer down.Close()

	g := NewGenerator(
		NewGroq("k", WithBaseURL(down.URL)),
		NewOpenRouter("k", "https://docforge.site", WithBaseURL(down.URL)),
	)
	_, _, err := g.Generate(context.Background(), "sys", "user")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("want ErrAllProvidersFailed, got %v", err)
	}
}

func TestGenerate_NoProviders(t *testing.T) {
	g := NewGenerator(nil, nil)
	if _, _, err := g.Generate(context.Background(), "s", "u"); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("want ErrNoProviders, got %v", err)
	}
}

func TestTypeFor_UnknownFallsBack(t *testing.T) {
	if got := TypeFor("mixtape"); got.Key != "document" {
		t.Fatalf("fallback type = %q", got.Key)
	}
	if got := TypeFor("nda"); got.Title != "Non-Disclosure Agreement" {
		t.Fatalf("nda title = %q", got.Title)
	}
}

func TestBuildSystemPrompt_TargetLanguage(t *testing.T) {
	p := BuildSystemPrompt(TypeFor("invoice"), "de")
	if !strings.Contains(p, "German") {
		t.Fatalf("missing language instruction: %q", p)
	}
	// Unsupported locale falls back to English.
	p = BuildSystemPrompt(TypeFor("invoice"), "tlh")
	if !strings.Contains(p, "English") {
		t.Fatalf("missing fallback language: %q", p)
	}
}

func TestBuildUserPrompt_Deterministic(t *testing.T) {
	fields := map[string]string{"b": "2", "a": "1", "c": "3"}
	first := BuildUserPrompt(TypeFor("quote"), fields)
	for i := 0; i < 5; i++ {
		if BuildUserPrompt(TypeFor("quote"), fields) != first {
			t.Fatal("prompt order is not deterministic")
		}
	}
	if !strings.Contains(first, "- a: 1\n- b: 2\n- c: 3\n") {
		t.Fatalf("fields not sorted: %q", first)
	}
}
