package generation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kdduha/audioflow/internal/config"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/rs/zerolog"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGemini(context.Background(), config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	return g
}

func testRequest(t *testing.T) models.GenerationRequest {
	t.Helper()
	payload, err := media.Encode(context.Background(), media.FromBytes("meeting.mp3", "audio/mpeg", []byte("fake-audio")))
	if err != nil {
		t.Fatal(err)
	}
	return models.GenerationRequest{
		Media:             payload,
		SystemInstruction: "draw swimlanes",
		UserInstruction:   "analyse the recording",
		ResponseFormat:    models.ResponseFormatJSON,
		MaxOutputTokens:   8192,
	}
}

func TestGeminiGenerate(t *testing.T) {
	var body string
	calls := 0
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("path = %s, want generateContent on gemini-test", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"summary\":\"S\","},{"text":"\"xml\":\"X\"}"}]},"finishReason":"STOP"}]}`)
	})

	text, err := g.Generate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != `{"summary":"S","xml":"X"}` {
		t.Errorf("Generate() = %q", text)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	for _, want := range []string{
		"audio/mpeg",
		"ZmFrZS1hdWRpbw==", // base64("fake-audio")
		"analyse the recording",
		"draw swimlanes",
		"application/json",
		"8192",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("request body misses %q: %s", want, body)
		}
	}
}

func TestGeminiGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "quota exhausted",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`,
			wantErr: ErrModelUnavailable,
		},
		{
			name:    "bad key",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"code":401,"message":"invalid key","status":"UNAUTHENTICATED"}}`,
			wantErr: ErrModelUnavailable,
		},
		{
			name:    "no candidates",
			status:  http.StatusOK,
			body:    `{"candidates":[]}`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "blank text",
			status:  http.StatusOK,
			body:    `{"candidates":[{"content":{"role":"model","parts":[{"text":"  "}]}}]}`,
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := g.Generate(context.Background(), testRequest(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildGeminiReq(t *testing.T) {
	req := testRequest(t)
	contents, cfg, err := buildGeminiReq(req)
	if err != nil {
		t.Fatalf("buildGeminiReq() error = %v", err)
	}

	if len(contents) != 1 || len(contents[0].Parts) != 2 {
		t.Fatalf("contents = %+v, want one content with two parts", contents)
	}
	inline := contents[0].Parts[0].InlineData
	if inline == nil || inline.MIMEType != "audio/mpeg" || string(inline.Data) != "fake-audio" {
		t.Errorf("inline part = %+v", inline)
	}
	if contents[0].Parts[1].Text != "analyse the recording" {
		t.Errorf("text part = %q", contents[0].Parts[1].Text)
	}
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q", cfg.ResponseMIMEType)
	}
	if cfg.MaxOutputTokens != 8192 {
		t.Errorf("MaxOutputTokens = %d", cfg.MaxOutputTokens)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "draw swimlanes" {
		t.Errorf("SystemInstruction = %+v", cfg.SystemInstruction)
	}

	req.Media.Data = "%%%"
	if _, _, err := buildGeminiReq(req); !errors.Is(err, media.ErrEncoding) {
		t.Errorf("buildGeminiReq() error = %v, want media.ErrEncoding", err)
	}
}
