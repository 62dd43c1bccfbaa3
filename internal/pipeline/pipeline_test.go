package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kdduha/audioflow/internal/diagram"
	"github.com/kdduha/audioflow/internal/generation"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/kdduha/audioflow/internal/prompt"
	"github.com/rs/zerolog"
)

const validResponse = `{"summary":"Expense reports are approved by the manager.","xml":"<mxGraphModel><root><mxCell id=\"0\" /><mxCell id=\"1\" parent=\"0\" /></root></mxGraphModel>"}`

type fakeGenerator struct {
	mu    sync.Mutex
	calls []models.GenerationRequest
	text  string
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, req models.GenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.text, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recorder struct {
	statuses []models.Status
}

func (r *recorder) notify(s models.Status) {
	r.statuses = append(r.statuses, s)
}

func newTestPipeline(gen generation.Generator, opts Options) *Pipeline {
	if opts.MaxOutputTokens == 0 {
		opts.MaxOutputTokens = 8192
	}
	return New(gen, opts, zerolog.Nop())
}

func TestRunEndToEnd(t *testing.T) {
	gen := &fakeGenerator{text: validResponse}
	p := newTestPipeline(gen, Options{Packager: &diagram.Packager{
		NewID: func() string { return "fixed-id" },
		Now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Agent: diagram.DefaultAgent,
	}})
	rec := &recorder{}

	content := []byte("ID3 fake mp3 bytes")
	result, err := p.Run(context.Background(), media.FromBytes("meeting.mp3", "audio/mpeg", content), rec.notify)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.FileName != "meeting.drawio" {
		t.Errorf("FileName = %v, want %v", result.FileName, "meeting.drawio")
	}
	if result.Summary != "Expense reports are approved by the manager." {
		t.Errorf("Summary = %v", result.Summary)
	}
	if strings.Count(result.XML, "<mxfile") != 1 || strings.Count(result.XML, "<diagram ") != 1 {
		t.Errorf("XML is not a single-diagram mxfile:\n%s", result.XML)
	}
	if !strings.Contains(result.XML, `id="fixed-id"`) {
		t.Errorf("XML does not carry the injected id:\n%s", result.XML)
	}
	if err := diagram.Check(result.XML); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	want := []models.Status{models.StatusUploading, models.StatusAnalyzing, models.StatusGenerating}
	if fmt.Sprint(rec.statuses) != fmt.Sprint(want) {
		t.Errorf("statuses = %v, want %v", rec.statuses, want)
	}

	if gen.callCount() != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.callCount())
	}
	req := gen.calls[0]
	contract := prompt.For(prompt.LanguageEnglish)
	if req.Media.MIMEType != "audio/mpeg" {
		t.Errorf("MIMEType = %v, want %v", req.Media.MIMEType, "audio/mpeg")
	}
	decoded, err := media.Decode(req.Media)
	if err != nil || string(decoded) != string(content) {
		t.Errorf("payload does not decode to the uploaded bytes: %q, %v", decoded, err)
	}
	if req.SystemInstruction != contract.System || req.UserInstruction != contract.User {
		t.Error("request does not carry the English instructions")
	}
	if req.ResponseFormat != models.ResponseFormatJSON {
		t.Errorf("ResponseFormat = %v, want %v", req.ResponseFormat, models.ResponseFormatJSON)
	}
	if req.MaxOutputTokens != 8192 {
		t.Errorf("MaxOutputTokens = %v, want 8192", req.MaxOutputTokens)
	}
}

func TestRunRejectsUnsupportedTypes(t *testing.T) {
	for _, mimeType := range []string{"application/pdf", "text/plain", "image/png", ""} {
		t.Run(mimeType, func(t *testing.T) {
			gen := &fakeGenerator{text: validResponse}
			p := newTestPipeline(gen, Options{})
			rec := &recorder{}

			result, err := p.Run(context.Background(), media.FromBytes("notes.pdf", mimeType, []byte("x")), rec.notify)
			if result != nil {
				t.Errorf("Run() result = %v, want nil", result)
			}
			if KindOf(err) != KindInvalidInput {
				t.Errorf("KindOf() = %v, want %v", KindOf(err), KindInvalidInput)
			}
			if gen.callCount() != 0 {
				t.Errorf("generator calls = %d, want 0", gen.callCount())
			}
			if len(rec.statuses) != 0 {
				t.Errorf("statuses = %v, want none", rec.statuses)
			}
		})
	}
}

func TestRunErrorKinds(t *testing.T) {
	broken := models.MediaFile{
		Name:     "meeting.wav",
		MIMEType: "audio/wav",
		Open:     func() (io.ReadCloser, error) { return nil, errors.New("disk gone") },
	}
	good := media.FromBytes("meeting.wav", "audio/wav", []byte("RIFF"))

	tests := []struct {
		name      string
		file      models.MediaFile
		gen       *fakeGenerator
		wantKind  Kind
		wantStage Stage
		wantCalls int
	}{
		{
			name:      "unreadable file",
			file:      broken,
			gen:       &fakeGenerator{text: validResponse},
			wantKind:  KindEncoding,
			wantStage: StageEncode,
		},
		{
			name:      "model unavailable",
			file:      good,
			gen:       &fakeGenerator{err: fmt.Errorf("%w: 429 quota", generation.ErrModelUnavailable)},
			wantKind:  KindModelUnavailable,
			wantStage: StageGenerate,
			wantCalls: 1,
		},
		{
			name:      "unknown generator error",
			file:      good,
			gen:       &fakeGenerator{err: errors.New("boom")},
			wantKind:  KindModelUnavailable,
			wantStage: StageGenerate,
			wantCalls: 1,
		},
		{
			name:      "empty response",
			file:      good,
			gen:       &fakeGenerator{err: generation.ErrEmptyResponse},
			wantKind:  KindEmptyResponse,
			wantStage: StageGenerate,
			wantCalls: 1,
		},
		{
			name:      "prose response",
			file:      good,
			gen:       &fakeGenerator{text: "Sorry, I cannot help with that."},
			wantKind:  KindUnparseableResponse,
			wantStage: StageRecover,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(tt.gen, Options{})

			result, err := p.Run(context.Background(), tt.file, nil)
			if result != nil {
				t.Errorf("Run() result = %v, want nil", result)
			}

			var pe *Error
			if !errors.As(err, &pe) {
				t.Fatalf("Run() error = %v, want *Error", err)
			}
			if pe.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.wantKind)
			}
			if pe.Stage != tt.wantStage {
				t.Errorf("Stage = %v, want %v", pe.Stage, tt.wantStage)
			}
			if pe.Message == "" || MessageOf(err) != pe.Message {
				t.Errorf("Message = %q, MessageOf() = %q", pe.Message, MessageOf(err))
			}
			if tt.gen.callCount() != tt.wantCalls {
				t.Errorf("generator calls = %d, want %d", tt.gen.callCount(), tt.wantCalls)
			}
		})
	}
}

func TestRunMissingSummaryUsesPlaceholder(t *testing.T) {
	gen := &fakeGenerator{text: `{"xml":"<mxGraphModel/>"}`}
	p := newTestPipeline(gen, Options{Language: prompt.LanguageJapanese})

	result, err := p.Run(context.Background(), media.FromBytes("a.m4a", "audio/mp4", []byte("x")), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := prompt.For(prompt.LanguageJapanese).MissingSummary; result.Summary != want {
		t.Errorf("Summary = %v, want %v", result.Summary, want)
	}
	if gen.calls[0].SystemInstruction != prompt.For(prompt.LanguageJapanese).System {
		t.Error("request does not carry the Japanese instructions")
	}
}

func TestRunMalformedMarkupIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"summary\":\"S\",\"xml\":\"<mxGraphModel><root>\"}\n```"}
	p := newTestPipeline(gen, Options{})

	result, err := p.Run(context.Background(), media.FromBytes("demo.mp4", "video/mp4", []byte("x")), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.FileName != "demo.drawio" {
		t.Errorf("FileName = %v, want %v", result.FileName, "demo.drawio")
	}
	if !strings.Contains(result.XML, "<mxGraphModel><root>") {
		t.Errorf("XML lost the model markup:\n%s", result.XML)
	}
}

func TestRunPacingHonoursCancellation(t *testing.T) {
	gen := &fakeGenerator{text: validResponse}
	p := newTestPipeline(gen, Options{Pacing: time.Hour})
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Run(ctx, media.FromBytes("a.mp3", "audio/mpeg", []byte("x")), rec.notify)
	if KindOf(err) != KindCanceled {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindCanceled)
	}
	if gen.callCount() != 0 {
		t.Errorf("generator calls = %d, want 0", gen.callCount())
	}
	if last := rec.statuses[len(rec.statuses)-1]; last != models.StatusAnalyzing {
		t.Errorf("last status = %v, want %v", last, models.StatusAnalyzing)
	}
}

func TestRunPacingDelaysGeneration(t *testing.T) {
	gen := &fakeGenerator{text: validResponse}
	p := newTestPipeline(gen, Options{Pacing: 20 * time.Millisecond})

	start := time.Now()
	if _, err := p.Run(context.Background(), media.FromBytes("a.mp3", "audio/mpeg", []byte("x")), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Run() took %v, want at least the pacing delay", elapsed)
	}
}

func TestMessageOfForeignError(t *testing.T) {
	if got := MessageOf(errors.New("x")); got != genericMessage {
		t.Errorf("MessageOf() = %v, want %v", got, genericMessage)
	}
	if got := KindOf(errors.New("x")); got != "" {
		t.Errorf("KindOf() = %v, want empty", got)
	}
}

func TestCheckInput(t *testing.T) {
	tests := []struct {
		mimeType string
		wantErr  bool
	}{
		{"audio/mpeg", false},
		{"VIDEO/MP4", false},
		{"audio/webm;codecs=opus", false},
		{"application/octet-stream", true},
		{"", true},
	}

	for _, tt := range tests {
		err := CheckInput(models.MediaFile{Name: "f", MIMEType: tt.mimeType})
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckInput(%q) error = %v, wantErr %v", tt.mimeType, err, tt.wantErr)
		}
		if err != nil && KindOf(err) != KindInvalidInput {
			t.Errorf("CheckInput(%q) kind = %v, want %v", tt.mimeType, KindOf(err), KindInvalidInput)
		}
	}
}

func TestRunResponses(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		response    string
		wantFile    string
		wantSummary string
		wantNested  string
	}{
		{
			name:        "monthly approval",
			fileName:    "meeting.mp3",
			response:    `{"summary":"Process approved monthly.","xml":"<root/>"}`,
			wantFile:    "meeting.drawio",
			wantSummary: "Process approved monthly.",
			wantNested:  "<diagram name=\"GeneratedFlow\" id=\"fixed-id\">\n    <root/>\n  </diagram>",
		},
		{
			name:        "fenced answer with prolog",
			fileName:    "weekly.sync.m4a",
			response:    "```json\n{\"summary\":\"S\",\"xml\":\"<?xml version=\\\"1.0\\\"?>\\n<mxGraphModel/>\"}\n```",
			wantFile:    "weekly.sync.drawio",
			wantSummary: "S",
			wantNested:  "<diagram name=\"GeneratedFlow\" id=\"fixed-id\">\n    <mxGraphModel/>\n  </diagram>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(&fakeGenerator{text: tt.response}, Options{Packager: &diagram.Packager{
				NewID: func() string { return "fixed-id" },
				Now:   time.Now,
				Agent: diagram.DefaultAgent,
			}})

			result, err := p.Run(context.Background(), media.FromBytes(tt.fileName, "audio/mpeg", []byte("x")), nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if result.FileName != tt.wantFile {
				t.Errorf("FileName = %v, want %v", result.FileName, tt.wantFile)
			}
			if result.Summary != tt.wantSummary {
				t.Errorf("Summary = %v, want %v", result.Summary, tt.wantSummary)
			}
			if !strings.Contains(result.XML, tt.wantNested) {
				t.Errorf("XML =\n%s\nwant it to contain\n%s", result.XML, tt.wantNested)
			}
			if strings.Count(result.XML, "<?xml") != 1 {
				t.Errorf("XML has %d prologs, want 1", strings.Count(result.XML, "<?xml"))
			}
		})
	}
}
