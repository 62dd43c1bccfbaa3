package media

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kdduha/audioflow/internal/models"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"audio/mpeg", true},
		{"audio/webm;codecs=opus", true},
		{"VIDEO/MP4", true},
		{"video/quicktime", true},
		{"image/png", false},
		{"application/pdf", false},
		{"audiox/mpeg", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := IsSupported(tt.mimeType); got != tt.want {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestTypeByExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"meeting.mp3", "audio/mpeg"},
		{"MEETING.M4A", "audio/mp4"},
		{"standup.webm", "video/webm"},
		{"review.mov", "video/quicktime"},
		{"notes", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeByExtension(tt.name); got != tt.want {
				t.Errorf("TypeByExtension(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	data := []byte("ID3\x04\x00fake-mp3-frames")
	payload, err := Encode(context.Background(), FromBytes("meeting.mp3", "audio/mpeg", data))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if payload.MIMEType != "audio/mpeg" {
		t.Errorf("MIMEType = %q, want %q", payload.MIMEType, "audio/mpeg")
	}
	if want := base64.StdEncoding.EncodeToString(data); payload.Data != want {
		t.Errorf("Data = %q, want %q", payload.Data, want)
	}

	raw, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(raw) != string(data) {
		t.Errorf("Decode() = %q, want %q", raw, data)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		file models.MediaFile
	}{
		{
			name: "open fails",
			file: models.MediaFile{Name: "a.mp3", MIMEType: "audio/mpeg", Open: func() (io.ReadCloser, error) {
				return nil, os.ErrPermission
			}},
		},
		{
			name: "read fails",
			file: models.MediaFile{Name: "a.mp3", MIMEType: "audio/mpeg", Open: func() (io.ReadCloser, error) {
				return io.NopCloser(failingReader{}), nil
			}},
		},
		{
			name: "no accessor",
			file: models.MediaFile{Name: "a.mp3", MIMEType: "audio/mpeg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(context.Background(), tt.file)
			if !errors.Is(err, ErrEncoding) {
				t.Errorf("Encode() error = %v, want ErrEncoding", err)
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekly.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	file := FromPath(path)
	if file.Name != "weekly.wav" || file.MIMEType != "audio/wav" {
		t.Fatalf("FromPath() = %+v", file)
	}

	payload, err := Encode(context.Background(), file)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if payload.Data != base64.StdEncoding.EncodeToString([]byte("RIFF")) {
		t.Errorf("Data = %q", payload.Data)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode(models.MediaPayload{Data: "!!not base64!!"}); !errors.Is(err, ErrEncoding) {
		t.Errorf("Decode() error = %v, want ErrEncoding", err)
	}
}
