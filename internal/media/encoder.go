// Package media turns uploaded recordings into payloads the model accepts.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/base64x"
	"github.com/kdduha/audioflow/internal/models"
)

var ErrEncoding = errors.New("media file could not be read")

const (
	KindAudio = "audio"
	KindVideo = "video"
)

// recordingExts covers containers mime.TypeByExtension does not know on
// minimal systems.
var recordingExts = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
	".opus": "audio/opus",
	".weba": "audio/webm",
	".webm": "video/webm",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mpeg": "video/mpeg",
	".3gp":  "video/3gpp",
}

// Kind returns "audio" or "video" for supported declared types and "" otherwise.
func Kind(mimeType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return KindAudio
	case strings.HasPrefix(mediaType, "video/"):
		return KindVideo
	default:
		return ""
	}
}

// IsSupported reports whether the declared type is audio/* or video/*.
func IsSupported(mimeType string) bool {
	return Kind(mimeType) != ""
}

// TypeByExtension guesses the media type of a file that came without one.
func TypeByExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := recordingExts[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if parsed, _, err := mime.ParseMediaType(t); err == nil {
			return parsed
		}
		return t
	}
	return ""
}

// Encode reads the whole file and returns it base64 encoded together with its
// declared media type. The type itself is not checked here.
func Encode(ctx context.Context, file models.MediaFile) (models.MediaPayload, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaPayload{}, err
	}
	if file.Open == nil {
		return models.MediaPayload{}, fmt.Errorf("%w: no content for %q", ErrEncoding, file.Name)
	}

	rc, err := file.Open()
	if err != nil {
		return models.MediaPayload{}, fmt.Errorf("%w: open %q: %v", ErrEncoding, file.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return models.MediaPayload{}, fmt.Errorf("%w: read %q: %v", ErrEncoding, file.Name, err)
	}

	return models.MediaPayload{
		Data:     base64x.StdEncoding.EncodeToString(raw),
		MIMEType: file.MIMEType,
	}, nil
}

// Decode returns the raw bytes of a payload.
func Decode(p models.MediaPayload) ([]byte, error) {
	raw, err := base64x.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrEncoding, err)
	}
	return raw, nil
}

// FromBytes wraps in-memory content as a MediaFile.
func FromBytes(name, mimeType string, data []byte) models.MediaFile {
	return models.MediaFile{
		Name:     name,
		MIMEType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromPath describes a file on disk; the media type is guessed from the
// extension.
func FromPath(path string) models.MediaFile {
	return models.MediaFile{
		Name:     filepath.Base(path),
		MIMEType: TypeByExtension(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}
