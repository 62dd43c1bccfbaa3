package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
)

const (
	formField     = "file"
	formMemoryCap = 32 << 20
)

var errNoFile = errors.New(`multipart field "file" is missing`)

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload loads the "file" part fully into memory; the request body is
// gone once the handler returns and runs may outlive it.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (models.MediaFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(formMemoryCap); err != nil {
		return models.MediaFile{}, fmt.Errorf("parse multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile(formField)
	if err != nil {
		return models.MediaFile{}, errNoFile
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return models.MediaFile{}, fmt.Errorf("read upload: %w", err)
	}

	return media.FromBytes(header.Filename, declaredType(header.Header.Get("Content-Type"), header.Filename), data), nil
}

// declaredType trusts the client's type unless it is missing or generic.
func declaredType(contentType, name string) string {
	ct := strings.TrimSpace(contentType)
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		if guessed := media.TypeByExtension(name); guessed != "" {
			return guessed
		}
	}
	return ct
}

func uploadStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
