package models

import (
	"fmt"
	"io"
)

// MediaFile is an uploaded recording: a name, the declared media type and a
// way to read its bytes.
type MediaFile struct {
	Name     string
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// MediaPayload is the recording as it travels to the model.
type MediaPayload struct {
	Data     string `json:"data"` // base64, standard encoding
	MIMEType string `json:"mime_type"`
}

const ResponseFormatJSON = "json"

type GenerationRequest struct {
	Media             MediaPayload
	SystemInstruction string
	UserInstruction   string
	ResponseFormat    string
	MaxOutputTokens   int32
}

// DiagramDraft is what the model returned, before it is wrapped for draw.io.
// XML holds the bare mxGraphModel markup.
type DiagramDraft struct {
	Summary string `json:"summary"`
	XML     string `json:"xml"`
}

// DiagramResult is the downloadable artifact. XML is a complete mxfile document.
type DiagramResult struct {
	XML      string `json:"xml"`
	Summary  string `json:"summary"`
	FileName string `json:"file_name"`
}

// ConvertRequest represents the JSON body of the synchronous convert endpoint.
type ConvertRequest struct {
	FileBase64 string `json:"file_base64" validate:"required" example:"SUQzBAAAAAAAI1RTU0UAAAAPAAADTGF2ZjU4Ljc2LjEwMAAAAAAA..."`
	FileName   string `json:"file_name" validate:"required" example:"meeting.mp3"`
	MIMEType   string `json:"mime_type" validate:"required" example:"audio/mpeg"`
}

func (r ConvertRequest) Validate() error {
	if r.FileBase64 == "" {
		return fmt.Errorf("file_base64 is empty")
	}
	if r.FileName == "" {
		return fmt.Errorf("file_name is empty")
	}
	if r.MIMEType == "" {
		return fmt.Errorf("mime_type is empty")
	}
	return nil
}

// ConvertResponse is returned by the synchronous convert endpoint.
type ConvertResponse struct {
	Summary  string `json:"summary" example:"Expense reports are approved monthly by the manager."`
	XML      string `json:"xml"`
	FileName string `json:"file_name" example:"meeting.drawio"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Kind    string `json:"kind,omitempty" example:"invalid_input"`
	Message string `json:"message"`
}
