package models

import "time"

// Status is the processing step shown to the user.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusAnalyzing  Status = "analyzing"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// InFlight reports whether a run is currently executing.
func (s Status) InFlight() bool {
	return s == StatusUploading || s == StatusAnalyzing || s == StatusGenerating
}

type ProcessingState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Session is one user's processing state and, once completed, its result.
type Session struct {
	ID        string          `json:"id"`
	State     ProcessingState `json:"state"`
	Result    *DiagramResult  `json:"result,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SessionResponse is the public view of a session.
type SessionResponse struct {
	ID       string `json:"id" example:"9b2f6c1e-8f3a-4f57-9f0e-2d0f1c7a5b11"`
	Status   Status `json:"status" example:"generating"`
	Message  string `json:"message,omitempty"`
	Summary  string `json:"summary,omitempty"`
	FileName string `json:"file_name,omitempty" example:"meeting.drawio"`
}

func NewSessionResponse(s *Session) SessionResponse {
	resp := SessionResponse{
		ID:      s.ID,
		Status:  s.State.Status,
		Message: s.State.Message,
	}
	if s.Result != nil {
		resp.Summary = s.Result.Summary
		resp.FileName = s.Result.FileName
	}
	return resp
}

// StateEvent is pushed to subscribers on every transition.
type StateEvent struct {
	SessionID string `json:"session_id"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
}
