package api

import (
	"github.com/phrazzld/studytrack-api/internal/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID       int64  `json:"user_id"`
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiresAt is the access token expiry in RFC 3339.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest is the body of POST /auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse carries a new token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// StartSessionRequest is the body of POST /sessions.
type StartSessionRequest struct {
	CategoryID int64 `json:"category_id" validate:"required,gt=0"`
	SubjectID  int64 `json:"subject_id"  validate:"required,gt=0"`
	TopicID    int64 `json:"topic_id"    validate:"required,gt=0"`
}

// SessionResponse is a session with its pauses and the ID of the pause
// currently open, if any.
type SessionResponse struct {
	*domain.StudySession
	OpenPauseID *int64 `json:"open_pause_id,omitempty"`
}

func newSessionResponse(s *domain.StudySession) SessionResponse {
	resp := SessionResponse{StudySession: s}
	if p := s.OpenPause(); p != nil {
		id := p.ID
		resp.OpenPauseID = &id
	}
	return resp
}

// ResumeResponse reports a successful resume.
type ResumeResponse struct {
	PauseID int64 `json:"pause_id"`
	Resumed bool  `json:"resumed"`
}

// CategoryRequest is the body of category create and update.
type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color"       validate:"omitempty,hexcolor"`
}

// SubjectRequest is the body of subject create and update.
type SubjectRequest struct {
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// TopicRequest is the body of topic create and update.
type TopicRequest struct {
	SubjectID   int64  `json:"subject_id"  validate:"required,gt=0"`
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// GoalRequest is the body of goal create and update. Dates are YYYY-MM-DD.
type GoalRequest struct {
	SubjectID   *int64                `json:"subject_id"  validate:"omitempty,gt=0"`
	TopicID     *int64                `json:"topic_id"    validate:"omitempty,gt=0"`
	Title       string                `json:"title"       validate:"required,max=150"`
	Description string                `json:"description" validate:"max=500"`
	Target      float64               `json:"target"      validate:"gt=0"`
	Current     float64               `json:"current"     validate:"gte=0"`
	Unit        domain.GoalUnit       `json:"unit"        validate:"required"`
	Recurrence  domain.GoalRecurrence `json:"recurrence"`
	StartDate   string                `json:"start_date"  validate:"omitempty,datetime=2006-01-02"`
	EndDate     string                `json:"end_date"    validate:"omitempty,datetime=2006-01-02"`
	Completed   *bool                 `json:"completed"`
}

// GoalProgressRequest is the body of PATCH /goals/{id}/progress.
type GoalProgressRequest struct {
	Current *float64 `json:"current" validate:"required,gte=0"`
}

// CreateNoteRequest is the body of POST /notes.
type CreateNoteRequest struct {
	SessionID int64  `json:"session_id" validate:"required,gt=0"`
	Title     string `json:"title"      validate:"max=150"`
	Content   string `json:"content"    validate:"required,max=20000"`
}

// UpdateNoteRequest is the body of PUT /notes/{id}.
type UpdateNoteRequest struct {
	Title   string `json:"title"   validate:"max=150"`
	Content string `json:"content" validate:"required,max=20000"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
