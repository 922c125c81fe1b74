package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNoteTitleLength   = 150
	maxNoteContentLength = 20000
)

// Note is free text attached to a study session.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SessionID int64     `json:"session_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteHistory is a snapshot of a note's previous title and content, taken
// just before an edit overwrote them.
type NoteHistory struct {
	ID       int64     `json:"id"`
	NoteID   int64     `json:"note_id"`
	UserID   int64     `json:"user_id"`
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content"`
	EditedAt time.Time `json:"edited_at"`
}

// NewNote trims and validates a note for the given session.
func NewNote(userID, sessionID int64, title, content string, now time.Time) (*Note, error) {
	n := &Note{
		UserID:    userID,
		SessionID: sessionID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks the note fields.
func (n *Note) Validate() error {
	switch {
	case n.UserID <= 0:
		return NewValidationError("user_id", "is required")
	case n.SessionID <= 0:
		return NewValidationError("session_id", "is required")
	case utf8.RuneCountInString(n.Title) > maxNoteTitleLength:
		return NewValidationError("title", "must be at most 150 characters")
	case strings.TrimSpace(n.Content) == "":
		return NewValidationError("content", "cannot be empty")
	case utf8.RuneCountInString(n.Content) > maxNoteContentLength:
		return NewValidationError("content", "must be at most 20000 characters")
	}
	return nil
}

// Edit applies new title and content. It returns the snapshot to append to
// the history, or nil when nothing changed.
func (n *Note) Edit(title, content string, now time.Time) (*NoteHistory, error) {
	title = strings.TrimSpace(title)
	if title == n.Title && content == n.Content {
		return nil, nil
	}

	snapshot := &NoteHistory{
		NoteID:   n.ID,
		UserID:   n.UserID,
		Title:    n.Title,
		Content:  n.Content,
		EditedAt: now.UTC(),
	}

	edited := *n
	edited.Title = title
	edited.Content = content
	edited.UpdatedAt = now.UTC()
	if err := edited.Validate(); err != nil {
		return nil, err
	}
	*n = edited
	return snapshot, nil
}
