package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// Category groups subjects, e.g. "Concursos" or "Graduação".
type Category struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subject ("matéria") belongs to a category.
type Subject struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Topic ("tópico") belongs to a subject.
type Topic struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SubjectID   int64     `json:"subject_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory trims its inputs and validates the result.
func NewCategory(userID int64, name, description, color string, now time.Time) (*Category, error) {
	c := &Category{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Color:       strings.TrimSpace(color),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the category fields.
func (c *Category) Validate() error {
	if c.UserID <= 0 {
		return NewValidationError("user_id", "is required")
	}
	if err := validateName(c.Name); err != nil {
		return err
	}
	if err := validateDescription(c.Description); err != nil {
		return err
	}
	if c.Color != "" && validate.Var(c.Color, "hexcolor") != nil {
		return NewValidationError("color", "must be a hex color such as #1a2b3c")
	}
	return nil
}

// NewSubject trims its inputs and validates the result.
func NewSubject(userID, categoryID int64, name, description string, now time.Time) (*Subject, error) {
	s := &Subject{
		UserID:      userID,
		CategoryID:  categoryID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the subject fields.
func (s *Subject) Validate() error {
	if s.UserID <= 0 {
		return NewValidationError("user_id", "is required")
	}
	if s.CategoryID <= 0 {
		return NewValidationError("category_id", "is required")
	}
	if err := validateName(s.Name); err != nil {
		return err
	}
	return validateDescription(s.Description)
}

// NewTopic trims its inputs and validates the result.
func NewTopic(userID, subjectID int64, name, description string, now time.Time) (*Topic, error) {
	t := &Topic{
		UserID:      userID,
		SubjectID:   subjectID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the topic fields.
func (t *Topic) Validate() error {
	if t.UserID <= 0 {
		return NewValidationError("user_id", "is required")
	}
	if t.SubjectID <= 0 {
		return NewValidationError("subject_id", "is required")
	}
	if err := validateName(t.Name); err != nil {
		return err
	}
	return validateDescription(t.Description)
}

func validateName(name string) error {
	if name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return NewValidationError("name", "must be at most 100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return NewValidationError("description", "must be at most 500 characters")
	}
	return nil
}
