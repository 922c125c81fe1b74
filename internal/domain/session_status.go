package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// SessionStatus is the lifecycle state of a study session.
type SessionStatus uint8

// Session states. The zero value is deliberately invalid.
const (
	_ SessionStatus = iota
	SessionInProgress
	SessionPaused
	SessionFinished
)

// ErrInvalidSessionStatus is returned when a status string has no mapping.
var ErrInvalidSessionStatus = NewValidationError("status", "invalid session status")

// Persisted and wire representations. Both directions are spelled out so a
// typo in one cannot silently disagree with the other; the tests check they
// are inverses.
var (
	sessionStatusNames = map[SessionStatus]string{
		SessionInProgress: "em_andamento",
		SessionPaused:     "pausada",
		SessionFinished:   "finalizada",
	}
	sessionStatusValues = map[string]SessionStatus{
		"em_andamento": SessionInProgress,
		"pausada":      SessionPaused,
		"finalizada":   SessionFinished,
	}
)

// ParseSessionStatus maps a persisted status string to a SessionStatus.
func ParseSessionStatus(s string) (SessionStatus, error) {
	status, ok := sessionStatusValues[s]
	if !ok {
		return 0, ErrInvalidSessionStatus
	}
	return status, nil
}

// Valid reports whether s is one of the defined states.
func (s SessionStatus) Valid() bool {
	_, ok := sessionStatusNames[s]
	return ok
}

func (s SessionStatus) String() string {
	if name, ok := sessionStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SessionStatus(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s SessionStatus) MarshalText() ([]byte, error) {
	name, ok := sessionStatusNames[s]
	if !ok {
		return nil, ErrInvalidSessionStatus
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SessionStatus) UnmarshalText(text []byte) error {
	status, err := ParseSessionStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Value implements driver.Valuer.
func (s SessionStatus) Value() (driver.Value, error) {
	name, ok := sessionStatusNames[s]
	if !ok {
		return nil, ErrInvalidSessionStatus
	}
	return name, nil
}

// Scan implements sql.Scanner.
func (s *SessionStatus) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	case nil:
		return errors.New("session status: NULL value")
	default:
		return fmt.Errorf("session status: unsupported type %T", src)
	}
}
