// Package domain holds typed identifiers shared across services. Typed IDs
// prevent cross-type assignment at compile time; parse helpers enforce
// validity at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "archiva/pkg/domain-errors"
)

// UserID identifies the acting user.
type UserID uuid.UUID

// CommunityID identifies an organizational community.
type CommunityID uuid.UUID

// RequestID identifies a community-inclusion request.
type RequestID uuid.UUID

// RecordID is the external persistent identifier of a record. It is an opaque
// value minted by the PID subsystem, not a UUID.
type RecordID string

const maxRecordIDLen = 64

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be nil")
	}
	return u, nil
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseCommunityID validates and returns a CommunityID.
func ParseCommunityID(s string) (CommunityID, error) {
	u, err := parseUUID(s, "community id")
	if err != nil {
		return CommunityID{}, err
	}
	return CommunityID(u), nil
}

// ParseRequestID validates and returns a RequestID.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request id")
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(u), nil
}

// ParseRecordID validates an external persistent identifier. PIDs are short
// lowercase alphanumeric strings with dash separators (e.g. "a1b2c-3d4e5").
func ParseRecordID(s string) (RecordID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "record id is required")
	}
	if len(s) > maxRecordIDLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "record id too long")
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
		}
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
	}
	return RecordID(s), nil
}

func (u UserID) String() string      { return uuid.UUID(u).String() }
func (c CommunityID) String() string { return uuid.UUID(c).String() }
func (r RequestID) String() string   { return uuid.UUID(r).String() }
func (r RecordID) String() string    { return string(r) }

func (u UserID) IsNil() bool      { return uuid.UUID(u) == uuid.Nil }
func (c CommunityID) IsNil() bool { return uuid.UUID(c) == uuid.Nil }
func (r RequestID) IsNil() bool   { return uuid.UUID(r) == uuid.Nil }
func (r RecordID) IsNil() bool    { return r == "" }

// MarshalText per encoding.TextMarshaler so IDs serialize as their canonical
// string forms in JSON payloads and cache entries.
func (u UserID) MarshalText() ([]byte, error)      { return []byte(u.String()), nil }
func (c CommunityID) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (r RequestID) MarshalText() ([]byte, error)   { return []byte(r.String()), nil }

func (u *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (c *CommunityID) UnmarshalText(b []byte) error {
	parsed, err := ParseCommunityID(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (r *RequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// NewCommunityID mints a random community ID.
func NewCommunityID() CommunityID { return CommunityID(uuid.New()) }

// NewRequestID mints a random request ID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewUserID mints a random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }
