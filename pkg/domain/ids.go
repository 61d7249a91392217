package domain

import (
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "presence/pkg/domain-errors"
)

// Typed identifiers keep users, event sessions and attendance records from
// being mixed up at compile time. Construct them with the Parse functions at
// trust boundaries; the zero value is the nil UUID and is never valid.
type (
	UserID       uuid.UUID
	SessionID    uuid.UUID
	AttendanceID uuid.UUID
	AuditEntryID uuid.UUID
)

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user_id", s)
	return UserID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID("session_id", s)
	return SessionID(u), err
}

func ParseAttendanceID(s string) (AttendanceID, error) {
	u, err := parseUUID("attendance_id", s)
	return AttendanceID(u), err
}

func ParseAuditEntryID(s string) (AuditEntryID, error) {
	u, err := parseUUID("audit_entry_id", s)
	return AuditEntryID(u), err
}

func NewAttendanceID() AttendanceID { return AttendanceID(uuid.New()) }
func NewAuditEntryID() AuditEntryID { return AuditEntryID(uuid.New()) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id SessionID) String() string    { return uuid.UUID(id).String() }
func (id AttendanceID) String() string { return uuid.UUID(id).String() }
func (id AuditEntryID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AttendanceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AuditEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
