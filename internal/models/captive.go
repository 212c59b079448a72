package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle stage of a captive record. "archive" is a list
// alias for deceased|reunited and is never stored on a record.
type Status string

const (
	StatusSearching Status = "searching"
	StatusInformed  Status = "informed"
	StatusDeceased  Status = "deceased"
	StatusReunited  Status = "reunited"
)

// ParseStatus validates a raw status value from the wire or from user input.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusSearching:
		return StatusSearching, nil
	case StatusInformed:
		return StatusInformed, nil
	case StatusDeceased:
		return StatusDeceased, nil
	case StatusReunited:
		return StatusReunited, nil
	default:
		return "", fmt.Errorf("unknown status %q", raw)
	}
}

// Archived reports whether the status belongs to the archive section.
func (s Status) Archived() bool {
	return s == StatusDeceased || s == StatusReunited
}

// SectionPath returns the list path of the section displaying this status.
func (s Status) SectionPath() string {
	if s.Archived() {
		return "/archive"
	}
	switch s {
	case StatusSearching:
		return "/searching"
	case StatusInformed:
		return "/informated"
	default:
		return "/captives"
	}
}

// ArchiveStatusQuery is the pipe-joined status filter the upstream accepts
// for the archive section.
const ArchiveStatusQuery = "deceased|reunited"

// PersonType distinguishes military and civilian records.
type PersonType string

const (
	PersonTypeMilitary PersonType = "military"
	PersonTypeCivilian PersonType = "civilian"
)

// ParsePersonType validates a raw person type value.
func ParsePersonType(raw string) (PersonType, error) {
	switch PersonType(strings.ToLower(strings.TrimSpace(raw))) {
	case PersonTypeMilitary:
		return PersonTypeMilitary, nil
	case PersonTypeCivilian:
		return PersonTypeCivilian, nil
	default:
		return "", fmt.Errorf("unknown person type %q", raw)
	}
}

// Account identifies a registry user, both as the session identity and as
// the owner reference embedded in records.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Date is a calendar date serialised as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// UnmarshalJSON accepts YYYY-MM-DD strings and null.
func (d *Date) UnmarshalJSON(raw []byte) error {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, *s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", *s, err)
	}
	d.Time = parsed
	return nil
}

// MarshalJSON renders YYYY-MM-DD or null for the zero value.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// String renders the wire layout, empty for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Captive represents one person-of-interest record as served by the
// upstream registry. Optional fields stay empty strings; the owner is
// always present.
type Captive struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name,omitempty"`
	Picture       string     `json:"picture,omitempty"`
	PersonType    PersonType `json:"person_type"`
	Brigade       string     `json:"brigade,omitempty"`
	DateOfBirth   *Date      `json:"date_of_birth,omitempty"`
	Status        Status     `json:"status"`
	Region        string     `json:"region,omitempty"`
	Settlement    string     `json:"settlement,omitempty"`
	Circumstances string     `json:"circumstances,omitempty"`
	Appearance    string     `json:"appearance,omitempty"`
	LastUpdate    *time.Time `json:"last_update,omitempty"`
	Owner         Account    `json:"user"`
}

// OwnedBy reports whether the given account owns this record. A nil
// account never owns anything.
func (c *Captive) OwnedBy(account *Account) bool {
	if account == nil {
		return false
	}
	return account.ID == c.Owner.ID
}

// Validate rejects records whose enum fields fall outside the four valid
// statuses and two person types (parse, don't trust).
func (c *Captive) Validate() error {
	if _, err := ParseStatus(string(c.Status)); err != nil {
		return err
	}
	if c.PersonType != "" {
		if _, err := ParsePersonType(string(c.PersonType)); err != nil {
			return err
		}
	}
	return nil
}

// BirthDate returns the date of birth when present.
func (c *Captive) BirthDate() (time.Time, bool) {
	if c.DateOfBirth == nil || c.DateOfBirth.IsZero() {
		return time.Time{}, false
	}
	return c.DateOfBirth.Time, true
}
