package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the display name stored in the roles table.
type Role string

const (
	RolePatient Role = "Paciente"
	RoleDoctor  Role = "Doctor"
	RoleAdmin   Role = "Administrador"
)

// Role ids as seeded in the roles table.
const (
	RoleIDPatient = 1
	RoleIDDoctor  = 2
	RoleIDAdmin   = 3
)

// RoleFromID maps a roles.id_rol value to its Role.
func RoleFromID(id int) Role {
	switch id {
	case RoleIDPatient:
		return RolePatient
	case RoleIDDoctor:
		return RoleDoctor
	case RoleIDAdmin:
		return RoleAdmin
	default:
		return ""
	}
}

// ID returns the roles.id_rol value for r, or 0 when r is unknown.
func (r Role) ID() int {
	switch r {
	case RolePatient:
		return RoleIDPatient
	case RoleDoctor:
		return RoleIDDoctor
	case RoleAdmin:
		return RoleIDAdmin
	default:
		return 0
	}
}

// FullName joins first and last names the way listings display them.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseScheduleTime accepts the timestamp shapes sent by browser date pickers.
// Values without an offset are read in the server's local zone.
func ParseScheduleTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range scheduleLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// ParseDate parses an optional YYYY-MM-DD value. Empty input yields nil.
func ParseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(*value), time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *value, err)
	}
	return &t, nil
}
