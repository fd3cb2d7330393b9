package model

import (
	"fmt"
	"strings"
)

// Role defines the kind of work a resource can absorb.
type Role int

const (
	RoleDev Role = iota
	RoleQA
	RoleLead
	RoleOps
	RoleDesign
	// RoleBacklog marks effort that could not be placed on anyone.
	RoleBacklog
)

// StaffRoles lists the roles a roster resource can hold, in canonical order.
var StaffRoles = []Role{RoleDev, RoleQA, RoleLead, RoleOps, RoleDesign}

// Unassigned is the owner recorded for blocks whose role has no candidates.
const Unassigned = "unassigned"

// String returns a human-readable representation of the role.
func (r Role) String() string {
	switch r {
	case RoleDev:
		return "Dev"
	case RoleQA:
		return "QA"
	case RoleLead:
		return "Lead"
	case RoleOps:
		return "Ops"
	case RoleDesign:
		return "Design"
	case RoleBacklog:
		return "backlog"
	default:
		return "unknown"
	}
}

// ParseRole converts a role name into a Role. Matching is case-insensitive
// and accepts a few common aliases.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "developer", "development":
		return RoleDev, true
	case "qa", "tester", "test":
		return RoleQA, true
	case "lead", "tech lead", "techlead":
		return RoleLead, true
	case "ops", "devops", "operations":
		return RoleOps, true
	case "design", "designer":
		return RoleDesign, true
	case "backlog":
		return RoleBacklog, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if r < RoleDev || r > RoleBacklog {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	v, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("unknown role %q", string(b))
	}
	*r = v
	return nil
}
