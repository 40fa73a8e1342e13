package models

import (
	"fmt"
	"strings"
)

// Role identifies who is asking for catalog data.
//
// Roles are ordered by privilege for display only. Visibility is not a strict subset relation:
// guests see a different slice of the catalog than choir members, not merely a smaller one.
type Role int

const (
	RoleUnauthenticated Role = iota
	RoleGuest
	RoleChoirMember
	RoleAdmin
	RoleSuperAdmin
)

// Roles lists every role from most to least privileged.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleChoirMember, RoleGuest, RoleUnauthenticated}

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "super_admin"
	case RoleAdmin:
		return "admin"
	case RoleChoirMember:
		return "choir_member"
	case RoleGuest:
		return "guest"
	case RoleUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Label returns a human-readable role name.
func (r Role) Label() string {
	return strings.ReplaceAll(r.String(), "_", " ")
}

// IsGuest reports whether r is limited to the guest view of the catalog.
func (r Role) IsGuest() bool {
	return r == RoleGuest || r == RoleUnauthenticated
}

// CanCurate reports whether r may create, update or delete catalog rows.
func (r Role) CanCurate() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole converts a role name as issued by the identity provider into a [Role].
//
// An empty name means there is no session.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "super_admin", "superadmin":
		return RoleSuperAdmin, nil
	case "admin":
		return RoleAdmin, nil
	case "choir_member", "choir":
		return RoleChoirMember, nil
	case "guest":
		return RoleGuest, nil
	case "", "anonymous", "unauthenticated":
		return RoleUnauthenticated, nil
	default:
		return RoleUnauthenticated, fmt.Errorf("unknown role %q", name)
	}
}

// PrimaryRole picks the most privileged role from a set of granted role names.
//
// Signed-in users without a recognized grant are guests.
func PrimaryRole(granted []string) Role {
	best := RoleGuest
	for _, name := range granted {
		role, err := ParseRole(name)
		if err != nil || role == RoleUnauthenticated {
			continue
		}
		if role > best {
			best = role
		}
	}
	return best
}
