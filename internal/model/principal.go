package model

import "github.com/google/uuid"

type Role string

const (
	RoleCitizen     Role = "citizen"
	RoleAuthority   Role = "authority"
	RoleFieldWorker Role = "fieldworker"
)

// Principal is the authenticated caller. Role is explicit here rather than
// being looked up from ambient storage inside each component; Department is
// set for authority and field-worker principals only.
type Principal struct {
	UserID     uuid.UUID
	Role       Role
	Department string
}

func (p Principal) IsCitizen() bool {
	return p.Role == RoleCitizen
}

func (p Principal) IsAuthority() bool {
	return p.Role == RoleAuthority
}

func (p Principal) IsFieldWorker() bool {
	return p.Role == RoleFieldWorker
}

// IsAuthenticated reports whether the principal carries a real user
// identity. Anonymous browsing yields a zero principal.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != uuid.Nil
}
