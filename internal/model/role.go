package model

// Role is the client-asserted user category driving which affordances render.
type Role string

const (
	RoleAnonymous     Role = ""
	RolePatient       Role = "patient"
	RoleLoggedPatient Role = "loggedPatient"
	RoleDoctor        Role = "doctor"
	RoleAdmin         Role = "admin"
)

// ParseRole maps a stored string to a known role. Unknown values become
// anonymous.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RolePatient, RoleLoggedPatient, RoleDoctor, RoleAdmin:
		return r
	default:
		return RoleAnonymous
	}
}

// RequiresToken reports whether a session with this role must carry a token.
func (r Role) RequiresToken() bool {
	return r == RoleLoggedPatient || r == RoleDoctor || r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleAnonymous {
		return "anonymous"
	}
	return string(r)
}
