package access

import "strings"

type Role string

const (
	RoleFree Role = "free"
	RolePro  Role = "pro"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleFree, RolePro:
		return r, true
	}
	return r, false
}

func (r Role) String() string { return string(r) }
