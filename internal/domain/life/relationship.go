package life

import "strings"

// RelationshipSlots is the fixed number of relationship slots a run holds
// once birth has populated them.
const RelationshipSlots = 3

type Relationship struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Alive bool   `json:"alive"`
}

// Display renders the slot for narrative prompts, e.g. "Maya (mother)" or
// "Maya (mother, deceased)".
func (r Relationship) Display() string {
	if r.Alive {
		return r.Name + " (" + r.Role + ")"
	}
	return r.Name + " (" + r.Role + ", deceased)"
}

// HasParentRole reports whether the slot's role matches one of the
// configured parent-like roles.
func (r Relationship) HasParentRole(parentRoles []string) bool {
	role := strings.ToLower(r.Role)
	for _, p := range parentRoles {
		if strings.Contains(role, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// SelectParentSlot returns the index of a living parent-role slot, or -1
// when none remains. Earlier slots win ties.
func SelectParentSlot(rels []Relationship, parentRoles []string) int {
	for i, r := range rels {
		if r.Alive && r.HasParentRole(parentRoles) {
			return i
		}
	}
	return -1
}
