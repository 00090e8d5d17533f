package domain

import "github.com/google/uuid"

// Identity is the resolved caller produced by validating a session token.
// A nil *Identity means an anonymous caller on an optional-auth endpoint.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// CanMutate decides whether the caller may mutate a resource owned by
// ownerID. The caller must be present and be the owner; an admin passes only
// when the operation has explicitly opted into the admin override.
// Every mutation path consults this gate before touching any state.
func CanMutate(caller *Identity, ownerID uuid.UUID, adminOverride bool) bool {
	if caller == nil {
		return false
	}
	if caller.UserID == ownerID {
		return true
	}
	return adminOverride && caller.Role == RoleAdmin
}
