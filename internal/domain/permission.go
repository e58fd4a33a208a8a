package domain

// PermissionType is the grantee kind of a Drive permission.
type PermissionType string

// Permission types accepted by Drive.
const (
	PermissionUser   PermissionType = "user"
	PermissionGroup  PermissionType = "group"
	PermissionDomain PermissionType = "domain"
	PermissionAnyone PermissionType = "anyone"
)

// Role is the access level of a Drive permission.
type Role string

// Roles. RoleOwner is only ever read back from the server.
const (
	RoleWriter    Role = "writer"
	RoleCommenter Role = "commenter"
	RoleReader    Role = "reader"
	RoleOwner     Role = "owner"
)

// Permission is a permission record as stored on a Drive item.
type Permission struct {
	ID    string         `json:"id"`
	Type  PermissionType `json:"type"`
	Email string         `json:"email"`
	Role  Role           `json:"role"`
}

// DesiredPermission is one entry of the target permission set. Type defaults
// to user when empty.
type DesiredPermission struct {
	Email string
	Role  Role
	Type  PermissionType
}

// ValidatePermissionType rejects anything outside user|group|domain|anyone.
func ValidatePermissionType(t PermissionType) error {
	switch t {
	case PermissionUser, PermissionGroup, PermissionDomain, PermissionAnyone:
		return nil
	}
	return ErrValidation(ErrInvalidType, "Invalid type: %q", string(t))
}

// ValidateRole rejects anything outside writer|commenter|reader. Owner cannot
// be granted this way.
func ValidateRole(r Role) error {
	switch r {
	case RoleWriter, RoleCommenter, RoleReader:
		return nil
	}
	return ErrValidation(ErrInvalidRole, "Invalid role: %q", string(r))
}

// SyncMode selects whether a permission sync may delete entries.
type SyncMode string

// Sync modes.
const (
	SyncUpdate  SyncMode = "update"
	SyncReplace SyncMode = "replace"
)

// ParseSyncMode validates a mode string.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case SyncUpdate, SyncReplace:
		return SyncMode(s), nil
	}
	return "", ErrValidation(ErrInvalidMode, "Invalid mode: %q", s)
}
