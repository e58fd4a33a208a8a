package drive

import (
	"fmt"
	"slices"
	"strings"

	"iolib/internal/domain"
)

// PermissionsFromRecords converts generic records into desired permissions.
// Missing values and an empty email are dropped first; the remaining keys must
// be exactly {email, role} or {email, role, type}.
func PermissionsFromRecords(records []map[string]any) ([]domain.DesiredPermission, error) {
	out := make([]domain.DesiredPermission, 0, len(records))
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k, v := range rec {
			if domain.IsMissing(v) || (k == "email" && v == "") {
				continue
			}
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if !validKeys(keys) {
			return nil, domain.ErrValidation(domain.ErrInvalidKeys,
				"Permission with invalid keys: {%s}", strings.Join(keys, ", "))
		}
		p := domain.DesiredPermission{
			Email: fmt.Sprint(rec["email"]),
			Role:  domain.Role(fmt.Sprint(rec["role"])),
		}
		if t := rec["type"]; !domain.IsMissing(t) {
			p.Type = domain.PermissionType(fmt.Sprint(t))
		}
		out = append(out, p)
	}
	return out, nil
}

// PermissionsFromFrame converts the rows of f into desired permissions. Null
// cells count as absent keys.
func PermissionsFromFrame(f *domain.Frame) ([]domain.DesiredPermission, error) {
	return PermissionsFromRecords(f.Records())
}

func validKeys(sorted []string) bool {
	return slices.Equal(sorted, []string{"email", "role"}) ||
		slices.Equal(sorted, []string{"email", "role", "type"})
}
