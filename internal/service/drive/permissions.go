package drive

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"iolib/internal/domain"
)

// PermissionService manages the permissions of a single Drive item (file,
// folder or shared drive).
type PermissionService struct {
	perms  domain.DrivePermissions
	logger *slog.Logger
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(perms domain.DrivePermissions, logger *slog.Logger) *PermissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionService{perms: perms, logger: logger}
}

// List returns the permissions currently set on itemID.
func (s *PermissionService) List(ctx context.Context, itemID string) ([]domain.Permission, error) {
	perms, err := s.perms.ListPermissions(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list permissions of %s: %w", itemID, err)
	}
	return perms, nil
}

// Create grants p on itemID and returns the new permission id. An empty type
// means user. User and group grantees are not notified by email.
func (s *PermissionService) Create(ctx context.Context, itemID string, p domain.DesiredPermission) (string, error) {
	p = withDefaults(p)
	if err := validateDesired(p); err != nil {
		return "", err
	}
	return s.create(ctx, itemID, p)
}

// Update changes the role of an existing permission.
func (s *PermissionService) Update(ctx context.Context, itemID, permissionID string, role domain.Role) (string, error) {
	if err := domain.ValidateRole(role); err != nil {
		return "", err
	}
	return s.update(ctx, itemID, permissionID, role)
}

// Delete removes a permission.
func (s *PermissionService) Delete(ctx context.Context, itemID, permissionID string) error {
	if err := s.perms.DeletePermission(ctx, itemID, permissionID); err != nil {
		return fmt.Errorf("delete permission %s of %s: %w", permissionID, itemID, err)
	}
	s.logger.Debug("permission deleted", "item", itemID, "permission", permissionID)
	return nil
}

// Sync reconciles the permissions of itemID with desired.
//
// Every desired entry is validated before the first remote call. Entries are
// matched to current permissions by email: a missing one is created, one with
// a different role is updated, an identical one is left alone. In
// SyncReplace mode the current permissions left unmatched are then deleted,
// except owners. SyncUpdate never deletes.
func (s *PermissionService) Sync(ctx context.Context, itemID string, desired []domain.DesiredPermission, mode domain.SyncMode) error {
	mode, err := domain.ParseSyncMode(string(mode))
	if err != nil {
		return err
	}
	normalized := make([]domain.DesiredPermission, len(desired))
	for i, p := range desired {
		normalized[i] = withDefaults(p)
		if err := validateDesired(normalized[i]); err != nil {
			return err
		}
	}

	current, err := s.List(ctx, itemID)
	if err != nil {
		return err
	}
	byEmail := make(map[string]domain.Permission, len(current))
	var unmatched []domain.Permission // domain and anyone grants carry no email
	for _, p := range current {
		if p.Email == "" {
			unmatched = append(unmatched, p)
			continue
		}
		byEmail[p.Email] = p
	}

	var created, updated, deleted int
	for _, p := range normalized {
		existing, ok := byEmail[p.Email]
		delete(byEmail, p.Email)
		switch {
		case !ok:
			if _, err := s.create(ctx, itemID, p); err != nil {
				return err
			}
			created++
		case existing.Role != p.Role:
			if _, err := s.update(ctx, itemID, existing.ID, p.Role); err != nil {
				return err
			}
			updated++
		}
	}

	if mode == domain.SyncReplace {
		leftover := make([]domain.Permission, 0, len(byEmail))
		for _, p := range byEmail {
			leftover = append(leftover, p)
		}
		sort.Slice(leftover, func(i, j int) bool { return leftover[i].Email < leftover[j].Email })
		leftover = append(leftover, unmatched...)
		for _, p := range leftover {
			if p.Role == domain.RoleOwner {
				continue
			}
			if err := s.Delete(ctx, itemID, p.ID); err != nil {
				return err
			}
			deleted++
		}
	}

	s.logger.Info("permissions synced", "item", itemID, "mode", string(mode),
		"created", created, "updated", updated, "deleted", deleted)
	return nil
}

func (s *PermissionService) create(ctx context.Context, itemID string, p domain.DesiredPermission) (string, error) {
	perm := domain.Permission{Type: p.Type, Email: p.Email, Role: p.Role}
	id, err := s.perms.CreatePermission(ctx, itemID, perm, false)
	if err != nil {
		return "", fmt.Errorf("create permission for %s on %s: %w", p.Email, itemID, err)
	}
	s.logger.Debug("permission created", "item", itemID, "email", p.Email, "role", string(p.Role))
	return id, nil
}

func (s *PermissionService) update(ctx context.Context, itemID, permissionID string, role domain.Role) (string, error) {
	id, err := s.perms.UpdatePermission(ctx, itemID, permissionID, role)
	if err != nil {
		return "", fmt.Errorf("update permission %s on %s: %w", permissionID, itemID, err)
	}
	s.logger.Debug("permission updated", "item", itemID, "permission", permissionID, "role", string(role))
	return id, nil
}

func withDefaults(p domain.DesiredPermission) domain.DesiredPermission {
	if p.Type == "" {
		p.Type = domain.PermissionUser
	}
	return p
}

func validateDesired(p domain.DesiredPermission) error {
	if p.Email == "" {
		return domain.ErrValidation(domain.ErrInvalidKeys, "Permission without email (role %q)", p.Role)
	}
	if err := domain.ValidatePermissionType(p.Type); err != nil {
		return err
	}
	return domain.ValidateRole(p.Role)
}
