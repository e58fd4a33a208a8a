package gcp

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"

	"iolib/internal/domain"
)

var (
	_ domain.DriveFiles       = (*Drive)(nil)
	_ domain.DrivePermissions = (*Drive)(nil)
)

const (
	fileFields       = "nextPageToken, files(kind, id, name, mimeType, parents)"
	permissionFields = "nextPageToken, permissions(id, type, role, emailAddress)"
)

// Drive implements domain.DriveFiles and domain.DrivePermissions. File
// listing runs under the read-only metadata scope; everything else needs the
// full drive scope.
type Drive struct {
	read  *drive.Service
	write *drive.Service
}

// NewDrive creates both Drive clients.
func NewDrive(ctx context.Context, creds Credentials) (*Drive, error) {
	read, err := drive.NewService(ctx, creds.ClientOptions(drive.DriveMetadataReadonlyScope)...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	write, err := drive.NewService(ctx, creds.ClientOptions(drive.DriveScope)...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Drive{read: read, write: write}, nil
}

// ListFiles runs a files.list search. A non-empty driveID restricts the
// search to that shared drive.
func (d *Drive) ListFiles(ctx context.Context, query, driveID string) ([]domain.DriveFile, error) {
	call := d.read.Files.List().Fields(fileFields)
	if query != "" {
		call = call.Q(query)
	}
	if driveID != "" {
		call = call.Corpora("drive").
			DriveId(driveID).
			IncludeItemsFromAllDrives(true).
			SupportsAllDrives(true)
	}
	var out []domain.DriveFile
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			out = append(out, domain.DriveFile{
				Kind:     f.Kind,
				ID:       f.Id,
				Name:     f.Name,
				MIMEType: f.MimeType,
				Parents:  f.Parents,
			})
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// CreateFile creates an empty file and returns its id.
func (d *Drive) CreateFile(ctx context.Context, f domain.DriveFile) (string, error) {
	created, err := d.write.Files.Create(&drive.File{
		Name:     f.Name,
		MimeType: f.MIMEType,
		Parents:  f.Parents,
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", translate(err)
	}
	return created.Id, nil
}

// DeleteFile permanently deletes a file.
func (d *Drive) DeleteFile(ctx context.Context, fileID string) error {
	return translate(d.write.Files.Delete(fileID).SupportsAllDrives(true).Context(ctx).Do())
}

// ListPermissions returns every permission of an item.
func (d *Drive) ListPermissions(ctx context.Context, itemID string) ([]domain.Permission, error) {
	var out []domain.Permission
	err := d.write.Permissions.List(itemID).
		Fields(permissionFields).
		SupportsAllDrives(true).
		Pages(ctx, func(page *drive.PermissionList) error {
			for _, p := range page.Permissions {
				out = append(out, domain.Permission{
					ID:    p.Id,
					Type:  domain.PermissionType(p.Type),
					Email: p.EmailAddress,
					Role:  domain.Role(p.Role),
				})
			}
			return nil
		})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// CreatePermission grants p. The notification email flag is only sent for
// user and group grantees, the only types Drive notifies.
func (d *Drive) CreatePermission(ctx context.Context, itemID string, p domain.Permission, notify bool) (string, error) {
	call := d.write.Permissions.Create(itemID, &drive.Permission{
		EmailAddress: p.Email,
		Type:         string(p.Type),
		Role:         string(p.Role),
	}).SupportsAllDrives(true)
	if p.Type == domain.PermissionUser || p.Type == domain.PermissionGroup {
		call = call.SendNotificationEmail(notify)
	}
	created, err := call.Context(ctx).Do()
	if err != nil {
		return "", translate(err)
	}
	return created.Id, nil
}

// UpdatePermission changes the role of a permission.
func (d *Drive) UpdatePermission(ctx context.Context, itemID, permissionID string, role domain.Role) (string, error) {
	updated, err := d.write.Permissions.Update(itemID, permissionID, &drive.Permission{Role: string(role)}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", translate(err)
	}
	return updated.Id, nil
}

// DeletePermission removes a permission.
func (d *Drive) DeletePermission(ctx context.Context, itemID, permissionID string) error {
	return translate(d.write.Permissions.Delete(itemID, permissionID).SupportsAllDrives(true).Context(ctx).Do())
}
