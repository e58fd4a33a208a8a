package domain

// SpreadsheetMIMEType is the Drive MIME type of a Google Sheets file.
const SpreadsheetMIMEType = "application/vnd.google-apps.spreadsheet"

// DriveFile is the subset of Drive file metadata iolib works with.
type DriveFile struct {
	Kind     string   `json:"kind"`
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	MIMEType string   `json:"mime_type"`
	Parents  []string `json:"parents,omitempty"`
}

// FileQuery filters a Drive listing. DriveID scopes the search to a shared drive.
type FileQuery struct {
	Name     string
	FolderID string
	MIMEType string
	DriveID  string
}

// DriveFilesFrame renders files with the columns kind, id, name, mime_type.
func DriveFilesFrame(files []DriveFile) *Frame {
	f := NewFrame("kind", "id", "name", "mime_type")
	for _, file := range files {
		f.Append(file.Kind, file.ID, file.Name, file.MIMEType)
	}
	return f
}

// PermissionsFrame renders permissions with the columns id, type, email, role.
func PermissionsFrame(perms []Permission) *Frame {
	f := NewFrame("id", "type", "email", "role")
	for _, p := range perms {
		f.Append(p.ID, string(p.Type), p.Email, string(p.Role))
	}
	return f
}
