package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"iolib/internal/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
}

// fakeAPI serves canned JSON per "METHOD path" and records every request.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]any
	status    map[string]int
	requests  []recordedRequest
}

func newFakeAPI(t *testing.T) (*fakeAPI, Credentials) {
	t.Helper()
	api := &fakeAPI{responses: map[string]any{}, status: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, Credentials{HTTPClient: srv.Client(), Endpoint: srv.URL + "/", ProjectID: "proj"}
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	req := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
	for k, v := range r.URL.Query() {
		req.Query[k] = v[0]
	}
	if body, _ := io.ReadAll(r.Body); len(body) > 0 {
		_ = json.Unmarshal(body, &req.Body)
	}
	key := r.Method + " " + r.URL.Path

	a.mu.Lock()
	a.requests = append(a.requests, req)
	resp, ok := a.responses[key]
	status := a.status[key]
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found: x."}}`))
		return
	}
	if !ok {
		resp = map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *fakeAPI) last(t *testing.T) recordedRequest {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(t, a.requests)
	return a.requests[len(a.requests)-1]
}

func TestTranslate(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, translate(nil))
	})

	t.Run("not_found", func(t *testing.T) {
		err := translate(&googleapi.Error{Code: http.StatusNotFound, Message: "Not found: Table p:d.t"})
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Not found: Table p:d.t", nf.Message)
	})

	t.Run("other_status_passes_through", func(t *testing.T) {
		in := &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}
		assert.Same(t, in, translate(in))
	})

	t.Run("plain_error_passes_through", func(t *testing.T) {
		in := errors.New("boom")
		assert.Equal(t, in, translate(in))
	})
}

func TestCredentials_ClientOptions(t *testing.T) {
	assert.Empty(t, Credentials{}.ClientOptions())
	assert.Len(t, Credentials{}.ClientOptions("scope"), 1)
	assert.Len(t, Credentials{KeyFile: "key.json"}.ClientOptions("scope"), 2)
	assert.Len(t, Credentials{HTTPClient: http.DefaultClient, Endpoint: "http://x/"}.ClientOptions("scope"), 2)
}

func TestSheets(t *testing.T) {
	ctx := context.Background()

	t.Run("get_values_requests_unformatted", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["GET /v4/spreadsheets/sid/values/Sheet1"] = map[string]any{
			"range":  "Sheet1",
			"values": [][]any{{"a", "b"}, {1, "x"}},
		}
		s, err := NewSheets(ctx, creds, true)
		require.NoError(t, err)

		values, err := s.GetValues(ctx, "sid", "Sheet1")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"a", "b"}, {float64(1), "x"}}, values)

		req := api.last(t)
		assert.Equal(t, "UNFORMATTED_VALUE", req.Query["valueRenderOption"])
		assert.Equal(t, "FORMATTED_STRING", req.Query["dateTimeRenderOption"])
	})

	t.Run("update_values_user_entered", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["PUT /v4/spreadsheets/sid/values/Sheet1"] = map[string]any{"spreadsheetId": "sid"}
		s, err := NewSheets(ctx, creds, false)
		require.NoError(t, err)

		id, err := s.UpdateValues(ctx, "sid", "Sheet1", [][]any{{"foo"}, {1}})
		require.NoError(t, err)
		assert.Equal(t, "sid", id)

		req := api.last(t)
		assert.Equal(t, "USER_ENTERED", req.Query["valueInputOption"])
		assert.Equal(t, []any{[]any{"foo"}, []any{float64(1)}}, req.Body["values"])
	})

	t.Run("missing_spreadsheet", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.status["GET /v4/spreadsheets/gone/values/Sheet1"] = http.StatusNotFound
		s, err := NewSheets(ctx, creds, true)
		require.NoError(t, err)

		_, err = s.GetValues(ctx, "gone", "Sheet1")
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
	})
}

func TestDrive(t *testing.T) {
	ctx := context.Background()

	t.Run("list_files_shared_drive", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["GET /files"] = map[string]any{
			"files": []map[string]any{
				{"kind": "drive#file", "id": "f1", "name": "report", "mimeType": domain.SpreadsheetMIMEType, "parents": []string{"p"}},
			},
		}
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		files, err := d.ListFiles(ctx, `name = "report"`, "drive-1")
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, domain.DriveFile{
			Kind: "drive#file", ID: "f1", Name: "report", MIMEType: domain.SpreadsheetMIMEType, Parents: []string{"p"},
		}, files[0])

		req := api.last(t)
		assert.Equal(t, `name = "report"`, req.Query["q"])
		assert.Equal(t, "drive", req.Query["corpora"])
		assert.Equal(t, "drive-1", req.Query["driveId"])
		assert.Equal(t, "true", req.Query["includeItemsFromAllDrives"])
	})

	t.Run("list_files_my_drive", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		files, err := d.ListFiles(ctx, "", "")
		require.NoError(t, err)
		assert.Empty(t, files)
		req := api.last(t)
		assert.NotContains(t, req.Query, "corpora")
		assert.NotContains(t, req.Query, "q")
	})

	t.Run("create_and_delete_file", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["POST /files"] = map[string]any{"id": "new"}
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		id, err := d.CreateFile(ctx, domain.DriveFile{Name: "report", MIMEType: domain.SpreadsheetMIMEType, Parents: []string{"folder"}})
		require.NoError(t, err)
		assert.Equal(t, "new", id)
		req := api.last(t)
		assert.Equal(t, "report", req.Body["name"])
		assert.Equal(t, []any{"folder"}, req.Body["parents"])

		require.NoError(t, d.DeleteFile(ctx, "new"))
		req = api.last(t)
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/files/new", req.Path)
	})

	t.Run("list_permissions", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["GET /files/item/permissions"] = map[string]any{
			"permissions": []map[string]any{
				{"id": "p1", "type": "user", "role": "owner", "emailAddress": "a@x"},
				{"id": "p2", "type": "anyone", "role": "reader"},
			},
		}
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		perms, err := d.ListPermissions(ctx, "item")
		require.NoError(t, err)
		assert.Equal(t, []domain.Permission{
			{ID: "p1", Type: domain.PermissionUser, Email: "a@x", Role: domain.RoleOwner},
			{ID: "p2", Type: domain.PermissionAnyone, Role: domain.RoleReader},
		}, perms)
		assert.Equal(t, permissionFields, api.last(t).Query["fields"])
	})

	t.Run("create_permission_notification_flag", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["POST /files/item/permissions"] = map[string]any{"id": "p9"}
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		id, err := d.CreatePermission(ctx, "item", domain.Permission{Type: domain.PermissionUser, Email: "a@x", Role: domain.RoleReader}, false)
		require.NoError(t, err)
		assert.Equal(t, "p9", id)
		req := api.last(t)
		assert.Equal(t, "false", req.Query["sendNotificationEmail"])
		assert.Equal(t, "a@x", req.Body["emailAddress"])
		assert.Equal(t, "reader", req.Body["role"])

		_, err = d.CreatePermission(ctx, "item", domain.Permission{Type: domain.PermissionAnyone, Role: domain.RoleReader}, false)
		require.NoError(t, err)
		assert.NotContains(t, api.last(t).Query, "sendNotificationEmail")
	})

	t.Run("update_and_delete_permission", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.responses["PATCH /files/item/permissions/p1"] = map[string]any{"id": "p1"}
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		id, err := d.UpdatePermission(ctx, "item", "p1", domain.RoleWriter)
		require.NoError(t, err)
		assert.Equal(t, "p1", id)
		assert.Equal(t, "writer", api.last(t).Body["role"])

		require.NoError(t, d.DeletePermission(ctx, "item", "p1"))
		assert.Equal(t, "/files/item/permissions/p1", api.last(t).Path)
	})

	t.Run("missing_item", func(t *testing.T) {
		api, creds := newFakeAPI(t)
		api.status["GET /files/gone/permissions"] = http.StatusNotFound
		d, err := NewDrive(ctx, creds)
		require.NoError(t, err)

		_, err = d.ListPermissions(ctx, "gone")
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "File not found: x.", nf.Message)
	})
}

func TestBigQuery_CreateTable_MissingDataset(t *testing.T) {
	ctx := context.Background()
	api, creds := newFakeAPI(t)
	api.status["POST /projects/proj/datasets/gone/tables"] = http.StatusNotFound
	bq, err := NewBigQuery(ctx, creds)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bq.Close() })

	_, err = bq.CreateTable(ctx, &domain.Table{
		Ref:    domain.TableRef{ProjectID: "proj", DatasetID: "gone", TableID: "tbl"},
		Schema: domain.Schema{{Name: "id", Type: "INTEGER", Mode: "REQUIRED"}},
	})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "File not found: x.", nf.Message)

	req := api.last(t)
	assert.Equal(t, "tbl", req.Body["tableReference"].(map[string]any)["tableId"])
}
