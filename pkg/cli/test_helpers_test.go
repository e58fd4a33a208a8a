package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"iolib/internal/domain"
	"iolib/internal/gcp"
	"iolib/internal/objectstore"
	"iolib/internal/service/ftp"
	"iolib/internal/testutil"
)

var cliEnvKeys = []string{
	"GOOGLE_APPLICATION_CREDENTIALS", "IOLIB_PROJECT", "IOLIB_LOG_LEVEL", "IOLIB_LOG_FORMAT",
	"IOLIB_OUTPUT", "IOLIB_BATCH_SIZE", "AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"S3_ENDPOINT", "AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_KEY", "FTP_HOST", "FTP_USER", "FTP_PASSWORD",
}

// isolate points HOME and the working directory at temp dirs and clears
// every variable the CLI reads, so no real config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, k := range cliEnvKeys {
		t.Setenv(k, "")
	}
	return home
}

// fakes bundles the in-memory backends and records what the CLI asked for.
type fakes struct {
	warehouse *testutil.MockWarehouse
	files     *testutil.MockDriveFiles
	perms     *testutil.MockDrivePermissions
	values    *testutil.MockSheetValues
	store     *testutil.MockObjectStore
	ftpConn   *testutil.MockFileTransfer

	creds        []gcp.Credentials
	sheetsRO     []bool
	schemes      []string
	storeConfigs []objectstore.Config
	dialed       []ftp.ConnectOptions
}

type fakeDrive struct {
	*testutil.MockDriveFiles
	*testutil.MockDrivePermissions
}

func newFakes() *fakes {
	return &fakes{
		warehouse: &testutil.MockWarehouse{ProjectID: "proj"},
		files:     &testutil.MockDriveFiles{},
		perms:     &testutil.MockDrivePermissions{},
		values:    &testutil.MockSheetValues{},
		store:     &testutil.MockObjectStore{Buckets: map[string]map[string][]byte{}},
		ftpConn:   &testutil.MockFileTransfer{},
	}
}

func (f *fakes) backends() Backends {
	return Backends{
		Warehouse: func(_ context.Context, creds gcp.Credentials) (domain.Warehouse, error) {
			f.creds = append(f.creds, creds)
			return f.warehouse, nil
		},
		Drive: func(_ context.Context, creds gcp.Credentials) (DriveClient, error) {
			f.creds = append(f.creds, creds)
			return fakeDrive{f.files, f.perms}, nil
		},
		Sheets: func(_ context.Context, creds gcp.Credentials, readOnly bool) (domain.SheetValues, error) {
			f.creds = append(f.creds, creds)
			f.sheetsRO = append(f.sheetsRO, readOnly)
			return f.values, nil
		},
		Store: func(_ context.Context, scheme string, cfg objectstore.Config) (domain.ObjectStore, error) {
			f.schemes = append(f.schemes, scheme)
			f.storeConfigs = append(f.storeConfigs, cfg)
			return f.store, nil
		},
		DialFTP: func(_ context.Context, opts ftp.ConnectOptions) (domain.FileTransfer, error) {
			f.dialed = append(f.dialed, opts)
			return f.ftpConn, nil
		},
	}
}

// run executes the CLI with args and returns stdout and stderr.
func (f *fakes) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(f.backends())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
