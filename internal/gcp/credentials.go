// Package gcp adapts the Google Cloud and Workspace client libraries to the
// domain ports.
package gcp

import (
	"net/http"

	"google.golang.org/api/option"
)

// Credentials selects how Google clients authenticate. An explicit KeyFile
// wins; without one, application default credentials are used, which honor
// GOOGLE_APPLICATION_CREDENTIALS.
type Credentials struct {
	// KeyFile is the path of a service account JSON key.
	KeyFile string
	// ProjectID overrides the project the warehouse client bills to.
	ProjectID string
	// HTTPClient replaces the authenticated transport. Tests point it at an
	// httptest server.
	HTTPClient *http.Client
	// Endpoint overrides the API base URL.
	Endpoint string
}

// ClientOptions returns the options for a client restricted to scopes.
func (c Credentials) ClientOptions(scopes ...string) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case c.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	case c.KeyFile != "":
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, c.KeyFile))
	}
	if len(scopes) > 0 && c.HTTPClient == nil {
		opts = append(opts, option.WithScopes(scopes...))
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	return opts
}
