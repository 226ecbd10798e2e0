// Package compute is a client for the Compute Engine v1 REST API, scoped to
// project-global firewall rules and the operations their mutations produce.
//
// A Client binds a project to a rest.Service. Resource handles created from
// it (Firewall, Operation) are cheap: constructing one performs no remote
// calls. All transport concerns (auth, retries, caching) live in the rest
// layer; handles only translate typed calls into requests and adapt raw
// responses.
package compute

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fwctl/fwctl/rest"
	"github.com/fwctl/fwctl/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultEndpoint is the API root used when no endpoint override is given.
const DefaultEndpoint = "https://compute.googleapis.com/compute/v1"

// Scope is the OAuth2 scope required for firewall mutations.
const Scope = "https://www.googleapis.com/auth/compute"

const userAgent = "fwctl"

// Options configures optional client behavior. The zero value is valid.
type Options struct {
	// Endpoint overrides the API root. Defaults to DefaultEndpoint.
	Endpoint string

	// HTTPClient overrides the HTTP client used for requests.
	HTTPClient *http.Client

	// TokenSource provides credentials. If nil, requests are sent
	// unauthenticated.
	TokenSource oauth2.TokenSource

	// Logger enables debug logging of request execution.
	Logger *zap.Logger

	// Cache enables metadata caching for resource reads.
	Cache *storage.Cache
}

// A Client is a compute client context bound to one project.
type Client struct {
	ProjectID string

	svc *rest.Service
}

// NewClient creates a client for the given project.
//
// An empty project id is the one invalid client context and fails here, so
// that every handle created from a client is correctly addressed.
func NewClient(projectID string, opts *Options) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("project id must be set")
	}
	if opts == nil {
		opts = &Options{}
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	svc := &rest.Service{
		Client:      opts.HTTPClient,
		BaseURL:     endpoint,
		TokenSource: opts.TokenSource,
		UserAgent:   userAgent,
		Logger:      opts.Logger,
		Cache:       opts.Cache,
	}
	return &Client{ProjectID: projectID, svc: svc}, nil
}

// path builds a resource path under the client's project.
func (c *Client) path(parts ...string) string {
	return strings.Join(append([]string{"projects", c.ProjectID}, parts...), "/")
}

// Operation returns a handle for a global operation.
func (c *Client) Operation(name string) *Operation {
	return &Operation{
		Name: name,
		res:  &rest.Resource{Service: c.svc, Path: c.path("global", "operations", name)},
	}
}

// Firewalls lists the project's firewall rules.
//
// Each returned handle carries the listed resource body as its initial
// metadata.
func (c *Client) Firewalls(ctx context.Context) ([]*Firewall, error) {
	raw, err := c.svc.Do(ctx, rest.ReqOpts{Method: http.MethodGet, Path: c.path("global", "firewalls")})
	if err != nil {
		return nil, err
	}
	var list struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "unmarshal firewall list")
	}
	out := make([]*Firewall, 0, len(list.Items))
	for _, item := range list.Items {
		name, _ := item["name"].(string)
		if name == "" {
			continue
		}
		out = append(out, c.Firewall(name, &FirewallOptions{Metadata: item}))
	}
	return out, nil
}
