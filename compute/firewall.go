package compute

import (
	"context"
	"encoding/json"

	"github.com/fwctl/fwctl/rest"
	"github.com/pkg/errors"
)

// DefaultNetwork is the network a firewall handle is bound to when the
// caller does not specify one.
const DefaultNetwork = "global/networks/default"

// FirewallOptions configures a firewall handle.
type FirewallOptions struct {
	// Metadata is merged over the handle's default metadata. A network key
	// overrides the default network; all other keys are carried as given.
	Metadata map[string]interface{}
}

// A Firewall is a handle for one named project-global firewall rule.
//
// The handle holds no connection state and is safe to discard at any time.
// Its metadata is advisory: it is read when a call is issued and is never
// refreshed from server responses. Concurrent calls on one handle are
// independent and may complete in any order.
type Firewall struct {
	Name string

	client   *Client
	res      *rest.Resource
	metadata map[string]interface{}
}

// Firewall returns a handle for the named firewall rule.
//
// The handle's metadata always contains name and network after construction,
// with the network defaulting to DefaultNetwork when the options do not
// override it.
func (c *Client) Firewall(name string, opts *FirewallOptions) *Firewall {
	md := map[string]interface{}{
		"network": DefaultNetwork,
	}
	if opts != nil {
		for k, v := range opts.Metadata {
			md[k] = v
		}
	}
	md["name"] = name
	return &Firewall{
		Name:     name,
		client:   c,
		res:      &rest.Resource{Service: c.svc, Path: c.path("global", "firewalls", name)},
		metadata: md,
	}
}

// Metadata returns a copy of the handle's metadata.
func (f *Firewall) Metadata() map[string]interface{} {
	out := make(map[string]interface{}, len(f.metadata))
	for k, v := range f.metadata {
		out[k] = v
	}
	return out
}

// Create creates the firewall rule.
//
// The request body is the rule merged over the handle metadata; the rule's
// zero fields leave the handle metadata in place, so a nil rule creates the
// rule exactly as the handle describes it. The name and network invariants
// of the handle apply to the body.
//
// The returned operation tracks the remote mutation; the raw response is
// returned alongside it, and accompanies the error when the call fails.
func (f *Firewall) Create(ctx context.Context, rule *Rule) (*Operation, json.RawMessage, error) {
	body := f.Metadata()
	if rule != nil {
		if err := rule.validate(); err != nil {
			return nil, nil, err
		}
		m, err := rule.toMap()
		if err != nil {
			return nil, nil, err
		}
		for k, v := range m {
			body[k] = v
		}
	}
	body["name"] = f.Name
	raw, err := f.res.Insert(ctx, f.client.path("global", "firewalls"), body)
	return f.operation(raw, err)
}

// Get fetches the firewall rule from the API.
func (f *Firewall) Get(ctx context.Context) (json.RawMessage, error) {
	return f.res.Get(ctx)
}

// GetMetadata returns the firewall rule body, served from the metadata cache
// when the client has one configured.
func (f *Firewall) GetMetadata(ctx context.Context) (json.RawMessage, error) {
	return f.res.Metadata(ctx)
}

// Exists reports whether the firewall rule exists remotely.
func (f *Firewall) Exists(ctx context.Context) (bool, error) {
	return f.res.Exists(ctx)
}

// Delete removes the firewall rule.
//
// On success, a response containing an operation name resolves to an
// operation handle carrying the raw response as its metadata. On failure the
// operation is nil and the raw response, when the failure produced one, is
// returned with the error.
func (f *Firewall) Delete(ctx context.Context) (*Operation, json.RawMessage, error) {
	raw, err := f.res.Delete(ctx)
	return f.operation(raw, err)
}

// SetMetadata updates the firewall rule with the full merge of the handle
// metadata and md, with md's fields taking precedence.
//
// The entire merged body is sent, not a delta; the remote API applies PATCH
// semantics to the complete resource description. The handle's stored
// metadata is not changed by the call.
func (f *Firewall) SetMetadata(ctx context.Context, md map[string]interface{}) (*Operation, json.RawMessage, error) {
	body := f.Metadata()
	for k, v := range md {
		body[k] = v
	}
	raw, err := f.res.Patch(ctx, body)
	return f.operation(raw, err)
}

// operation adapts a mutation response into an operation handle.
//
// Failures pass through with a nil operation. A success body with a name
// field resolves through the client's operation factory and carries the raw
// response as the handle metadata; a success without a name yields no
// handle.
func (f *Firewall) operation(raw json.RawMessage, err error) (*Operation, json.RawMessage, error) {
	if err != nil {
		return nil, raw, err
	}
	var body struct {
		Name string `json:"name"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, raw, errors.Wrap(err, "unmarshal response")
		}
	}
	if body.Name == "" {
		return nil, raw, nil
	}
	op := f.client.Operation(body.Name)
	op.Metadata = raw
	return op, raw, nil
}
