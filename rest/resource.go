package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// A Resource is one addressable REST resource.
//
// It holds no remote state; it only binds a Service to a resource path such
// as projects/my-project/global/firewalls/allow-ssh. Typed resource handles
// build their operations on these primitives instead of inheriting them.
type Resource struct {
	Service *Service

	// Path is the resource path relative to the service base URL.
	Path string
}

// Get fetches the resource from the API.
func (r *Resource) Get(ctx context.Context) (json.RawMessage, error) {
	return r.Service.Do(ctx, ReqOpts{Method: http.MethodGet, Path: r.Path})
}

// Metadata returns the resource body, served from the service's metadata
// cache when possible.
//
// A cache miss or a cache backend failure falls through to a network fetch;
// the cache never turns a working call into a failed one. Fresh bodies are
// stored back on a best effort basis.
func (r *Resource) Metadata(ctx context.Context) (json.RawMessage, error) {
	cache := r.Service.Cache
	if cache == nil {
		return r.Get(ctx)
	}

	if body, err := cache.Get(ctx, r.Path); err == nil {
		return body, nil
	}

	body, err := r.Get(ctx)
	if err != nil {
		return body, err
	}
	if err := cache.Put(ctx, r.Path, body); err != nil {
		r.Service.logger().Debug("Cache store failed", zap.String("path", r.Path), zap.Error(err))
	}
	return body, nil
}

// Exists reports whether the resource exists. A 404 from the API maps to
// (false, nil); any other failure is returned as an error.
func (r *Resource) Exists(ctx context.Context) (bool, error) {
	_, err := r.Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Insert creates the resource by posting body to the collection path.
func (r *Resource) Insert(ctx context.Context, collection string, body interface{}) (json.RawMessage, error) {
	raw, err := r.Service.Do(ctx, ReqOpts{Method: http.MethodPost, Path: collection, Body: body})
	if err != nil {
		return raw, err
	}
	r.invalidate(ctx)
	return raw, nil
}

// Patch updates the resource in place with the given body.
func (r *Resource) Patch(ctx context.Context, body interface{}) (json.RawMessage, error) {
	raw, err := r.Service.Do(ctx, ReqOpts{Method: http.MethodPatch, Path: r.Path, Body: body})
	if err != nil {
		return raw, err
	}
	r.invalidate(ctx)
	return raw, nil
}

// Delete removes the resource.
func (r *Resource) Delete(ctx context.Context) (json.RawMessage, error) {
	raw, err := r.Service.Do(ctx, ReqOpts{Method: http.MethodDelete, Path: r.Path})
	if err != nil {
		return raw, err
	}
	r.invalidate(ctx)
	return raw, nil
}

// invalidate drops the cached metadata entry after a mutation.
func (r *Resource) invalidate(ctx context.Context) {
	cache := r.Service.Cache
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, r.Path); err != nil {
		r.Service.logger().Debug("Cache invalidate failed", zap.String("path", r.Path), zap.Error(err))
	}
}
