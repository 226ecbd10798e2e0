// Package rest executes requests against a JSON REST API on behalf of typed
// resource handles.
//
// A Service holds everything shared between resources: the HTTP client, base
// URL, credentials, retry policy and the optional metadata cache. A Resource
// binds a Service to one resource path and provides the request primitives
// (get, insert, patch, delete) that resource types are built from.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff"
	"github.com/fwctl/fwctl/storage"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// A Service executes requests against a REST API.
type Service struct {
	// Client is the HTTP client to use. If nil, http.DefaultClient is used.
	Client *http.Client

	// BaseURL is the API root all request paths are resolved against,
	// without a trailing slash.
	BaseURL string

	// TokenSource provides OAuth2 tokens attached to outgoing requests. If
	// nil, requests are sent unauthenticated.
	TokenSource oauth2.TokenSource

	// UserAgent is sent with every request when set.
	UserAgent string

	// Logger logs request execution at debug level. If nil, logging is
	// disabled.
	Logger *zap.Logger

	// NewBackOff returns the retry policy for a single call. If nil, a
	// default exponential policy is used. Client errors other than 429 are
	// never retried.
	NewBackOff func() backoff.BackOff

	// Cache, when set, is consulted by resource metadata reads and
	// invalidated by mutations.
	Cache *storage.Cache
}

// ReqOpts describes a single API request.
type ReqOpts struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{} // JSON-encoded when non-nil.
}

// Do executes one API call, retrying retryable failures until the policy or
// context gives up.
//
// The returned body is the raw response from the final attempt. It is
// returned alongside the error, if any, so that callers can surface the raw
// response for failed calls too. API failures are returned as *APIError,
// exactly as the remote reported them.
func (s *Service) Do(ctx context.Context, opts ReqOpts) (json.RawMessage, error) {
	var reqBody []byte
	if opts.Body != nil {
		j, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reqBody = j
	}

	u := strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(opts.Path, "/")
	if len(opts.Query) > 0 {
		u += "?" + opts.Query.Encode()
	}

	logger := s.logger()
	var raw json.RawMessage

	attempt := func() error {
		var rd io.Reader
		if reqBody != nil {
			rd = bytes.NewReader(reqBody)
		}
		req, err := http.NewRequest(opts.Method, u, rd)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "create request"))
		}
		req = req.WithContext(ctx)
		req.Header.Set("X-Request-Id", ksuid.New().String())
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if s.UserAgent != "" {
			req.Header.Set("User-Agent", s.UserAgent)
		}
		if s.TokenSource != nil {
			tok, err := s.TokenSource.Token()
			if err != nil {
				return backoff.Permanent(errors.Wrap(err, "get token"))
			}
			tok.SetAuthHeader(req)
		}

		resp, err := s.client().Do(req)
		if err != nil {
			// Transport errors are retryable unless the context is done.
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		body, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "read response body")
		}
		raw = nil
		if len(body) > 0 {
			raw = json.RawMessage(body)
		}

		logger.Debug("Request",
			zap.String("method", opts.Method),
			zap.String("path", opts.Path),
			zap.Int("status", resp.StatusCode),
		)

		if resp.StatusCode >= 400 {
			apiErr := newAPIError(resp.StatusCode, body)
			if retryable(resp.StatusCode) {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		return nil
	}

	if err := backoff.Retry(attempt, backoff.WithContext(s.backOff(), ctx)); err != nil {
		return raw, err
	}
	return raw, nil
}

// retryable reports whether a failed status is worth retrying. Server errors
// and throttling are; other client errors are not.
func retryable(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

func (s *Service) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) backOff() backoff.BackOff {
	if s.NewBackOff == nil {
		return backoff.NewExponentialBackOff()
	}
	return s.NewBackOff()
}
