package compute

import (
	"context"
	"encoding/json"

	"github.com/cenkalti/backoff"
	"github.com/fwctl/fwctl/rest"
	"github.com/pkg/errors"
)

// An Operation is a handle for an asynchronous remote mutation.
//
// Metadata holds the raw API response the handle was resolved from. The
// mutation that produced the handle sets it; polling refreshes it.
type Operation struct {
	Name     string
	Metadata json.RawMessage

	res *rest.Resource

	// pollBackOff overrides the polling cadence in tests.
	pollBackOff func() backoff.BackOff
}

// errPending signals an operation that has not reached DONE yet.
var errPending = errors.New("operation pending")

// Poll fetches the operation status once.
//
// When the operation has completed with an error, done is true and the
// operation's error is returned as a *rest.APIError built from the error
// block embedded in the operation resource.
func (o *Operation) Poll(ctx context.Context) (done bool, err error) {
	raw, err := o.res.Get(ctx)
	if err != nil {
		return false, err
	}

	var body struct {
		Status              string `json:"status"`
		HTTPErrorStatusCode int    `json:"httpErrorStatusCode"`
		Error               *struct {
			Errors []struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false, errors.Wrap(err, "unmarshal operation")
	}

	o.Metadata = raw

	if body.Status != "DONE" {
		return false, nil
	}

	if body.Error != nil && len(body.Error.Errors) > 0 {
		apiErr := &rest.APIError{
			Code:    body.HTTPErrorStatusCode,
			Message: body.Error.Errors[0].Message,
			Raw:     raw,
		}
		for _, e := range body.Error.Errors {
			apiErr.Errors = append(apiErr.Errors, rest.ErrorItem{Reason: e.Code, Message: e.Message})
		}
		return true, apiErr
	}
	return true, nil
}

// Wait polls the operation until it completes or the context is cancelled.
//
// A completed operation that failed remotely returns its *rest.APIError.
func (o *Operation) Wait(ctx context.Context) error {
	poll := func() error {
		done, err := o.Poll(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !done {
			return errPending
		}
		return nil
	}
	return backoff.Retry(poll, backoff.WithContext(o.backOff(), ctx))
}

func (o *Operation) backOff() backoff.BackOff {
	if o.pollBackOff == nil {
		return backoff.NewExponentialBackOff()
	}
	return o.pollBackOff()
}
