package compute

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/fwctl/fwctl/rest"
)

func fastPoll(op *Operation) {
	op.pollBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 10)
	}
}

func TestOperation_Poll(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/test-project/global/operations/op-1" {
			t.Errorf("path got = %q", r.URL.Path)
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Write([]byte(`{"name":"op-1","status":"RUNNING"}`)) // nolint: errcheck
			return
		}
		w.Write([]byte(`{"name":"op-1","status":"DONE"}`)) // nolint: errcheck
	}))

	op := c.Operation("op-1")

	done, err := op.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if done {
		t.Error("Poll() done = true for RUNNING operation")
	}

	done, err = op.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !done {
		t.Error("Poll() done = false for DONE operation")
	}

	// Polling refreshes the handle metadata.
	if string(op.Metadata) != `{"name":"op-1","status":"DONE"}` {
		t.Errorf("Metadata got = %s", op.Metadata)
	}
}

func TestOperation_Wait(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.Write([]byte(`{"name":"op-1","status":"PENDING"}`)) // nolint: errcheck
			return
		}
		w.Write([]byte(`{"name":"op-1","status":"DONE"}`)) // nolint: errcheck
	}))

	op := c.Operation("op-1")
	fastPoll(op)

	if err := op.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("polls got = %d, want = 3", got)
	}
}

func TestOperation_Wait_remoteError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "op-1",
			"status": "DONE",
			"httpErrorStatusCode": 409,
			"error": {"errors": [{"code": "RESOURCE_IN_USE", "message": "firewall is in use"}]}
		}`)) // nolint: errcheck
	}))

	op := c.Operation("op-1")
	fastPoll(op)

	err := op.Wait(context.Background())
	if err == nil {
		t.Fatal("Wait() error = nil, want remote operation error")
	}

	apiErr, ok := err.(*rest.APIError)
	if !ok {
		t.Fatalf("error type got = %T, want *rest.APIError", err)
	}
	if apiErr.Code != 409 {
		t.Errorf("Code got = %d, want = 409", apiErr.Code)
	}
	if got := apiErr.Error(); got != "api error 409: firewall is in use" {
		t.Errorf("error got = %q", got)
	}
	if len(apiErr.Errors) != 1 || apiErr.Errors[0].Reason != "RESOURCE_IN_USE" {
		t.Errorf("Errors got = %v", apiErr.Errors)
	}
}

func TestOperation_Wait_contextCancel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"op-1","status":"PENDING"}`)) // nolint: errcheck
	}))

	op := c.Operation("op-1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := op.Wait(ctx); err == nil {
		t.Fatal("Wait() error = nil, want error after context timeout")
	}
}
