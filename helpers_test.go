package tyclient

import (
	"io"
	"log/slog"
	"testing"

	"github.com/broady/tyclient/testutil"
)

const testBaseURL = "http://api.example.com"

// newTestClient creates a client with a quiet logger that sends its requests
// to a recording transport.
func newTestClient(t *testing.T) (*Client, *testutil.Transport) {
	t.Helper()
	c, err := NewClient(Options{BaseURL: testBaseURL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	transport := testutil.NewTransport()
	c.WithTransport(transport).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c, transport
}

// mustBuild builds d on c, failing the test on error.
func mustBuild[P, T any](t *testing.T, c *Client, d Descriptor[P, T]) Operation[P, T] {
	t.Helper()
	op, err := Build(c, d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return op
}
