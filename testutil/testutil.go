// Package testutil provides a fake transport and assertion helpers for
// testing code built on tyclient operations without a network.
// It does not import tyclient and can be used from any package.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Request is a request recorded by Transport, with its body read.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// reply is a canned response.
type reply struct {
	status int
	header http.Header
	body   []byte
	err    error
}

// Transport records every request it receives and answers with canned
// replies, in the order they were queued. When the queue is empty the last
// reply is repeated; with no reply queued at all it answers 200 with an
// empty body.
//
// Transport implements tyclient.Doer.
type Transport struct {
	mu       sync.Mutex
	replies  []reply
	last     *reply
	requests []Request
}

// NewTransport creates an empty transport.
func NewTransport() *Transport {
	return &Transport{}
}

// Reply queues a response with status and body. A body that is a string or
// []byte is sent as is; anything else is encoded as JSON.
func (t *Transport) Reply(status int, body any) *Transport {
	var data []byte
	switch b := body.(type) {
	case nil:
	case string:
		data = []byte(b)
	case []byte:
		data = b
	default:
		var err error
		data, err = json.Marshal(b)
		if err != nil {
			panic(fmt.Sprintf("testutil: marshal reply body: %v", err))
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = append(t.replies, reply{status: status, header: make(http.Header), body: data})
	return t
}

// WithHeader adds a header to the most recently queued reply.
func (t *Transport) WithHeader(key, value string) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.replies) == 0 {
		panic("testutil: WithHeader called before Reply")
	}
	t.replies[len(t.replies)-1].header.Add(key, value)
	return t
}

// Fail queues a transport error.
func (t *Transport) Fail(err error) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies = append(t.replies, reply{err: err})
	return t
}

// Do records req and returns the next queued reply.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests = append(t.requests, Request{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header.Clone(),
		Body:   body,
	})

	r := reply{status: http.StatusOK}
	switch {
	case len(t.replies) > 0:
		r = t.replies[0]
		t.replies = t.replies[1:]
		t.last = &r
	case t.last != nil:
		r = *t.last
	}
	if r.err != nil {
		return nil, r.err
	}

	header := r.header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:     fmt.Sprintf("%d %s", r.status, http.StatusText(r.status)),
		StatusCode: r.status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(r.body)),
		Request:    req,
	}, nil
}

// Requests returns the requests recorded so far.
func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Request(nil), t.requests...)
}

// Last returns the most recent request. It fails the test if none was sent.
func (t *Transport) Last(tb testing.TB) Request {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		tb.Fatalf("no request was sent")
	}
	return t.requests[len(t.requests)-1]
}

// AssertHeader checks that a request header has the expected value.
func AssertHeader(tb testing.TB, r Request, key, expectedValue string) {
	tb.Helper()
	actual := r.Header.Get(key)
	if actual != expectedValue {
		tb.Errorf("expected header %s=%s, got %s", key, expectedValue, actual)
	}
}

// AssertNoHeader checks that a request header is absent.
func AssertNoHeader(tb testing.TB, r Request, key string) {
	tb.Helper()
	if values, ok := r.Header[http.CanonicalHeaderKey(key)]; ok {
		tb.Errorf("expected no header %s, got %q", key, values)
	}
}

// AssertURL checks the full request URL.
func AssertURL(tb testing.TB, r Request, expected string) {
	tb.Helper()
	if actual := r.URL.String(); actual != expected {
		tb.Errorf("expected URL %s, got %s", expected, actual)
	}
}

// AssertQuery checks the raw query string, which keeps parameter order.
func AssertQuery(tb testing.TB, r Request, expected string) {
	tb.Helper()
	if r.URL.RawQuery != expected {
		tb.Errorf("expected query %q, got %q", expected, r.URL.RawQuery)
	}
}

// AssertJSONBody compares the request body with expected, both as JSON.
func AssertJSONBody(tb testing.TB, r Request, expected any) {
	tb.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		tb.Fatalf("failed to marshal expected body: %v", err)
	}

	// Compare as JSON to ignore formatting differences
	var expectedData, actualData any
	json.Unmarshal(expectedJSON, &expectedData)
	if err := json.Unmarshal(r.Body, &actualData); err != nil {
		tb.Fatalf("request body is not JSON: %v\nBody: %s", err, r.Body)
	}

	expectedStr, _ := json.MarshalIndent(expectedData, "", "  ")
	actualStr, _ := json.MarshalIndent(actualData, "", "  ")

	if string(expectedStr) != string(actualStr) {
		tb.Errorf("request body mismatch:\nExpected:\n%s\nActual:\n%s", expectedStr, actualStr)
	}
}

// AssertEmptyBody checks that the request was sent without a body.
func AssertEmptyBody(tb testing.TB, r Request) {
	tb.Helper()
	if len(strings.TrimSpace(string(r.Body))) != 0 {
		tb.Errorf("expected empty body, got %s", r.Body)
	}
}
