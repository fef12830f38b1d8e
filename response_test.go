package tyclient

import (
	"net/http"
	"net/url"
	"testing"
)

func TestNewResponse(t *testing.T) {
	finalURL, _ := url.Parse("http://h/final")
	resp := &http.Response{
		Status:     "201 Created",
		StatusCode: http.StatusCreated,
		Proto:      "HTTP/2.0",
		Header:     http.Header{"X-A": {"1"}},
		Trailer:    http.Header{"X-Checksum": {"abc"}},
		Request:    &http.Request{URL: finalURL},
	}

	got := newResponse(resp, "http://h/start", "data")
	if !got.OK || got.Status != http.StatusCreated || got.StatusText != "Created" {
		t.Errorf("unexpected status fields: %+v", got)
	}
	if !got.Redirected || got.URL != "http://h/final" {
		t.Errorf("expected redirect to final URL, got %q redirected=%v", got.URL, got.Redirected)
	}
	if got.Proto != "HTTP/2.0" || got.Trailer.Get("X-Checksum") != "abc" || got.Header.Get("X-A") != "1" {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if got.Data != "data" {
		t.Errorf("unexpected data %q", got.Data)
	}
}

func TestNewResponse_NoRequest(t *testing.T) {
	got := newResponse(&http.Response{StatusCode: http.StatusOK}, "http://h/x", 1)
	if got.URL != "http://h/x" || got.Redirected {
		t.Errorf("expected requested URL, got %q redirected=%v", got.URL, got.Redirected)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		status string
		code   int
		want   string
	}{
		{"404 Not Found", 404, "Not Found"},
		{"200 Everything Fine", 200, "Everything Fine"},
		{"", 503, "Service Unavailable"},
		{"418", 418, "I'm a teapot"},
		{"custom", 299, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := statusText(&http.Response{Status: tt.status, StatusCode: tt.code}); got != tt.want {
				t.Errorf("statusText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuccessful(t *testing.T) {
	for status, want := range map[int]bool{
		199: false,
		200: true,
		204: true,
		302: true,
		399: true,
		400: false,
		500: false,
	} {
		if got := successful(status); got != want {
			t.Errorf("successful(%d) = %v, want %v", status, got, want)
		}
	}
}
