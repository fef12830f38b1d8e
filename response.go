package tyclient

import (
	"net/http"
	"strconv"
	"strings"
)

// Response is the result of a successful operation: the response metadata
// plus the decoded payload.
type Response[T any] struct {
	Header     http.Header
	OK         bool
	Redirected bool
	Status     int
	StatusText string
	Trailer    http.Header
	Proto      string
	URL        string
	Data       T
}

// newResponse copies the metadata of resp. requested is the URL the
// operation asked for, used to detect redirects.
func newResponse[T any](resp *http.Response, requested string, data T) *Response[T] {
	finalURL := requested
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response[T]{
		Header:     resp.Header,
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		Redirected: finalURL != requested,
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Trailer:    resp.Trailer,
		Proto:      resp.Proto,
		URL:        finalURL,
		Data:       data,
	}
}

// statusText returns the reason phrase of resp, e.g. "Not Found".
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text, ok := strings.CutPrefix(resp.Status, code+" "); ok {
		return text
	}
	if resp.Status != "" && resp.Status != code {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

// successful reports whether status is in [200, 400).
func successful(status int) bool {
	return status >= http.StatusOK && status < http.StatusBadRequest
}
