package tyclient

import "net/http"

// Method is an HTTP request method.
type Method string

const (
	MethodConnect Method = http.MethodConnect
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodGet     Method = http.MethodGet
	MethodOptions Method = http.MethodOptions
	MethodPatch   Method = http.MethodPatch
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodTrace   Method = http.MethodTrace
)

var methods = []Method{
	MethodConnect,
	MethodDelete,
	MethodHead,
	MethodGet,
	MethodOptions,
	MethodPatch,
	MethodPost,
	MethodPut,
	MethodTrace,
}

// Methods returns every known method in declaration order.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	for _, known := range methods {
		if m == known {
			return true
		}
	}
	return false
}

// CanHaveBody reports whether requests using m carry an encoded body.
// See CanHaveBody.
func (m Method) CanHaveBody() bool {
	return CanHaveBody(m)
}

// CanHaveBody reports whether a request with the given method can have a body.
// GET, HEAD and DELETE cannot; the payload of those requests is sent as
// route tokens and query parameters instead.
func CanHaveBody(m Method) bool {
	switch m {
	case MethodGet, MethodHead, MethodDelete:
		return false
	default:
		return true
	}
}

func (m Method) String() string {
	return string(m)
}
