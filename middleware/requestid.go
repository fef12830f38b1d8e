package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/broady/tyclient"
)

// DefaultRequestIDHeader is the header RequestID sets when none is given.
const DefaultRequestIDHeader = "X-Request-Id"

// RequestID creates an interceptor that tags every request with a random
// UUID in header, unless the request already carries one.
// An empty header means DefaultRequestIDHeader.
func RequestID(header string) tyclient.Interceptor {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return func(req *http.Request, info *tyclient.CallInfo, next tyclient.Invoker) (*http.Response, error) {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, uuid.NewString())
		}
		return next(req)
	}
}
