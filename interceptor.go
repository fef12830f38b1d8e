package tyclient

import "net/http"

// Invoker sends a prepared request. It is passed to Interceptor functions to
// invoke the next interceptor or the transport.
type Invoker func(req *http.Request) (*http.Response, error)

// Interceptor wraps the transport call of every operation built by a client.
//
//	func timing(req *http.Request, info *tyclient.CallInfo, next tyclient.Invoker) (*http.Response, error) {
//	    start := time.Now()
//	    resp, err := next(req)
//	    log.Printf("%s took %v", info.EndpointID(), time.Since(start))
//	    return resp, err
//	}
//
// Interceptors can:
//   - Inspect or modify the request before calling next
//   - Inspect the response after calling next
//   - Short-circuit by returning an error without calling next
//
// The request body has not been read when an interceptor runs. The response
// body is read by the operation after the chain returns.
type Interceptor func(req *http.Request, info *CallInfo, next Invoker) (*http.Response, error)

// chainInterceptors combines interceptors around final.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []Interceptor, info *CallInfo, final Invoker) Invoker {
	chain := final
	for i := len(interceptors) - 1; i >= 0; i-- {
		current := interceptors[i]
		next := chain
		chain = func(req *http.Request) (*http.Response, error) {
			return current(req, info, next)
		}
	}
	return chain
}
