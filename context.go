package tyclient

import "context"

type contextKey struct {
	name string
}

var callInfoKey = &contextKey{"call_info"}

// CallInfo identifies the operation a request is sent for.
type CallInfo struct {
	Namespace string
	Name      string
	Method    Method
	// Route is the route template, or empty for operations built with a RouteFunc.
	Route string
}

// EndpointID returns "namespace.name", or just the name for operations
// registered without a namespace. Operations created with Build have no name
// and are identified by method and route.
func (i *CallInfo) EndpointID() string {
	switch {
	case i.Name == "":
		return string(i.Method) + " " + i.Route
	case i.Namespace == "":
		return i.Name
	default:
		return i.Namespace + "." + i.Name
	}
}

// CallInfoFromContext returns the CallInfo of the operation that created the
// request carrying ctx.
func CallInfoFromContext(ctx context.Context) (*CallInfo, bool) {
	info, ok := ctx.Value(callInfoKey).(*CallInfo)
	return info, ok
}

func withCallInfo(ctx context.Context, info *CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey, info)
}
