package meta

import "reflect"

// EndpointMetadata holds the runtime metadata of an operation attached to a
// client. This type is internal so it cannot be instantiated by external
// packages, which keeps the Endpoint interface sealed.
type EndpointMetadata struct {
	Namespace string
	Name      string
	Method    string
	// Route is the route template; empty when the route is built by a function.
	Route   string
	Payload reflect.Type
	Result  reflect.Type
}
