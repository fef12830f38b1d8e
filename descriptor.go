package tyclient

import (
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Definition is implemented by every Descriptor. Client.Namespace and
// Client.Register build operations from exactly the group entries that
// implement it; other entries are ignored.
type Definition interface {
	// Validate checks the descriptor shape. See Descriptor.Validate.
	Validate() error

	endpoint(namespace, name string, config configFunc) Endpoint
}

// Descriptor declares one operation: the request it sends for a payload of
// type P and the result of type T it decodes from a successful response.
//
// Example:
//
//	get := tyclient.Descriptor[GetUser, User]{
//	    Method: tyclient.MethodGet,
//	    Route:  "/users/:id",
//	}
type Descriptor[P, T any] struct {
	Method Method

	// Route is a template appended to the client base URL. Tokens such as
	// ":id" are replaced with payload members; see BuildRoute.
	// Exactly one of Route and RouteFunc must be set.
	Route string

	// RouteFunc builds the route from the payload. Its result is appended
	// to the base URL without interpolation or query parameters.
	RouteFunc RouteFunc[P]

	// Request holds operation specific request options. They have the
	// lowest precedence: client options and authentication win.
	Request RequestOptions

	// RequestFunc computes the operation request options from the payload.
	// When set, Request is ignored.
	RequestFunc func(payload P) RequestOptions

	// Authentication builds the authentication options from the client
	// token. It is only called when a token is set. When nil, the token is
	// sent verbatim in the Authorization header.
	Authentication func(token string) RequestOptions

	// Encoder projects the payload into the request body.
	// Defaults to JSONEncoder.
	Encoder Encoder[P]

	// Decoder builds the result from the response body.
	// Defaults to JSONDecoder.
	Decoder Decoder[T]
}

// descriptorShape is the part of a descriptor that is validated.
type descriptorShape struct {
	Method    Method `validate:"required,oneof=CONNECT DELETE HEAD GET OPTIONS PATCH POST PUT TRACE"`
	Route     string `validate:"required_without=RouteFunc,excluded_with=RouteFunc"`
	RouteFunc bool
}

// Validate reports whether d can be built: the method must be one of the
// known methods and exactly one of Route and RouteFunc must be set.
// Failures are returned as an *Error with code invalid_argument and one
// detail per failing field.
func (d Descriptor[P, T]) Validate() error {
	shape := descriptorShape{
		Method:    d.Method,
		Route:     d.Route,
		RouteFunc: d.RouteFunc != nil,
	}
	if err := validate.Struct(shape); err != nil {
		return validationError(err)
	}
	return nil
}

func (d Descriptor[P, T]) endpoint(namespace, name string, config configFunc) Endpoint {
	info := &CallInfo{
		Namespace: namespace,
		Name:      name,
		Method:    d.Method,
		Route:     d.Route,
	}
	return &endpoint[P, T]{
		info: info,
		op:   buildOperation(d, info, config),
	}
}

// requestOptions merges the options of one call: client options first,
// then authentication, then the descriptor's own options.
func (d Descriptor[P, T]) requestOptions(cfg callConfig, payload P) (RequestOptions, error) {
	var auth RequestOptions
	if cfg.token != "" {
		if d.Authentication != nil {
			auth = d.Authentication(cfg.token)
		} else {
			auth.Header = http.Header{"Authorization": {cfg.token}}
		}
	}

	request := d.Request
	if d.RequestFunc != nil {
		request = d.RequestFunc(payload)
	}

	return mergeOptions(cfg.options, auth, request)
}

// target computes the URL of one call.
func (d Descriptor[P, T]) target(baseURL string, payload P) (string, error) {
	if d.RouteFunc != nil {
		return baseURL + d.RouteFunc(payload), nil
	}
	return BuildRoute(baseURL+d.Route, payload, !CanHaveBody(d.Method))
}

// validatePayload runs the validate struct tags of struct payloads.
// Payloads of other kinds, and nil pointers, are not validated.
func validatePayload(payload any) error {
	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(v.Interface()); err != nil {
		return validationError(err)
	}
	return nil
}
