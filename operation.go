package tyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/broady/tyclient/internal/meta"
)

// Operation sends the request declared by a Descriptor for payload and
// returns the decoded response.
//
// A response status outside [200, 400) is returned as an *Error carrying the
// message reported by the server. Transport and decoder errors are returned
// unmodified. Operations never retry.
type Operation[P, T any] func(ctx context.Context, payload P) (*Response[T], error)

// Endpoint is an operation attached to a client, with its types erased.
// Use Lookup to recover the typed Operation.
type Endpoint interface {
	// Metadata describes the operation.
	Metadata() *meta.EndpointMetadata

	// Invoke calls the operation. payload must be of the operation's payload
	// type; nil stands for its zero value.
	Invoke(ctx context.Context, payload any) (*Response[any], error)
}

// callConfig is the client state an operation reads when it is called.
type callConfig struct {
	baseURL      string
	options      RequestOptions
	token        string
	transport    Doer
	interceptors []Interceptor
}

// configFunc returns the current client configuration. Operations call it
// once per invocation, so changes made after an operation was built apply to
// its later calls.
type configFunc func() callConfig

// Build validates d and builds its operation on c, without attaching it to a
// namespace.
func Build[P, T any](c *Client, d Descriptor[P, T]) (Operation[P, T], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	info := &CallInfo{Method: d.Method, Route: d.Route}
	return buildOperation(d, info, c.config), nil
}

func buildOperation[P, T any](d Descriptor[P, T], info *CallInfo, config configFunc) Operation[P, T] {
	decoder := d.Decoder
	if decoder == nil {
		decoder = JSONDecoder[T]{}
	}

	return func(ctx context.Context, payload P) (*Response[T], error) {
		cfg := config()

		if err := validatePayload(payload); err != nil {
			return nil, err
		}

		var (
			body        io.Reader
			contentType string
		)
		if CanHaveBody(d.Method) {
			var err error
			body, contentType, err = encodeBody(d.Encoder, payload)
			if err != nil {
				return nil, err
			}
		}

		opts, err := d.requestOptions(cfg, payload)
		if err != nil {
			return nil, err
		}

		target, err := d.target(cfg.baseURL, payload)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(withCallInfo(ctx, info), string(d.Method), target, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRoute, err)
		}
		req = opts.apply(req)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		requested := req.URL.String()

		transport := cfg.transport
		if transport == nil {
			transport = defaultTransport
		}
		send := chainInterceptors(cfg.interceptors, info, transport.Do)

		resp, err := send(req)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, errors.New("tyclient: transport returned no response")
		}

		raw, err := readBody(resp)
		if err != nil {
			return nil, err
		}

		data, parseErr := parseBody(raw)
		if !successful(resp.StatusCode) {
			return nil, responseError(resp.StatusCode, data)
		}
		if parseErr != nil {
			return nil, parseErr
		}

		result, err := decoder.Decode(raw)
		if err != nil {
			return nil, err
		}
		return newResponse(resp, requested, result), nil
	}
}

// readBody reads and closes the response body. An empty body reads as the
// JSON document null.
func readBody(resp *http.Response) (json.RawMessage, error) {
	if resp.Body == nil {
		return json.RawMessage("null"), nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tyclient: read response body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	return raw, nil
}

// parseBody parses a response body as JSON.
func parseBody(raw json.RawMessage) (any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("tyclient: parse response body: %w", err)
	}
	return data, nil
}

// endpoint is the Endpoint of a Descriptor[P, T].
type endpoint[P, T any] struct {
	info *CallInfo
	op   Operation[P, T]
}

func (e *endpoint[P, T]) Metadata() *meta.EndpointMetadata {
	return &meta.EndpointMetadata{
		Namespace: e.info.Namespace,
		Name:      e.info.Name,
		Method:    string(e.info.Method),
		Route:     e.info.Route,
		Payload:   reflect.TypeFor[P](),
		Result:    reflect.TypeFor[T](),
	}
}

func (e *endpoint[P, T]) Invoke(ctx context.Context, payload any) (*Response[any], error) {
	var p P
	if payload != nil {
		typed, ok := payload.(P)
		if !ok {
			return nil, fmt.Errorf("%w: %s takes %s, got %T", ErrEndpointType, e.info.EndpointID(), reflect.TypeFor[P](), payload)
		}
		p = typed
	}

	resp, err := e.op(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Response[any]{
		Header:     resp.Header,
		OK:         resp.OK,
		Redirected: resp.Redirected,
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Trailer:    resp.Trailer,
		Proto:      resp.Proto,
		URL:        resp.URL,
		Data:       resp.Data,
	}, nil
}

// Lookup returns the typed operation attached to c under namespace and name.
// Use an empty namespace for operations attached with Client.Register.
func Lookup[P, T any](c *Client, namespace, name string) (Operation[P, T], error) {
	ep, ok := c.Endpoint(namespace, name)
	if !ok {
		info := CallInfo{Namespace: namespace, Name: name}
		return nil, Errorf(CodeNotFound, "endpoint %s not found", info.EndpointID()).
			WithDetail("namespace", namespace).
			WithDetail("name", name)
	}
	typed, ok := ep.(*endpoint[P, T])
	if !ok {
		m := ep.Metadata()
		info := CallInfo{Namespace: m.Namespace, Name: m.Name}
		return nil, fmt.Errorf("%w: %s is Operation[%s, %s]", ErrEndpointType, info.EndpointID(), m.Payload, m.Result)
	}
	return typed.op, nil
}
