package tyclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/broady/tyclient/internal/meta"
)

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// defaultTransport is used when no transport is configured.
// It honours the redirect mode of the request options.
var defaultTransport Doer = &http.Client{CheckRedirect: CheckRedirect}

// reservedNames may not be used as namespace or operation names.
var reservedNames = []string{
	"authentication",
	"options",
	"namespace",
	"register",
	"buildOperation",
}

// Options configures a Client.
type Options struct {
	// BaseURL is prepended to every route. It is used as given; no slash
	// is added or removed.
	BaseURL string `validate:"required"`

	// RequestOptions are the default options of every request. They take
	// precedence over authentication and descriptor options.
	RequestOptions RequestOptions
}

// Client builds operations from descriptors and holds the configuration
// they read when called: base URL, default request options and
// authentication token.
//
// Operations are attached in named namespaces with Namespace, or without a
// namespace with Register, and looked up with Endpoint or Lookup.
type Client struct {
	mu           sync.RWMutex
	namespaces   map[string]map[string]Endpoint
	endpoints    map[string]Endpoint
	options      atomic.Pointer[Options]
	token        atomic.Pointer[string]
	transport    Doer
	interceptors []Interceptor
	logger       *slog.Logger
}

// NewClient creates a client. The request options in opts are completed with
// DefaultRequestOptions: options opts sets itself win.
func NewClient(opts Options) (*Client, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	merged, err := mergeOptions(opts.RequestOptions, DefaultRequestOptions())
	if err != nil {
		return nil, err
	}
	opts.RequestOptions = merged

	c := &Client{
		namespaces: make(map[string]map[string]Endpoint),
		endpoints:  make(map[string]Endpoint),
		transport:  defaultTransport,
	}
	c.options.Store(&opts)
	return c, nil
}

func validateOptions(opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return validationError(err)
	}
	return nil
}

// WithTransport sets the transport used by every operation of the client.
// A nil transport restores the default one. Calls already in flight keep the
// transport they started with.
// It returns the client for chaining.
func (c *Client) WithTransport(t Doer) *Client {
	if t == nil {
		t = defaultTransport
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport = t
	return c
}

// WithInterceptor adds an interceptor around the transport.
// Interceptors run in the order they were added (first added is outermost).
func (c *Client) WithInterceptor(i Interceptor) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptors = append(slices.Clip(c.interceptors), i)
	return c
}

// WithLogger sets a custom logger for the client.
// If not set, slog.Default() will be used.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
	return c
}

// getLogger must be called with c.mu held.
func (c *Client) getLogger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Options returns a copy of the current client options.
func (c *Client) Options() Options {
	opts := *c.options.Load()
	opts.RequestOptions = opts.RequestOptions.Clone()
	return opts
}

// SetOptions replaces the client options. The request options are used as
// given, without DefaultRequestOptions. Operations already built see the new
// options on their next call.
func (c *Client) SetOptions(opts Options) error {
	if err := validateOptions(opts); err != nil {
		return err
	}
	opts.RequestOptions = opts.RequestOptions.Clone()
	c.options.Store(&opts)
	return nil
}

// Authentication returns the authentication token, if one is set.
func (c *Client) Authentication() (string, bool) {
	token := c.token.Load()
	if token == nil || *token == "" {
		return "", false
	}
	return *token, true
}

// SetAuthentication sets the token sent with every following call.
// The empty token clears it.
func (c *Client) SetAuthentication(token string) {
	c.token.Store(&token)
}

// ClearAuthentication removes the authentication token.
func (c *Client) ClearAuthentication() {
	c.token.Store(nil)
}

// config snapshots the state read by one operation call.
func (c *Client) config() callConfig {
	opts := c.options.Load()
	token, _ := c.Authentication()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return callConfig{
		baseURL:      opts.BaseURL,
		options:      opts.RequestOptions,
		token:        token,
		transport:    c.transport,
		interceptors: c.interceptors,
	}
}

// Namespace builds an operation for every descriptor in group and attaches
// them to the client under name. group is a map with string keys or a struct
// whose exported fields hold descriptors (the `op:"name"` tag renames a
// field). Entries that are not descriptors are ignored.
//
// Attaching a namespace that already exists replaces it and logs a warning.
//
// Example:
//
//	err := client.Namespace("user", tyclient.Group{
//	    "get":    tyclient.Descriptor[GetUser, User]{Method: tyclient.MethodGet, Route: "/users/:id"},
//	    "create": tyclient.Descriptor[CreateUser, User]{Method: tyclient.MethodPost, Route: "/users"},
//	})
func (c *Client) Namespace(name string, group any) error {
	if err := checkName("Namespace", name); err != nil {
		return err
	}
	if name == "" {
		return NewError(CodeInvalidArgument, "namespace name is required")
	}

	entries, err := groupEntries(group)
	if err != nil {
		return err
	}
	built := make(map[string]Endpoint, len(entries))
	for _, e := range entries {
		def, ok, err := e.definition()
		if err != nil {
			return fmt.Errorf("tyclient: operation %s.%s: %w", name, e.name, err)
		}
		if !ok {
			continue
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("tyclient: operation %s.%s: %w", name, e.name, err)
		}
		built[e.name] = def.endpoint(name, e.name, c.config)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.getLogger()
	if _, exists := c.namespaces[name]; exists {
		logger.Warn("duplicate namespace registration",
			slog.String("namespace", name))
	}
	c.namespaces[name] = built
	logger.Debug("namespace registered",
		slog.String("namespace", name),
		slog.Int("operations", len(built)))
	return nil
}

// Register builds an operation for every descriptor in group and attaches
// each one to the client under its own name, outside any namespace. group is
// interpreted as in Namespace. Every entry name is checked before anything is
// attached, so a conflicting name leaves the client unchanged.
func (c *Client) Register(group any) error {
	entries, err := groupEntries(group)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := checkName("Method", e.name); err != nil {
			return err
		}
	}

	type namedEndpoint struct {
		name string
		ep   Endpoint
	}
	built := make([]namedEndpoint, 0, len(entries))
	for _, e := range entries {
		def, ok, err := e.definition()
		if err != nil {
			return fmt.Errorf("tyclient: operation %s: %w", e.name, err)
		}
		if !ok {
			continue
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("tyclient: operation %s: %w", e.name, err)
		}
		built = append(built, namedEndpoint{e.name, def.endpoint("", e.name, c.config)})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.getLogger()
	for _, b := range built {
		if _, exists := c.endpoints[b.name]; exists {
			logger.Warn("duplicate operation registration",
				slog.String("operation", b.name))
		}
		c.endpoints[b.name] = b.ep
	}
	return nil
}

// Endpoint returns the operation attached under namespace and name.
// Operations attached with Register have an empty namespace.
func (c *Client) Endpoint(namespace, name string) (Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if namespace == "" {
		ep, ok := c.endpoints[name]
		return ep, ok
	}
	ep, ok := c.namespaces[namespace][name]
	return ep, ok
}

// Endpoints returns the metadata of every attached operation, keyed by
// "namespace.name" (just "name" outside namespaces).
func (c *Client) Endpoints() map[string]*meta.EndpointMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*meta.EndpointMetadata)
	for name, ep := range c.endpoints {
		out[name] = ep.Metadata()
	}
	for ns, eps := range c.namespaces {
		for name, ep := range eps {
			out[ns+"."+name] = ep.Metadata()
		}
	}
	return out
}

func checkName(kind, name string) error {
	if slices.Contains(reservedNames, name) {
		return fmt.Errorf("%w: %s (%s) cannot be used because it conflicts with Client.%s", ErrNameConflict, kind, name, name)
	}
	return nil
}

// Group is a set of descriptors keyed by operation name, for use with
// Client.Namespace and Client.Register.
type Group map[string]Definition

type groupEntry struct {
	name  string
	value any
}

// definition returns the entry as a Definition. ok is false for entries that
// are not descriptors. A nil *Descriptor is an error.
func (e groupEntry) definition() (def Definition, ok bool, err error) {
	def, ok = e.value.(Definition)
	if !ok {
		return nil, false, nil
	}
	if v := reflect.ValueOf(def); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, false, fmt.Errorf("%w: nil %T", ErrInvalidGroup, e.value)
	}
	return def, true, nil
}

// groupEntries lists the entries of a group: map entries in sorted key
// order, or exported struct fields in declaration order.
func groupEntries(group any) ([]groupEntry, error) {
	v := reflect.ValueOf(group)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("%w: nil group", ErrInvalidGroup)
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keys must be strings, got %s", ErrInvalidGroup, v.Type().Key())
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		entries := make([]groupEntry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, groupEntry{name: k.String(), value: v.MapIndex(k).Interface()})
		}
		return entries, nil

	case reflect.Struct:
		t := v.Type()
		entries := make([]groupEntry, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag := f.Tag.Get("op"); tag != "" {
				if tag == "-" {
					continue
				}
				name = tag
			}
			entries = append(entries, groupEntry{name: name, value: v.Field(i).Interface()})
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("%w: %T is neither a map nor a struct", ErrInvalidGroup, group)
	}
}
