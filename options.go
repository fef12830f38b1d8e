package tyclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"dario.cat/mergo"
)

// CacheMode controls the Cache-Control header sent with a request.
type CacheMode string

const (
	CacheDefault      CacheMode = "default"
	CacheNoCache      CacheMode = "no-cache"
	CacheNoStore      CacheMode = "no-store"
	CacheOnlyIfCached CacheMode = "only-if-cached"
)

// RedirectMode controls how redirects are handled by the default transport.
type RedirectMode string

const (
	RedirectFollow RedirectMode = "follow"
	RedirectError  RedirectMode = "error"
	RedirectManual RedirectMode = "manual"
)

// NoReferrer suppresses the Referer header.
const NoReferrer = "no-referrer"

// maxRedirects matches the net/http default.
const maxRedirects = 10

// RequestOptions are the transport options of a request.
// Zero fields are unset and take their value from lower-precedence layers.
type RequestOptions struct {
	Header   http.Header
	Cache    CacheMode
	Redirect RedirectMode
	Referrer string
}

// DefaultRequestOptions returns the options every client starts from:
// no caching, JSON accept and content type, redirects followed, no referrer.
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{
		Header: http.Header{
			"Accept":       {"application/json"},
			"Content-Type": {"application/json"},
		},
		Cache:    CacheNoCache,
		Redirect: RedirectFollow,
		Referrer: NoReferrer,
	}
}

// Clone returns a deep copy of o.
func (o RequestOptions) Clone() RequestOptions {
	o.Header = canonicalHeader(o.Header)
	return o
}

// mergeOptions deep-defaults the given layers: for every option, and every
// header name, the first layer that sets it wins.
func mergeOptions(layers ...RequestOptions) (RequestOptions, error) {
	var merged RequestOptions
	for _, layer := range layers {
		if err := mergo.Merge(&merged, layer.Clone()); err != nil {
			return RequestOptions{}, fmt.Errorf("tyclient: merge request options: %w", err)
		}
	}
	return merged.Clone(), nil
}

// canonicalHeader copies h with canonical header names, so layers that spell
// a name differently still collide when merged.
func canonicalHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := make(http.Header, len(h))
	for k, vs := range h {
		key := http.CanonicalHeaderKey(k)
		out[key] = append(out[key], vs...)
	}
	return out
}

// apply sets the options on req. Headers already present on req are kept.
func (o RequestOptions) apply(req *http.Request) *http.Request {
	for k, vs := range o.Header {
		if _, ok := req.Header[k]; ok {
			continue
		}
		req.Header[k] = append([]string(nil), vs...)
	}

	switch o.Cache {
	case "", CacheDefault:
	default:
		if req.Header.Get("Cache-Control") == "" {
			req.Header.Set("Cache-Control", string(o.Cache))
		}
		if o.Cache == CacheNoCache && req.Header.Get("Pragma") == "" {
			req.Header.Set("Pragma", "no-cache")
		}
	}

	if o.Referrer != "" && o.Referrer != NoReferrer && req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", o.Referrer)
	}

	if o.Redirect != "" && o.Redirect != RedirectFollow {
		req = req.WithContext(context.WithValue(req.Context(), redirectKey, o.Redirect))
	}
	return req
}

var redirectKey = &contextKey{"redirect"}

// RedirectModeFromContext returns the redirect mode of the request being sent.
// Custom transports built on http.Client can consult it from CheckRedirect.
func RedirectModeFromContext(ctx context.Context) RedirectMode {
	if mode, ok := ctx.Value(redirectKey).(RedirectMode); ok {
		return mode
	}
	return RedirectFollow
}

// CheckRedirect is an http.Client CheckRedirect function that honours the
// redirect mode of the request options.
func CheckRedirect(req *http.Request, via []*http.Request) error {
	switch RedirectModeFromContext(req.Context()) {
	case RedirectManual:
		return http.ErrUseLastResponse
	case RedirectError:
		return fmt.Errorf("tyclient: unexpected redirect to %s", req.URL.Redacted())
	}
	if len(via) >= maxRedirects {
		return errors.New("tyclient: stopped after 10 redirects")
	}
	return nil
}
