package tyclient

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// tokenPattern matches route tokens such as ":id" or ":user_id".
var tokenPattern = regexp.MustCompile(`(?i):([a-z_][a-z0-9_]*)`)

// RouteFunc builds the route of an operation from its payload.
// The result is appended to the client base URL verbatim.
type RouteFunc[P any] func(payload P) string

// Tokens returns the token names found in template, left to right,
// including repeats.
func Tokens(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// BuildRoute interpolates a route template with values from payload.
//
// Every ":name" token whose payload member is present and not null is
// replaced by the member's string form. Tokens without a value are left in
// place. Payload members are the keys of the payload's JSON projection, so
// json tags name them.
//
// When appendRemainder is true the interpolated route must be an absolute
// URL, and every payload member that does not name a token in the template
// is appended as a query parameter, in payload order. Null members are sent
// as the literal "null":
//
//	BuildRoute("http://h/x/:id", map[string]any{"id": 42, "version": 1}, true)
//	// "http://h/x/42?version=1"
//
// Payloads that do not project to a JSON object contribute no values.
func BuildRoute(template string, payload any, appendRemainder bool) (string, error) {
	fields, err := payloadFields(payload)
	if err != nil {
		return "", err
	}
	members := make(map[string]field, len(fields))
	for _, f := range fields {
		members[f.key] = f
	}

	matches := tokenPattern.FindAllStringSubmatchIndex(template, -1)
	tokens := make(map[string]bool, len(matches))

	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := template[m[2]:m[3]]
		tokens[name] = true

		f, ok := members[name]
		if !ok || !f.present || len(f.values) == 0 {
			continue
		}
		b.WriteString(template[last:m[0]])
		b.WriteString(strings.Join(f.values, ","))
		last = m[1]
	}
	b.WriteString(template[last:])
	route := b.String()

	if !appendRemainder {
		return route, nil
	}

	u, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedRoute, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrMalformedRoute, route)
	}

	var query []string
	if u.RawQuery != "" {
		query = append(query, u.RawQuery)
	}
	for _, f := range fields {
		if tokens[f.key] {
			continue
		}
		values := f.values
		switch {
		case !f.present:
			values = []string{"null"}
		case len(values) == 0:
			values = []string{""}
		}
		for _, v := range values {
			query = append(query, url.QueryEscape(f.key)+"="+url.QueryEscape(v))
		}
	}
	u.RawQuery = strings.Join(query, "&")

	return u.String(), nil
}
