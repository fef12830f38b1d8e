package tyclient

import (
	"errors"
	"reflect"
	"testing"
)

type routePayload struct {
	ID      int    `json:"id"`
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func TestTokens(t *testing.T) {
	got := Tokens("/a/:id/:b_2/x:id/:ID")
	want := []string{"id", "b_2", "id", "ID"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
	if got := Tokens("/plain/path"); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestBuildRoute(t *testing.T) {
	secret := "s3cret"

	tests := []struct {
		name            string
		template        string
		payload         any
		appendRemainder bool
		want            string
	}{
		{
			name:     "interpolate only",
			template: "http://h/x/:id",
			payload:  routePayload{ID: 42, Version: 1, Name: "pancakes"},
			want:     "http://h/x/42",
		},
		{
			name:            "append remainder in payload order",
			template:        "http://h/x/:id",
			payload:         routePayload{ID: 42, Version: 1, Name: "pancakes"},
			appendRemainder: true,
			want:            "http://h/x/42?version=1&name=pancakes",
		},
		{
			name:     "relative route",
			template: "/users/:id",
			payload:  map[string]any{"id": "abc"},
			want:     "/users/abc",
		},
		{
			name:     "unmatched token stays",
			template: "/x/:id/:missing",
			payload:  map[string]any{"id": 7},
			want:     "/x/7/:missing",
		},
		{
			name:     "repeated token",
			template: "/x/:id/y/:id",
			payload:  map[string]any{"id": 7},
			want:     "/x/7/y/7",
		},
		{
			name:     "null member leaves token",
			template: "/x/:id",
			payload:  map[string]any{"id": nil},
			want:     "/x/:id",
		},
		{
			name:            "null member is sent as null",
			template:        "http://h/x",
			payload:         map[string]any{"a": nil, "b": "2"},
			appendRemainder: true,
			want:            "http://h/x?a=null&b=2",
		},
		{
			name:            "null token member stays out of the query",
			template:        "http://h/x/:id",
			payload:         map[string]any{"id": nil, "b": "2"},
			appendRemainder: true,
			want:            "http://h/x/:id?b=2",
		},
		{
			name:            "empty array member",
			template:        "http://h/x",
			payload:         map[string]any{"tags": []string{}},
			appendRemainder: true,
			want:            "http://h/x?tags=",
		},
		{
			name:     "positional replacement with prefix tokens",
			template: "/:idx/:id",
			payload:  map[string]any{"id": 5},
			want:     "/:idx/5",
		},
		{
			name:     "single character token",
			template: "/x/:v",
			payload:  map[string]any{"v": 2},
			want:     "/x/2",
		},
		{
			name:            "map members in sorted order",
			template:        "http://h/x",
			payload:         map[string]any{"zeta": 1, "alpha": 2},
			appendRemainder: true,
			want:            "http://h/x?alpha=2&zeta=1",
		},
		{
			name:            "array member",
			template:        "http://h/x/:ids",
			payload:         map[string]any{"ids": []int{1, 2}, "tags": []string{"a", "b"}},
			appendRemainder: true,
			want:            "http://h/x/1,2?tags=a&tags=b",
		},
		{
			name:            "object member is compact JSON",
			template:        "http://h/x",
			payload:         map[string]any{"filter": map[string]int{"k": 1}},
			appendRemainder: true,
			want:            "http://h/x?filter=%7B%22k%22%3A1%7D",
		},
		{
			name:            "existing query is kept",
			template:        "http://h/x?a=b",
			payload:         map[string]any{"c": true},
			appendRemainder: true,
			want:            "http://h/x?a=b&c=true",
		},
		{
			name:            "query values are escaped",
			template:        "http://h/x",
			payload:         map[string]any{"q": "a b&c"},
			appendRemainder: true,
			want:            "http://h/x?q=a+b%26c",
		},
		{
			name:     "excluded fields",
			template: "http://h/x",
			payload: struct {
				Public string `json:"public"`
				Secret string `json:"-"`
			}{"p", secret},
			appendRemainder: true,
			want:            "http://h/x?public=p",
		},
		{
			name:            "non-object payload",
			template:        "http://h/x/:id",
			payload:         5,
			appendRemainder: true,
			want:            "http://h/x/:id",
		},
		{
			name:            "nil payload",
			template:        "http://h/x",
			payload:         nil,
			appendRemainder: true,
			want:            "http://h/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildRoute(tt.template, tt.payload, tt.appendRemainder)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildRoute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildRoute_Malformed(t *testing.T) {
	tests := []string{
		"/x/:id",
		"x/:id",
		"http:///x",
	}

	for _, template := range tests {
		t.Run(template, func(t *testing.T) {
			_, err := BuildRoute(template, map[string]any{"id": 1}, true)
			if !errors.Is(err, ErrMalformedRoute) {
				t.Errorf("expected ErrMalformedRoute, got %v", err)
			}
		})
	}

	// Without remainder the route is not parsed.
	if _, err := BuildRoute("/x/:id", map[string]any{"id": 1}, false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildRoute_ProjectionError(t *testing.T) {
	_, err := BuildRoute("/x", map[string]any{"ch": make(chan int)}, false)
	if err == nil {
		t.Fatal("expected error for payload that cannot be projected")
	}
}
