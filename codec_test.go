package tyclient

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"
)

type codecUser struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Password string    `json:"-"`
	Nickname string    `json:"nickname,omitempty"`
	Score    float64   `json:"score,omitempty"`
	Joined   time.Time `json:"joined,omitzero"`
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	if r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestEncodeBody_JSON(t *testing.T) {
	body, ct, err := encodeBody[codecUser](nil, codecUser{ID: 1, Name: "Ada", Password: "hunter2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct != "" {
		t.Errorf("expected no content type override, got %q", ct)
	}
	if got := readAll(t, body); got != `{"id":1,"name":"Ada"}` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestEncodeBody_CustomEncoder(t *testing.T) {
	tests := []struct {
		name    string
		encoder Encoder[codecUser]
		wantCT  string
		want    string
	}{
		{
			name: "plain data",
			encoder: EncoderFunc[codecUser](func(u codecUser) (any, error) {
				return map[string]any{"user_id": u.ID}, nil
			}),
			want: `{"user_id":1}`,
		},
		{
			name: "raw bytes",
			encoder: EncoderFunc[codecUser](func(u codecUser) (any, error) {
				return []byte("raw"), nil
			}),
			want: "raw",
		},
		{
			name: "url values",
			encoder: EncoderFunc[codecUser](func(u codecUser) (any, error) {
				return url.Values{"name": {u.Name}}, nil
			}),
			wantCT: formContentType,
			want:   "name=Ada",
		},
		{
			name: "no body",
			encoder: EncoderFunc[codecUser](func(u codecUser) (any, error) {
				return nil, nil
			}),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct, err := encodeBody(tt.encoder, codecUser{ID: 1, Name: "Ada"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ct != tt.wantCT {
				t.Errorf("expected content type %q, got %q", tt.wantCT, ct)
			}
			if got := readAll(t, body); got != tt.want {
				t.Errorf("expected body %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEncodeBody_EncoderError(t *testing.T) {
	boom := errors.New("boom")
	enc := EncoderFunc[codecUser](func(codecUser) (any, error) { return nil, boom })
	if _, _, err := encodeBody(enc, codecUser{}); !errors.Is(err, boom) {
		t.Errorf("expected encoder error, got %v", err)
	}
}

func TestFormEncoder(t *testing.T) {
	enc := NewFormEncoder[codecUser]("")
	plain, err := enc.Encode(codecUser{ID: 3, Name: "Grace", Score: 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, ok := plain.(url.Values)
	if !ok {
		t.Fatalf("expected url.Values, got %T", plain)
	}
	if values.Get("id") != "3" {
		t.Errorf("expected id=3, got %q", values.Get("id"))
	}
	if values.Get("name") != "Grace" {
		t.Errorf("expected name=Grace, got %q", values.Get("name"))
	}
	if values.Get("score") != "1.5" {
		t.Errorf("expected score=1.5, got %q", values.Get("score"))
	}
	if values.Has("Password") || values.Has("-") {
		t.Errorf("excluded field was encoded: %v", values)
	}
	if enc.ContentType() != formContentType {
		t.Errorf("unexpected content type %q", enc.ContentType())
	}
}

func TestJSONDecoder(t *testing.T) {
	user, err := JSONDecoder[codecUser]{}.Decode(json.RawMessage(`{"id":9,"name":"Linus"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 9 || user.Name != "Linus" {
		t.Errorf("unexpected user: %+v", user)
	}

	ptr, err := JSONDecoder[*codecUser]{}.Decode(json.RawMessage("null"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ptr != nil {
		t.Errorf("expected nil for null body, got %+v", ptr)
	}

	if _, err := (JSONDecoder[codecUser]{}).Decode(json.RawMessage(`[1,2]`)); err == nil {
		t.Error("expected error decoding array into struct")
	}
}

func TestJSONCodec(t *testing.T) {
	var codec Codec[codecUser] = JSONCodec[codecUser]{}
	plain, err := codec.Encode(codecUser{ID: 1, Name: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, ok := plain.(json.RawMessage)
	if !ok {
		t.Fatalf("expected json.RawMessage, got %T", plain)
	}
	back, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.ID != 1 || back.Name != "x" {
		t.Errorf("unexpected value: %+v", back)
	}
}
