package tyclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"
)

const formContentType = "application/x-www-form-urlencoded"

// Encoder projects a typed payload into plain data for a request body.
//
// The plain data is sent as follows: url.Values form encoded,
// json.RawMessage and []byte verbatim, anything else as JSON.
type Encoder[P any] interface {
	Encode(payload P) (any, error)
}

// Decoder builds a typed result from the plain data of a response body.
type Decoder[T any] interface {
	Decode(data json.RawMessage) (T, error)
}

// Codec encodes and decodes the same type.
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

// ContentTyper is implemented by encoders whose output is not JSON.
// Its content type replaces the request Content-Type header.
type ContentTyper interface {
	ContentType() string
}

// EncoderFunc adapts a function to the Encoder interface.
type EncoderFunc[P any] func(payload P) (any, error)

func (f EncoderFunc[P]) Encode(payload P) (any, error) {
	return f(payload)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc[T any] func(data json.RawMessage) (T, error)

func (f DecoderFunc[T]) Decode(data json.RawMessage) (T, error) {
	return f(data)
}

// JSONEncoder is the default encoder. It projects the payload through
// encoding/json, so struct tags decide the shape of the body:
// fields tagged `json:"-"` are excluded and omitempty fields are dropped
// when empty.
type JSONEncoder[P any] struct{}

func (JSONEncoder[P]) Encode(payload P) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tyclient: encode payload: %w", err)
	}
	return json.RawMessage(data), nil
}

// JSONDecoder is the default decoder. It unmarshals the response body into T.
// With T = any the result is the raw parsed data.
type JSONDecoder[T any] struct{}

func (JSONDecoder[T]) Decode(data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("tyclient: decode response: %w", err)
	}
	return v, nil
}

// JSONCodec encodes and decodes T with encoding/json.
//
// Example:
//
//	var users = tyclient.JSONCodec[User]{}
//
//	get := tyclient.Descriptor[GetUser, User]{
//	    Method:  tyclient.MethodGet,
//	    Route:   "/users/:id",
//	    Decoder: users,
//	}
type JSONCodec[T any] struct {
	JSONEncoder[T]
	JSONDecoder[T]
}

// FormEncoder encodes struct payloads as application/x-www-form-urlencoded
// bodies using gorilla/schema, the same library tygor servers use to decode
// query strings into request structs.
type FormEncoder[P any] struct {
	encoder *schema.Encoder
}

// NewFormEncoder returns a FormEncoder that names fields after the given
// struct tag. An empty tag means "json".
func NewFormEncoder[P any](tag string) *FormEncoder[P] {
	if tag == "" {
		tag = "json"
	}
	enc := schema.NewEncoder()
	enc.SetAliasTag(tag)
	enc.RegisterEncoder(float64(0), formatFloat(64))
	enc.RegisterEncoder(float32(0), formatFloat(32))
	enc.RegisterEncoder(time.Time{}, func(v reflect.Value) string {
		return v.Interface().(time.Time).Format(time.RFC3339Nano)
	})
	return &FormEncoder[P]{encoder: enc}
}

func (e *FormEncoder[P]) Encode(payload P) (any, error) {
	values := url.Values{}
	if err := e.encoder.Encode(payload, values); err != nil {
		return nil, fmt.Errorf("tyclient: encode form: %w", err)
	}
	return values, nil
}

func (e *FormEncoder[P]) ContentType() string {
	return formContentType
}

func formatFloat(bits int) func(reflect.Value) string {
	return func(v reflect.Value) string {
		return strconv.FormatFloat(v.Float(), 'f', -1, bits)
	}
}

// encodeBody encodes payload with enc, falling back to JSONEncoder, and
// returns the request body and the content type it requires ("" keeps the
// configured Content-Type).
func encodeBody[P any](enc Encoder[P], payload P) (io.Reader, string, error) {
	if enc == nil {
		enc = JSONEncoder[P]{}
	}
	plain, err := enc.Encode(payload)
	if err != nil {
		return nil, "", err
	}

	var contentType string
	if ct, ok := enc.(ContentTyper); ok {
		contentType = ct.ContentType()
	}

	switch v := plain.(type) {
	case nil:
		return nil, contentType, nil
	case url.Values:
		if contentType == "" {
			contentType = formContentType
		}
		return strings.NewReader(v.Encode()), contentType, nil
	case json.RawMessage:
		return bytes.NewReader(v), contentType, nil
	case []byte:
		return bytes.NewReader(v), contentType, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("tyclient: encode payload: %w", err)
		}
		return bytes.NewReader(data), contentType, nil
	}
}
