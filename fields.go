package tyclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// field is one top-level member of a payload's plain-data projection.
type field struct {
	key     string
	values  []string
	present bool // false when the member is JSON null
}

// payloadFields projects payload through encoding/json and returns the
// members of the resulting object in encoding order: struct field order for
// structs, sorted key order for maps. Payloads that do not project to a JSON
// object have no fields.
func payloadFields(payload any) ([]field, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("tyclient: project payload: %w", err)
	}
	fields, err := objectFields(data)
	if err != nil {
		return nil, fmt.Errorf("tyclient: project payload: %w", err)
	}
	return fields, nil
}

func objectFields(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		values, present, err := plainValues(raw)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}
		fields = append(fields, field{key: key, values: values, present: present})
	}
	return fields, nil
}

// plainValues renders one projected member as strings. Arrays yield one
// string per element; null yields no value and present == false.
func plainValues(raw json.RawMessage) ([]string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}
	if raw[0] != '[' {
		s, err := plainString(raw)
		if err != nil {
			return nil, false, err
		}
		return []string{s}, true, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false, err
	}
	values := make([]string, 0, len(elems))
	for _, elem := range elems {
		s, err := plainString(elem)
		if err != nil {
			return nil, false, err
		}
		values = append(values, s)
	}
	return values, true, nil
}

// plainString is the string form of a single JSON value: strings unquoted,
// numbers and booleans as their literal, objects and arrays as compact JSON.
func plainString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(raw), nil
	}
}
