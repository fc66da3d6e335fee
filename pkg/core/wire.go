package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
)

// Payload is a JSON object as it appears on the wire, keyed by the
// abbreviated wire aliases.
type Payload map[string]any

// ParsePayload parses a response body into a Payload.
// A body that is not a JSON object is a decode error.
func ParsePayload(body []byte) (Payload, error) {
	var p Payload
	if err := sonic.Unmarshal(body, &p); err != nil {
		de := NewDecodeError("", "malformed response body")
		de.Err = err
		return nil, de
	}
	if p == nil {
		return nil, NewDecodeError("", "response body is not an object")
	}
	return p, nil
}

// Schema decodes a Payload into a domain value.
// Each response kind provides its own Schema, so new kinds never touch the executor.
type Schema[T any] func(p Payload) (T, error)

// Decoder reads fields out of a Payload by wire key.
// The first missing or malformed required field is recorded and every later
// read becomes a no-op, so a schema reads all its fields and checks Err once.
type Decoder struct {
	p      Payload
	prefix string
	err    error
}

// NewDecoder returns a Decoder over p.
func NewDecoder(p Payload) *Decoder {
	return &Decoder{p: p}
}

// Err returns the first decode failure, if any.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail(key, message string) {
	if d.err == nil {
		d.err = NewDecodeError(d.prefix+key, message)
	}
}

func (d *Decoder) lookup(key string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	v, ok := d.p[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *Decoder) required(key string) (any, bool) {
	v, ok := d.lookup(key)
	if !ok {
		d.fail(key, "missing required field")
	}
	return v, ok
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// String reads a required string field. A present blank string is returned as is.
func (d *Decoder) String(key string) string {
	v, ok := d.required(key)
	if !ok {
		return ""
	}
	s, ok := asString(v)
	if !ok {
		d.fail(key, fmt.Sprintf("expected string, got %T", v))
	}
	return s
}

// OptString reads an optional string field. Absent, null and blank all decode to None.
func (d *Decoder) OptString(key string) Optional[string] {
	v, ok := d.lookup(key)
	if !ok || isBlank(v) {
		return None[string]()
	}
	s, ok := asString(v)
	if !ok {
		d.fail(key, fmt.Sprintf("expected string, got %T", v))
		return None[string]()
	}
	return Some(s)
}

// Int reads a required integer field. Numeric strings are accepted.
func (d *Decoder) Int(key string) int {
	v, ok := d.required(key)
	if !ok {
		return 0
	}
	n, err := asInt(v)
	if err != nil {
		d.fail(key, err.Error())
	}
	return n
}

// OptInt reads an optional integer field.
func (d *Decoder) OptInt(key string) Optional[int] {
	v, ok := d.lookup(key)
	if !ok || isBlank(v) {
		return None[int]()
	}
	n, err := asInt(v)
	if err != nil {
		d.fail(key, err.Error())
		return None[int]()
	}
	return Some(n)
}

// Decimal reads a required decimal field, accepting sign-prefixed strings like "+181400".
func (d *Decoder) Decimal(key string) *apd.Decimal {
	v, ok := d.required(key)
	if !ok {
		return nil
	}
	s, _ := asString(v)
	dec, err := ParseDecimal(s)
	if err != nil {
		d.fail(key, err.Error())
		return nil
	}
	return dec
}

// OptDecimal reads an optional decimal field.
func (d *Decoder) OptDecimal(key string) Optional[*apd.Decimal] {
	v, ok := d.lookup(key)
	if !ok || isBlank(v) {
		return None[*apd.Decimal]()
	}
	s, _ := asString(v)
	dec, err := ParseDecimal(s)
	if err != nil {
		d.fail(key, err.Error())
		return None[*apd.Decimal]()
	}
	return Some(dec)
}

// Time reads a required timestamp field in the given layout and location.
func (d *Decoder) Time(key, layout string, loc *time.Location) time.Time {
	s := d.String(key)
	if d.err != nil {
		return time.Time{}
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
	if err != nil {
		d.fail(key, fmt.Sprintf("invalid time %q", s))
	}
	return t
}

// OptTime reads an optional timestamp field in the given layout and location.
func (d *Decoder) OptTime(key, layout string, loc *time.Location) Optional[time.Time] {
	s, ok := d.OptString(key).Get()
	if !ok {
		return None[time.Time]()
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
	if err != nil {
		d.fail(key, fmt.Sprintf("invalid time %q", s))
		return None[time.Time]()
	}
	return Some(t)
}

// Object reads an optional nested object. A present non-object value is a decode error.
func (d *Decoder) Object(key string) Optional[Payload] {
	v, ok := d.lookup(key)
	if !ok {
		return None[Payload]()
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.fail(key, fmt.Sprintf("expected object, got %T", v))
		return None[Payload]()
	}
	return Some(Payload(m))
}

// Objects reads a required array of objects.
func (d *Decoder) Objects(key string) []Payload {
	v, ok := d.required(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		d.fail(key, fmt.Sprintf("expected array, got %T", v))
		return nil
	}
	out := make([]Payload, 0, len(arr))
	for i, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			d.fail(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("expected object, got %T", item))
			return nil
		}
		out = append(out, Payload(m))
	}
	return out
}

// DecodeAt runs schema over a nested payload, prefixing any decode error
// field with path so it names the location within the whole body.
func DecodeAt[T any](path string, p Payload, schema Schema[T]) (T, error) {
	v, err := schema(p)
	if err != nil {
		if de, ok := AsError(err); ok && de.Type == ErrorTypeDecode {
			nested := *de
			nested.Field = path + "." + de.Field
			return v, &nested
		}
	}
	return v, err
}

// ParseDecimal parses a brokerage numeric string. Leading '+' and '-' signs
// are part of the value; blank strings are rejected.
func ParseDecimal(s string) (*apd.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty decimal")
	}
	s = strings.TrimPrefix(s, "+")
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q", s)
	}
	return d, nil
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func asInt(v any) (int, error) {
	switch val := v.(type) {
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("expected integer, got %v", val)
		}
		return int(val), nil
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
