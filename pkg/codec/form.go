package codec

import (
	"net/url"
	"strings"
)

// Fields is an ordered list of form fields. Some gateways compute request
// signatures over an exact field-and-order concatenation, so insertion
// order must survive encoding.
type Fields struct {
	keys   []string
	values map[string]string
}

// NewFields creates an empty ordered field set
func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set adds a field, preserving insertion order. Setting an existing key
// updates the value in place.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// SetIfPresent adds a field only when the value is non-empty
func (f *Fields) SetIfPresent(key, value string) {
	if value != "" {
		f.Set(key, value)
	}
}

// Get returns the value for key, or "" when absent
func (f *Fields) Get(key string) string {
	return f.values[key]
}

// Keys returns the field names in insertion order
func (f *Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Map returns a copy of the fields as a plain map
func (f *Fields) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Encode renders the fields as application/x-www-form-urlencoded in
// insertion order.
func (f *Fields) Encode() string {
	var b strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.values[k]))
	}
	return b.String()
}

// ParseQuery decodes a query-string body (key=value&key2=value2) into a
// flat map, keeping the first value for repeated keys.
func ParseQuery(body string) (map[string]string, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}
