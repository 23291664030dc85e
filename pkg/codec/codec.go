// Package codec decodes gateway response bodies (query-string, XML, JSON)
// into flat field maps, and builds ordered form payloads for gateways where
// field order is part of the wire contract.
package codec

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyResponse is returned when a gateway replies with a blank body.
// Callers turn this into a failed result instead of an unhandled parse error.
var ErrEmptyResponse = errors.New("empty response body")

// Content type hints for Parse.
const (
	HintAuto  = ""
	HintQuery = "query"
	HintXML   = "xml"
	HintJSON  = "json"
)

// Parse decodes a raw response body into a flat field map. The hint selects
// the decoder; with HintAuto the body is sniffed by its first character.
func Parse(body []byte, hint string) (map[string]string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	switch hint {
	case HintQuery:
		return ParseQuery(trimmed)
	case HintXML:
		return FlattenXML([]byte(trimmed))
	case HintJSON:
		return FlattenJSON([]byte(trimmed))
	}

	switch trimmed[0] {
	case '<':
		return FlattenXML([]byte(trimmed))
	case '{', '[':
		return FlattenJSON([]byte(trimmed))
	default:
		return ParseQuery(trimmed)
	}
}

// Find returns the value for key, or failing that, for the lexicographically
// first dot-joined path ending in "."+key. Namespaced or nested responses
// can then be read without hard-coding the full path.
func Find(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}

	suffix := "." + key
	keys := make([]string, 0, len(m))
	for k := range m {
		if strings.HasSuffix(k, suffix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return m[keys[0]]
}
