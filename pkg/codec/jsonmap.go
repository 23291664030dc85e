package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlattenJSON decodes a JSON document into a flat field map with dot-joined
// paths, e.g. "additionalData.threeds2.threeDS2Token". Array elements are
// indexed ("items.0.sku"). Numbers keep their source representation.
func FlattenJSON(body []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	out := make(map[string]string)
	flattenValue("", doc, out)
	return out, nil
}

func flattenValue(prefix string, v interface{}, out map[string]string) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			flattenValue(joinPath(prefix, k), child, out)
		}
	case []interface{}:
		for i, child := range val {
			flattenValue(joinPath(prefix, strconv.Itoa(i)), child, out)
		}
	case string:
		out[prefix] = val
	case json.Number:
		out[prefix] = val.String()
	case bool:
		out[prefix] = strconv.FormatBool(val)
	case nil:
		// null fields are omitted from the flat map
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
