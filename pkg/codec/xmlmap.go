package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"
)

// FlattenXML decodes an XML document into a flat field map. Attributes and
// element text both become entries; paths below the root element are
// dot-joined and namespace prefixes are dropped, so a SOAP reply like
//
//	<soap:Envelope><soap:Body><replyMessage><requestID>42</requestID>...
//
// yields "Body.replyMessage.requestID" => "42". Attributes on the root
// element (the <ncresponse STATUS="0"/> style) map to bare keys.
func FlattenXML(body []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false

	out := make(map[string]string)
	var stack []string
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > 1 {
				stack = append(stack, t.Name.Local)
			}
			prefix := strings.Join(stack, ".")
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				key := a.Name.Local
				if prefix != "" {
					key = prefix + "." + key
				}
				out[key] = a.Value
			}
		case xml.EndElement:
			depth--
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" && len(stack) > 0 {
				key := strings.Join(stack, ".")
				out[key] = text
				// a leaf whose escaped text decoded into a whole XML
				// document gets flattened below its own key as well
				if strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">") {
					if inner, innerErr := FlattenEmbeddedXML(text); innerErr == nil {
						for k, v := range inner {
							out[key+"."+k] = v
						}
					}
				}
			}
		}
	}

	return out, nil
}

// FlattenEmbeddedXML handles envelopes whose leaf element carries an
// XML-escaped document as text: the value is entity-decoded, then parsed
// as its own XML document.
func FlattenEmbeddedXML(value string) (map[string]string, error) {
	return FlattenXML([]byte(html.UnescapeString(value)))
}

// EscapeXML escapes text for embedding inside an XML element
func EscapeXML(s string) string {
	var b bytes.Buffer
	// xml.EscapeText only fails on writer errors; bytes.Buffer never errors
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
