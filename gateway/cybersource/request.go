package cybersource

import (
	"strings"

	"github.com/kevin07696/gateway-kit/pkg/codec"
)

// xmlBuilder assembles the request document. Element order is part of the
// vendor's schema contract, so construction is strictly sequential.
type xmlBuilder struct {
	b strings.Builder
}

func (x *xmlBuilder) open(tag string) *xmlBuilder {
	x.b.WriteByte('<')
	x.b.WriteString(tag)
	x.b.WriteByte('>')
	return x
}

func (x *xmlBuilder) close(tag string) *xmlBuilder {
	x.b.WriteString("</")
	// closing tags drop any attributes the opening tag carried
	if i := strings.IndexByte(tag, ' '); i >= 0 {
		tag = tag[:i]
	}
	x.b.WriteString(tag)
	x.b.WriteByte('>')
	return x
}

// element writes <tag>value</tag>, escaping the value. Empty values write
// nothing: absent optional fields stay off the wire entirely.
func (x *xmlBuilder) element(tag, value string) *xmlBuilder {
	if value == "" {
		return x
	}
	x.open(tag)
	x.b.WriteString(codec.EscapeXML(value))
	x.close(tag)
	return x
}

func (x *xmlBuilder) raw(s string) *xmlBuilder {
	x.b.WriteString(s)
	return x
}

func (x *xmlBuilder) String() string {
	return x.b.String()
}
