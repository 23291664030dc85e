package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenXMLRootAttributes(t *testing.T) {
	body := `<?xml version="1.0"?><ncresponse orderID="99" PAYID="3014726" NCSTATUS="0" NCERROR="0" STATUS="9" NCERRORPLUS="!"/>`

	fields, err := FlattenXML([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "3014726", fields["PAYID"])
	assert.Equal(t, "0", fields["NCSTATUS"])
	assert.Equal(t, "9", fields["STATUS"])
	assert.Equal(t, "99", fields["orderID"])
}

func TestFlattenXMLNestedElements(t *testing.T) {
	body := `<RESPONSE>
		<FIELDS>
			<AUTH_GUID>0J1BXI0BFJH</AUTH_GUID>
			<AUTH_RESP>00</AUTH_RESP>
		</FIELDS>
	</RESPONSE>`

	fields, err := FlattenXML([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "0J1BXI0BFJH", fields["FIELDS.AUTH_GUID"])
	assert.Equal(t, "00", fields["FIELDS.AUTH_RESP"])
}

func TestFlattenXMLSOAPEnvelopeDropsNamespacePrefixes(t *testing.T) {
	body := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
		<soap:Body>
			<c:replyMessage xmlns:c="urn:schemas-cybersource-com:transaction-data-1.201">
				<c:requestID>7914002629995504</c:requestID>
				<c:decision>ACCEPT</c:decision>
				<c:reasonCode>100</c:reasonCode>
				<c:ccAuthReply>
					<c:avsCode>Y</c:avsCode>
				</c:ccAuthReply>
			</c:replyMessage>
		</soap:Body>
	</soap:Envelope>`

	fields, err := FlattenXML([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "7914002629995504", fields["Body.replyMessage.requestID"])
	assert.Equal(t, "ACCEPT", fields["Body.replyMessage.decision"])
	assert.Equal(t, "Y", fields["Body.replyMessage.ccAuthReply.avsCode"])

	// suffix lookup works across the namespace-less paths
	assert.Equal(t, "100", Find(fields, "reasonCode"))
}

func TestFlattenXMLTruncated(t *testing.T) {
	_, err := FlattenXML([]byte(`<RESPONSE><FIELDS><AUTH_GUID>abc`))
	assert.Error(t, err)
}

func TestFlattenEmbeddedXML(t *testing.T) {
	// envelope leaf carrying the real payload XML-escaped as text
	outer := `<envelope><payload>&lt;result code=&quot;0&quot;&gt;&lt;id&gt;555&lt;/id&gt;&lt;/result&gt;</payload></envelope>`

	fields, err := FlattenXML([]byte(outer))
	require.NoError(t, err)
	require.Contains(t, fields, "payload")

	inner, err := FlattenEmbeddedXML(fields["payload"])
	require.NoError(t, err)
	assert.Equal(t, "0", inner["code"])
	assert.Equal(t, "555", inner["id"])

	// the flattener also expands the embedded document in place, below
	// the carrying leaf's key
	assert.Equal(t, "0", fields["payload.code"])
	assert.Equal(t, "555", fields["payload.id"])
}

func TestFlattenXMLLeafTextIsNotMistakenForXML(t *testing.T) {
	fields, err := FlattenXML([]byte(`<r><note>1 &lt; 2 holds</note><arrow>-&gt;</arrow></r>`))
	require.NoError(t, err)

	assert.Equal(t, "1 < 2 holds", fields["note"])
	assert.Equal(t, "->", fields["arrow"])
	assert.NotContains(t, fields, "note.2 holds")
}

func TestFlattenEmbeddedXMLDoubleEscaped(t *testing.T) {
	// entity-encode twice: &amp;lt; decodes to &lt; on the first pass
	inner, err := FlattenEmbeddedXML("&lt;r v=&quot;a&amp;amp;b&quot;/&gt;")
	require.NoError(t, err)
	assert.Equal(t, "a&b", inner["v"])
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "a &amp; b &lt;c&gt;", EscapeXML("a & b <c>"))
}
