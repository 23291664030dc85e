package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenJSONNestedObjects(t *testing.T) {
	body := `{
		"pspReference": "8814002632606717",
		"resultCode": "Authorised",
		"additionalData": {
			"cvcResult": "1 Matches",
			"threeds2": {
				"threeDS2Token": "tok_abc"
			}
		}
	}`

	fields, err := FlattenJSON([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "8814002632606717", fields["pspReference"])
	assert.Equal(t, "Authorised", fields["resultCode"])
	assert.Equal(t, "1 Matches", fields["additionalData.cvcResult"])
	assert.Equal(t, "tok_abc", fields["additionalData.threeds2.threeDS2Token"])
}

func TestFlattenJSONScalars(t *testing.T) {
	body := `{"status": 422, "live": false, "score": 12.5, "note": null}`

	fields, err := FlattenJSON([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "422", fields["status"])
	assert.Equal(t, "false", fields["live"])
	assert.Equal(t, "12.5", fields["score"])
	assert.NotContains(t, fields, "note")
}

func TestFlattenJSONArrays(t *testing.T) {
	body := `{"details": [{"code": "901"}, {"code": "905"}]}`

	fields, err := FlattenJSON([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "901", fields["details.0.code"])
	assert.Equal(t, "905", fields["details.1.code"])
}

func TestFlattenJSONMalformed(t *testing.T) {
	_, err := FlattenJSON([]byte(`{"truncated": `))
	assert.Error(t, err)
}
