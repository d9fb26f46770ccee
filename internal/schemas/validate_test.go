package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContactJSON_Valid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "empty object", json: `{}`},
		{name: "name and email", json: `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com"}`},
		{name: "photo", json: `{"fullName":"J","photoDataUrl":"data:image/png;base64,iVBORw0KGgo=","includePhotoInVcf":true}`},
		{name: "blank photo", json: `{"fullName":"J","photoDataUrl":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateContactJSON([]byte(tt.json)))
		})
	}
}

func TestValidateContactJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{name: "unknown field", json: `{"nickname":"JD"}`, field: "(root)"},
		{name: "wrong type", json: `{"firstName":42}`, field: "firstName"},
		{name: "flag not boolean", json: `{"includePhotoInVcf":"yes"}`, field: "includePhotoInVcf"},
		{name: "photo not a data URL", json: `{"photoDataUrl":"https://example.com/me.jpg"}`, field: "photoDataUrl"},
		{name: "not an object", json: `["Jane"]`, field: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContactJSON([]byte(tt.json))
			require.Error(t, err)

			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError type, got %T", err)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.field, validationErr.Errors[0].Field)
			assert.Contains(t, validationErr.Error(), "validation failed")
		})
	}
}

func TestValidateContactJSON_Malformed(t *testing.T) {
	err := ValidateContactJSON([]byte(`{"firstName":`))
	require.Error(t, err)

	_, ok := err.(*DocumentError)
	assert.True(t, ok, "error should be DocumentError type, got %T", err)
}

func TestValidateContactFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"firstName":"Jane"}`), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0644))

	assert.NoError(t, ValidateContactFile(good))

	err := ValidateContactFile(bad)
	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, bad, docErr.Path)

	err = ValidateContactFile(filepath.Join(dir, "missing.json"))
	require.ErrorAs(t, err, &docErr)
	assert.Contains(t, err.Error(), "cannot read file")
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name":"x"}`))

	err := ValidateJSONString(schema, `{}`)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, validationErr.Errors, 1)

	err = ValidateJSONString(`{"type": 12}`, `{}`)
	_, ok = err.(*SchemaLoadError)
	assert.True(t, ok, "error should be SchemaLoadError type, got %T", err)
}
