package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestValidator_Valid(t *testing.T) {
	v, err := NewValidator("person", []byte(personSchema))
	require.NoError(t, err)

	assert.NoError(t, v.Validate("doc.json", []byte(`{"name": "Ada", "tags": ["x"]}`)))
}

func TestValidator_Invalid(t *testing.T) {
	v, err := NewValidator("person", []byte(personSchema))
	require.NoError(t, err)

	err = v.Validate("doc.json", []byte(`{"tags": ["x", 3]}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "doc.json", validationErr.Document)
	require.Len(t, validationErr.Errors, 2)

	fields := []string{validationErr.Errors[0].Field, validationErr.Errors[1].Field}
	assert.ElementsMatch(t, []string{"(root)", "tags.1"}, fields)
	assert.Contains(t, err.Error(), "validation of doc.json failed")
}

func TestValidator_MalformedDocument(t *testing.T) {
	v, err := NewValidator("person", []byte(personSchema))
	require.NoError(t, err)

	err = v.Validate("doc.json", []byte(`{"name": `))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "doc.json")
}

func TestNewValidator_InvalidSchema(t *testing.T) {
	_, err := NewValidator("broken", []byte(`{"type": 12}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "broken", loadErr.Path)
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "Ada"}`))

	err := ValidateJSONString(personSchema, `{"name": 1}`)
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "name is required"},
		{Field: "tags.0", Message: "Invalid type"},
	}}

	assert.Equal(t, "validation failed:\n  1. name: name is required\n  2. tags.0: Invalid type\n", err.Error())
}
