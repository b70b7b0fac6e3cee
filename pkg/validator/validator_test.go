package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
)

type testStruct struct {
	Mode      string        `validate:"required,oneof=local transport"`
	Addresses []string      `validate:"required_without=CloudID,dive,url"`
	CloudID   string        `validate:"omitempty"`
	Timeout   time.Duration `validate:"gt=0"`
	PoolSize  int           `validate:"gte=0,lte=1024"`
}

func validStruct() testStruct {
	return testStruct{
		Mode:      "transport",
		Addresses: []string{"http://es-1:9200"},
		Timeout:   time.Second,
		PoolSize:  16,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validStruct()))
}

func TestValidate_MissingRequired(t *testing.T) {
	s := validStruct()
	s.Mode = ""

	fields := fieldsOf(t, Validate(s))
	assert.Equal(t, "is required", fields["Mode"])
}

func TestValidate_OneOf(t *testing.T) {
	s := validStruct()
	s.Mode = "embedded"

	fields := fieldsOf(t, Validate(s))
	assert.Equal(t, "must be one of: local transport", fields["Mode"])
}

func TestValidate_InvalidURL(t *testing.T) {
	s := validStruct()
	s.Addresses = []string{"::not-a-url"}

	fields := fieldsOf(t, Validate(s))
	assert.Equal(t, "must be a valid URL", fields["Addresses[0]"])
}

func TestValidate_RequiredWithout(t *testing.T) {
	s := validStruct()
	s.Addresses = nil

	fields := fieldsOf(t, Validate(s))
	assert.Equal(t, "is required when CloudID is empty", fields["Addresses"])

	s.CloudID = "deployment:abc"
	assert.NoError(t, Validate(s))
}

func TestValidate_OutOfRange(t *testing.T) {
	s := validStruct()
	s.PoolSize = 2048
	s.Timeout = 0

	fields := fieldsOf(t, Validate(s))
	assert.Contains(t, fields["PoolSize"], "1024")
	assert.Contains(t, fields["Timeout"], "greater than")
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(testStruct{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Mode'")
	assert.Contains(t, err.Error(), "is required")
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	s := validStruct()
	s.Mode = ""
	err := Validate(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidate_IndexName(t *testing.T) {
	type param struct {
		Index string `validate:"required,lowercase,excludesall=/*?\"<>0x7C #"`
	}

	assert.NoError(t, Validate(param{Index: "products-2024"}))
	assert.Equal(t, "must be lowercase", fieldsOf(t, Validate(param{Index: "Products"}))["Index"])
	assert.Contains(t, fieldsOf(t, Validate(param{Index: "a b"}))["Index"], "must not contain")
}
