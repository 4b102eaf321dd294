package validation

import (
	"errors"
	"testing"

	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `yaml:"name" validate:"required,attrkey"`
	Kind string `json:"kind" validate:"omitempty,oneof=a b"`
}

type selfChecked struct {
	sample
	fail bool
}

func (s selfChecked) Validate() error {
	if s.fail {
		return errors.New("self check failed")
	}
	return nil
}

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Struct(sample{Name: "first name", Kind: "a"}))

	err := v.Struct(sample{Name: " padded", Kind: "c"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details, "sample.name")
	assert.Contains(t, appErr.Details, "sample.kind")
	assert.Contains(t, appErr.Message, "must be one of: a, b")
}

func TestValidator_ValidateRunsSelfCheckFirst(t *testing.T) {
	v := GetValidator()
	assert.Same(t, v, GetValidator())

	err := v.Validate(selfChecked{sample: sample{Name: "x"}, fail: true})
	assert.EqualError(t, err, "self check failed")

	assert.NoError(t, v.Validate(selfChecked{sample: sample{Name: "x"}}))
}

func TestValidator_ValidateVar(t *testing.T) {
	v := GetValidator()
	assert.NoError(t, v.ValidateVar("gender", "attrkey"))
	assert.True(t, apperrors.IsValidation(v.ValidateVar("", "attrkey")))
}
