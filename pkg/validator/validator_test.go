package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string    `validate:"required,min=2"`
	Email string    `validate:"omitempty,email"`
	Owner uuid.UUID `validate:"uuid_required"`
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(&sample{Name: "Ann", Owner: uuid.New()}))

	errs := ValidateStruct(&sample{Name: "A", Email: "nope", Owner: uuid.New()})
	require.Len(t, errs, 2)
	assert.Equal(t, "sample.Name", errs[0].FailedField)
	assert.Equal(t, "min", errs[0].Tag)
	assert.Equal(t, "2", errs[0].Value)

	errs = ValidateStruct(&sample{Name: "Ann"})
	require.Len(t, errs, 1)
	assert.Equal(t, "uuid_required", errs[0].Tag)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	errs := ValidateStruct(&sample{Owner: uuid.New()})
	assert.Equal(t, "Validation failed: Field 'Name' failed on tag 'required'", Describe(errs))
}
