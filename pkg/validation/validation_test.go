package validation

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Day   *int   `json:"recurrence_date" validate:"omitempty,min=1,max=31"`
	Stage string `json:"stage" validate:"omitempty,oneof=a b"`
}

func TestNewUsesJSONNames(t *testing.T) {
	day := 40
	err := New().Struct(sample{Day: &day, Stage: "c"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := map[string]string{}
	for _, fe := range verrs {
		fields[fe.Field()] = Message(fe)
	}
	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "Must be at most 31", fields["recurrence_date"])
	assert.Equal(t, "Must be one of: a b", fields["stage"])
}

func TestNilPointerIsSkipped(t *testing.T) {
	assert.NoError(t, New().Struct(sample{Name: "ok"}))
}
