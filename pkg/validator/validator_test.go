package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Owner uuid.UUID `validate:"uuid_required"`
	Name  string    `validate:"required"`
	Stock float64   `validate:"gte=0"`
}

func TestValidateStructPasses(t *testing.T) {
	errs := ValidateStruct(&sample{Owner: uuid.New(), Name: "Flour", Stock: 0})
	assert.Empty(t, errs)
}

func TestValidateStructReportsFailedFields(t *testing.T) {
	errs := ValidateStruct(&sample{Stock: -1})
	require.Len(t, errs, 3)

	fields := map[string]string{}
	for _, e := range errs {
		fields[e.FailedField] = e.Tag
	}
	assert.Equal(t, "uuid_required", fields["sample.Owner"])
	assert.Equal(t, "required", fields["sample.Name"])
	assert.Equal(t, "gte", fields["sample.Stock"])
}
