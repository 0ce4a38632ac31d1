package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmployeeValidate(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	assert.NoError(t, (&NewEmployee{Name: "Jane"}).Validate())
	assert.NoError(t, (&NewEmployee{Name: "Jane", CreatedAt: &now}).Validate())
	assert.Error(t, (&NewEmployee{}).Validate())
}

func TestEmployeeBinaryRoundTrip(t *testing.T) {
	t.Parallel()

	original := Employee{
		ID:        7,
		Name:      "Jane",
		CreatedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var restored Employee
	require.NoError(t, restored.UnmarshalBinary(data))

	assert.Equal(t, original, restored)
}
