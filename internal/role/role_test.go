package role

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r, err := Parse(" Retailer ")
	require.NoError(t, err)
	assert.Equal(t, Retailer, r)

	_, err = Parse("superuser")
	assert.True(t, errors.Is(err, ErrUnknownRole))
	assert.Contains(t, err.Error(), "manufacturer, customer, retailer, admin")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Administrator", Admin.Label())
	assert.Equal(t, "Retailer", Retailer.Label())
	assert.Equal(t, "guest", Role("guest").Label())
}

func TestHomePath(t *testing.T) {
	want := map[Role]string{
		Manufacturer: "/manufacturer/dashboard",
		Customer:     "/",
		Retailer:     "/retailer/dashboard",
		Admin:        "/admin/dashboard",
	}
	for _, r := range All() {
		path, err := r.HomePath()
		require.NoError(t, err)
		assert.Equal(t, want[r], path, r)
		assert.True(t, r.Valid())
	}

	_, err := Role("guest").HomePath()
	assert.True(t, errors.Is(err, ErrUnknownRole))
	assert.False(t, Role("guest").Valid())
}
