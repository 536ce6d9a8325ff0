package personnel

import (
	"testing"

	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPerson(t *testing.T) {
	t.Run("creates active person", func(t *testing.T) {
		p, err := NewPerson(Profile{Name: " Mario Rossi ", Role: "Autista", ShirtSize: "L"})

		require.NoError(t, err)
		assert.Equal(t, "Mario Rossi", p.Name)
		assert.Equal(t, "Autista", p.Role)
		assert.True(t, p.Active)
		assert.NoError(t, p.CanReceive())
		require.Len(t, p.PendingEvents(), 1)
		assert.Equal(t, EventTypePersonCreated, p.PendingEvents()[0].EventType())
	})

	t.Run("requires a name", func(t *testing.T) {
		p, err := NewPerson(Profile{Role: "Autista"})

		assert.Nil(t, p)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestPerson_ActivationCycle(t *testing.T) {
	p, err := NewPerson(Profile{Name: "Giulia Bianchi"})
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.Active)
	assert.ErrorIs(t, p.CanReceive(), shared.ErrValidation)
	assert.ErrorIs(t, p.Deactivate(), shared.ErrInvalidState)

	require.NoError(t, p.Activate())
	assert.True(t, p.Active)
	assert.ErrorIs(t, p.Activate(), shared.ErrInvalidState)
	assert.Equal(t, 3, p.Version)
}

func TestPerson_Update(t *testing.T) {
	p, err := NewPerson(Profile{Name: "Luca Verdi"})
	require.NoError(t, err)

	err = p.Update(Profile{Name: "Luca Verdi", VestSize: "XL", Notes: "taglia comoda"})

	require.NoError(t, err)
	assert.Equal(t, "XL", p.VestSize)
	assert.Equal(t, "taglia comoda", p.Notes)

	assert.ErrorIs(t, p.Update(Profile{}), shared.ErrValidation)
}
