package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secreto1")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto1", hash)

	assert.NoError(t, h.Compare(hash, "secreto1"))
	assert.ErrorIs(t, h.Compare(hash, "secreto2"), ErrPasswordMismatch)
}

func TestHashRejectsShortPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestCompareWithCorruptHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	err := h.Compare("not-a-hash", "secreto1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestInvalidCostFallsBackToDefault(t *testing.T) {
	h := NewBcryptHasher(100).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
