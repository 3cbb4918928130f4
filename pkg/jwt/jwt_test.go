package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	Configure("test-secret", time.Hour)
	id := uuid.New()

	token, err := GenerateToken(id, "ops@example.com", "Ops", "ADMIN", []string{"order:view"}, "v1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, []string{"order:view"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	Configure("first-secret", time.Hour)
	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "ADMIN", nil, "v1")
	require.NoError(t, err)

	Configure("second-secret", 0)
	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
