package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/senseihimanshu/blood-donation/pkg/utils/errors"
)

func TestSignAndVerify(t *testing.T) {
	signer := NewSigner("test-secret", "blood-donation", time.Hour)

	token, err := signer.Sign("donor-123", "donor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "donor-123", claims.SubjectID)
	assert.Equal(t, "donor", claims.Role)
	assert.Equal(t, "blood-donation", claims.Issuer)
}

func TestVerify_ExpiredToken(t *testing.T) {
	signer := NewSigner("test-secret", "blood-donation", -time.Minute)

	token, err := signer.Sign("donor-123", "donor")
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, xerrors.ErrExpiredToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	signer := NewSigner("test-secret", "blood-donation", time.Hour)
	other := NewSigner("other-secret", "blood-donation", time.Hour)

	token, err := signer.Sign("hospital-1", "hospital")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, xerrors.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	signer := NewSigner("test-secret", "blood-donation", time.Hour)

	_, err := signer.Verify("not.a.token")
	assert.ErrorIs(t, err, xerrors.ErrInvalidToken)
}
