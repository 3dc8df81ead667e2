package keys_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/authcore-io/authcore/token/keys"
)

func TestInMemoryService_KeyLifecycle(t *testing.T) {
	t.Run("no current key before first rotation", func(t *testing.T) {
		service := keys.NewInMemoryService()
		_, err := service.PublicKeyIdentifier()
		require.ErrorIs(t, err, keys.ErrNoCurrentKey)
		_, err = service.PrivateKeyIdentifier()
		require.ErrorIs(t, err, keys.ErrNoCurrentKey)
	})

	t.Run("GenerateKey stores both sides without making them current", func(t *testing.T) {
		service := keys.NewInMemoryService()
		privateIdentifier, publicIdentifier, err := service.GenerateKey()
		require.NoError(t, err)
		require.NotEqual(t, privateIdentifier, publicIdentifier)

		_, err = service.RetrieveKey(privateIdentifier, keys.KeyTypePrivate)
		require.NoError(t, err)
		_, err = service.RetrieveKey(publicIdentifier, keys.KeyTypePublic)
		require.NoError(t, err)

		_, err = service.PublicKeyIdentifier()
		require.ErrorIs(t, err, keys.ErrNoCurrentKey)
	})

	t.Run("retrieval is type checked", func(t *testing.T) {
		service := keys.NewInMemoryService()
		privateIdentifier, _, err := service.GenerateKey()
		require.NoError(t, err)
		_, err = service.RetrieveKey(privateIdentifier, keys.KeyTypePublic)
		require.ErrorIs(t, err, keys.ErrKeyNotFound)
	})

	t.Run("rotation replaces the current pair", func(t *testing.T) {
		service := keys.NewInMemoryService()
		require.NoError(t, service.RotateKey(false))
		first, err := service.PublicKeyIdentifier()
		require.NoError(t, err)

		require.NoError(t, service.RotateKey(false))
		second, err := service.PublicKeyIdentifier()
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		// Without deprecation the old material stays retrievable.
		_, err = service.RetrieveKey(first, keys.KeyTypePublic)
		require.NoError(t, err)
	})

	t.Run("deprecating rotation deletes the old pair", func(t *testing.T) {
		service := keys.NewInMemoryService()
		require.NoError(t, service.RotateKey(false))
		oldPublic, err := service.PublicKeyIdentifier()
		require.NoError(t, err)
		oldPrivate, err := service.PrivateKeyIdentifier()
		require.NoError(t, err)

		require.NoError(t, service.RotateKey(true))
		_, err = service.RetrieveKey(oldPublic, keys.KeyTypePublic)
		require.ErrorIs(t, err, keys.ErrKeyNotFound)
		_, err = service.RetrieveKey(oldPrivate, keys.KeyTypePrivate)
		require.ErrorIs(t, err, keys.ErrKeyNotFound)
	})

	t.Run("ConvertToJWK exposes the stored identifier as kid", func(t *testing.T) {
		service := keys.NewInMemoryService()
		require.NoError(t, service.RotateKey(false))
		publicIdentifier, err := service.PublicKeyIdentifier()
		require.NoError(t, err)
		material, err := service.RetrieveKey(publicIdentifier, keys.KeyTypePublic)
		require.NoError(t, err)

		jwks, err := service.ConvertToJWK(material)
		require.NoError(t, err)
		require.Len(t, jwks, 1)
		require.Equal(t, "RSA", jwks[0].Kty)
		require.Equal(t, "sig", jwks[0].Use)
		require.Equal(t, keys.RS256, jwks[0].Alg)
		require.Equal(t, publicIdentifier, jwks[0].Kid)
		require.NotEmpty(t, jwks[0].N)
		require.NotEmpty(t, jwks[0].E)
	})
}

func TestSignerService(t *testing.T) {
	type testClaims struct {
		jwt.RegisteredClaims
	}

	t.Run("signing fails before any rotation", func(t *testing.T) {
		service := keys.NewSignerService(keys.NewInMemoryService())
		_, err := service.Signer()
		require.ErrorIs(t, err, keys.ErrNoCurrentKey)
	})

	t.Run("signed tokens verify via the kid keyfunc", func(t *testing.T) {
		keyService := keys.NewInMemoryService()
		require.NoError(t, keyService.RotateKey(false))
		service := keys.NewSignerService(keyService)

		signer, err := service.Signer()
		require.NoError(t, err)
		signed, err := signer.Sign(testClaims{})
		require.NoError(t, err)

		parsed, err := jwt.ParseWithClaims(signed, &testClaims{}, service.VerificationKey)
		require.NoError(t, err)
		require.True(t, parsed.Valid)
	})

	t.Run("rotation without deprecation keeps old tokens verifiable", func(t *testing.T) {
		keyService := keys.NewInMemoryService()
		require.NoError(t, keyService.RotateKey(false))
		service := keys.NewSignerService(keyService)

		signer, err := service.Signer()
		require.NoError(t, err)
		signed, err := signer.Sign(testClaims{})
		require.NoError(t, err)

		require.NoError(t, keyService.RotateKey(false))
		parsed, err := jwt.ParseWithClaims(signed, &testClaims{}, service.VerificationKey)
		require.NoError(t, err)
		require.True(t, parsed.Valid)
	})

	t.Run("deprecating rotation invalidates old tokens", func(t *testing.T) {
		keyService := keys.NewInMemoryService()
		require.NoError(t, keyService.RotateKey(false))
		service := keys.NewSignerService(keyService)

		signer, err := service.Signer()
		require.NoError(t, err)
		signed, err := signer.Sign(testClaims{})
		require.NoError(t, err)

		require.NoError(t, keyService.RotateKey(true))
		_, err = jwt.ParseWithClaims(signed, &testClaims{}, service.VerificationKey)
		require.Error(t, err)
	})

	t.Run("a fresh signer picks up the rotated key", func(t *testing.T) {
		keyService := keys.NewInMemoryService()
		require.NoError(t, keyService.RotateKey(false))
		service := keys.NewSignerService(keyService)

		before, err := service.Signer()
		require.NoError(t, err)
		require.NoError(t, keyService.RotateKey(false))
		after, err := service.Signer()
		require.NoError(t, err)
		require.NotEqual(t, before.KeyID(), after.KeyID())
	})
}
