package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qolzam/telar/apps/feeds/internal/types"
	"github.com/stretchr/testify/require"
)

// GenerateECDSAKeyPairPEM returns a PEM encoded P-256 key pair (public, private)
func GenerateECDSAKeyPairPEM(t *testing.T) (string, string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "Failed to generate ECDSA private key")

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err, "Failed to marshal ECDSA private key")
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	pubBytes, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err, "Failed to marshal ECDSA public key")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	return string(pubPEM), string(privPEM)
}

// MintToken signs an ES256 token carrying userID in the "claim" payload
func MintToken(t *testing.T, privPEM string, userID uuid.UUID) string {
	t.Helper()

	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(privPEM))
	require.NoError(t, err, "Failed to parse ECDSA private key")

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"claim": map[string]interface{}{
			types.HeaderUID: userID.String(),
			"displayName":   "Test User",
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err, "Failed to sign token")
	return signed
}

// BearerHeader formats a token for the Authorization header
func BearerHeader(token string) string {
	return types.BearerPrefix + token
}
