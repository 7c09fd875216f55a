package multipass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeToken(t *testing.T, enc *Encoder, token string) Customer {
	t.Helper()

	raw, err := base64.URLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Greater(t, len(raw), sha256.Size+aes.BlockSize)

	ciphertext := raw[:len(raw)-sha256.Size]
	sig := raw[len(raw)-sha256.Size:]

	mac := hmac.New(sha256.New, enc.signatureKey)
	mac.Write(ciphertext)
	require.True(t, hmac.Equal(sig, mac.Sum(nil)), "signature mismatch")

	block, err := aes.NewCipher(enc.encryptionKey)
	require.NoError(t, err)

	iv := ciphertext[:aes.BlockSize]
	body := ciphertext[aes.BlockSize:]
	require.Equal(t, 0, len(body)%aes.BlockSize)

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	padLen := int(plain[len(plain)-1])
	require.LessOrEqual(t, padLen, aes.BlockSize)
	plain = plain[:len(plain)-padLen]

	var customer Customer
	require.NoError(t, json.Unmarshal(plain, &customer))
	return customer
}

func TestEncodeRoundTrip(t *testing.T) {
	enc, err := NewEncoder("shared-secret")
	require.NoError(t, err)

	fixed := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	enc.now = func() time.Time { return fixed }

	token, err := enc.Encode(Customer{
		Email:     "jo@example.com",
		FirstName: "Jo",
		ReturnTo:  "/checkout",
	})
	require.NoError(t, err)

	customer := decodeToken(t, enc, token)
	assert.Equal(t, "jo@example.com", customer.Email)
	assert.Equal(t, "Jo", customer.FirstName)
	assert.Empty(t, customer.LastName)
	assert.Equal(t, "/checkout", customer.ReturnTo)
	assert.Equal(t, "2026-03-09T12:00:00Z", customer.CreatedAt)
}

func TestEncodeTokensDifferPerCall(t *testing.T) {
	enc, err := NewEncoder("shared-secret")
	require.NoError(t, err)

	a, err := enc.Encode(Customer{Email: "jo@example.com"})
	require.NoError(t, err)
	b, err := enc.Encode(Customer{Email: "jo@example.com"})
	require.NoError(t, err)

	// Random IV means identical identities never produce identical tokens.
	assert.NotEqual(t, a, b)
}

func TestEncodeRequiresEmail(t *testing.T) {
	enc, err := NewEncoder("shared-secret")
	require.NoError(t, err)

	_, err = enc.Encode(Customer{})
	assert.Error(t, err)
}

func TestNewEncoderRequiresSecret(t *testing.T) {
	_, err := NewEncoder("  ")
	assert.ErrorIs(t, err, errSecretRequired)
}
