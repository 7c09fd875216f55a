package multipass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Customer is the identity payload embedded in a multipass token.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ReturnTo  string `json:"return_to,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Encoder derives an opaque signed token from a customer identity using the
// shared multipass secret. The secret's SHA-256 digest is split into an
// AES-128 encryption key and an HMAC-SHA256 signature key.
type Encoder struct {
	encryptionKey []byte
	signatureKey  []byte
	now           func() time.Time
	randReader    io.Reader
}

var errSecretRequired = errors.New("multipass secret is required")

// NewEncoder builds an encoder from the shared secret.
func NewEncoder(secret string) (*Encoder, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errSecretRequired
	}
	keyMaterial := sha256.Sum256([]byte(trimmed))
	return &Encoder{
		encryptionKey: keyMaterial[:16],
		signatureKey:  keyMaterial[16:],
		now:           time.Now,
		randReader:    rand.Reader,
	}, nil
}

// Encode produces a URL-safe token for the given customer. CreatedAt is
// stamped here; the commerce backend enforces its own freshness window.
func (e *Encoder) Encode(customer Customer) (string, error) {
	if strings.TrimSpace(customer.Email) == "" {
		return "", errors.New("customer email is required")
	}
	customer.CreatedAt = e.now().UTC().Format(time.RFC3339)

	plaintext, err := json.Marshal(customer)
	if err != nil {
		return "", fmt.Errorf("marshal customer payload: %w", err)
	}

	ciphertext, err := e.encrypt(plaintext)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, e.signatureKey)
	mac.Write(ciphertext)
	signed := append(ciphertext, mac.Sum(nil)...)

	return base64.URLEncoding.EncodeToString(signed), nil
}

func (e *Encoder) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, aes.BlockSize+len(padded))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(e.randReader, iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext[aes.BlockSize:], padded)
	return ciphertext, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}
