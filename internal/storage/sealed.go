package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const (
	sealedKeyIterations = 100000
	defaultSealedSalt   = "urbanflow"
)

type sealedValue struct {
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// SealedStore encrypts values with AES-GCM before handing them to the
// wrapped store. Keys are stored in the clear.
type SealedStore struct {
	inner Store
	gcm   cipher.AEAD
}

func NewSealedStore(inner Store, secret string, salt string) (*SealedStore, error) {

	if len(secret) == 0 {
		return nil, fmt.Errorf("sealed store requires a secret")
	}

	if len(salt) == 0 {
		salt = defaultSealedSalt
	}

	key := pbkdf2.Key([]byte(secret), []byte(salt), sealedKeyIterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SealedStore{
		inner: inner,
		gcm:   gcm,
	}, nil
}

// Get returns the decrypted value for key. A value that no longer decrypts,
// for example after the secret changed, is removed and reported as absent.
func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	stored, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	plaintext, err := s.open(stored)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to decrypt stored %s, discarding it", key)
		if err := s.inner.Delete(ctx, key); err != nil {
			return "", false, fmt.Errorf("failed to discard %s: %w", key, err)
		}
		return "", false, nil
	}
	return plaintext, true, nil
}

func (s *SealedStore) Set(ctx context.Context, key string, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedStore) Close() error {
	return s.inner.Close()
}

func (s *SealedStore) seal(plaintext string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nil, nonce, []byte(plaintext), nil)

	data, err := json.Marshal(sealedValue{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

func (s *SealedStore) open(stored string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode value: %w", err)
	}

	var value sealedValue
	if err := json.Unmarshal(data, &value); err != nil {
		return "", fmt.Errorf("failed to parse value: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(value.Nonce)
	if err != nil {
		return "", fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(value.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	if len(nonce) != s.gcm.NonceSize() {
		return "", fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
