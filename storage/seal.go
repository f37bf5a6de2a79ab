package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// hkdfSalt and hkdfInfo bind the derived key to this use; a passphrase
	// reused elsewhere does not yield the same key.
	hkdfSalt = "custodia-snapshot-seal"
	hkdfInfo = "custodia-state-at-rest"

	sealKeyLen   = 32 // AES-256
	sealNonceLen = 12
)

// deriveSealKey derives the AES-256 seal key from a passphrase via
// HKDF-SHA256.
func deriveSealKey(passphrase string) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(passphrase), []byte(hkdfSalt), []byte(hkdfInfo))
	key := make([]byte, sealKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("storage: derive seal key: %w", err)
	}
	return key, nil
}

// seal encrypts plaintext as nonce(12B) || AES-256-GCM(plaintext) || tag.
func seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("storage: seal: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("storage: seal: %w", err)
	}
	nonce := make([]byte, sealNonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("storage: seal nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open reverses seal. Authentication failure (wrong passphrase, tampered
// data) reports ErrCorruptSnapshot.
func open(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("storage: open seal: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("storage: open seal: %w", err)
	}
	if len(data) < sealNonceLen+gcm.Overhead() {
		return nil, fmt.Errorf("%w: sealed data too short", ErrCorruptSnapshot)
	}
	plaintext, err := gcm.Open(nil, data[:sealNonceLen], data[sealNonceLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return plaintext, nil
}
