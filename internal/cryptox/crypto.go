// Package cryptox implements the symmetric encryption primitive that protects
// stored secrets: AES-256-GCM with a random 16-byte nonce per call.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// NonceSize is the width of the per-encryption nonce in bytes. GCM is
// configured for 16-byte nonces so the nonce space stays at 128 bits.
const NonceSize = 16

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// DecodeKey decodes a base64-encoded encryption key supplied via
// configuration and checks its length. The decoded key is held for the
// process lifetime and must never be logged.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid base64: %v", common.ErrCrypto, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrCrypto, KeySize, len(key))
	}
	return key, nil
}

// Encrypt encrypts plaintext with AES-256-GCM under key.
//
// A new random nonce is generated for every call, so repeated calls with
// identical plaintext and key yield different ciphertext/nonce pairs. The
// ciphertext and nonce are returned separately; both must be persisted to
// decrypt later.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	// nonce
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	// encrypting
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext produced by Encrypt using the same key and
// nonce. Any integrity violation (tampered ciphertext, mismatched nonce,
// wrong key) is a hard failure; garbage is never returned.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", common.ErrCrypto, NonceSize, len(nonce))
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	aesgcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	return aesgcm, nil
}
