package cryptox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := DecodeKey(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, KeySize)))
	if err != nil {
		t.Fatalf("DecodeKey error: %v", err)
	}
	return key
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("MySecret123!")

	for i := 0; i < 10; i++ {
		ciphertext, nonce, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt error: %v", err)
		}

		got, err := Decrypt(ciphertext, nonce, key)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("same plaintext")

	c1, n1, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	c2, n2, err := Encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if bytes.Equal(n1, n2) {
		t.Errorf("expected different nonces for successive calls")
	}
	if bytes.Equal(c1, c2) {
		t.Errorf("expected different ciphertexts for successive calls")
	}
	if len(n1) != NonceSize {
		t.Errorf("expected %d-byte nonce, got %d", NonceSize, len(n1))
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key := testKey(t)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	ciphertext[0] ^= 0xff

	_, err = Decrypt(ciphertext, nonce, key)
	if err == nil {
		t.Fatalf("expected error for tampered ciphertext, got nil")
	}
	if !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("expected common.ErrCrypto, got %v", err)
	}
}

func TestDecrypt_WrongNonce(t *testing.T) {
	key := testKey(t)

	ciphertext, _, err := Encrypt([]byte("secret"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	_, _, err = Encrypt([]byte("other"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	otherNonce := bytes.Repeat([]byte{0x01}, NonceSize)
	if _, err := Decrypt(ciphertext, otherNonce, key); err == nil {
		t.Fatalf("expected error for mismatched nonce, got nil")
	}

	shortNonce := []byte{0x01, 0x02}
	if _, err := Decrypt(ciphertext, shortNonce, key); !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("expected common.ErrCrypto for short nonce, got %v", err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	key := testKey(t)

	ciphertext, nonce, err := Encrypt([]byte("secret"), key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	otherKey := bytes.Repeat([]byte{0x24}, KeySize)
	if _, err := Decrypt(ciphertext, nonce, otherKey); !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("expected common.ErrCrypto for wrong key, got %v", err)
	}
}

func TestDecodeKey_Invalid(t *testing.T) {
	if _, err := DecodeKey("not base64!!!"); !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("expected common.ErrCrypto for invalid base64, got %v", err)
	}

	short := base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := DecodeKey(short); !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("expected common.ErrCrypto for short key, got %v", err)
	}
}

func TestEncrypt_MalformedKey(t *testing.T) {
	if _, _, err := Encrypt([]byte("x"), []byte("bad key")); !errors.Is(err, common.ErrCrypto) {
		t.Fatalf("expected common.ErrCrypto for malformed key, got %v", err)
	}
}
