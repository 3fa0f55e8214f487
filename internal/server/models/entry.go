package models

import "time"

// Entry is one stored service/credential/secret record. Ciphertext and Nonce
// together decrypt to the plaintext secret supplied at the most recent
// create/update; ID and UserID are immutable after creation.
type Entry struct {
	ID         string
	UserID     string
	Service    string
	Credential string
	Ciphertext []byte
	Nonce      []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
