package models

import "time"

// AutoProvisionedProof marks identities created from an external token.
// They have no local password and cannot log in until re-registered.
const AutoProvisionedProof = "<auto-provisioned>"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// LocallyAuthenticable reports whether the user was registered with a real
// password, as opposed to being auto-provisioned from an external token.
func (u *User) LocallyAuthenticable() bool {
	return u.PasswordHash != "" && u.PasswordHash != AutoProvisionedProof
}
